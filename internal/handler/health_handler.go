package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medchron/internal/port"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	runs port.RunRepository
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(runs port.RunRepository) *HealthHandler {
	return &HealthHandler{runs: runs}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	if err := h.runs.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "run store not reachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
