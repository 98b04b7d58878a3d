package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"medchron/internal/service"
)

const maxListLimit = 100

// createRunRequest is the POST /api/v1/runs body. The output location is
// server configuration and cannot be chosen by the caller.
type createRunRequest struct {
	InputDir string `json:"input_dir" binding:"required"`
	Label    string `json:"label"`
}

// RunHandler handles chronology run endpoints.
type RunHandler struct {
	chronologyService service.ChronologyService
}

// NewRunHandler creates a new RunHandler.
func NewRunHandler(chronologyService service.ChronologyService) *RunHandler {
	return &RunHandler{chronologyService: chronologyService}
}

// Create handles POST /api/v1/runs. The run continues in the background;
// poll GET /api/v1/runs/:id for its status.
func (h *RunHandler) Create(c *gin.Context) {
	var req createRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "input_dir is required")
		return
	}

	run, err := h.chronologyService.StartRun(c.Request.Context(), &service.GenerateInput{
		InputDir: req.InputDir,
		Label:    req.Label,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondAccepted(c, run)
}

// GetByID handles GET /api/v1/runs/:id
func (h *RunHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid run ID")
		return
	}

	run, err := h.chronologyService.GetRun(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, run)
}

// List handles GET /api/v1/runs?limit=N
func (h *RunHandler) List(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		RespondError(c, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a positive integer")
		return
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	runs, err := h.chronologyService.ListRuns(c.Request.Context(), limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondList(c, runs, ListMeta{Count: len(runs), Limit: limit})
}
