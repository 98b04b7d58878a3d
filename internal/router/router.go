package router

import (
	"github.com/gin-gonic/gin"

	"medchron/internal/handler"
	"medchron/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	runH *handler.RunHandler,
	healthH *handler.HealthHandler,
	corsOrigins []string,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger("/healthz", "/readyz"))
	r.Use(middleware.CORS(corsOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	runs := v1.Group("/runs")
	runs.POST("", runH.Create)
	runs.GET("", runH.List)
	runs.GET("/:id", runH.GetByID)

	return r
}
