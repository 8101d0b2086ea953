package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"fritakagp.app/backend/internal/http/dto"
	"fritakagp.app/backend/internal/service"
)

type HealthHandler struct {
	jobs service.JobService
}

func NewHealthHandler(jobs service.JobService) *HealthHandler {
	return &HealthHandler{jobs: jobs}
}

// Check reports the job queue depth. A failing database makes the instance unhealthy.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx := c.Request.Context()

	counts, err := h.jobs.CountByStatus(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{Status: "unavailable"})
		return
	}

	jobs := make(map[string]int64, len(counts))
	for status, n := range counts {
		jobs[string(status)] = n
	}
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok", Jobs: jobs})
}
