package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andy-arrow/vocal-excellence-backend/models"
)

type HealthHandler struct {
	repo models.Repository
}

func NewHealthHandler(repo models.Repository) *HealthHandler {
	return &HealthHandler{repo: repo}
}

// Health reports the active backend and its round-trip latency. HealthCheck
// never errors; a dead database shows up as a degraded status, not a failure.
func (h *HealthHandler) Health(c *gin.Context) {
	hs := h.repo.HealthCheck(c.Request.Context())

	status := "ok"
	database := "available"
	code := http.StatusOK
	if !hs.Healthy {
		status = "degraded"
		database = "unavailable"
		code = http.StatusServiceUnavailable
	}

	body := gin.H{
		"status":             status,
		"database":           database,
		"backend":            h.repo.BackendName(),
		"backendDescription": h.repo.BackendDescription(),
		"latencyMs":          hs.LatencyMs,
		"timestamp":          time.Now().UTC().Format(time.RFC3339),
	}
	if hs.Error != "" {
		body["error"] = hs.Error
	}
	c.JSON(code, body)
}
