package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tmsbilling/internal/port"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	blobs port.BlobStore
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(blobs port.BlobStore) *HealthHandler {
	return &HealthHandler{blobs: blobs}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	if err := h.blobs.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "invoice store not reachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
