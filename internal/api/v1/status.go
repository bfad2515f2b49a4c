package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthResponse is the health check body.
type HealthResponse struct {
	Status  string `json:"status"`
	History bool   `json:"history"` // run history store available
	DataDir string `json:"dataDir"`
}

// GetHealth reports liveness.
// GET /api/health
func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "ok",
		History: h.store != nil,
		DataDir: h.ws.Root,
	})
}
