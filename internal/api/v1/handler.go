package v1

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"propostas/internal/importer"
	"propostas/internal/store"
	"propostas/internal/workspace"
)

// Handler serves the /api routes.
type Handler struct {
	coord     *importer.Coordinator
	store     *store.Store
	ws        *workspace.Workspace
	log       *zap.Logger
	downloads *downloadStore
}

// NewHandler creates the API handler. st may be nil when run history is
// unavailable.
func NewHandler(coord *importer.Coordinator, st *store.Store, ws *workspace.Workspace, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		coord:     coord,
		store:     st,
		ws:        ws,
		log:       log,
		downloads: newDownloadStore(),
	}
}

// RegisterRoutes registers the API routes on router.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", h.GetHealth)

	// processing
	router.POST("/process", h.Process)
	router.POST("/process/stream", h.ProcessStream)
	router.GET("/download/:token", h.Download)

	// history
	router.GET("/runs", h.ListRuns)
	router.GET("/runs/:id", h.GetRun)
	router.GET("/processed", h.ListProcessed)
}
