package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AppLauncher/backend/internal/domain/backup"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/domain/catalog"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/domain/importer"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/domain/launch"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/domain/store"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/infrastructure/logging"
)

// Version is reported by the root endpoint
const Version = "2.0.0"

// Deps are the services the handlers operate on
type Deps struct {
	Store    *store.Store
	Pipeline *importer.Pipeline
	Catalog  *catalog.Controller
	Launcher *launch.Controller
	Contexts *ContextRegistry
	Backup   *backup.Service
	Import   config.ImportConfig
	Logger   *logging.Logger
}

// Handlers contains all HTTP handlers
type Handlers struct {
	store    *store.Store
	pipeline *importer.Pipeline
	catalog  *catalog.Controller
	launcher *launch.Controller
	contexts *ContextRegistry
	backup   *backup.Service
	maxBytes int64
	logger   *logging.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(d Deps) *Handlers {
	log := d.Logger
	if log == nil {
		log = logging.NewNop()
	}
	maxBytes := d.Import.MaxArchiveBytes
	if maxBytes <= 0 {
		maxBytes = config.Default().Import.MaxArchiveBytes
	}
	return &Handlers{
		store:    d.Store,
		pipeline: d.Pipeline,
		catalog:  d.Catalog,
		launcher: d.Launcher,
		contexts: d.Contexts,
		backup:   d.Backup,
		maxBytes: maxBytes,
		logger:   log.Named("api"),
	}
}

// Register mounts every route on r
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	// Catalog
	r.GET("/catalog", h.GetCatalog)
	r.PUT("/catalog/state", h.SetCatalogState)

	// Apps
	r.GET("/apps", h.ListApps)
	r.GET("/apps/:id", h.GetApp)
	r.PATCH("/apps/:id", h.UpdateApp)
	r.DELETE("/apps/:id", h.DeleteApp)
	r.POST("/apps/:id/favorite", h.ToggleFavorite)
	r.GET("/apps/:id/files", h.GetAppFiles)
	r.POST("/apps/:id/launch", h.LaunchApp)

	// Import
	r.POST("/import/file", h.ImportFile)
	r.POST("/import/url", h.importRemote(importer.SourceURL))
	r.POST("/import/github", h.importRemote(importer.SourceGitHub))
	r.POST("/import/pwa", h.importRemote(importer.SourcePWA))

	// Browsing contexts
	r.GET("/contexts", h.ListContexts)
	r.GET("/contexts/:name", h.LoadContext)
	r.DELETE("/contexts/:name", h.CloseContext)

	// Frame grid
	r.GET("/frames", h.GetFrames)
	r.PUT("/frames/layout", h.SetFrameLayout)
	r.POST("/frames/:slot", h.OpenFrame)
	r.DELETE("/frames/:slot", h.CloseFrame)
	r.POST("/frames/:slot/reload", h.ReloadFrame)

	// Settings and sync log
	r.GET("/settings", h.GetSettings)
	r.PUT("/settings/:key", h.SetSetting)
	r.GET("/sync/events", h.GetSyncEvents)
	r.POST("/sync/events/mark", h.MarkEventsSynced)
	r.GET("/stats", h.GetStats)

	// App store listing
	r.GET("/store/catalog", h.SearchStoreCatalog)
	r.PUT("/store/catalog", h.ReplaceStoreCatalog)

	// Backup
	r.GET("/backup/json", h.ExportJSON)
	r.POST("/backup/json", h.ImportJSON)
	r.GET("/backup/profile", h.ExportProfile)
	r.POST("/backup/profile", h.ImportProfile)
	r.POST("/backup/legacy", h.MigrateLegacy)

	// UI logs
	r.POST("/logs", h.StreamLogs)
}

// Root identifies the service
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "Sakai App Launcher",
		"version": Version,
	})
}

// Health reports store reachability and presenter state
func (h *Handlers) Health(c *gin.Context) {
	count, err := h.store.CountApps(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"apps":     count,
		"contexts": h.contexts.Len(),
		"layout":   h.launcher.Grid().Layout(),
	})
}

// refresh reloads the catalog after a mutation; failures only degrade
// the cached view
func (h *Handlers) refresh(ctx context.Context) {
	if err := h.catalog.Reload(ctx); err != nil {
		h.logger.Warn("catalog reload failed", zap.Error(err))
	}
}
