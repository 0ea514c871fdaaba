package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/AppLauncher/backend/internal/domain/catalog"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/domain/launch"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/domain/store"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/types"
)

// GetCatalog renders the catalog for the current state. A refresh=true
// query reloads it from the store first.
func (h *Handlers) GetCatalog(c *gin.Context) {
	if refresh, _ := strconv.ParseBool(c.Query("refresh")); refresh {
		if err := h.catalog.Reload(c.Request.Context()); err != nil {
			fail(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, h.catalog.Snapshot())
}

// SetCatalogState replaces the view, sort, view mode, search and filter tags
func (h *Handlers) SetCatalogState(c *gin.Context) {
	var state catalog.State
	if err := c.ShouldBindJSON(&state); err != nil {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}
	if err := h.catalog.SetState(c.Request.Context(), state); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.catalog.Snapshot())
}

// ListApps lists stored apps, optionally narrowed by category, search
// term or favorites
func (h *Handlers) ListApps(c *gin.Context) {
	favorites, _ := strconv.ParseBool(c.Query("favorites"))
	apps, err := h.store.GetAllApps(c.Request.Context(), store.Filter{
		Category:     c.Query("category"),
		Search:       c.Query("search"),
		FavoriteOnly: favorites,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"apps":  apps,
		"count": len(apps),
	})
}

// GetApp returns one app
func (h *Handlers) GetApp(c *gin.Context) {
	app, err := h.store.GetApp(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

// UpdateApp applies a partial update
func (h *Handlers) UpdateApp(c *gin.Context) {
	ctx := c.Request.Context()
	appID := c.Param("id")

	var update types.AppUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}
	ok, err := h.store.UpdateApp(ctx, appID, update)
	if err != nil {
		fail(c, err)
		return
	}
	if !ok {
		fail(c, types.ErrAppNotFound)
		return
	}
	h.refresh(ctx)

	app, err := h.store.GetApp(ctx, appID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "app": app})
}

// DeleteApp removes an app and closes its browsing contexts
func (h *Handlers) DeleteApp(c *gin.Context) {
	ctx := c.Request.Context()
	appID := c.Param("id")

	ok, err := h.store.DeleteApp(ctx, appID)
	if err != nil {
		fail(c, err)
		return
	}
	if !ok {
		fail(c, types.ErrAppNotFound)
		return
	}
	_ = h.contexts.CloseContext(ctx, launch.AppContext(appID))
	_ = h.contexts.CloseContext(ctx, launch.WebAppContext(appID))
	h.refresh(ctx)

	c.JSON(http.StatusOK, gin.H{"success": true, "id": appID})
}

// ToggleFavorite flips the favorite flag
func (h *Handlers) ToggleFavorite(c *gin.Context) {
	ctx := c.Request.Context()
	favorite, err := h.store.ToggleFavorite(ctx, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	h.refresh(ctx)
	c.JSON(http.StatusOK, gin.H{"success": true, "favorite": favorite})
}

// GetAppFiles lists the files extracted from an app's archive
func (h *Handlers) GetAppFiles(c *gin.Context) {
	ctx := c.Request.Context()
	appID := c.Param("id")
	if _, err := h.store.GetApp(ctx, appID); err != nil {
		fail(c, err)
		return
	}
	files, err := h.store.GetAppFiles(ctx, appID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files, "count": len(files)})
}

// LaunchApp records a launch and opens the app's browsing context
func (h *Handlers) LaunchApp(c *gin.Context) {
	ctx := c.Request.Context()
	result, err := h.launcher.LaunchByID(ctx, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	h.refresh(ctx)
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"app":      result.App,
		"context":  result.Context,
		"strategy": result.Strategy,
		"source":   result.Source,
		"href":     contextHref(result.Context),
	})
}
