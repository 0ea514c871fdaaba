package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/AppLauncher/backend/internal/domain/catalog"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/domain/store"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/types"
)

// GetSettings returns every setting
func (h *Handlers) GetSettings(c *gin.Context) {
	settings, err := h.store.GetAllSettings(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// SetSetting stores {"value": ...} under :key. Sort and view mode go
// through the catalog so the rendered view follows.
func (h *Handlers) SetSetting(c *gin.Context) {
	ctx := c.Request.Context()
	key := c.Param("key")

	var req struct {
		Value interface{} `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}

	var err error
	switch key {
	case store.SettingDeviceID:
		err = types.NewValidationError("key", "deviceId is read-only")
	case store.SettingSortBy:
		value, _ := req.Value.(string)
		err = h.catalog.SetSort(ctx, catalog.SortKey(value))
	case store.SettingViewMode:
		value, _ := req.Value.(string)
		err = h.catalog.SetViewMode(ctx, value)
	default:
		err = h.store.SetSetting(ctx, key, req.Value)
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "key": key, "value": req.Value})
}

// GetSyncEvents lists the newest sync events, or only the pending ones
// with unsynced=true
func (h *Handlers) GetSyncEvents(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		events []types.SyncEvent
		err    error
	)
	if unsynced, _ := strconv.ParseBool(c.Query("unsynced")); unsynced {
		events, err = h.store.GetUnsyncedEvents(ctx)
	} else {
		limit, _ := strconv.Atoi(c.Query("limit"))
		events, err = h.store.GetSyncEvents(ctx, limit)
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}

// MarkEventsSynced flags events as synced
func (h *Handlers) MarkEventsSynced(c *gin.Context) {
	var req struct {
		IDs []uint `json:"ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}
	if err := h.store.MarkEventsSynced(c.Request.Context(), req.IDs); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "marked": len(req.IDs)})
}

// GetStats returns store statistics and the daily launch tallies of the
// last days (default 30)
func (h *Handlers) GetStats(c *gin.Context) {
	ctx := c.Request.Context()
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days <= 0 {
		badRequest(c, "Invalid request: days must be a positive integer")
		return
	}

	stats, err := h.store.GetStats(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	usage, err := h.store.UsageSince(ctx, time.Now().AddDate(0, 0, -(days-1)))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats, "usage": usage})
}

// SearchStoreCatalog searches the app-store listing
func (h *Handlers) SearchStoreCatalog(c *gin.Context) {
	featured, _ := strconv.ParseBool(c.Query("featured"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	entries, err := h.store.SearchStoreCatalog(c.Request.Context(), c.Query("q"), store.StoreQuery{
		Category: c.Query("category"),
		Featured: featured,
		Limit:    limit,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}

// ReplaceStoreCatalog swaps the app-store listing
func (h *Handlers) ReplaceStoreCatalog(c *gin.Context) {
	var entries []types.StoreEntry
	if err := c.ShouldBindJSON(&entries); err != nil {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}
	if err := h.store.ReplaceStoreCatalog(c.Request.Context(), entries); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(entries)})
}
