package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/AppLauncher/backend/internal/domain/launch"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/types"
)

// documentPolicy runs served documents in an opaque origin so they cannot
// call the API with the launcher's origin
const documentPolicy = "sandbox allow-scripts allow-forms allow-popups allow-modals"

func contextHref(name string) string {
	return "/contexts/" + name
}

// ListContexts lists open browsing contexts
func (h *Handlers) ListContexts(c *gin.Context) {
	contexts := h.contexts.List()
	c.JSON(http.StatusOK, gin.H{"contexts": contexts, "count": len(contexts)})
}

// LoadContext serves a context's document or redirects to its URL
func (h *Handlers) LoadContext(c *gin.Context) {
	src, err := h.contexts.Load(c.Param("name"))
	if err != nil {
		fail(c, err)
		return
	}
	if !src.IsDocument() {
		c.Redirect(http.StatusFound, src.URL)
		return
	}
	mimeType := src.MimeType
	if mimeType == "" {
		mimeType = launch.DocumentMimeType
	}
	c.Header("Cache-Control", "no-store")
	c.Header("Content-Security-Policy", documentPolicy)
	c.Data(http.StatusOK, mimeType, []byte(src.Document))
}

// CloseContext releases a browsing context
func (h *Handlers) CloseContext(c *gin.Context) {
	name := c.Param("name")
	if _, ok := h.contexts.Get(name); !ok {
		fail(c, ErrUnknownContext)
		return
	}
	if err := h.contexts.CloseContext(c.Request.Context(), name); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "context": name})
}

type frameSlot struct {
	launch.Slot
	Href string `json:"href"`
}

func frameView(s launch.Slot) frameSlot {
	return frameSlot{Slot: s, Href: contextHref(s.Context)}
}

// GetFrames returns the grid layout and its slots
func (h *Handlers) GetFrames(c *gin.Context) {
	grid := h.launcher.Grid()
	slots := grid.Slots()
	views := make([]frameSlot, len(slots))
	for i, s := range slots {
		views[i] = frameView(s)
	}
	c.JSON(http.StatusOK, gin.H{"layout": grid.Layout(), "slots": views})
}

// SetFrameLayout switches the grid layout
func (h *Handlers) SetFrameLayout(c *gin.Context) {
	var req struct {
		Layout string `json:"layout" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}
	if err := h.launcher.Grid().SetLayout(c.Request.Context(), launch.Layout(req.Layout)); err != nil {
		fail(c, err)
		return
	}
	h.GetFrames(c)
}

func slotParam(c *gin.Context) (int, error) {
	slot, err := strconv.Atoi(c.Param("slot"))
	if err != nil {
		return 0, types.ErrInvalidSlot
	}
	return slot, nil
}

// OpenFrame loads an app into a slot
func (h *Handlers) OpenFrame(c *gin.Context) {
	ctx := c.Request.Context()
	slot, err := slotParam(c)
	if err != nil {
		fail(c, err)
		return
	}
	var req struct {
		AppID string `json:"appId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}
	s, err := h.launcher.OpenInFrame(ctx, slot, req.AppID)
	if err != nil {
		fail(c, err)
		return
	}
	h.refresh(ctx)
	c.JSON(http.StatusOK, gin.H{"success": true, "slot": frameView(*s)})
}

// CloseFrame empties a slot
func (h *Handlers) CloseFrame(c *gin.Context) {
	slot, err := slotParam(c)
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.launcher.Grid().Close(c.Request.Context(), slot); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "slot": slot})
}

// ReloadFrame reopens a slot's current source
func (h *Handlers) ReloadFrame(c *gin.Context) {
	slot, err := slotParam(c)
	if err != nil {
		fail(c, err)
		return
	}
	s, err := h.launcher.Grid().Reload(c.Request.Context(), slot)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "slot": frameView(*s)})
}
