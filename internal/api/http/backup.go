package http

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/AppLauncher/backend/internal/domain/backup"
)

func attachment(c *gin.Context, prefix, ext string) {
	name := fmt.Sprintf("%s-%s%s", prefix, time.Now().Format("2006-01-02"), ext)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
}

// ExportJSON downloads the full store snapshot
func (h *Handlers) ExportJSON(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.backup.ExportJSON(c.Request.Context(), &buf); err != nil {
		fail(c, err)
		return
	}
	attachment(c, "sakai-backup", ".json")
	c.Data(http.StatusOK, "application/json", buf.Bytes())
}

// ImportJSON merges an uploaded snapshot
func (h *Handlers) ImportJSON(c *gin.Context) {
	ctx := c.Request.Context()
	body, closeBody, err := uploadBody(c)
	if err != nil {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}
	defer closeBody()

	if err := h.backup.ImportJSON(ctx, body); err != nil {
		fail(c, err)
		return
	}
	h.refresh(ctx)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ExportProfile downloads a .sakaiprofile archive
func (h *Handlers) ExportProfile(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.backup.ExportProfile(c.Request.Context(), &buf); err != nil {
		fail(c, err)
		return
	}
	attachment(c, "sakai", backup.ProfileExtension)
	c.Data(http.StatusOK, "application/zip", buf.Bytes())
}

// ImportProfile restores an uploaded .sakaiprofile archive
func (h *Handlers) ImportProfile(c *gin.Context) {
	ctx := c.Request.Context()
	body, closeBody, err := uploadBody(c)
	if err != nil {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}
	defer closeBody()

	n, err := h.backup.ImportProfile(ctx, body)
	if err != nil {
		fail(c, err)
		return
	}
	h.refresh(ctx)
	c.JSON(http.StatusOK, gin.H{"success": true, "imported": n})
}

// MigrateLegacy converts the flat sakApps/sakaiStats/sakaiViewMode/sakaiTheme values
func (h *Handlers) MigrateLegacy(c *gin.Context) {
	ctx := c.Request.Context()
	var req backup.LegacyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}
	n, err := h.backup.MigrateLegacy(ctx, req)
	if err != nil {
		fail(c, err)
		return
	}
	h.refresh(ctx)
	c.JSON(http.StatusOK, gin.H{"success": true, "imported": n})
}

// uploadBody returns the "file" part of a multipart request, or the raw
// body otherwise
func uploadBody(c *gin.Context) (io.Reader, func(), error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile("file")
		if err != nil {
			return nil, nil, fmt.Errorf("file is required")
		}
		f, err := header.Open()
		if err != nil {
			return nil, nil, err
		}
		return f, func() { f.Close() }, nil
	}
	return c.Request.Body, func() {}, nil
}
