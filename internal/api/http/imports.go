package http

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/AppLauncher/backend/internal/domain/importer"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/types"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/utils"
)

// RemoteImportRequest is the body of the URL, GitHub and PWA imports
type RemoteImportRequest struct {
	URL       string             `json:"url" binding:"required"`
	Overrides importer.Overrides `json:"overrides"`
}

// ImportFile imports an uploaded .html or .zip file. The multipart form
// carries the file under "file" and optional overrides either as a JSON
// "overrides" field or as individual name, description, category,
// version, tags and launchMode fields.
func (h *Handlers) ImportFile(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "Invalid request: file is required")
		return
	}
	if header.Size > h.maxBytes {
		fail(c, types.NewValidationError("size", fmt.Sprintf("file exceeds %d bytes", h.maxBytes)))
		return
	}
	data, err := h.readUpload(header)
	if err != nil {
		fail(c, err)
		return
	}
	overrides, err := formOverrides(c)
	if err != nil {
		badRequest(c, "Invalid overrides: "+err.Error())
		return
	}

	h.install(c, importer.Request{
		Source:    importer.SourceFile,
		Filename:  header.Filename,
		Data:      data,
		Overrides: overrides,
	})
}

func (h *Handlers) readUpload(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > h.maxBytes {
		return nil, types.NewValidationError("size", fmt.Sprintf("file exceeds %d bytes", h.maxBytes))
	}
	return data, nil
}

func formOverrides(c *gin.Context) (importer.Overrides, error) {
	var o importer.Overrides
	if raw := c.PostForm("overrides"); raw != "" {
		if err := sonic.UnmarshalString(raw, &o); err != nil {
			return o, err
		}
		return o, nil
	}
	optional := func(key string) *string {
		if v, ok := c.GetPostForm(key); ok {
			return &v
		}
		return nil
	}
	o.Name = optional("name")
	o.Description = optional("description")
	o.Category = optional("category")
	o.Version = optional("version")
	o.Icon = optional("icon")
	if tags, ok := c.GetPostForm("tags"); ok {
		o.Tags = utils.SplitTags(tags)
	}
	o.LaunchMode = c.PostForm("launchMode")
	return o, nil
}

func (h *Handlers) importRemote(source importer.Source) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RemoteImportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request: "+err.Error())
			return
		}
		h.install(c, importer.Request{
			Source:    source,
			URL:       strings.TrimSpace(req.URL),
			Overrides: req.Overrides,
		})
	}
}

// install runs the import and stores the draft. With preview=true the
// draft is returned without being installed.
func (h *Handlers) install(c *gin.Context, req importer.Request) {
	ctx := c.Request.Context()

	draft, err := h.pipeline.Import(ctx, req)
	if err != nil {
		fail(c, err)
		return
	}
	if preview, _ := strconv.ParseBool(c.Query("preview")); preview {
		c.JSON(http.StatusOK, gin.H{"success": true, "draft": draft})
		return
	}

	appID, err := h.store.InstallApp(ctx, draft)
	if err != nil {
		fail(c, err)
		return
	}
	h.refresh(ctx)

	app, err := h.store.GetApp(ctx, appID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"id":      appID,
		"app":     app,
		"files":   len(draft.Files),
	})
}
