package importer

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/bytedance/sonic"
	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AppLauncher/backend/internal/domain/metadata"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/types"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/utils"
)

const (
	manifestName = "sakai.json"
	iconPattern  = "{icon,logo,app-icon}.{png,jpg,jpeg,svg}"
	// expanded entries may not exceed this multiple of the archive limit
	expansionFactor = 4
)

// Manifest is the optional sakai.json descriptor shipped inside archives
type Manifest struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Version     string      `json:"version"`
	Category    string      `json:"category"`
	Tags        interface{} `json:"tags"`
	Icon        string      `json:"icon"`
	Author      string      `json:"author"`
	Permissions []string    `json:"permissions"`
}

// TagList accepts tags given as an array or a comma separated string
func (m *Manifest) TagList() []string {
	switch v := m.Tags.(type) {
	case string:
		return utils.SplitTags(v)
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, t := range v {
			if s, ok := t.(string); ok {
				out = append(out, s)
			}
		}
		return utils.SplitTags(out...)
	}
	return nil
}

type entry struct {
	name string
	raw  []byte
	mime *mimetype.MIME
}

func (e *entry) text() bool {
	for m := e.mime; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

func (e *entry) mimeType() string {
	if t := mime.TypeByExtension(strings.ToLower(path.Ext(e.name))); t != "" {
		return strings.SplitN(t, ";", 2)[0]
	}
	return strings.SplitN(e.mime.String(), ";", 2)[0]
}

func (e *entry) dataURI() string {
	return "data:" + e.mimeType() + ";base64," + base64.StdEncoding.EncodeToString(e.raw)
}

func (e *entry) file() types.AppFile {
	f := types.AppFile{
		Filename: e.name,
		Size:     int64(len(e.raw)),
		MimeType: e.mimeType(),
	}
	if e.text() {
		f.Content = metadata.DecodeText(e.raw)
		f.Encoding = types.EncodingText
	} else {
		f.Content = base64.StdEncoding.EncodeToString(e.raw)
		f.Encoding = types.EncodingBase64
	}
	return f
}

func isHTML(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	return ext == ".html" || ext == ".htm"
}

func baseName(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (p *Pipeline) checkSize(n int) error {
	if int64(n) > p.cfg.MaxArchiveBytes {
		return types.NewValidationError("size", fmt.Sprintf("must not exceed %d bytes", p.cfg.MaxArchiveBytes))
	}
	return nil
}

// ImportFile dispatches on the file extension
func (p *Pipeline) ImportFile(ctx context.Context, filename string, data []byte) (*types.Draft, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".zip":
		return p.ImportArchive(ctx, filename, data)
	case ".html", ".htm":
		return p.ImportHTML(ctx, filename, data)
	default:
		return nil, types.NewValidationError("file", "must be an .html, .htm or .zip file")
	}
}

// ImportHTML builds an html draft from a single document
func (p *Pipeline) ImportHTML(ctx context.Context, filename string, data []byte) (*types.Draft, error) {
	if err := p.checkSize(len(data)); err != nil {
		return nil, err
	}
	content := metadata.DecodeText(data)
	md := metadata.Extract(content)

	app := fromDocument(md, filename)
	app.Type = types.AppTypeHTML
	app.Content = &content
	app.Metadata = types.Bag{
		types.MetaSource: "file",
		"filename":       filepath.Base(filename),
	}
	return &types.Draft{App: app, Source: types.AppTypeHTML}, nil
}

func fromDocument(md metadata.Metadata, filename string) types.App {
	name := heuristic(md.Title, utils.MaxNameLength)
	if name == "" {
		name = heuristic(baseName(filename), utils.MaxNameLength)
	}
	return types.App{
		Name:        name,
		Description: heuristic(md.Description, utils.MaxDescriptionLength),
		Author:      strings.TrimSpace(md.Author),
		Category:    heuristic(md.Genre, utils.MaxCategoryLength),
		Favicon:     md.Favicon,
		Tags:        []string{},
	}
}

// ImportArchive expands a zip archive into a zip draft. The archive must
// hold at least one HTML document; index.html is preferred as the main
// document. A sakai.json manifest, when present and parseable, overrides
// the values found in the document.
func (p *Pipeline) ImportArchive(ctx context.Context, filename string, data []byte) (*types.Draft, error) {
	if err := p.checkSize(len(data)); err != nil {
		return nil, err
	}
	if !strings.EqualFold(filepath.Ext(filename), ".zip") {
		return nil, types.NewValidationError("file", "must be a .zip archive")
	}

	entries, err := p.readArchive(ctx, data)
	if err != nil {
		return nil, err
	}

	doc := primaryDocument(entries)
	if doc == nil {
		return nil, fmt.Errorf("%w: %s", types.ErrNoHTMLInArchive, filepath.Base(filename))
	}

	content := metadata.DecodeText(doc.raw)
	app := fromDocument(metadata.Extract(content), filename)
	app.Type = types.AppTypeZip
	app.Content = &content
	app.Metadata = types.Bag{
		types.MetaSource: "archive",
		"archive":        filepath.Base(filename),
		"entry":          doc.name,
	}

	if m := p.manifest(entries); m != nil {
		applyManifest(&app, m, entries)
	}
	if app.Icon == "" {
		if icon := findIcon(entries); icon != nil {
			app.Icon = icon.dataURI()
		}
	}

	files := make([]types.AppFile, 0, len(entries))
	for _, e := range entries {
		files = append(files, e.file())
	}

	p.logger.Info("Archive expanded",
		zap.String("archive", filepath.Base(filename)),
		zap.String("entry", doc.name),
		zap.Int("files", len(files)),
	)
	return &types.Draft{App: app, Files: files, Source: types.AppTypeZip}, nil
}

func (p *Pipeline) readArchive(ctx context.Context, data []byte) ([]*entry, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, types.NewValidationError("file", "is not a readable zip archive")
	}

	budget := p.cfg.MaxArchiveBytes * expansionFactor
	entries := make([]*entry, 0, len(zr.File))
	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := path.Clean(strings.ReplaceAll(f.Name, "\\", "/"))
		if f.FileInfo().IsDir() || strings.HasPrefix(name, "__MACOSX/") || strings.HasPrefix(name, "../") || path.IsAbs(name) {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			p.logger.Warn("Skipping unreadable archive entry", zap.String("entry", f.Name), zap.Error(err))
			continue
		}
		raw, err := io.ReadAll(io.LimitReader(rc, budget+1))
		rc.Close()
		if err != nil {
			p.logger.Warn("Skipping unreadable archive entry", zap.String("entry", f.Name), zap.Error(err))
			continue
		}
		budget -= int64(len(raw))
		if budget < 0 {
			return nil, types.NewValidationError("size", "expanded archive is too large")
		}

		entries = append(entries, &entry{name: name, raw: raw, mime: mimetype.Detect(raw)})
	}
	return entries, nil
}

func primaryDocument(entries []*entry) *entry {
	var first *entry
	for _, e := range entries {
		if !isHTML(e.name) {
			continue
		}
		if strings.EqualFold(path.Base(e.name), "index.html") {
			return e
		}
		if first == nil {
			first = e
		}
	}
	return first
}

func (p *Pipeline) manifest(entries []*entry) *Manifest {
	var found *entry
	for _, e := range entries {
		if strings.EqualFold(path.Base(e.name), manifestName) {
			if found == nil || strings.Count(e.name, "/") < strings.Count(found.name, "/") {
				found = e
			}
		}
	}
	if found == nil {
		return nil
	}

	var m Manifest
	if err := sonic.Unmarshal(bytes.TrimPrefix(found.raw, []byte{0xEF, 0xBB, 0xBF}), &m); err != nil {
		p.logger.Warn("Ignoring unparseable manifest", zap.String("entry", found.name), zap.Error(err))
		return nil
	}
	return &m
}

func applyManifest(app *types.App, m *Manifest, entries []*entry) {
	if v := strings.TrimSpace(m.Name); v != "" {
		app.Name = v
	}
	if v := strings.TrimSpace(m.Description); v != "" {
		app.Description = v
	}
	if v := strings.TrimSpace(m.Version); v != "" {
		app.Version = v
	}
	if v := strings.TrimSpace(m.Category); v != "" {
		app.Category = v
	}
	if v := strings.TrimSpace(m.Author); v != "" {
		app.Author = v
	}
	if tags := m.TagList(); tags != nil {
		app.Tags = tags
	}
	if len(m.Permissions) > 0 {
		app.Permissions = m.Permissions
	}
	if icon := strings.TrimSpace(m.Icon); icon != "" {
		app.Icon = icon
		// a relative icon naming an archive entry is inlined
		for _, e := range entries {
			if e.name == path.Clean(strings.TrimPrefix(icon, "./")) {
				app.Icon = e.dataURI()
				break
			}
		}
	}

	raw := types.Bag{}
	if data, err := sonic.Marshal(m); err == nil {
		_ = sonic.Unmarshal(data, &raw)
	}
	app.Manifest = raw
}

func findIcon(entries []*entry) *entry {
	for _, e := range entries {
		if ok, _ := doublestar.Match(iconPattern, strings.ToLower(path.Base(e.name))); ok {
			return e
		}
	}
	return nil
}
