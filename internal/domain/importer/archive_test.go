package importer

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/types"
)

func TestImportArchivePrefersIndex(t *testing.T) {
	p := testPipeline(t, "")
	data := buildZip(t, map[string]string{
		"about.html":     "<title>About</title>",
		"app/index.html": "<title>Main</title><meta name=\"description\" content=\"The app\">",
		"app/style.css":  "body { color: red }",
	}, "about.html", "app/index.html", "app/style.css")

	draft, err := p.ImportArchive(context.Background(), "bundle.zip", data)
	require.NoError(t, err)
	assert.Equal(t, types.AppTypeZip, draft.App.Type)
	assert.Equal(t, "Main", draft.App.Name)
	assert.Equal(t, "The app", draft.App.Description)
	assert.Equal(t, "app/index.html", draft.App.Metadata.String("entry"))
	require.Len(t, draft.Files, 3)

	css := draft.Files[2]
	assert.Equal(t, "app/style.css", css.Filename)
	assert.Equal(t, types.EncodingText, css.Encoding)
	assert.Equal(t, "text/css", css.MimeType)
	assert.Equal(t, "body { color: red }", css.Content)
}

func TestImportArchiveFallsBackToFirstHTML(t *testing.T) {
	p := testPipeline(t, "")
	data := buildZip(t, map[string]string{
		"readme.txt": "hello",
		"game.htm":   "<title>Game</title>",
		"other.html": "<title>Other</title>",
	}, "readme.txt", "game.htm", "other.html")

	draft, err := p.ImportArchive(context.Background(), "bundle.zip", data)
	require.NoError(t, err)
	assert.Equal(t, "Game", draft.App.Name)
}

func TestImportArchiveManifestWins(t *testing.T) {
	p := testPipeline(t, "")
	data := buildZip(t, map[string]string{
		"index.html": "<title>Heuristic</title>",
		"sakai.json": `{"name":"From Manifest","description":"Manifest desc","version":"2.1.0",
			"category":"tools","tags":["a","b"],"icon":"assets/app.png","permissions":["camera"]}`,
		"assets/app.png": "\x89PNG\r\n\x1a\nfake",
		"logo.png":       "\x89PNG\r\n\x1a\nother",
	}, "index.html", "sakai.json", "assets/app.png", "logo.png")

	draft, err := p.ImportArchive(context.Background(), "bundle.zip", data)
	require.NoError(t, err)
	app := draft.App
	assert.Equal(t, "From Manifest", app.Name)
	assert.Equal(t, "Manifest desc", app.Description)
	assert.Equal(t, "2.1.0", app.Version)
	assert.Equal(t, "tools", app.Category)
	assert.Equal(t, []string{"a", "b"}, app.Tags)
	assert.Equal(t, []string{"camera"}, app.Permissions)
	assert.Equal(t, "data:image/png;base64,"+base64.StdEncoding.EncodeToString([]byte("\x89PNG\r\n\x1a\nfake")), app.Icon)
	assert.Equal(t, "From Manifest", app.Manifest.String("name"))
}

func TestImportArchiveToleratesBrokenManifest(t *testing.T) {
	p := testPipeline(t, "")
	data := buildZip(t, map[string]string{
		"index.html": "<title>Still Works</title>",
		"sakai.json": `{"name": `,
	}, "index.html", "sakai.json")

	draft, err := p.ImportArchive(context.Background(), "bundle.zip", data)
	require.NoError(t, err)
	assert.Equal(t, "Still Works", draft.App.Name)
	assert.Nil(t, draft.App.Manifest)
}

func TestImportArchiveIconFallback(t *testing.T) {
	p := testPipeline(t, "")
	png := "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"
	data := buildZip(t, map[string]string{
		"index.html":      "<title>Icons</title>",
		"images/Logo.PNG": png,
	}, "index.html", "images/Logo.PNG")

	draft, err := p.ImportArchive(context.Background(), "bundle.zip", data)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(draft.App.Icon, "data:image/png;base64,"))

	var logo types.AppFile
	for _, f := range draft.Files {
		if f.Filename == "images/Logo.PNG" {
			logo = f
		}
	}
	assert.Equal(t, types.EncodingBase64, logo.Encoding)
	decoded, err := base64.StdEncoding.DecodeString(logo.Content)
	require.NoError(t, err)
	assert.Equal(t, png, string(decoded))
}

func TestImportArchiveWithoutHTML(t *testing.T) {
	p := testPipeline(t, "")
	data := buildZip(t, map[string]string{"readme.md": "# nothing"})

	draft, err := p.ImportArchive(context.Background(), "bundle.zip", data)
	assert.Nil(t, draft)
	assert.ErrorIs(t, err, types.ErrNoHTMLInArchive)
}

func TestImportArchiveRejectsBadInput(t *testing.T) {
	p := testPipeline(t, "")
	p.cfg.MaxArchiveBytes = 64
	ctx := context.Background()

	_, err := p.ImportArchive(ctx, "big.zip", make([]byte, 65))
	var verr *types.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "size", verr.Field)

	_, err = p.ImportArchive(ctx, "bundle.rar", []byte("x"))
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "file", verr.Field)

	_, err = p.ImportArchive(ctx, "bundle.zip", []byte("not a zip"))
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestManifestTagList(t *testing.T) {
	m := Manifest{Tags: "x, y ,"}
	assert.Equal(t, []string{"x", "y"}, m.TagList())

	m = Manifest{Tags: []interface{}{"a", 3, "b"}}
	assert.Equal(t, []string{"a", "b"}, m.TagList())

	m = Manifest{}
	assert.Nil(t, m.TagList())
}
