package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/encoding/charmap"
)

const fullDoc = `<!DOCTYPE html>
<html>
<head>
  <TITLE>  Space Invaders  </TITLE>
  <link rel="stylesheet" href="style.css">
  <LINK REL="Shortcut Icon" HREF="https://cdn.example.com/icon.png">
  <meta name="Author" content=" Ada ">
  <meta property="og:description" content="fallback description">
  <meta name="description" content="Shoot the aliens">
  <meta name="category" content="games">
</head>
<body><h1>Play</h1></body>
</html>`

func TestExtract(t *testing.T) {
	md := Extract(fullDoc)

	assert.Equal(t, "Space Invaders", md.Title)
	assert.Equal(t, "https://cdn.example.com/icon.png", md.Favicon)
	assert.Equal(t, "Ada", md.Author)
	assert.Equal(t, "Shoot the aliens", md.Description)
	assert.Equal(t, "games", md.Genre)
}

func TestExtractFallbacks(t *testing.T) {
	doc := `<html><head>
		<meta name="creator" content="Grace">
		<meta property="og:description" content="From open graph">
		<meta name="genre" content="puzzle">
		<meta name="category" content="ignored">
	</head></html>`

	assert.Equal(t, "Grace", ExtractAuthor(doc))
	assert.Equal(t, "From open graph", ExtractDescription(doc))
	assert.Equal(t, "puzzle", ExtractGenre(doc))
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"present", "<title>Calc</title>", "Calc"},
		{"first wins", "<title>One</title><title>Two</title>", "One"},
		{"empty element", "<title>   </title>", ""},
		{"missing", "<html><body>no title</body></html>", ""},
		{"empty input", "", ""},
		{"malformed", "<title>Broken<<div", "Broken<<div"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTitle(tt.html))
		})
	}
}

func TestExtractFavicon(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"absolute https", `<link rel="icon" href="https://x.io/f.ico">`, "https://x.io/f.ico"},
		{"data uri", `<link rel="icon" href="data:image/png;base64,AAAA">`, "data:image/png;base64,AAAA"},
		{"relative dropped", `<link rel="icon" href="favicon.ico">`, ""},
		{"root relative dropped", `<link rel="icon" href="/favicon.ico">`, ""},
		{"apple touch ignored", `<link rel="apple-touch-icon" href="https://x.io/a.png">`, ""},
		{"none", `<p>hi</p>`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractFavicon(tt.html))
		})
	}
}

func TestExtractNeverPanics(t *testing.T) {
	inputs := []string{"", "<", "<<<>>>", "<meta name=", "<html><head><title>", "\x00\x01"}
	for _, in := range inputs {
		assert.NotPanics(t, func() { _ = Extract(in) })
		assert.NotPanics(t, func() { _ = ExtractIframeSource(in) })
	}
}

func TestExtractIframeSource(t *testing.T) {
	wrapper := `<!DOCTYPE html><html><body style="margin:0">
		<iframe src=" https://example.com/app " style="width:100%;height:100vh;border:none"></iframe>
	</body></html>`

	assert.Equal(t, "https://example.com/app", ExtractIframeSource(wrapper))
	assert.Equal(t, "", ExtractIframeSource("<iframe></iframe>"))
	assert.Equal(t, "", ExtractIframeSource("<p>no frames</p>"))
}

func TestDecodeText(t *testing.T) {
	assert.Equal(t, "héllo", DecodeText([]byte("héllo")))
	assert.Equal(t, "bom", DecodeText([]byte("\xEF\xBB\xBFbom")))

	latin1, err := charmap.ISO8859_1.NewEncoder().String(`<meta charset="iso-8859-1"><title>Café</title>`)
	assert.NoError(t, err)
	assert.Equal(t, "Café", ExtractTitle(DecodeText([]byte(latin1))))
}

func TestStripMarkup(t *testing.T) {
	assert.Equal(t, "A fast & tiny app", StripMarkup(`<b>A fast</b> &amp; <script>x()</script>tiny   app`))
	assert.Equal(t, "", StripMarkup(""))
}
