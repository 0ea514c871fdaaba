package metadata

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
)

// Metadata is everything the importer reads from a document
type Metadata struct {
	Title       string `json:"title"`
	Favicon     string `json:"favicon"`
	Author      string `json:"author"`
	Description string `json:"description"`
	Genre       string `json:"genre"`
}

// Extract parses html once and reads every field
func Extract(html string) Metadata {
	doc := load(html)
	if doc == nil {
		return Metadata{}
	}
	return Metadata{
		Title:       title(doc),
		Favicon:     favicon(doc),
		Author:      metaContent(doc, "name", "author", "creator"),
		Description: firstNonEmpty(metaContent(doc, "name", "description"), metaContent(doc, "property", "og:description")),
		Genre:       metaContent(doc, "name", "genre", "category"),
	}
}

// ExtractTitle returns the trimmed text of the first <title>
func ExtractTitle(html string) string {
	return Extract(html).Title
}

// ExtractFavicon returns the first icon link when it is absolute
// (http, https or data:); relative references are dropped
func ExtractFavicon(html string) string {
	return Extract(html).Favicon
}

// ExtractAuthor reads meta author, then meta creator
func ExtractAuthor(html string) string {
	return Extract(html).Author
}

// ExtractDescription reads meta description, then og:description
func ExtractDescription(html string) string {
	return Extract(html).Description
}

// ExtractGenre reads meta genre, then meta category
func ExtractGenre(html string) string {
	return Extract(html).Genre
}

// ExtractIframeSource returns the src of the first iframe, or ""
func ExtractIframeSource(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	root, err := htmlquery.Parse(strings.NewReader(html))
	if err != nil {
		return ""
	}
	node := htmlquery.FindOne(root, "//iframe[@src]")
	if node == nil {
		return ""
	}
	return strings.TrimSpace(htmlquery.SelectAttr(node, "src"))
}

func load(html string) *goquery.Document {
	if strings.TrimSpace(html) == "" {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	return doc
}

func title(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func favicon(doc *goquery.Document) string {
	var href string
	doc.Find("link[rel][href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		rel, _ := s.Attr("rel")
		if !isIconRel(rel) {
			return true
		}
		href, _ = s.Attr("href")
		href = strings.TrimSpace(href)
		return false
	})
	if isAbsoluteIcon(href) {
		return href
	}
	return ""
}

func isIconRel(rel string) bool {
	rel = strings.ToLower(strings.Join(strings.Fields(rel), " "))
	return rel == "icon" || rel == "shortcut icon"
}

func isAbsoluteIcon(href string) bool {
	lower := strings.ToLower(href)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "data:")
}

// metaContent returns the content of the first <meta attr=name> for the
// first name, in order, that has a non-empty value
func metaContent(doc *goquery.Document, attr string, names ...string) string {
	metas := doc.Find("meta[" + attr + "]")
	for _, name := range names {
		var value string
		metas.EachWithBreak(func(_ int, s *goquery.Selection) bool {
			key, _ := s.Attr(attr)
			if !strings.EqualFold(strings.TrimSpace(key), name) {
				return true
			}
			value, _ = s.Attr("content")
			value = strings.TrimSpace(value)
			return false
		})
		if value != "" {
			return value
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
