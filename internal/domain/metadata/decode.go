package metadata

import (
	"bytes"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

var (
	utf8BOM = []byte{0xEF, 0xBB, 0xBF}
	strict  = bluemonday.StrictPolicy()
)

// DecodeText returns data as UTF-8 text. Valid UTF-8 passes through;
// otherwise a charset declared in the document wins over detection.
func DecodeText(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data)
	}

	// windows-1252 is also DetermineEncoding's blind guess, so defer to detection for it
	if enc, name, certain := charset.DetermineEncoding(data, "text/html"); certain || name != "windows-1252" {
		if out, err := enc.NewDecoder().Bytes(data); err == nil {
			return string(out)
		}
	}

	if enc, _ := charset.Lookup(DetectCharset(data)); enc != nil {
		if out, err := enc.NewDecoder().Bytes(data); err == nil {
			return string(out)
		}
	}
	return strings.ToValidUTF8(string(data), "�")
}

// DetectCharset guesses the charset of data, defaulting to utf-8
func DetectCharset(data []byte) string {
	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || result == nil {
		return "utf-8"
	}
	return strings.ToLower(result.Charset)
}

// StripMarkup reduces remote text to plain text: tags are removed,
// entities decoded and whitespace collapsed
func StripMarkup(s string) string {
	clean := html.UnescapeString(strict.Sanitize(s))
	return strings.Join(strings.Fields(clean), " ")
}
