// Package metadata scrapes descriptive fields out of HTML documents.
//
// Every extractor is pure and total: malformed markup never produces an
// error, a missing field is reported as "". Tag, attribute and meta-name
// matching is case-insensitive and values are trimmed.
//
//	md := metadata.Extract(doc)
//	name := md.Title
//	if name == "" {
//	    name = strings.TrimSuffix(filename, filepath.Ext(filename))
//	}
//
// DecodeText converts imported bytes to UTF-8 using the document's
// declared charset or, failing that, statistical detection.
package metadata
