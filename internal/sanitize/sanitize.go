// Package sanitize cleans user-authored text before it is stored or used
// to key a lookup. Every free-text field (titles, excerpts, comments, tag
// tokens, profile fields) must pass through Text; search input must pass
// through Query.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Text strips all markup from raw and trims surrounding whitespace,
// returning a plain display string.
func Text(raw string) string {
	// StrictPolicy entity-encodes the survivors; decode so the stored
	// value is the literal text, not HTML.
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(raw)))
}

// Query strips characters that could be misinterpreted as structural
// query operators.
func Query(raw string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '{', '}', '$':
			return -1
		}
		return r
	}, raw)
}
