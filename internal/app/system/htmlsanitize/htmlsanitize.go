// Package htmlsanitize cleans free-text fields before they are stored.
//
// Every title, name, description, and note goes through Text, which strips
// all markup and returns plain text. Clients render stored text as text.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// maxPasses bounds how many layers of entity escaping Text unwraps.
const maxPasses = 8

var strict = bluemonday.StrictPolicy()

// Text returns s with all markup removed and surrounding space trimmed.
// Entities are decoded so "A & B" survives unchanged, and the result is
// sanitized again until it stops changing, so escaped markup such as
// "&lt;script&gt;" cannot come back out as a tag. Input still changing
// after maxPasses is returned in its escaped form.
func Text(s string) string {
	if s == "" {
		return ""
	}
	cur := s
	for i := 0; i < maxPasses; i++ {
		next := html.UnescapeString(strict.Sanitize(cur))
		if next == cur {
			return strings.TrimSpace(cur)
		}
		cur = next
	}
	return strings.TrimSpace(strict.Sanitize(cur))
}
