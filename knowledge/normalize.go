package knowledge

import (
	"strings"
	"unicode"
)

// Normalize lowercases text and collapses every whitespace run to a single
// space. It is idempotent and treats all scripts as opaque code points.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// NormalizeStrict is the FAQ-matching variant of Normalize: punctuation and
// symbols are replaced by spaces before collapsing, so keyword boundaries
// are never corrupted by attached punctuation. Letters and digits of any
// script are kept.
func NormalizeStrict(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
