// Package redact holds the text transforms a policy rule can apply to a
// matched span: a fixed placeholder, a partial mask and a salted token.
package redact

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode/utf8"
)

var kindPlaceholders = []string{"{KIND}", "{kind}"}

// Placeholder fills every {KIND} or {kind} in template with the upper-cased
// kind. Other text is copied unchanged.
func Placeholder(template, kind string) string {
	upper := strings.ToUpper(kind)
	out := template
	for _, ph := range kindPlaceholders {
		out = strings.ReplaceAll(out, ph, upper)
	}
	return out
}

// Mask keeps head runes at the start and tail runes at the end of s and
// replaces every rune between them with glyph. When s has no more than
// head+tail runes the whole value is masked.
func Mask(s string, head, tail int, glyph string) string {
	head, tail = max(head, 0), max(tail, 0)
	n := utf8.RuneCountInString(s)
	if n <= head+tail {
		return strings.Repeat(glyph, n)
	}
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + (n-head-tail)*len(glyph))
	b.WriteString(string(runes[:head]))
	b.WriteString(strings.Repeat(glyph, n-head-tail))
	b.WriteString(string(runes[n-tail:]))
	return b.String()
}

// Token returns the lowercase hex SHA-256 of salt followed by value. Equal
// inputs under the same salt always yield the same token.
func Token(value, salt string) string {
	sum := sha256.Sum256([]byte(salt + value))
	return hex.EncodeToString(sum[:])
}
