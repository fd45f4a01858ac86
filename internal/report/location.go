package report

import (
	"strings"
	"unicode/utf8"

	"github.com/redactable/redactable/internal/types"
)

// Item is a finding placed in its input, with a 1-based line and column
// (in runes) computed from the byte span.
type Item struct {
	Source  string
	Line    int
	Column  int
	Finding types.Finding
}

// Locate builds report items for findings detected in text.
func Locate(source, text string, findings []types.Finding) []Item {
	items := make([]Item, 0, len(findings))
	for _, f := range findings {
		line, col := position(text, f.Span.Start)
		items = append(items, Item{Source: source, Line: line, Column: col, Finding: f})
	}
	return items
}

func position(text string, offset int) (line, col int) {
	offset = min(max(offset, 0), len(text))
	before := text[:offset]
	line = strings.Count(before, "\n") + 1
	if i := strings.LastIndexByte(before, '\n'); i >= 0 {
		before = before[i+1:]
	}
	return line, utf8.RuneCountInString(before) + 1
}

// maskValue hides all but the edges of a matched value.
func maskValue(s string) string {
	r := []rune(s)
	if len(r) <= 8 {
		return "********"
	}
	return string(r[:2]) + "…" + string(r[len(r)-2:])
}

func displayValue(f types.Finding, show bool) string {
	if show {
		return f.Value
	}
	return maskValue(f.Value)
}
