package report

import (
	"io"

	json "github.com/goccy/go-json"

	"github.com/redactable/redactable/internal/types"
)

type jsonItem struct {
	Source string `json:"source"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	types.Finding
}

// WriteJSON writes items as an indented JSON array of findings in export
// shape plus their location. Values are masked unless showValues is set.
func WriteJSON(w io.Writer, items []Item, showValues bool) error {
	sortItems(items)
	out := make([]jsonItem, 0, len(items))
	for _, it := range items {
		f := it.Finding
		if !showValues {
			f.Value = maskValue(f.Value)
			if f.Normalized != "" {
				f.Normalized = maskValue(f.Normalized)
			}
		}
		out = append(out, jsonItem{Source: it.Source, Line: it.Line, Column: it.Column, Finding: f})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
