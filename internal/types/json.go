package types

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// MarshalJSON encodes a span as a two element [start, end] array.
func (s Span) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{s.Start, s.End})
}

// UnmarshalJSON decodes the [start, end] array form.
func (s *Span) UnmarshalJSON(b []byte) error {
	var pair []int
	if err := json.Unmarshal(b, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("span: want [start,end], got %d elements", len(pair))
	}
	s.Start, s.End = pair[0], pair[1]
	return nil
}

// findingJSON is the export shape. Every key is always present; a finding
// without a canonical form carries "normalized": null.
type findingJSON struct {
	Kind       string         `json:"kind"`
	Value      string         `json:"value"`
	Span       Span           `json:"span"`
	Confidence float64        `json:"confidence"`
	Normalized *string        `json:"normalized"`
	Extras     map[string]any `json:"extras"`
}

func (f Finding) MarshalJSON() ([]byte, error) {
	out := findingJSON{
		Kind:       f.Kind,
		Value:      f.Value,
		Span:       f.Span,
		Confidence: f.Confidence,
		Extras:     f.Extras,
	}
	if f.Normalized != "" {
		out.Normalized = &f.Normalized
	}
	if out.Extras == nil {
		out.Extras = map[string]any{}
	}
	return json.Marshal(out)
}

func (f *Finding) UnmarshalJSON(b []byte) error {
	var in findingJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*f = Finding{
		Kind:       in.Kind,
		Value:      in.Value,
		Span:       in.Span,
		Confidence: in.Confidence,
		Extras:     in.Extras,
	}
	if in.Normalized != nil {
		f.Normalized = *in.Normalized
	}
	return nil
}
