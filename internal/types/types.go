package types

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidConfidence is returned by NewFinding for confidence outside [0,1].
	ErrInvalidConfidence = errors.New("confidence must be within [0,1]")
	// ErrInvalidSpan is returned by NewFinding for negative or inverted spans.
	ErrInvalidSpan = errors.New("span must satisfy 0 <= start <= end")
)

// Span is a half-open [Start, End) byte range into the original input.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// Finding describes one detected entity: the detector kind, the exact matched
// value, where it sits in the original text, and how sure the detector is.
// Findings are produced once per detection pass and treated as read-only.
type Finding struct {
	Kind       string
	Value      string
	Span       Span
	Confidence float64
	Normalized string // canonical form, empty when the detector has none
	Extras     map[string]any
}

// NewFinding validates and builds a Finding.
func NewFinding(kind, value string, span Span, confidence float64, normalized string, extras map[string]any) (Finding, error) {
	if math.IsNaN(confidence) || confidence < 0 || confidence > 1 {
		return Finding{}, fmt.Errorf("%s finding: %w (got %v)", kind, ErrInvalidConfidence, confidence)
	}
	if span.Start < 0 || span.End < span.Start {
		return Finding{}, fmt.Errorf("%s finding: %w (got [%d,%d))", kind, ErrInvalidSpan, span.Start, span.End)
	}
	if extras == nil {
		extras = map[string]any{}
	}
	return Finding{
		Kind:       kind,
		Value:      value,
		Span:       span,
		Confidence: confidence,
		Normalized: normalized,
		Extras:     extras,
	}, nil
}

// Matches reports whether the finding's span still addresses its value in text.
func (f Finding) Matches(text string) bool {
	if f.Span.Start < 0 || f.Span.End > len(text) || f.Span.Start > f.Span.End {
		return false
	}
	return text[f.Span.Start:f.Span.End] == f.Value
}

// Extra returns the extras value for key, if any.
func (f Finding) Extra(key string) (any, bool) {
	v, ok := f.Extras[key]
	return v, ok
}
