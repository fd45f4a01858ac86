package policy

import (
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/redactable/redactable/internal/types"
)

// MatchTimeout bounds a single predicate regex evaluation. A match that
// times out admits nothing.
const MatchTimeout = 250 * time.Millisecond

// MetadataPredicate constrains one extras entry of a finding. A nil Equals
// means no equality constraint.
type MetadataPredicate struct {
	Equals  any    `json:"equals,omitempty" yaml:"equals,omitempty"`
	Matches string `json:"matches,omitempty" yaml:"matches,omitempty"`

	re *regexp2.Regexp
}

// Where is a conjunction of constraints over a finding. Unset constraints
// never exclude anything; at least one must be set.
type Where struct {
	MinConfidence     *float64                     `json:"min_confidence,omitempty" yaml:"min_confidence,omitempty"`
	MaxConfidence     *float64                     `json:"max_confidence,omitempty" yaml:"max_confidence,omitempty"`
	ValueMatches      string                       `json:"value_matches,omitempty" yaml:"value_matches,omitempty"`
	NormalizedMatches string                       `json:"normalized_matches,omitempty" yaml:"normalized_matches,omitempty"`
	Metadata          map[string]MetadataPredicate `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	valueRe      *regexp2.Regexp
	normalizedRe *regexp2.Regexp
}

// Float returns a pointer to v, for the confidence bounds.
func Float(v float64) *float64 { return &v }

// compiled returns a validated deep copy of w with its regexes compiled.
func (w Where) compiled() (*Where, error) {
	if w.MinConfidence == nil && w.MaxConfidence == nil && w.ValueMatches == "" &&
		w.NormalizedMatches == "" && len(w.Metadata) == 0 {
		return nil, fmt.Errorf("%w: at least one constraint is required", ErrInvalidPredicate)
	}
	for name, b := range map[string]*float64{"min_confidence": w.MinConfidence, "max_confidence": w.MaxConfidence} {
		if b != nil && (*b < 0 || *b > 1) {
			return nil, fmt.Errorf("%w: %s %v outside [0,1]", ErrInvalidPredicate, name, *b)
		}
	}
	if w.MinConfidence != nil && w.MaxConfidence != nil && *w.MinConfidence > *w.MaxConfidence {
		return nil, fmt.Errorf("%w: min_confidence %v exceeds max_confidence %v", ErrInvalidPredicate, *w.MinConfidence, *w.MaxConfidence)
	}
	var err error
	if w.valueRe, err = compileOptional("value_matches", w.ValueMatches); err != nil {
		return nil, err
	}
	if w.normalizedRe, err = compileOptional("normalized_matches", w.NormalizedMatches); err != nil {
		return nil, err
	}
	if len(w.Metadata) > 0 {
		md := make(map[string]MetadataPredicate, len(w.Metadata))
		for _, key := range sortedKeys(w.Metadata) {
			p := w.Metadata[key]
			if p.Equals == nil && p.Matches == "" {
				return nil, fmt.Errorf("%w: metadata.%s needs equals or matches", ErrInvalidPredicate, key)
			}
			if p.re, err = compileOptional("metadata."+key+".matches", p.Matches); err != nil {
				return nil, err
			}
			md[key] = p
		}
		w.Metadata = md
	}
	return &w, nil
}

func compileOptional(field, expr string) (*regexp2.Regexp, error) {
	if expr == "" {
		return nil, nil
	}
	re, err := regexp2.Compile(expr, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPredicate, field, err)
	}
	re.MatchTimeout = MatchTimeout
	return re, nil
}

// Admits reports whether f satisfies every constraint present in w.
// Predicates look only at the finding, never at the text being rewritten.
func (w *Where) Admits(f types.Finding) bool {
	if w == nil {
		return true
	}
	if w.MinConfidence != nil && f.Confidence < *w.MinConfidence {
		return false
	}
	if w.MaxConfidence != nil && f.Confidence > *w.MaxConfidence {
		return false
	}
	if w.ValueMatches != "" && !search(w.valueRe, w.ValueMatches, f.Value) {
		return false
	}
	if w.NormalizedMatches != "" && (f.Normalized == "" || !search(w.normalizedRe, w.NormalizedMatches, f.Normalized)) {
		return false
	}
	for key, p := range w.Metadata {
		v, ok := f.Extras[key]
		if !ok {
			return false
		}
		if p.Equals != nil && !looseEqual(v, p.Equals) {
			return false
		}
		if p.Matches != "" {
			str, isString := v.(string)
			if !isString || !search(p.re, p.Matches, str) {
				return false
			}
		}
	}
	return true
}

// search is an unanchored match. An uncompiled pattern (a Where that never
// went through policy.New) is compiled on the spot.
func search(re *regexp2.Regexp, expr, s string) bool {
	if re == nil {
		var err error
		if re, err = compileOptional("", expr); err != nil {
			return false
		}
	}
	ok, err := re.MatchString(s)
	return err == nil && ok
}

// looseEqual compares metadata values decoded from different formats:
// numbers compare by value regardless of their Go type.
func looseEqual(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
