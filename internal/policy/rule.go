package policy

import (
	"fmt"
	"strings"

	"github.com/redactable/redactable/internal/types"
)

// Rule defaults.
const (
	DefaultReplacement = "[REDACTED:{KIND}]"
	DefaultKeepHead    = 0
	DefaultKeepTail    = 4
	DefaultMaskGlyph   = "•"
)

// Rule binds one detector kind to an action. Action parameters that do not
// apply to the rule's action are ignored.
type Rule struct {
	ID     string `json:"id" yaml:"id"`
	Field  string `json:"field" yaml:"field"`
	Action Action `json:"action" yaml:"action"`
	Where  *Where `json:"where,omitempty" yaml:"where,omitempty"`

	// redact
	Replacement string `json:"replacement,omitempty" yaml:"replacement,omitempty"`
	// mask
	KeepHead  int    `json:"keep_head" yaml:"keep_head"`
	KeepTail  int    `json:"keep_tail" yaml:"keep_tail"`
	MaskGlyph string `json:"mask_glyph,omitempty" yaml:"mask_glyph,omitempty"`
	// tokenize
	Salt string `json:"salt,omitempty" yaml:"salt,omitempty"`
}

// NewRule returns a rule with the default action parameters.
func NewRule(id, field string, action Action) Rule {
	return Rule{
		ID:          id,
		Field:       field,
		Action:      action,
		Replacement: DefaultReplacement,
		KeepHead:    DefaultKeepHead,
		KeepTail:    DefaultKeepTail,
		MaskGlyph:   DefaultMaskGlyph,
	}
}

// Admits reports whether the rule's predicate accepts a finding. Rules
// without a where clause admit everything.
func (r Rule) Admits(f types.Finding) bool { return r.Where.Admits(f) }

// normalized validates r and returns the canonical copy stored in a Policy.
func (r Rule) normalized() (Rule, error) {
	r.ID = strings.TrimSpace(r.ID)
	r.Field = strings.ToLower(strings.TrimSpace(r.Field))
	if r.ID == "" {
		return r, invalid("rule id must not be empty")
	}
	if r.Field == "" {
		return r, invalid("rule %s: field must not be empty", r.ID)
	}
	action, err := NormalizeAction(string(r.Action))
	if err != nil {
		return r, invalidRule(r.ID, err)
	}
	r.Action = action
	if r.Replacement == "" {
		r.Replacement = DefaultReplacement
	} else if strings.TrimSpace(r.Replacement) == "" {
		return r, invalid("rule %s: replacement must not be blank", r.ID)
	}
	if r.KeepHead < 0 || r.KeepTail < 0 {
		return r, invalid("rule %s: keep_head and keep_tail must be >= 0", r.ID)
	}
	if r.MaskGlyph == "" {
		r.MaskGlyph = DefaultMaskGlyph
	}
	if r.Where != nil {
		w, err := r.Where.compiled()
		if err != nil {
			return r, invalidRule(r.ID, err)
		}
		r.Where = w
	}
	return r, nil
}

func invalidRule(id string, err error) error {
	return fmt.Errorf("%w: rule %s: %w", ErrInvalidPolicy, id, err)
}
