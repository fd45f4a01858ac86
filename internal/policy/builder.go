package policy

import (
	"errors"
	"fmt"
	"strings"
)

// RuleOption adjusts a rule added through a Builder.
type RuleOption func(*Rule)

func WithID(id string) RuleOption { return func(r *Rule) { r.ID = id } }

func WithReplacement(s string) RuleOption { return func(r *Rule) { r.Replacement = s } }

func WithKeep(head, tail int) RuleOption {
	return func(r *Rule) { r.KeepHead, r.KeepTail = head, tail }
}

func WithGlyph(g string) RuleOption { return func(r *Rule) { r.MaskGlyph = g } }

func WithSalt(s string) RuleOption { return func(r *Rule) { r.Salt = s } }

func WithWhere(w Where) RuleOption { return func(r *Rule) { r.Where = &w } }

// Builder assembles a Policy fluently. Errors are collected and reported by Build.
type Builder struct {
	name        string
	description string
	version     int
	rules       []Rule
	errs        []error
}

func NewBuilder(name string) *Builder {
	return &Builder{name: name, version: 1}
}

func (b *Builder) Describe(d string) *Builder {
	b.description = d
	return b
}

func (b *Builder) Version(v int) *Builder {
	b.version = v
	return b
}

func (b *Builder) Redact(field string, opts ...RuleOption) *Builder {
	return b.add(field, ActionRedact, opts)
}

func (b *Builder) Mask(field string, opts ...RuleOption) *Builder {
	return b.add(field, ActionMask, opts)
}

func (b *Builder) Tokenize(field string, opts ...RuleOption) *Builder {
	return b.add(field, ActionTokenize, opts)
}

// Rule adds a rule whose action is given by name; aliases are accepted.
func (b *Builder) Rule(field, action string, opts ...RuleOption) *Builder {
	a, err := NormalizeAction(action)
	if err != nil {
		b.errs = append(b.errs, fmt.Errorf("rule for %s: %w", field, err))
		return b
	}
	return b.add(field, a, opts)
}

// Extend appends copies of another policy's rules.
func (b *Builder) Extend(p *Policy) *Builder {
	if p != nil {
		b.rules = append(b.rules, p.Rules...)
	}
	return b
}

func (b *Builder) add(field string, action Action, opts []RuleOption) *Builder {
	field = strings.ToLower(strings.TrimSpace(field))
	id := fmt.Sprintf("rule_%s_%s_%02d", field, action, len(b.rules)+1)
	r := NewRule(id, field, action)
	for _, opt := range opts {
		opt(&r)
	}
	b.rules = append(b.rules, r)
	return b
}

// Build validates and returns the policy.
func (b *Builder) Build() (*Policy, error) {
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPolicy, errors.Join(b.errs...))
	}
	return New(b.version, b.name, b.description, b.rules...)
}
