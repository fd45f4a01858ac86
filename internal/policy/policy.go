package policy

import (
	"strings"
)

// Policy is a named, versioned, ordered list of rules. Rule order is
// application order.
type Policy struct {
	Version     int    `json:"version" yaml:"version"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Rules       []Rule `json:"rules" yaml:"rules"`

	validated bool
}

// New validates the policy and compiles every predicate. Rule fields are
// lower-cased, actions resolved from aliases and defaults filled in. The
// rules slice is copied.
func New(version int, name, description string, rules ...Rule) (*Policy, error) {
	if version < 1 {
		return nil, invalid("version must be >= 1, got %d", version)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name must not be empty")
	}
	p := &Policy{
		Version:     version,
		Name:        name,
		Description: strings.TrimSpace(description),
		Rules:       make([]Rule, 0, len(rules)),
	}
	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		nr, err := r.normalized()
		if err != nil {
			return nil, err
		}
		if seen[nr.ID] {
			return nil, invalid("duplicate rule id %q", nr.ID)
		}
		seen[nr.ID] = true
		p.Rules = append(p.Rules, nr)
	}
	p.validated = true
	return p, nil
}

// Validated reports whether p came out of New.
func (p *Policy) Validated() bool { return p != nil && p.validated }

// Fields lists the distinct detector kinds the policy targets, in rule order.
func (p *Policy) Fields() []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range p.Rules {
		if !seen[r.Field] {
			seen[r.Field] = true
			out = append(out, r.Field)
		}
	}
	return out
}

// Rule returns the rule with the given id.
func (p *Policy) Rule(id string) (Rule, bool) {
	for _, r := range p.Rules {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}
