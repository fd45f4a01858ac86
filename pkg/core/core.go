package core

import (
	"github.com/redactable/redactable/internal/detectors"
	"github.com/redactable/redactable/internal/engine"
	"github.com/redactable/redactable/internal/policy"
	"github.com/redactable/redactable/internal/types"
)

// Re-export selected internal types as a stable public API surface.
// These are type aliases so external consumers can depend on a stable path.
type Finding = types.Finding
type Span = types.Span
type Policy = policy.Policy

// Scan runs the default detector set for region ("" means GB) over text and
// returns the merged findings ordered by span start.
func Scan(text, region string) []Finding {
	return detectors.Default(region).Scan(text)
}

// Apply rewrites text according to p.
func Apply(p *Policy, findings []Finding, text string) (string, error) {
	return engine.Apply(p, findings, text)
}

// Redact resolves a policy by built-in name or file path, scans text and
// applies the policy in one call.
func Redact(text, policyRef, region string) (string, error) {
	p, err := LoadPolicy(policyRef)
	if err != nil {
		return "", err
	}
	return Apply(p, Scan(text, region), text)
}

// LoadPolicy resolves a policy file path or built-in template name.
func LoadPolicy(ref string) (*Policy, error) { return policy.Resolve(ref) }

// DetectorNames returns the built-in detector names in registration order.
func DetectorNames() []string { return detectors.IDs() }

// PolicyNames returns the built-in policy template names.
func PolicyNames() []string { return policy.BuiltinNames() }
