package policy

import (
	"path/filepath"
	"sort"
	"strings"
)

type template struct {
	description string
	build       func() *Builder
}

var builtins = map[string]template{
	"gdpr": {
		description: "EU GDPR defaults. Masks direct identifiers and tokenizes financial numbers for pseudonymisation.",
		build: func() *Builder {
			return NewBuilder("gdpr").
				Mask("email", WithID("gdpr_mask_email"), WithKeep(0, 12), WithGlyph("*")).
				Mask("phone", WithID("gdpr_mask_phone"), WithKeep(0, 2), WithGlyph("•")).
				Tokenize("credit_card", WithID("gdpr_tokenize_pan"), WithSalt("gdpr::pan"), WithKeep(0, 0)).
				Tokenize("iban", WithID("gdpr_tokenize_iban"), WithSalt("gdpr::iban"), WithKeep(0, 0)).
				Redact("high_entropy_token", WithID("gdpr_redact_secret"), WithReplacement("[GDPR-SECRET]"))
		},
	},
	"pci": {
		description: "PCI DSS defaults. PANs are fully redacted, IBANs masked and potential secrets removed.",
		build: func() *Builder {
			return NewBuilder("pci").
				Redact("credit_card", WithID("pci_redact_pan"), WithReplacement("[PCI-PAN]")).
				Mask("iban", WithID("pci_mask_iban"), WithKeep(4, 4), WithGlyph("*")).
				Redact("high_entropy_token", WithID("pci_redact_secret"), WithReplacement("[PCI-SECRET]"))
		},
	},
	"hipaa": {
		description: "HIPAA defaults for US healthcare data. Emails and phones are masked, SSNs and secrets redacted.",
		build: func() *Builder {
			return NewBuilder("hipaa").
				Mask("email", WithID("hipaa_mask_email"), WithKeep(0, 12), WithGlyph("*")).
				Mask("phone", WithID("hipaa_mask_phone"), WithKeep(0, 2), WithGlyph("•")).
				Redact("ssn_us", WithID("hipaa_redact_ssn"), WithReplacement("[HIPAA-SSN]")).
				Redact("high_entropy_token", WithID("hipaa_redact_secret"), WithReplacement("[HIPAA-SECRET]"))
		},
	},
}

var builtinAliases = map[string]string{
	"gdpr-default": "gdpr",
	"pci-dss":      "pci",
}

// CanonicalName maps a template reference (possibly a path or a file name
// with a policy suffix, any case) to its built-in name. ok is false when no
// template matches.
func CanonicalName(ref string) (name string, ok bool) {
	n := strings.ToLower(strings.TrimSpace(filepath.Base(ref)))
	for _, ext := range policyExtensions {
		n = strings.TrimSuffix(n, ext)
	}
	if alias, found := builtinAliases[n]; found {
		n = alias
	}
	_, ok = builtins[n]
	return n, ok
}

// IsBuiltin reports whether ref names a built-in template.
func IsBuiltin(ref string) bool {
	_, ok := CanonicalName(ref)
	return ok
}

// Builtin returns a fresh copy of a built-in template.
func Builtin(ref string) (*Policy, error) {
	name, ok := CanonicalName(ref)
	if !ok {
		return nil, &LoadError{Path: ref, Err: ErrPolicyNotFound}
	}
	t := builtins[name]
	return t.build().Describe(t.description).Build()
}

// BuiltinNames lists the canonical template names, sorted.
func BuiltinNames() []string {
	out := make([]string, 0, len(builtins))
	for n := range builtins {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// DescribeBuiltins maps each canonical template name to its description.
func DescribeBuiltins() map[string]string {
	out := make(map[string]string, len(builtins))
	for n, t := range builtins {
		out[n] = t.description
	}
	return out
}
