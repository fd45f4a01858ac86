package policy

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePolicy(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Formats(t *testing.T) {
	tests := []struct {
		file    string
		content string
	}{
		{"p.yaml", `
version: 2
name: demo
rules:
  - id: e
    field: email
    action: redact
  - id: ph
    field: phone
    action: mask
    keep_head: 2
    keep_tail: 2
    mask_glyph: "*"
`},
		{"p.json", `{"version":2,"name":"demo","rules":[
  {"id":"e","field":"email","action":"redact"},
  {"id":"ph","field":"phone","action":"mask","keep_head":2,"keep_tail":2,"mask_glyph":"*"}]}`},
		{"p.toml", `
version = 2
name = "demo"

[[rules]]
id = "e"
field = "email"
action = "redact"

[[rules]]
id = "ph"
field = "phone"
action = "mask"
keep_head = 2
keep_tail = 2
mask_glyph = "*"
`},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			p, err := Load(writePolicy(t, tt.file, tt.content))
			require.NoError(t, err)
			assert.Equal(t, 2, p.Version)
			assert.Equal(t, "demo", p.Name)
			require.Len(t, p.Rules, 2)
			assert.Equal(t, ActionRedact, p.Rules[0].Action)
			assert.Equal(t, DefaultReplacement, p.Rules[0].Replacement)
			assert.Equal(t, 2, p.Rules[1].KeepHead)
			assert.Equal(t, 2, p.Rules[1].KeepTail)
			assert.Equal(t, "*", p.Rules[1].MaskGlyph)
		})
	}
}

func TestLoad_ExtendedLayout(t *testing.T) {
	path := writePolicy(t, "hr-export.yml", `
metadata:
  title: hr-export-policy
  description: legacy layout
defaults:
  action: scrub
rules:
  - when:
      detector: email
  - when:
      detector: phone
    action: generalise
    transforms:
      show_first: 3
      show_last: 1
  - when:
      detector: iban
    action: pseudonymise
    transforms:
      salt: "  pepper "
  - action: redact
`)
	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "hr-export-policy", p.Name)
	assert.Equal(t, "legacy layout", p.Description)
	assert.Equal(t, 1, p.Version)
	require.Len(t, p.Rules, 3, "rule without a field is skipped")
	assert.Equal(t, ActionRedact, p.Rules[0].Action)
	assert.Equal(t, "rule_1", p.Rules[0].ID)
	assert.Equal(t, ActionMask, p.Rules[1].Action)
	assert.Equal(t, 3, p.Rules[1].KeepHead)
	assert.Equal(t, 1, p.Rules[1].KeepTail)
	assert.Equal(t, ActionTokenize, p.Rules[2].Action)
	assert.Equal(t, "  pepper ", p.Rules[2].Salt)
}

func TestLoad_NameFallsBackToStem(t *testing.T) {
	p, err := Load(writePolicy(t, "contacts.yaml", "rules:\n  - field: email\n    action: mask\n"))
	require.NoError(t, err)
	assert.Equal(t, "contacts", p.Name)
}

func TestLoad_Where(t *testing.T) {
	p, err := Load(writePolicy(t, "w.yaml", `
name: where
rules:
  - id: visa
    field: credit_card
    action: redact
    where:
      min_confidence: 0.9
      value_matches: "^4"
      metadata:
        brand: VISA
        length: {equals: 16}
        region: {matches: "^GB$"}
`))
	require.NoError(t, err)
	w := p.Rules[0].Where
	require.NotNil(t, w)
	assert.InDelta(t, 0.9, *w.MinConfidence, 1e-9)
	assert.Equal(t, "VISA", w.Metadata["brand"].Equals)
	assert.Equal(t, 16, w.Metadata["length"].Equals)
	assert.Equal(t, "^GB$", w.Metadata["region"].Matches)

	f := finding(t, "credit_card", "4111111111111111", 0.98, "", map[string]any{"brand": "VISA", "length": 16, "region": "GB"})
	assert.True(t, p.Rules[0].Admits(f))
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    error
	}{
		{"unsupported suffix", "p.ini", "name=x", ErrUnsupportedFormat},
		{"malformed yaml", "p.yaml", "rules: [", ErrInvalidPolicy},
		{"malformed json", "p.json", "{", ErrInvalidPolicy},
		{"unknown action", "p.yaml", "rules:\n  - field: email\n    action: shred\n", ErrUnknownAction},
		{"blank replacement", "p.yaml", "rules:\n  - field: email\n    action: redact\n    replacement: '  '\n", ErrInvalidPolicy},
		{"bad version", "p.yaml", "version: two\n", ErrInvalidPolicy},
		{"zero version", "p.yaml", "version: 0\n", ErrInvalidPolicy},
		{"rules not a list", "p.yaml", "rules: {a: 1}\n", ErrInvalidPolicy},
		{"unknown where key", "p.yaml", "rules:\n  - field: email\n    action: mask\n    where: {colour: red}\n", ErrInvalidPredicate},
		{"bad where regex", "p.yaml", "rules:\n  - field: email\n    action: mask\n    where: {value_matches: '('}\n", ErrInvalidPredicate},
		{"empty where", "p.yaml", "rules:\n  - field: email\n    action: mask\n    where: {}\n", ErrInvalidPredicate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writePolicy(t, tt.file, tt.content))
			require.Error(t, err)
			var le *LoadError
			require.True(t, errors.As(err, &le))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, ErrPolicyNotFound)
}

func TestResolve(t *testing.T) {
	path := writePolicy(t, "gdpr.yaml", "name: local-gdpr\nrules:\n  - field: email\n    action: redact\n")
	p, err := Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, "local-gdpr", p.Name, "an existing file wins over the template")

	p, err = Resolve("pci")
	require.NoError(t, err)
	assert.Equal(t, "pci", p.Name)

	_, err = Resolve("does-not-exist")
	assert.ErrorIs(t, err, ErrPolicyNotFound)
}
