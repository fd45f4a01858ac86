package engine

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redactable/redactable/internal/detectors"
	"github.com/redactable/redactable/internal/metrics"
	"github.com/redactable/redactable/internal/policy"
	"github.com/redactable/redactable/internal/redact"
	"github.com/redactable/redactable/internal/types"
)

// at builds a finding for the first occurrence of value in text.
func at(t *testing.T, text, kind, value string, conf float64, extras map[string]any) types.Finding {
	t.Helper()
	i := strings.Index(text, value)
	require.GreaterOrEqual(t, i, 0, "%q not in text", value)
	f, err := types.NewFinding(kind, value, types.Span{Start: i, End: i + len(value)}, conf, "", extras)
	require.NoError(t, err)
	return f
}

func TestApply_OffsetsAcrossRules(t *testing.T) {
	text := "Email test@example.com and phone 07123456789."
	findings := []types.Finding{
		at(t, text, "email", "test@example.com", 0.95, nil),
		at(t, text, "phone", "07123456789", 0.95, nil),
	}
	p, err := policy.NewBuilder("e2e").
		Redact("email", policy.WithReplacement("[REDACTED:EMAIL]")).
		Mask("phone", policy.WithKeep(2, 2), policy.WithGlyph("*")).
		Build()
	require.NoError(t, err)

	got, err := Apply(p, findings, text)
	require.NoError(t, err)
	assert.Equal(t, "Email [REDACTED:EMAIL] and phone 07*******89.", got)
	assert.Equal(t, 1, strings.Count(got, "[REDACTED:EMAIL]"))
}

func TestApply_LengthChangingReplacements(t *testing.T) {
	text := "a@b.io, 07123456789, x@y.io!"
	findings := []types.Finding{
		at(t, text, "email", "a@b.io", 0.9, nil),
		at(t, text, "phone", "07123456789", 0.9, nil),
		at(t, text, "email", "x@y.io", 0.9, nil),
	}
	tests := []struct {
		name  string
		build func(*policy.Builder) *policy.Builder
		want  string
	}{
		{
			name: "redact then mask",
			build: func(b *policy.Builder) *policy.Builder {
				return b.Redact("email").Mask("phone", policy.WithKeep(2, 2), policy.WithGlyph("*"))
			},
			want: "[REDACTED:EMAIL], 07*******89, [REDACTED:EMAIL]!",
		},
		{
			name: "mask then redact",
			build: func(b *policy.Builder) *policy.Builder {
				return b.Mask("phone", policy.WithKeep(2, 2), policy.WithGlyph("*")).Redact("email", policy.WithReplacement("<{kind}>"))
			},
			want: "<EMAIL>, 07*******89, <EMAIL>!",
		},
		{
			name: "shrinking then growing",
			build: func(b *policy.Builder) *policy.Builder {
				return b.Redact("phone", policy.WithReplacement("#")).Tokenize("email", policy.WithSalt("s"))
			},
			want: redact.Token("a@b.io", "s") + ", #, " + redact.Token("x@y.io", "s") + "!",
		},
		{
			name: "multi-byte glyph",
			build: func(b *policy.Builder) *policy.Builder {
				return b.Mask("email", policy.WithKeep(1, 0), policy.WithGlyph("•")).Mask("phone", policy.WithKeep(0, 4))
			},
			want: "a•••••, •••••••6789, x•••••!",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.build(policy.NewBuilder("t")).Build()
			require.NoError(t, err)
			got, err := Apply(p, findings, text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyDetailed_Replacements(t *testing.T) {
	text := "mail ab@example.com now"
	f := at(t, text, "email", "ab@example.com", 0.9, nil)
	p, err := policy.NewBuilder("t").Redact("email", policy.WithID("r1")).Build()
	require.NoError(t, err)

	res, err := ApplyDetailed(p, []types.Finding{f}, text)
	require.NoError(t, err)
	assert.Equal(t, "mail [REDACTED:EMAIL] now", res.Text)
	require.Len(t, res.Applied, 1)
	rep := res.Applied[0]
	assert.Equal(t, "r1", rep.RuleID)
	assert.Equal(t, policy.ActionRedact, rep.Action)
	assert.Equal(t, types.Span{Start: 5, End: 19}, rep.Original)
	assert.Equal(t, rep.Original, rep.Adjusted)
	assert.Equal(t, 2, rep.Delta)
	assert.Equal(t, map[string]int{"email": 1}, res.Counts())
	assert.True(t, res.Changed(text))
}

func TestApply_TokenizePrefersNormalized(t *testing.T) {
	text := "IBAN gb82 west 1234 5698 7654 32"
	value := "gb82 west 1234 5698 7654 32"
	f, err := types.NewFinding("iban", value, types.Span{Start: 5, End: 5 + len(value)}, 0.98, "GB82WEST12345698765432", nil)
	require.NoError(t, err)
	p, err := policy.NewBuilder("t").Tokenize("iban", policy.WithSalt("pepper")).Build()
	require.NoError(t, err)

	got, err := Apply(p, []types.Finding{f}, text)
	require.NoError(t, err)
	assert.Equal(t, "IBAN "+redact.Token("GB82WEST12345698765432", "pepper"), got)
}

func TestApply_WhereFiltersFindings(t *testing.T) {
	text := "4111111111111111 and 5500000000000004"
	visa := at(t, text, "credit_card", "4111111111111111", 0.98, map[string]any{"brand": "VISA"})
	mc := at(t, text, "credit_card", "5500000000000004", 0.98, map[string]any{"brand": "MASTERCARD"})

	p, err := policy.New(1, "visa-only", "", policy.Rule{
		ID: "visa", Field: "credit_card", Action: policy.ActionRedact,
		Where: &policy.Where{Metadata: map[string]policy.MetadataPredicate{"brand": {Equals: "VISA"}}},
	})
	require.NoError(t, err)

	got, err := Apply(p, []types.Finding{visa, mc}, text)
	require.NoError(t, err)
	assert.Equal(t, "[REDACTED:CREDIT_CARD] and 5500000000000004", got)
}

func TestApply_NoFindingsOrNoMatchingRule(t *testing.T) {
	p, err := policy.NewBuilder("t").Redact("ssn_us").Build()
	require.NoError(t, err)
	text := "nothing to see"
	got, err := Apply(p, nil, text)
	require.NoError(t, err)
	assert.Equal(t, text, got)

	f := at(t, "a@b.io", "email", "a@b.io", 0.9, nil)
	got, err = Apply(p, []types.Finding{f}, "a@b.io")
	require.NoError(t, err)
	assert.Equal(t, "a@b.io", got)
}

func TestApply_Errors(t *testing.T) {
	_, err := Apply(&policy.Policy{Version: 1, Name: "raw"}, nil, "x")
	assert.ErrorIs(t, err, policy.ErrNotValidated)
	_, err = Apply(nil, nil, "x")
	assert.ErrorIs(t, err, policy.ErrNotValidated)

	p, err := policy.NewBuilder("t").Redact("email").Build()
	require.NoError(t, err)
	p.Rules[0].Action = "encrypt"
	f := at(t, "a@b.io", "email", "a@b.io", 0.9, nil)
	_, err = Apply(p, []types.Finding{f}, "a@b.io")
	assert.ErrorIs(t, err, ErrUnsupportedAction)
}

func TestApply_ClampsStaleSpans(t *testing.T) {
	f, err := types.NewFinding("email", "a@b.io", types.Span{Start: 10, End: 16}, 0.9, "", nil)
	require.NoError(t, err)
	p, err := policy.NewBuilder("t").Redact("email", policy.WithReplacement("X")).Build()
	require.NoError(t, err)
	got, err := Apply(p, []types.Finding{f}, "short")
	require.NoError(t, err)
	assert.Equal(t, "shortX", got)
}

func TestApply_RedactIsIdempotent(t *testing.T) {
	reg := detectors.NewBuilder().PhoneValidator(detectors.FallbackPhoneValidator{}).Defaults().Build()
	p, err := policy.NewBuilder("t").
		Redact("email").Redact("phone").Redact("credit_card").Redact("ssn_us").
		Build()
	require.NoError(t, err)

	text := "Contact ada@example.org or 07123456789, card 4111 1111 1111 1111, SSN 078-05-1120."
	once, err := Apply(p, reg.Scan(text), text)
	require.NoError(t, err)
	assert.NotEqual(t, text, once)
	twice, err := Apply(p, reg.Scan(once), once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestEngine_CountsReplacements(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := New(WithMetrics(metrics.NewCollector(reg)))
	text := "a@b.io x@y.io"
	findings := []types.Finding{at(t, text, "email", "a@b.io", 0.9, nil), at(t, text, "email", "x@y.io", 0.9, nil)}
	p, err := policy.NewBuilder("t").Mask("email").Build()
	require.NoError(t, err)

	_, err = e.Apply(p, findings, text)
	require.NoError(t, err)
	mf, err := reg.Gather()
	require.NoError(t, err)
	var total float64
	for _, fam := range mf {
		if fam.GetName() == "redactable_replacements_total" {
			for _, m := range fam.GetMetric() {
				total += m.GetCounter().GetValue()
			}
		}
	}
	assert.Equal(t, float64(2), total)
	n, err := testutil.GatherAndCount(reg, "redactable_replacements_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
