package types

import (
	"math"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFinding_ConfidenceBounds(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		wantErr    bool
	}{
		{"zero", 0, false},
		{"one", 1, false},
		{"middle", 0.42, false},
		{"negative", -0.01, true},
		{"above one", 1.01, true},
		{"nan", math.NaN(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFinding("email", "a@b.io", Span{0, 6}, tt.confidence, "", nil)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfidence)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewFinding_RejectsBadSpan(t *testing.T) {
	_, err := NewFinding("email", "x", Span{5, 2}, 0.5, "", nil)
	assert.ErrorIs(t, err, ErrInvalidSpan)
	_, err = NewFinding("email", "x", Span{-1, 2}, 0.5, "", nil)
	assert.ErrorIs(t, err, ErrInvalidSpan)
}

func TestFinding_Matches(t *testing.T) {
	text := "mail a@b.io now"
	f, err := NewFinding("email", "a@b.io", Span{5, 11}, 0.9, "", nil)
	require.NoError(t, err)
	assert.True(t, f.Matches(text))
	assert.False(t, f.Matches("short"))
	assert.NotNil(t, f.Extras)
}

func TestFinding_JSONShape(t *testing.T) {
	f, err := NewFinding("credit_card", "4111111111111111", Span{6, 22}, 0.98, "4111111111111111", map[string]any{"brand": "VISA"})
	require.NoError(t, err)
	b, err := json.Marshal(f)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Equal(t, "credit_card", raw["kind"])
	assert.Equal(t, []any{float64(6), float64(22)}, raw["span"])
	assert.Equal(t, "VISA", raw["extras"].(map[string]any)["brand"])

	assert.Equal(t, "4111111111111111", raw["normalized"])

	var back Finding
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, f.Span, back.Span)
	assert.Equal(t, f.Normalized, back.Normalized)
}

func TestFinding_JSONAlwaysCarriesEveryKey(t *testing.T) {
	f := Finding{Kind: "email", Value: "a@b.io", Span: Span{0, 6}, Confidence: 0.6}
	b, err := json.Marshal(f)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	for _, key := range []string{"kind", "value", "span", "confidence", "normalized", "extras"} {
		assert.Contains(t, raw, key)
	}
	assert.Nil(t, raw["normalized"])
	assert.Equal(t, map[string]any{}, raw["extras"])

	var back Finding
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, "", back.Normalized)
	assert.Equal(t, f.Span, back.Span)
}
