package detectors

import (
	"math"
	"regexp"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/redactable/redactable/internal/types"
	"github.com/redactable/redactable/internal/validate"
)

var (
	reToken   = regexp.MustCompile(`[A-Za-z0-9+/_\-]+={0,2}`) // base64, base64url, base58 and hex runs
	reContext = regexp.MustCompile(`(?i)(secret|token|password|passwd|api[_-]?key|authorization|bearer|credential)`)
)

const (
	DefaultEntropyThreshold = 3.5
	DefaultMinTokenLength   = 24

	entropyMaxConfidence = 0.99
	contextBoost         = 0.05
)

// HighEntropy flags token-shaped runs whose Shannon entropy suggests a
// random secret rather than prose or an identifier.
type HighEntropy struct {
	threshold float64
	minLen    int
}

func NewHighEntropy(threshold float64, minLen int) *HighEntropy {
	if threshold <= 0 {
		threshold = DefaultEntropyThreshold
	}
	if minLen <= 0 {
		minLen = DefaultMinTokenLength
	}
	return &HighEntropy{threshold: threshold, minLen: minLen}
}

func (*HighEntropy) Name() string     { return KindEntropy }
func (*HighEntropy) Labels() []string { return []string{KindEntropy} }

func (h *HighEntropy) Detect(text string, ctx *Context) ([]types.Finding, error) {
	threshold := ctx.entropyThreshold(h.threshold)
	minLen := ctx.minTokenLength(h.minLen)

	var out []types.Finding
	for _, loc := range reToken.FindAllStringIndex(text, -1) {
		value := text[loc[0]:loc[1]]
		if len(value) < minLen || !tokenShaped(value) {
			continue
		}
		bits := ShannonEntropy(value)
		if bits < threshold {
			continue
		}
		conf := math.Min(entropyMaxConfidence, 0.5+bits/8)
		nearKeyword := reContext.MatchString(lineAround(text, loc[0], loc[1]))
		if nearKeyword {
			conf = math.Min(entropyMaxConfidence, conf+contextBoost)
		}
		f, err := types.NewFinding(KindEntropy, value, types.Span{Start: loc[0], End: loc[1]}, conf, value, map[string]any{
			"entropy":      math.Round(bits*1000) / 1000,
			"charset":      validate.Charset(value),
			"length":       len(value),
			"near_keyword": nearKeyword,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// tokenShaped accepts hex runs and runs mixing at least two of lower case,
// upper case and digits. Single-case words joined by underscores or dashes
// are identifiers, not secrets.
func tokenShaped(s string) bool {
	if validate.IsAlphabet(s, validate.HexAlphabet) {
		return true
	}
	var lower, upper, digit int
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= 'a' && c <= 'z':
			lower = 1
		case c >= 'A' && c <= 'Z':
			upper = 1
		case isDigit(c):
			digit = 1
		}
	}
	return lower+upper+digit >= 2
}

// ShannonEntropy returns the bits per character of s's byte distribution.
func ShannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}
	var counts [256]float64
	for i := 0; i < len(s); i++ {
		counts[s[i]]++
	}
	p := make([]float64, 0, 64)
	n := float64(len(s))
	for _, c := range counts {
		if c > 0 {
			p = append(p, c/n)
		}
	}
	return stat.Entropy(p) / math.Ln2
}

// lineAround returns the text of the line containing [start,end), excluding
// the token itself so the token cannot vouch for itself.
func lineAround(text string, start, end int) string {
	ls := strings.LastIndexByte(text[:start], '\n') + 1
	le := strings.IndexByte(text[end:], '\n')
	if le < 0 {
		le = len(text)
	} else {
		le += end
	}
	return text[ls:start] + " " + text[end:le]
}
