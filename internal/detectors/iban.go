package detectors

import (
	"regexp"
	"sort"
	"strings"

	"github.com/redactable/redactable/internal/types"
	"github.com/redactable/redactable/internal/validate"
)

var (
	reIBANCompact = regexp.MustCompile(`(?i)[A-Z]{2}\d{2}[A-Z0-9]{11,30}`)
	// Print form: four character groups separated by single spaces.
	reIBANGrouped = regexp.MustCompile(`(?i)[A-Z]{2}\d{2}(?: [A-Z0-9]{4}){2,7}(?: [A-Z0-9]{1,4})?`)
)

const (
	ibanConfidence = 0.98
	minIBANLength  = 15
)

// IBAN finds international bank account numbers passing ISO 7064 mod-97.
type IBAN struct{}

func NewIBAN() *IBAN { return &IBAN{} }

func (*IBAN) Name() string     { return KindIBAN }
func (*IBAN) Labels() []string { return []string{KindIBAN} }

func (*IBAN) Detect(text string, _ *Context) ([]types.Finding, error) {
	var spans []types.Span
	for _, sp := range findGuarded(reIBANCompact, text, alnumBounded) {
		if validate.IBAN(text[sp.Start:sp.End]) {
			spans = append(spans, sp)
		}
	}
	for _, sp := range findGuarded(reIBANGrouped, text, alnumBounded) {
		if trimmed, ok := longestValidGroup(text, sp); ok {
			spans = append(spans, trimmed)
		}
	}
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })

	var out []types.Finding
	for _, sp := range spans {
		value := text[sp.Start:sp.End]
		normalized := validate.CompactIBAN(value)
		f, err := types.NewFinding(KindIBAN, value, sp, ibanConfidence, normalized, map[string]any{
			"country": normalized[:2],
			"valid":   true,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// longestValidGroup validates a grouped match, dropping trailing groups one at
// a time since the pattern may swallow words that follow the IBAN.
func longestValidGroup(text string, sp types.Span) (types.Span, bool) {
	for len(validate.CompactIBAN(text[sp.Start:sp.End])) >= minIBANLength {
		if validate.IBAN(text[sp.Start:sp.End]) {
			return sp, true
		}
		cut := strings.LastIndexByte(text[sp.Start:sp.End], ' ')
		if cut <= 0 {
			break
		}
		sp.End = sp.Start + cut
	}
	return types.Span{}, false
}
