package detectors

import (
	"regexp"

	"github.com/redactable/redactable/internal/types"
	"github.com/redactable/redactable/internal/validate"
)

var reSSN = regexp.MustCompile(`\d{3}-?\d{2}-?\d{4}`)

const ssnConfidence = 0.95

// SSN finds US social security numbers that pass the structural exclusions.
type SSN struct{}

func NewSSN() *SSN { return &SSN{} }

func (*SSN) Name() string     { return KindSSN }
func (*SSN) Labels() []string { return []string{KindSSN} }

func (*SSN) Detect(text string, _ *Context) ([]types.Finding, error) {
	var out []types.Finding
	for _, sp := range findGuarded(reSSN, text, ssnBounded) {
		value := text[sp.Start:sp.End]
		if !validate.SSN(value) {
			continue
		}
		d := validate.DigitsOnly(value)
		f, err := types.NewFinding(KindSSN, value, sp, ssnConfidence, d[:3]+"-"+d[3:5]+"-"+d[5:], map[string]any{"area": d[:3]})
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// ssnBounded also refuses hits that continue a hyphenated digit sequence.
func ssnBounded(text string, start, end int) bool {
	if !digitBounded(text, start, end) {
		return false
	}
	if before(text, start) == '-' && isDigit(before(text, start-1)) {
		return false
	}
	return !(after(text, end) == '-' && isDigit(after(text, end+1)))
}
