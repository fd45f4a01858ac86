package detectors

import (
	"regexp"

	"github.com/redactable/redactable/internal/types"
	"github.com/redactable/redactable/internal/validate"
)

// Ten digits; blanks between digits are tolerated (NHS numbers print as 3-3-4).
var reNHS = regexp.MustCompile(`\d(?:[ \t]*\d){9}`)

const nhsConfidence = 0.99

// NHS finds NHS-style national identifiers carrying a mod-11 check digit.
type NHS struct {
	checksum func(string) bool
}

// NewNHS returns the detector. A nil checksum selects validate.NHSNumber.
func NewNHS(checksum func(string) bool) *NHS {
	if checksum == nil {
		checksum = validate.NHSNumber
	}
	return &NHS{checksum: checksum}
}

func (*NHS) Name() string     { return KindNHS }
func (*NHS) Labels() []string { return []string{KindNHS} }

func (n *NHS) Detect(text string, _ *Context) ([]types.Finding, error) {
	var out []types.Finding
	for _, sp := range findGuarded(reNHS, text, digitBounded) {
		if adjacentDigitGroup(text, sp.Start, sp.End) {
			continue
		}
		value := text[sp.Start:sp.End]
		digits := validate.DigitsOnly(value)
		if len(digits) != 10 || !n.checksum(digits) {
			continue
		}
		f, err := types.NewFinding(KindNHS, value, sp, nhsConfidence, digits, map[string]any{"checksum_valid": true})
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
