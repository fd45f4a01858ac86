package detectors

import (
	"regexp"

	"github.com/redactable/redactable/internal/types"
	"github.com/redactable/redactable/internal/validate"
)

// Digit runs joined by single space or hyphen separators.
var reDigitRun = regexp.MustCompile(`\d(?:[ \-]?\d)*`)

const (
	panMinDigits = 13
	panMaxDigits = 19

	cardBrandedConfidence   = 0.98
	cardUnbrandedConfidence = 0.85
)

// CreditCard finds Luhn-valid payment card numbers.
type CreditCard struct{}

func NewCreditCard() *CreditCard { return &CreditCard{} }

func (*CreditCard) Name() string     { return KindCreditCard }
func (*CreditCard) Labels() []string { return []string{KindCreditCard} }

func (*CreditCard) Detect(text string, _ *Context) ([]types.Finding, error) {
	var out []types.Finding
	for _, run := range reDigitRun.FindAllStringIndex(text, -1) {
		groups := digitGroups(text, run[0], run[1])
		for i := 0; i < len(groups); {
			sp, digits, next, ok := panWindow(text, groups, i)
			if !ok {
				i++
				continue
			}
			i = next
			brand := validate.CardBrand(digits)
			conf := cardUnbrandedConfidence
			extras := map[string]any{"luhn_valid": true, "length": len(digits)}
			if brand != "" {
				conf = cardBrandedConfidence
				extras["brand"] = brand
			}
			f, err := types.NewFinding(KindCreditCard, text[sp.Start:sp.End], sp, conf, digits, extras)
			if err != nil {
				return nil, err
			}
			out = append(out, f)
		}
	}
	return out, nil
}

// digitGroups splits a run into its separator-delimited groups.
func digitGroups(text string, start, end int) []types.Span {
	var out []types.Span
	gs := start
	for i := start; i < end; i++ {
		if !isDigit(text[i]) {
			out = append(out, types.Span{Start: gs, End: i})
			gs = i + 1
		}
	}
	return append(out, types.Span{Start: gs, End: end})
}

// panWindow tries windows of whole groups starting at group i, longest
// first, and returns the first one holding 13 to 19 digits that passes Luhn.
// next is the group index following the accepted window.
func panWindow(text string, groups []types.Span, i int) (sp types.Span, digits string, next int, ok bool) {
	count := 0
	last := i - 1
	for j := i; j < len(groups); j++ {
		if count+groups[j].Len() > panMaxDigits {
			break
		}
		count += groups[j].Len()
		last = j
	}
	for j := last; j >= i; j-- {
		sp = types.Span{Start: groups[i].Start, End: groups[j].End}
		digits = validate.DigitsOnly(text[sp.Start:sp.End])
		if len(digits) < panMinDigits {
			break
		}
		if _, valid := validate.CardNumber(digits); valid {
			return sp, digits, j + 1, true
		}
	}
	return types.Span{}, "", i + 1, false
}
