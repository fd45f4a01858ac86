package detectors

import (
	"regexp"
	"sort"
	"strings"

	"github.com/nyaruka/phonenumbers"

	"github.com/redactable/redactable/internal/types"
	"github.com/redactable/redactable/internal/validate"
)

var (
	reE164       = regexp.MustCompile(`\+\d{9,15}`)
	reUKNational = regexp.MustCompile(`0(?:7\d{9}|1\d{8,9}|2\d{8,9})`)
)

const (
	phoneValidConfidence    = 0.95
	phonePossibleConfidence = 0.6
	phoneFallbackConfidence = 0.5
)

// PhoneVerdict is a validation strategy's opinion of one candidate.
type PhoneVerdict struct {
	E164     string
	Region   string
	Valid    bool // matches an allocated range in the numbering plan
	Possible bool // plausible length and shape
	Checked  bool // false when no numbering plan was consulted
}

// PhoneValidator checks a raw candidate against a default region.
type PhoneValidator interface {
	Check(raw, region string) PhoneVerdict
}

// LibPhoneValidator validates against libphonenumber metadata.
type LibPhoneValidator struct{}

// Check implements PhoneValidator.
func (LibPhoneValidator) Check(raw, region string) PhoneVerdict {
	v := PhoneVerdict{Checked: true, Region: region}
	num, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return v
	}
	v.Valid = phonenumbers.IsValidNumber(num)
	v.Possible = v.Valid || phonenumbers.IsPossibleNumber(num)
	if v.Possible {
		v.E164 = phonenumbers.Format(num, phonenumbers.E164)
		if r := phonenumbers.GetRegionCodeForNumber(num); r != "" {
			v.Region = r
		}
	}
	return v
}

// FallbackPhoneValidator accepts anything the prefilter accepts and derives
// an E.164 form where the region's trunk prefix is known.
type FallbackPhoneValidator struct{}

var trunkCountryCodes = map[string]string{
	"GB": "44",
	"IE": "353",
	"FR": "33",
	"DE": "49",
	"NL": "31",
}

// Check implements PhoneValidator.
func (FallbackPhoneValidator) Check(raw, region string) PhoneVerdict {
	digits := validate.DigitsOnly(raw)
	v := PhoneVerdict{Possible: true, Region: region}
	if strings.HasPrefix(raw, "+") {
		v.E164 = "+" + digits
		v.Region = ""
		return v
	}
	if cc, ok := trunkCountryCodes[strings.ToUpper(region)]; ok && strings.HasPrefix(digits, "0") {
		v.E164 = "+" + cc + digits[1:]
	}
	return v
}

// Phone finds international (E.164) and UK national numbers.
type Phone struct {
	region    string
	validator PhoneValidator
}

// NewPhone returns a phone detector for the given default region. A nil
// validator selects FallbackPhoneValidator.
func NewPhone(region string, v PhoneValidator) *Phone {
	if region == "" {
		region = DefaultRegion
	}
	if v == nil {
		v = FallbackPhoneValidator{}
	}
	return &Phone{region: strings.ToUpper(region), validator: v}
}

func (*Phone) Name() string     { return KindPhone }
func (*Phone) Labels() []string { return []string{KindPhone} }

func (p *Phone) Detect(text string, ctx *Context) ([]types.Finding, error) {
	region := strings.ToUpper(ctx.region(p.region))

	type hit struct {
		span   types.Span
		format string
	}
	var hits []hit
	for _, sp := range findGuarded(reE164, text, e164Bounded) {
		hits = append(hits, hit{sp, "E164"})
	}
	for _, sp := range findGuarded(reUKNational, text, nationalBounded) {
		hits = append(hits, hit{sp, "NATIONAL"})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].span.Start < hits[j].span.Start })

	var out []types.Finding
	for _, h := range hits {
		if adjacentDigitGroup(text, h.span.Start, h.span.End) {
			continue
		}
		value := text[h.span.Start:h.span.End]
		verdict := p.validator.Check(value, region)
		var conf float64
		switch {
		case !verdict.Checked && verdict.Possible:
			conf = phoneFallbackConfidence
		case verdict.Valid:
			conf = phoneValidConfidence
		case verdict.Possible:
			conf = phonePossibleConfidence
		default:
			continue
		}
		normalized := verdict.E164
		if normalized == "" {
			normalized = validate.DigitsOnly(value)
		}
		f, err := types.NewFinding(KindPhone, value, h.span, conf, normalized, map[string]any{
			"format": h.format,
			"region": verdict.Region,
			"valid":  verdict.Valid,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func e164Bounded(text string, start, end int) bool {
	b := before(text, start)
	return !isWord(b) && b != '+' && !isDigit(after(text, end))
}

func nationalBounded(text string, start, end int) bool {
	return before(text, start) != '+' && digitBounded(text, start, end)
}

// adjacentDigitGroup reports whether the candidate is one group of a longer
// separated digit run, as in "4111 1111 1111 1111", where a card number or
// account number is far more likely than a phone number.
func adjacentDigitGroup(text string, start, end int) bool {
	if b := before(text, start); (b == ' ' || b == '-') && isDigit(before(text, start-1)) {
		return true
	}
	if a := after(text, end); (a == ' ' || a == '-') && isDigit(after(text, end+1)) {
		return true
	}
	return false
}
