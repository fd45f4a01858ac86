package detectors

import (
	"github.com/redactable/redactable/internal/types"
)

// Detector reports findings for one or more kinds of sensitive value.
// Implementations must be deterministic for a given text and context and
// return findings in left-to-right order.
type Detector interface {
	Name() string
	Labels() []string
	Detect(text string, ctx *Context) ([]types.Finding, error)
}

// Context is optional per-call configuration. A nil *Context is valid.
type Context struct {
	// Region is the default ISO region for parsing national phone numbers.
	Region string
	// EntropyThreshold overrides the high-entropy detector's bits/char cut-off.
	EntropyThreshold float64
	// MinTokenLength overrides the high-entropy detector's minimum length.
	MinTokenLength int
	// Metadata carries caller-supplied labels such as the input source.
	Metadata map[string]string
}

func (c *Context) region(def string) string {
	if c == nil || c.Region == "" {
		return def
	}
	return c.Region
}

func (c *Context) entropyThreshold(def float64) float64 {
	if c == nil || c.EntropyThreshold <= 0 {
		return def
	}
	return c.EntropyThreshold
}

func (c *Context) minTokenLength(def int) int {
	if c == nil || c.MinTokenLength <= 0 {
		return def
	}
	return c.MinTokenLength
}

// Kinds emitted by the built-in detectors.
const (
	KindEmail      = "email"
	KindPhone      = "phone"
	KindCreditCard = "credit_card"
	KindIBAN       = "iban"
	KindNHS        = "nhs_number"
	KindSSN        = "ssn_us"
	KindEntropy    = "high_entropy_token"
)

// DefaultRegion is used for phone parsing when neither the registry nor the
// call context names one.
const DefaultRegion = "GB"

// IDs lists the built-in detector names in default registration order.
func IDs() []string {
	return []string{KindEmail, KindPhone, KindCreditCard, KindIBAN, KindNHS, KindSSN, KindEntropy}
}

// Defaults builds the built-in detector set. A nil phone validator selects
// the numbering-plan validator.
func Defaults(region string, phone PhoneValidator) []Detector {
	out := make([]Detector, 0, len(IDs()))
	for _, id := range IDs() {
		d, _ := New(id, region, phone)
		out = append(out, d)
	}
	return out
}

// New constructs a built-in detector by name. It reports false for unknown names.
func New(name, region string, phone PhoneValidator) (Detector, bool) {
	if region == "" {
		region = DefaultRegion
	}
	switch name {
	case KindEmail:
		return NewEmail(StrictMailbox{}), true
	case KindPhone:
		if phone == nil {
			phone = LibPhoneValidator{}
		}
		return NewPhone(region, phone), true
	case KindCreditCard:
		return NewCreditCard(), true
	case KindIBAN:
		return NewIBAN(), true
	case KindNHS:
		return NewNHS(nil), true
	case KindSSN:
		return NewSSN(), true
	case KindEntropy:
		return NewHighEntropy(DefaultEntropyThreshold, DefaultMinTokenLength), true
	default:
		return nil, false
	}
}
