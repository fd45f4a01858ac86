package detectors

import (
	"net/mail"
	"regexp"
	"strings"

	"golang.org/x/net/idna"

	"github.com/redactable/redactable/internal/types"
)

var reEmail = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@(?:[A-Za-z0-9\-]+\.)+[A-Za-z]{2,63}`)

const (
	emailBaseConfidence   = 0.6
	emailStrictConfidence = 0.95
)

// Mailbox is the canonical form of a validated address.
type Mailbox struct {
	Address string // local part plus ASCII, lower-cased domain
	Domain  string
}

// MailboxValidator performs a stricter syntax check on a prefilter hit.
type MailboxValidator interface {
	Validate(addr string) (Mailbox, bool)
}

// StrictMailbox validates with net/mail and converts IDN domains to ASCII.
type StrictMailbox struct{}

// Validate implements MailboxValidator.
func (StrictMailbox) Validate(addr string) (Mailbox, bool) {
	parsed, err := mail.ParseAddress(addr)
	if err != nil || parsed.Address != addr {
		return Mailbox{}, false
	}
	at := strings.LastIndexByte(addr, '@')
	local, domain := addr[:at], addr[at+1:]
	if len(local) > 64 || strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") || strings.Contains(local, "..") {
		return Mailbox{}, false
	}
	ascii, err := idna.Lookup.ToASCII(domain)
	if err != nil || len(ascii) > 253 {
		return Mailbox{}, false
	}
	ascii = strings.ToLower(ascii)
	return Mailbox{Address: local + "@" + ascii, Domain: ascii}, true
}

// Email finds mailbox addresses.
type Email struct {
	validator MailboxValidator
}

// NewEmail returns an email detector. A nil validator leaves every hit at
// base confidence without a normalized form.
func NewEmail(v MailboxValidator) *Email { return &Email{validator: v} }

func (*Email) Name() string     { return KindEmail }
func (*Email) Labels() []string { return []string{KindEmail} }

func (e *Email) Detect(text string, _ *Context) ([]types.Finding, error) {
	var out []types.Finding
	for _, sp := range findGuarded(reEmail, text, emailBounded) {
		value := text[sp.Start:sp.End]
		conf := emailBaseConfidence
		normalized := ""
		extras := map[string]any{
			"domain": strings.ToLower(value[strings.LastIndexByte(value, '@')+1:]),
			"valid":  false,
		}
		if e.validator != nil {
			if mb, ok := e.validator.Validate(value); ok {
				conf = emailStrictConfidence
				normalized = mb.Address
				extras["domain"] = mb.Domain
				extras["valid"] = true
			}
		}
		f, err := types.NewFinding(KindEmail, value, sp, conf, normalized, extras)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func isLocalByte(c byte) bool {
	return isAlnum(c) || strings.IndexByte("._%+-", c) >= 0
}

// emailBounded rejects hits glued to further address characters. A trailing
// dot is allowed when it ends a sentence rather than continuing a domain.
func emailBounded(text string, start, end int) bool {
	if isLocalByte(before(text, start)) {
		return false
	}
	next := after(text, end)
	switch {
	case next == '.':
		return !isAlnum(after(text, end+1))
	case next == '@':
		return false
	default:
		return !isLocalByte(next)
	}
}
