package detectors

import (
	"strings"
	"unicode"

	"github.com/redactable/redactable/internal/ctxparse"
	"github.com/redactable/redactable/internal/types"
)

// FieldDetector inspects the field names of a structured document rather
// than text. Its findings carry zero-width spans whose position is the
// field's index in the flattened sequence, so they must never be mixed with
// character-span findings or handed to the policy engine.
type FieldDetector interface {
	Name() string
	Labels() []string
	DetectFields(fields []ctxparse.Field) ([]types.Finding, error)
}

type fieldHint struct {
	kind   string
	tokens []string // all must appear consecutively in the field name
}

var defaultFieldHints = []fieldHint{
	{KindEmail, []string{"email"}},
	{KindEmail, []string{"e", "mail"}},
	{KindEmail, []string{"mail"}},
	{KindPhone, []string{"phone"}},
	{KindPhone, []string{"mobile"}},
	{KindPhone, []string{"tel"}},
	{KindPhone, []string{"telephone"}},
	{KindCreditCard, []string{"credit", "card"}},
	{KindCreditCard, []string{"card", "number"}},
	{KindCreditCard, []string{"pan"}},
	{KindCreditCard, []string{"cc"}},
	{KindIBAN, []string{"iban"}},
	{KindNHS, []string{"nhs"}},
	{KindSSN, []string{"ssn"}},
	{KindSSN, []string{"social", "security"}},
	{"date_of_birth", []string{"dob"}},
	{"date_of_birth", []string{"birth", "date"}},
	{"date_of_birth", []string{"date", "of", "birth"}},
	{"postal_code", []string{"postcode"}},
	{"postal_code", []string{"zip"}},
	{"postal_code", []string{"postal", "code"}},
	{"address", []string{"address"}},
	{"person_name", []string{"first", "name"}},
	{"person_name", []string{"last", "name"}},
	{"person_name", []string{"full", "name"}},
	{"passport", []string{"passport"}},
}

const fieldHintConfidence = 0.7

// FieldHints flags fields whose names suggest personal data.
type FieldHints struct {
	hints []fieldHint
}

func NewFieldHints() *FieldHints { return &FieldHints{hints: defaultFieldHints} }

func (*FieldHints) Name() string { return "field_hints" }

func (h *FieldHints) Labels() []string {
	seen := map[string]bool{}
	var out []string
	for _, fh := range h.hints {
		if !seen[fh.kind] {
			seen[fh.kind] = true
			out = append(out, fh.kind)
		}
	}
	return out
}

func (h *FieldHints) DetectFields(fields []ctxparse.Field) ([]types.Finding, error) {
	var out []types.Finding
	for i, fld := range fields {
		tokens := nameTokens(fld.Name)
		for _, fh := range h.hints {
			if !containsRun(tokens, fh.tokens) {
				continue
			}
			f, err := types.NewFinding(fh.kind, fld.Key, types.Span{Start: i, End: i}, fieldHintConfidence,
				strings.Join(tokens, "_"), map[string]any{
					"path": fld.Key,
					"line": fld.Line,
					"hint": strings.Join(fh.tokens, "_"),
				})
			if err != nil {
				return nil, err
			}
			out = append(out, f)
			break
		}
	}
	return out, nil
}

// nameTokens splits camelCase, snake_case and kebab-case names into
// lower-case words.
func nameTokens(name string) []string {
	var out []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			out = append(out, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}
	runes := []rune(name)
	for i, r := range runes {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
		case unicode.IsUpper(r) && i > 0 && (unicode.IsLower(runes[i-1]) || i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1])):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()
	return out
}

func containsRun(tokens, run []string) bool {
	for i := 0; i+len(run) <= len(tokens); i++ {
		match := true
		for j, w := range run {
			if tokens[i+j] != w {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
