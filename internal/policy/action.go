package policy

import (
	"fmt"
	"strings"
)

// Action is what a rule does to a matching span.
type Action string

const (
	ActionRedact   Action = "redact"
	ActionMask     Action = "mask"
	ActionTokenize Action = "tokenize"
)

var actionAliases = map[string]Action{
	"redact":       ActionRedact,
	"scrub":        ActionRedact,
	"mask":         ActionMask,
	"generalise":   ActionMask,
	"generalize":   ActionMask,
	"tokenize":     ActionTokenize,
	"tokenise":     ActionTokenize,
	"pseudonymise": ActionTokenize,
	"pseudonymize": ActionTokenize,
	"hash":         ActionTokenize,
}

// NormalizeAction resolves spelling variants to a canonical action.
func NormalizeAction(s string) (Action, error) {
	if a, ok := actionAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// Valid reports whether a is one of the canonical actions.
func (a Action) Valid() bool {
	switch a {
	case ActionRedact, ActionMask, ActionTokenize:
		return true
	}
	return false
}
