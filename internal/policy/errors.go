package policy

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPolicy is wrapped by every validation failure.
	ErrInvalidPolicy = errors.New("invalid policy")
	// ErrUnknownAction marks an action name that is not canonical or an alias.
	ErrUnknownAction = errors.New("unknown action")
	// ErrInvalidPredicate marks a malformed where clause.
	ErrInvalidPredicate = errors.New("invalid where clause")
	// ErrNotValidated is returned for policies built without New.
	ErrNotValidated = errors.New("policy was not constructed through policy.New")

	// ErrPolicyNotFound means neither a file nor a built-in template matched.
	ErrPolicyNotFound = errors.New("policy not found")
	// ErrUnsupportedFormat means the file suffix names no known format.
	ErrUnsupportedFormat = errors.New("unsupported policy format")
)

// LoadError reports why a policy document could not be loaded.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load policy %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidPolicy, fmt.Sprintf(format, args...))
}
