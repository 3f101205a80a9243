package window

import "github.com/pkg/errors"

var (
	// ErrNoFrontmostApplication means no application currently holds the foreground.
	ErrNoFrontmostApplication = errors.New("no frontmost application")

	// ErrEnumerationUnavailable means the platform could not be queried at all.
	ErrEnumerationUnavailable = errors.New("window enumeration unavailable")

	// ErrMissingField marks window metadata lacking a required key.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidField marks window metadata whose value has the wrong type or range.
	ErrInvalidField = errors.New("invalid field")
)

// EnumerationError is returned by Locator.Locate when a platform query fails.
// It matches ErrEnumerationUnavailable and unwraps to the provider error.
type EnumerationError struct {
	Op  string
	Err error
}

func (e *EnumerationError) Error() string {
	return ErrEnumerationUnavailable.Error() + ": " + e.Op + ": " + e.Err.Error()
}

func (e *EnumerationError) Unwrap() error {
	return e.Err
}

func (e *EnumerationError) Is(target error) bool {
	return target == ErrEnumerationUnavailable
}
