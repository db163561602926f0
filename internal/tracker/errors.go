package tracker

import "errors"

var (
	// ErrInvalidTransition means the operation is not legal in the user's current state
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrInvalidInput means the argument is missing, malformed or out of range
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound means there is no cycle for the requested date
	ErrNotFound = errors.New("not found")
	// ErrStorageFailure means the store did not complete a read or write
	ErrStorageFailure = errors.New("storage failure")
)

// IsUserError reports whether err is caused by the user rather than the system
func IsUserError(err error) bool {
	return errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrNotFound)
}
