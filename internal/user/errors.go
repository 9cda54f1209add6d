package user

import (
	"errors"
	"strconv"
	"strings"
)

// Domain errors. The HTTP handler maps these to 400 with the message as the
// response body; messages are part of the wire contract and must not change.
var (
	ErrNoUser     = errors.New("No user by this id")
	ErrUserExists = errors.New("User already created")
	ErrUnderage   = errors.New("User must be 18 years or older")
	ErrBadRange   = errors.New("Range can't be equal or less than 0")
)

// NotFoundError is raised by the validation gate when the update target is
// missing; unlike ErrNoUser its message carries the id.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return "User not found with id: " + strconv.FormatInt(e.ID, 10)
}

// Is lets errors.Is(err, ErrNoUser) match gate failures too.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNoUser
}

// ValidationError aggregates field-level violations. Each message is
// terminated with "!", matching the legacy aggregation format.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	for _, v := range e.Violations {
		b.WriteString(v)
		b.WriteString("!")
	}
	return b.String()
}

// StoreError wraps a persistence-layer fault. Handlers map it to 500.
type StoreError struct {
	Err error
}

func (e *StoreError) Error() string {
	return "store error: " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
