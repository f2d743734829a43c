package shared

import (
	"errors"
	"fmt"
)

type ErrorSource int

const (
	ErrorSourceModel ErrorSource = iota
	ErrorSourceAgent
	ErrorSourceSystem
	ErrorSourceUser
	ErrorSourceUnknown
)

// Error tags a failure with the part of the system it originated from, so
// callers can decide whether it is worth surfacing on the terminal.
type Error struct {
	Source  ErrorSource
	Message string
	Err     error
}

func Errorf(source ErrorSource, format string, a ...any) *Error {
	return &Error{
		Source:  source,
		Message: fmt.Sprintf(format, a...),
	}
}

func Wrap(source ErrorSource, err error, format string, a ...any) *Error {
	return &Error{
		Source:  source,
		Message: fmt.Sprintf(format, a...),
		Err:     err,
	}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}

	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func (e *Error) As(target any) bool {
	return errors.As(e.Err, target)
}
