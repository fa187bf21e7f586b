package login

import (
	"errors"
	"fmt"
)

var (
	ErrBusy          = errors.New("login step already in progress")
	ErrDone          = errors.New("login already completed")
	ErrUnknownStatus = errors.New("unknown login status")
)

// UnknownStatusError is returned when a bridge answers with a status that its login flow
// doesn't know about.
type UnknownStatusError struct {
	Service string
	Status  Status
}

func UnknownStatus(service string, status Status) error {
	return &UnknownStatusError{Service: service, Status: status}
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("unexpected login state %q from %s", e.Status, e.Service)
}

func (e *UnknownStatusError) Unwrap() error {
	return ErrUnknownStatus
}

// ValidationError is returned when the current step has missing or malformed fields.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
