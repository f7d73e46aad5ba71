package domain

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed input: a missing field, a non-positive
// duration, an unknown service and the like.
type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

// NotFoundError reports a shop or booking that does not exist, or a shop that
// is not currently accepting bookings.
type NotFoundError struct {
	Resource string
	ID       string
	Err      error
}

func (e NotFoundError) Error() string {
	switch {
	case e.Resource != "" && e.ID != "":
		return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
	case e.Resource != "":
		return fmt.Sprintf("%s not found", e.Resource)
	default:
		return "not found"
	}
}

func (e NotFoundError) Unwrap() error { return e.Err }

// ConflictError reports a slot that is no longer free, or any other write that
// lost against state it could not see when the request was prepared.
type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// InvalidTransitionError reports a status change the lifecycle table forbids.
type InvalidTransitionError struct {
	Resource string
	From     string
	To       string
}

func (e InvalidTransitionError) Error() string {
	resource := e.Resource
	if resource == "" {
		resource = "status"
	}
	return fmt.Sprintf("%s cannot move from %q to %q", resource, e.From, e.To)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsInvalidTransition(err error) bool {
	var target InvalidTransitionError
	return errors.As(err, &target)
}

// ErrLockTimeout is returned when a per-shop booking lock could not be taken
// before the caller's wait budget ran out. It is an infrastructure fault, not a
// business outcome.
var ErrLockTimeout = errors.New("timed out waiting for booking lock")
