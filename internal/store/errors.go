package store

import (
	"errors"
	"fmt"
)

// Kind classifies a store failure so the HTTP layer can map it to a status
// code without string matching.
type Kind int

const (
	// KindInvalidInput marks a missing or malformed field.
	KindInvalidInput Kind = iota
	// KindDuplicate marks a uniqueness violation, including a friend request
	// already existing in either direction for a pair.
	KindDuplicate
	// KindNotFound marks a referenced entity that does not exist.
	KindNotFound
	// KindForbidden marks an authenticated caller acting on an entity they
	// are not authorized for.
	KindForbidden
	// KindPrecondition marks a state-machine precondition that is not met,
	// e.g. a request not yet accepted or two users not being friends.
	KindPrecondition
)

// Error is the caller-visible failure type for every store operation.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// Is lets errors.Is match two store errors by kind alone.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

func invalidInput(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

func duplicate(format string, args ...any) *Error {
	return &Error{Kind: KindDuplicate, Message: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func precondition(format string, args ...any) *Error {
	return &Error{Kind: KindPrecondition, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind from err, or ok=false if err is not a store error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
