package apierrors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so the caller can decide whether to surface it,
// fall back to a default value, or reject the request.
type Kind string

const (
	KindValidation  Kind = "validation"  // missing/invalid request fields
	KindUpstream    Kind = "upstream"    // external API failure
	KindPersistence Kind = "persistence" // database failure
	KindSignature   Kind = "signature"   // webhook signature rejected
	KindNotFound    Kind = "not_found"   // entity does not exist
)

// Error carries a failure kind alongside the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a classified error without an underlying cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies an underlying error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from err, or KindUpstream if unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUpstream
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
