// Package domain holds the quote and source entities, the quote-of-the-day
// selection rules and the error taxonomy. Errors here carry no transport
// meaning; adapters map them to status codes.
package domain

import (
	"errors"
	"fmt"
)

// Sentinels every typed error below unwraps to. Match with errors.Is.
var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation failed")
	ErrUnavailable = errors.New("unavailable")
)

// NotFoundError names a missing entity, e.g. quote with a given id.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Entity + " not found"
	}

	return fmt.Sprintf("%s with id %q not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// EmptyCollectionError is returned when random or quote-of-the-day
// selection runs against an empty store.
type EmptyCollectionError struct {
	Entity string
}

func (e *EmptyCollectionError) Error() string { return "no " + e.Entity + " available" }

func (e *EmptyCollectionError) Unwrap() error { return ErrNotFound }

// ValidationError rejects a caller-supplied value. Value is echoed in
// error details when set.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}

	return "validation failed for " + e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// SearchTermTooShortError rejects a search fragment under MinLength runes.
type SearchTermTooShortError struct {
	Term      string
	MinLength int
}

func (e *SearchTermTooShortError) Error() string {
	return fmt.Sprintf("search term must be at least %d characters long", e.MinLength)
}

func (e *SearchTermTooShortError) Unwrap() error { return ErrValidation }

// UnavailableError reports a dependency, usually the upstream quote
// service, that could not serve the request.
type UnavailableError struct {
	Service string
	Reason  string
}

func (e *UnavailableError) Error() string {
	msg := fmt.Sprintf("service %q unavailable", e.Service)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}

	return msg
}

func (e *UnavailableError) Unwrap() error { return ErrUnavailable }

func NewNotFoundError(entity, id string) error { return &NotFoundError{Entity: entity, ID: id} }

func NewEmptyCollectionError(entity string) error { return &EmptyCollectionError{Entity: entity} }

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewValidationErrorWithValue is NewValidationError that also records the
// rejected value.
func NewValidationErrorWithValue(field, message string, value any) error {
	return &ValidationError{Field: field, Message: message, Value: value}
}

func NewSearchTermTooShortError(term string, minLength int) error {
	return &SearchTermTooShortError{Term: term, MinLength: minLength}
}

func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason}
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

func IsUnavailable(err error) bool { return errors.Is(err, ErrUnavailable) }

// IsSearchTermTooShort reports whether err is, or wraps, a
// SearchTermTooShortError. It is also IsValidation.
func IsSearchTermTooShort(err error) bool {
	var tooShort *SearchTermTooShortError
	return errors.As(err, &tooShort)
}
