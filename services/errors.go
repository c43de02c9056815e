package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyCart is returned by Commit before any write when the cart has no lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrNotFound reports a menu item, category or order that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrItemUnavailable is returned when a sold out item is added to a cart.
	ErrItemUnavailable = errors.New("menu item is sold out")
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field that failed validation. It is always
// returned before any storage call.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) errOrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// HasField reports whether field is among the violations.
func (e *ValidationError) HasField(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// CommitFailedError wraps the storage failure that aborted an order commit.
// Nothing from the failed commit is persisted.
type CommitFailedError struct {
	Cause error
}

func (e *CommitFailedError) Error() string {
	return fmt.Sprintf("commit failed: %v", e.Cause)
}

func (e *CommitFailedError) Unwrap() error {
	return e.Cause
}
