package search

import (
	"fmt"
	"strings"
)

// ValidationError reports a missing or malformed input detected before any
// network call was made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// UpstreamError reports a failed call to a provider: network failure,
// non-2xx status, provider-reported error or undecodable payload.
type UpstreamError struct {
	Provider string
	// HTTPStatus is zero when no response was received.
	HTTPStatus int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Provider)
	if e.HTTPStatus != 0 {
		fmt.Fprintf(&sb, " [%d]", e.HTTPStatus)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// ChainError is returned when every engine of a fallback chain failed.
type ChainError struct {
	Providers []string
	Errs      []error
}

func (e *ChainError) Error() string {
	parts := make([]string, 0, len(e.Errs))
	for i, err := range e.Errs {
		parts = append(parts, fmt.Sprintf("%s: %v", e.Providers[i], err))
	}
	return fmt.Sprintf("all %d provider(s) failed (%s): %s",
		len(e.Providers), strings.Join(e.Providers, ", "), strings.Join(parts, "; "))
}

// Unwrap exposes every underlying failure to errors.Is / errors.As.
func (e *ChainError) Unwrap() []error {
	return e.Errs
}

// SelectionError wraps a source-selection failure with a user-facing hint.
type SelectionError struct {
	Mode Mode
	Hint string
	Err  error
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Hint, e.Err)
}

func (e *SelectionError) Unwrap() error {
	return e.Err
}
