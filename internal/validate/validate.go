// Package validate checks submitted item and account fields and applies the
// cross-field rules for sold prices and dates. Every function is pure apart
// from the caller-supplied clock.
package validate

import "fmt"

// FieldError is a user-correctable problem with one submitted field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func fieldError(field, message string) *FieldError {
	return &FieldError{Field: field, Message: message}
}
