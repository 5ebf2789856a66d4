package config

import "fmt"

// Error reports an invalid or missing configuration field.
// It is returned before any resource is touched.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %q %s", e.Field, e.Reason)
}

func fieldError(field, format string, args ...any) *Error {
	return &Error{Field: field, Reason: fmt.Sprintf(format, args...)}
}
