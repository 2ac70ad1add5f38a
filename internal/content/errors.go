package content

import (
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("content not found")

// ValidationError rejects a change set before anything is written.
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

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ConflictError reports values that collide with existing rows.
type ConflictError struct {
	Message string
	Values  []string
}

func (e *ConflictError) Error() string {
	if len(e.Values) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Values, ", "))
}

// UploadError is returned when the media host rejects one of the submitted files.
type UploadError struct {
	Index int
	Name  string
	Err   error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("failed to upload image %d (%s): %v", e.Index, e.Name, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}
