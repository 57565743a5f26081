package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("not found")
	ErrNoRoomAvailable = fmt.Errorf("%w: no free room of the category for the requested dates", ErrNotFound)
	ErrInvalidState    = errors.New("invalid state")
	ErrConflict        = errors.New("conflict")
	ErrConcurrency     = errors.New("concurrent modification, retry the operation")
)

// ValidationError carries per-field messages. errors.Is(err, ErrValidation) holds for it.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation error: " + e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+e.Fields[k])
	}
	msg := e.Message
	if msg == "" {
		msg = "invalid fields"
	}
	return fmt.Sprintf("validation error: %s (%s)", msg, strings.Join(parts, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalidf builds a ValidationError without field details.
func Invalidf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// InvalidField builds a ValidationError for a single field.
func InvalidField(field, message string) error {
	return &ValidationError{Message: message, Fields: map[string]string{field: message}}
}
