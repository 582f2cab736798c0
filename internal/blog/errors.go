package blog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sampleprojects/postandcomments/internal/db/interfaces"
)

const (
	MaxTitleLength       = 255
	MaxDescriptionLength = 5000
	MaxTagNameLength     = 255
)

// ErrInvalidArgument marks errors caused by a bad caller supplied value
// that has no more specific validation error.
var ErrInvalidArgument = errors.New("invalid argument")

// NotFoundError reports a missing resource.
type NotFoundError struct {
	Resource string
	Field    string
	Value    any
}

func (e *NotFoundError) Error() string {
	field := e.Field
	if field == "" {
		field = "id"
	}
	return fmt.Sprintf("%s with %s %v not found", e.Resource, field, e.Value)
}

// ValidationError carries every problem found while validating one request.
type ValidationError struct {
	Message string
	Errors  []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Errors, "; ")
}

func newValidationError(msg string, problems ...string) *ValidationError {
	return &ValidationError{Message: msg, Errors: problems}
}

// checkID rejects ids that cannot name a persisted row.
func checkID(resource string, id int64) error {
	switch {
	case id == 0:
		msg := resource + " id cannot be null"
		return newValidationError(msg, msg)
	case id < 0:
		msg := resource + " id must be greater than 0"
		return newValidationError(msg, msg)
	}
	return nil
}

// notFound turns a repository ErrNotFound into a NotFoundError and wraps
// everything else.
func notFound(resource string, id int64, err error) error {
	if errors.Is(err, interfaces.ErrNotFound) {
		return &NotFoundError{Resource: resource, Value: id}
	}
	return fmt.Errorf("%s %d: %w", strings.ToLower(resource), id, err)
}
