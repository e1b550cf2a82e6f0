package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jobseeker-app/apiserver/internal/store"
)

// ErrInvalidCredentials is returned by Login for an unknown email or a wrong
// password alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

// FieldError describes one rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is a request rejected field by field.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError reports a single invalid field.
func NewValidationError(field, message string) ValidationErrors {
	return ValidationErrors{{Field: field, Message: message}}
}

// ConflictError is a uniqueness violation. ExistingID names the record that
// already holds the slot when it is known.
type ConflictError struct {
	Message    string
	ExistingID string
	JobID      string
}

func (e *ConflictError) Error() string {
	if e.ExistingID != "" {
		return fmt.Sprintf("%s (existing %s)", e.Message, e.ExistingID)
	}
	return e.Message
}

func (e *ConflictError) Unwrap() error {
	return store.ErrConflict
}

// NotFoundError names the missing resource. It matches store.ErrNotFound.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

func (e *NotFoundError) Unwrap() error {
	return store.ErrNotFound
}

func notFound(resource string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return &NotFoundError{Resource: resource}
	}
	return err
}

// UploadError rejects an attachment before anything is stored.
type UploadError struct {
	Message string
}

func (e *UploadError) Error() string {
	return e.Message
}
