package service

import (
	"errors"
	"strconv"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidFileType    = errors.New("invalid file type")
)

// ValidationError carries a user-facing message; errors.Is matches ErrValidation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ErrNoSelectedFile is the validation error for an upload with an empty file name.
var ErrNoSelectedFile error = &ValidationError{Field: "file", Message: "No selected file"}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// ParseCount parses a form value as an integer no smaller than min.
func ParseCount(field, raw string, min int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, invalid(field, field+" must be a whole number")
	}
	if n < min {
		return 0, invalid(field, field+" must be at least "+strconv.Itoa(min))
	}
	return n, nil
}
