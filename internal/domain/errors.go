package domain

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("record not found")
var ErrNotUnique = errors.New("record not unique")
var ErrNoPermission = errors.New("no permission")
var ErrInvalidData = errors.New("invalid data")

// ValidationError is returned if an override does not satisfy the constraints of its MariaDB variable.
// It always wraps ErrInvalidData.
type ValidationError struct {
	Variable VariableName
	Reason   string
}

func NewValidationError(variable VariableName, format string, args ...any) *ValidationError {
	return &ValidationError{
		Variable: variable,
		Reason:   fmt.Sprintf(format, args...),
	}
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidData
}
