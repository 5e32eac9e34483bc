package validator

import (
	"errors"
	"fmt"
)

// ConfigurationError represents a construction-time failure.
//
// Configuration errors are fatal and fail fast: no comparison work starts
// until the key column exists in both tables and every column referenced
// by the expected-type and label maps exists in the before table.
//
// Per-cell and per-row problems are NOT errors; they are converted into
// verdicts and aggregated so the report is always producible once
// construction succeeds.
type ConfigurationError struct {
	// Code identifies the error category.
	Code ConfigErrorCode

	// Message is a human-readable description.
	Message string

	// Column is the offending column name, when one applies.
	Column string

	// Side identifies the affected table ("before" or "after").
	Side string
}

// ConfigErrorCode categorizes configuration errors.
type ConfigErrorCode string

const (
	// ErrCodeMissingKeyColumn indicates the primary key column is absent.
	ErrCodeMissingKeyColumn ConfigErrorCode = "MISSING_KEY_COLUMN"

	// ErrCodeUnknownColumn indicates an expected-type or label mapping
	// references a column that does not exist.
	ErrCodeUnknownColumn ConfigErrorCode = "UNKNOWN_COLUMN"

	// ErrCodeInvalidOptions indicates the options failed validation.
	ErrCodeInvalidOptions ConfigErrorCode = "INVALID_OPTIONS"
)

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Column != "" && e.Side != "" {
		return fmt.Sprintf("%s: %s (column=%s, table=%s)", e.Code, e.Message, e.Column, e.Side)
	}
	if e.Column != "" {
		return fmt.Sprintf("%s: %s (column=%s)", e.Code, e.Message, e.Column)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsConfigurationError returns true if err is a ConfigurationError.
// Uses errors.As to handle wrapped errors.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// NewMissingKeyError creates a ConfigurationError for an absent key column.
func NewMissingKeyError(column, side string) *ConfigurationError {
	return &ConfigurationError{
		Code:    ErrCodeMissingKeyColumn,
		Message: "primary key column not found",
		Column:  column,
		Side:    side,
	}
}

// NewUnknownColumnError creates a ConfigurationError for a mapping that
// references a nonexistent column. field names the offending option
// ("expected_types" or "labels").
func NewUnknownColumnError(column, field string) *ConfigurationError {
	return &ConfigurationError{
		Code:    ErrCodeUnknownColumn,
		Message: fmt.Sprintf("%s references a column that does not exist", field),
		Column:  column,
	}
}
