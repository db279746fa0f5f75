// Package errors provides custom error types for the stock sync system.
// These errors enable programmatic error checking and make the
// fatal-vs-recoverable distinction explicit throughout the pipeline.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is reports whether any error in err's tree matches target.
// It's an alias for the standard library errors.Is for convenience.
var Is = errors.Is

// As finds the first error in err's tree that matches target.
// It's an alias for the standard library errors.As for convenience.
var As = errors.As

// Common sentinel errors for the stock sync system
var (
	// ErrLocationNotFound indicates the target location could not be
	// resolved by the catalog. Fatal for the run: nothing can be
	// reconciled without a location scope.
	ErrLocationNotFound = errors.New("location not found")

	// ErrRateLimited indicates the remote side signalled throttling
	ErrRateLimited = errors.New("rate limited")

	// ErrAuthFailed indicates a credential was rejected
	ErrAuthFailed = errors.New("authentication failed")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")
)

// ConfigError represents a configuration error: a required credential,
// endpoint, or identifier is missing or malformed. Always fatal, raised
// before any network call is made.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// APIError represents an error from a remote HTTP endpoint.
type APIError struct {
	Source     string // "catalog" or the supplier name
	StatusCode int
	Message    string
	Endpoint   string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error from %s (status %d): %s", e.Source, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error from %s: %s", e.Source, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *APIError) Is(target error) bool {
	switch {
	case e.StatusCode == 429:
		return target == ErrRateLimited
	case e.StatusCode == 401 || e.StatusCode == 403:
		return target == ErrAuthFailed
	}
	return false
}

// NewAPIError creates a new APIError
func NewAPIError(source string, statusCode int, message string) *APIError {
	return &APIError{
		Source:     source,
		StatusCode: statusCode,
		Message:    message,
	}
}

// GraphQLError represents a top-level errors payload returned by the
// catalog's GraphQL endpoint. The transport succeeded; the query did not.
type GraphQLError struct {
	Messages []string
	Codes    []string
}

// Error implements the error interface
func (e *GraphQLError) Error() string {
	return fmt.Sprintf("graphql errors: %v", e.Messages)
}

// Is implements errors.Is support. A THROTTLED code maps to ErrRateLimited
// so callers can retry with the same check they use for HTTP 429.
func (e *GraphQLError) Is(target error) bool {
	if target == ErrRateLimited {
		return e.Throttled()
	}
	return false
}

// Throttled reports whether the error payload carries the catalog's
// throttle code.
func (e *GraphQLError) Throttled() bool {
	for _, code := range e.Codes {
		if code == "THROTTLED" {
			return true
		}
	}
	return false
}

// ParseError represents an error when parsing response data
type ParseError struct {
	Format  string // "json", "yaml"
	Subject string // what was being parsed
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("%s parse error in %s: %s", e.Format, e.Subject, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, subject string, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{
		Format:  format,
		Subject: subject,
		Message: err.Error(),
		Err:     err,
	}
}

// Helper functions for error checking

// IsRateLimited checks if an error is a rate limit error
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsAuthFailed checks if an error is an authentication error
func IsAuthFailed(err error) bool {
	return errors.Is(err, ErrAuthFailed)
}

// IsLocationNotFound checks if an error means the target location
// could not be resolved
func IsLocationNotFound(err error) bool {
	return errors.Is(err, ErrLocationNotFound)
}
