// Package errors provides custom error types for the shopsync system.
// These errors enable programmatic error checking throughout the
// application: callers branch on sentinels with errors.Is rather than
// matching message strings.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// As is an alias for the standard library errors.As.
var As = errors.As

// Is is an alias for the standard library errors.Is.
var Is = errors.Is

// Common sentinel errors for the shopsync system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrTokenExpired indicates the provider rejected an access token as expired
	ErrTokenExpired = errors.New("access token expired")

	// ErrDeclined indicates the operator declined an interactive confirmation
	ErrDeclined = errors.New("declined by operator")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoCredentials indicates no stored credential is available for a provider
	ErrNoCredentials = errors.New("no stored credentials")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ProviderError represents a rejection from the marketplace API. It carries
// the provider's {error, error_description} body verbatim so callers see
// exactly what the counterparty reported. Provider errors are never retried
// by the client beyond the single token-refresh cycle.
type ProviderError struct {
	Code        string // the provider's "error" field
	Description string // the provider's "error_description" field
	Endpoint    string // resource path that produced the error
	StatusCode  int
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("provider error on %s: %s: %s", e.Endpoint, e.Code, e.Description)
	}
	return fmt.Sprintf("provider error: %s: %s", e.Code, e.Description)
}

// Is implements errors.Is support. A provider error matches ErrTokenExpired
// only when it has the exact expired-token shape the provider documents.
func (e *ProviderError) Is(target error) bool {
	if target == ErrTokenExpired {
		return e.Code == "invalid_token" && e.Description == "access token is expired"
	}
	return false
}

// NewProviderError creates a new ProviderError
func NewProviderError(code, description, endpoint string, statusCode int) *ProviderError {
	return &ProviderError{
		Code:        code,
		Description: description,
		Endpoint:    endpoint,
		StatusCode:  statusCode,
	}
}

// IOError represents a file system operation failure
type IOError struct {
	Operation string // read, write, create, delete
	Path      string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
}

// Unwrap implements errors.Unwrap support
func (e *IOError) Unwrap() error {
	return e.Err
}

// ParseError represents a failure to decode persisted or received data.
// Malformed local state is fatal: it propagates unchanged with no
// auto-repair attempted.
type ParseError struct {
	Format  string // json, form
	Source  string // file path or endpoint
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("failed to parse %s from %s: %s", e.Format, e.Source, e.Message)
	}
	return fmt.Sprintf("failed to parse %s from %s: %v", e.Format, e.Source, e.Err)
}

// Unwrap implements errors.Unwrap support
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration problem
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config error in %s: %s: %v", e.Component, e.Message, e.Err)
	}
	return fmt.Sprintf("config error in %s: %s", e.Component, e.Message)
}

// Unwrap implements errors.Unwrap support
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// AuthenticationError represents a failure to authenticate against the provider
type AuthenticationError struct {
	Provider string
	Message  string
	Err      error
}

// Error implements the error interface
func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed for %s: %s", e.Provider, e.Message)
}

// Unwrap implements errors.Unwrap support
func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// IsNotFound checks if an error indicates a missing resource
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTokenExpired checks if an error is the provider's expired-token shape
func IsTokenExpired(err error) bool {
	return errors.Is(err, ErrTokenExpired)
}

// IsDeclined checks if an error is an operator declining a confirmation.
// Declines are normal early exits, not failures.
func IsDeclined(err error) bool {
	return errors.Is(err, ErrDeclined)
}

// WrapIO wraps an error with file operation context
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Operation: operation, Path: path, Err: err}
}

// WrapParse wraps an error with parsing context
func WrapParse(format, source string, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{Format: format, Source: source, Err: err}
}
