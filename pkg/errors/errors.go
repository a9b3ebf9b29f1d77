package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrorType categorizes different error types
type ErrorType string

const (
	// Network errors: the request never produced an HTTP response.
	ErrorTypeNetwork ErrorType = "network"
	ErrorTypeTimeout ErrorType = "timeout"

	// Authentication errors: HTTP 401.
	ErrorTypeAuth ErrorType = "auth"

	// Validation errors are raised locally before any request is sent.
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeFileNotFound ErrorType = "file_not_found"

	// Server errors: a response arrived but it was not a success.
	ErrorTypeServer ErrorType = "server"

	ErrorTypeUnknown ErrorType = "unknown"
)

// CLIError represents a structured error with context
type CLIError struct {
	Type       ErrorType
	Message    string
	Cause      error
	Suggestion string
	StatusCode int
	Field      string
}

// Error implements the error interface
func (e *CLIError) Error() string {
	return e.Message
}

// WithSuggestion adds a helpful suggestion to the error
func (e *CLIError) WithSuggestion(suggestion string) *CLIError {
	e.Suggestion = suggestion
	return e
}

// HasSuggestion returns true if the error has a suggestion
func (e *CLIError) HasSuggestion() bool {
	return e.Suggestion != ""
}

// Unwrap returns the underlying error
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// NewCLIError creates a new CLI error
func NewCLIError(errorType ErrorType, message string, cause error) *CLIError {
	return &CLIError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// NetworkError creates a network error
func NetworkError(message string, cause error) *CLIError {
	err := NewCLIError(ErrorTypeNetwork, message, cause)
	err.Suggestion = "Check your internet connection and try again."
	return err
}

// TimeoutError creates a timeout error
func TimeoutError(cause error) *CLIError {
	err := NewCLIError(ErrorTypeTimeout, "Request timed out", cause)
	err.Suggestion = "The server is taking too long to respond. Try again in a moment."
	return err
}

// AuthError creates an authentication error
func AuthError(message string) *CLIError {
	err := NewCLIError(ErrorTypeAuth, message, nil)
	err.StatusCode = 401
	err.Suggestion = "Log in again with 'campus auth login'."
	return err
}

// ValidationError creates a validation error
func ValidationError(field, reason string) *CLIError {
	err := NewCLIError(ErrorTypeValidation, reason, nil)
	err.Field = field
	return err
}

// FileNotFoundError creates a file not found error
func FileNotFoundError(path string) *CLIError {
	err := NewCLIError(ErrorTypeFileNotFound, fmt.Sprintf("File not found: %s", path), nil)
	err.Field = "file"
	err.Suggestion = "Check the file path and try again."
	return err
}

// ServerError creates a server error. An empty message falls back to a
// generic one built from the status code.
func ServerError(statusCode int, message string) *CLIError {
	if message == "" {
		if statusCode > 0 {
			message = fmt.Sprintf("Server error (HTTP %d)", statusCode)
		} else {
			message = "Server error"
		}
	}
	err := NewCLIError(ErrorTypeServer, message, nil)
	err.StatusCode = statusCode
	if statusCode >= 500 {
		err.Suggestion = "The server encountered an error. Try again in a few moments."
	}
	return err
}

// FromStatus maps a non-success HTTP status to the taxonomy.
func FromStatus(statusCode int, message string) *CLIError {
	if statusCode == 401 {
		if message == "" {
			message = "Not logged in"
		}
		return AuthError(message)
	}
	return ServerError(statusCode, message)
}

func typeOf(err error) ErrorType {
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr.Type
	}
	return ""
}

// IsNetwork reports whether err is a transport failure, timeouts included.
func IsNetwork(err error) bool {
	t := typeOf(err)
	return t == ErrorTypeNetwork || t == ErrorTypeTimeout
}

// IsAuth reports whether err means the session is missing or expired.
func IsAuth(err error) bool {
	return typeOf(err) == ErrorTypeAuth
}

// IsServer reports whether err carries a non-success server response.
func IsServer(err error) bool {
	return typeOf(err) == ErrorTypeServer
}

// IsValidation reports whether err was raised by local input checks.
func IsValidation(err error) bool {
	t := typeOf(err)
	return t == ErrorTypeValidation || t == ErrorTypeFileNotFound
}

// CategorizeError converts a standard error into a CLIError
func CategorizeError(err error) *CLIError {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return TimeoutError(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return TimeoutError(err)
		}
		return NetworkError("Could not reach the server", err)
	}

	errMsg := err.Error()
	switch {
	case strings.Contains(errMsg, "connection refused"):
		return NetworkError("Could not connect to server. Make sure it's running.", err)
	case strings.Contains(errMsg, "no such host"):
		return NetworkError("Could not resolve the server address", err)
	case strings.Contains(errMsg, "timeout"):
		return TimeoutError(err)
	default:
		return NewCLIError(ErrorTypeUnknown, errMsg, err)
	}
}

// FormatError returns a user-friendly error message
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	// errors.Join results, e.g. several invalid form fields.
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var sb strings.Builder
		for _, e := range joined.Unwrap() {
			sb.WriteString(FormatError(e))
		}
		return sb.String()
	}

	cliErr := CategorizeError(err)
	var sb strings.Builder

	sb.WriteString("Error")
	if cliErr.Type != ErrorTypeUnknown {
		sb.WriteString(" (")
		sb.WriteString(string(cliErr.Type))
		sb.WriteString(")")
	}
	sb.WriteString(": ")
	if cliErr.Field != "" {
		sb.WriteString(cliErr.Field)
		sb.WriteString(": ")
	}
	sb.WriteString(cliErr.Message)
	sb.WriteString("\n")

	if cliErr.HasSuggestion() {
		sb.WriteString("Suggestion: ")
		sb.WriteString(cliErr.Suggestion)
		sb.WriteString("\n")
	}

	return sb.String()
}
