package errors

import (
	"fmt"
	"strings"
	"time"
)

// ParseError represents a YAML parsing failure with optional line metadata.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}

	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError captures challenge or configuration validation issues.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// EnvironmentError indicates the host is not ready to run the provisioning
// tool: the terraform binary is missing or required provider credentials are
// absent. It is raised before any subprocess is spawned.
type EnvironmentError struct {
	Provider string
	Missing  []string
	Message  string
}

// NewEnvironmentError constructs an EnvironmentError.
func NewEnvironmentError(provider, message string, missing []string) error {
	return &EnvironmentError{Provider: provider, Message: message, Missing: missing}
}

func (e *EnvironmentError) Error() string {
	if e == nil {
		return ""
	}
	if len(e.Missing) > 0 {
		return fmt.Sprintf("environment error [%s]: %s (missing: %s)", e.Provider, e.Message, strings.Join(e.Missing, ", "))
	}
	if e.Provider != "" {
		return fmt.Sprintf("environment error [%s]: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("environment error: %s", e.Message)
}

// ExecutionError represents a subprocess that ran and failed. Stderr carries
// the captured error text when the command was not run interactively.
type ExecutionError struct {
	Command string
	Stderr  string
	Err     error
}

// NewExecutionError constructs an ExecutionError.
func NewExecutionError(command, stderr string, err error) error {
	return &ExecutionError{Command: command, Stderr: stderr, Err: err}
}

func (e *ExecutionError) Error() string {
	if e == nil {
		return ""
	}
	if e.Stderr != "" {
		return fmt.Sprintf("execution error: %s: %v: %s", e.Command, e.Err, e.Stderr)
	}
	return fmt.Sprintf("execution error: %s: %v", e.Command, e.Err)
}

// Unwrap exposes the root error.
func (e *ExecutionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// TimeoutError marks a subprocess that exceeded its wall-clock budget and was
// killed. It is deliberately distinct from ExecutionError so callers can tell
// a slow command apart from a failing one.
type TimeoutError struct {
	Command string
	Timeout time.Duration
}

// NewTimeoutError constructs a TimeoutError.
func NewTimeoutError(command string, timeout time.Duration) error {
	return &TimeoutError{Command: command, Timeout: timeout}
}

func (e *TimeoutError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("timeout error: %s: command timed out after %s", e.Command, e.Timeout)
}

// ResolutionError reports a variable reference that could not be resolved to
// a literal value. Resolution failures are non-fatal: the caller logs the
// error and passes the original reference text through unchanged.
type ResolutionError struct {
	Reference string
	Reason    string
}

// NewResolutionError constructs a ResolutionError.
func NewResolutionError(reference, reason string) error {
	return &ResolutionError{Reference: reference, Reason: reason}
}

func (e *ResolutionError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("resolution error: %s: %s", e.Reference, e.Reason)
}
