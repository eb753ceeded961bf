package config

import (
	"fmt"
	"strings"
)

// Error types reported in ConfigurationError.ErrorType.
const (
	ErrorTypeIO         = "io"
	ErrorTypeParse      = "parse"
	ErrorTypeValidation = "validation"
	ErrorTypeLookup     = "lookup"
)

// ConfigurationError represents a structured error that occurs during cluster
// configuration loading or lookup.
type ConfigurationError struct {
	FilePath    string   `json:"filePath"`    // Full path to the file that caused the error
	Cluster     string   `json:"cluster"`     // Cluster entry the error relates to, if any
	ErrorType   string   `json:"errorType"`   // io, parse, validation or lookup
	Message     string   `json:"message"`     // Human-readable error message
	Details     string   `json:"details"`     // Additional details about the error
	Suggestions []string `json:"suggestions"` // Actionable suggestions to fix the error
	Err         error    `json:"-"`
}

// Error implements the error interface
func (ce *ConfigurationError) Error() string {
	if ce.Cluster != "" {
		return fmt.Sprintf("[%s] %s (cluster %q): %s", ce.ErrorType, ce.FilePath, ce.Cluster, ce.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", ce.ErrorType, ce.FilePath, ce.Message)
}

func (ce *ConfigurationError) Unwrap() error {
	return ce.Err
}

// DetailedError returns a detailed error message with all context
func (ce *ConfigurationError) DetailedError() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("Configuration Error in %s", ce.FilePath))
	if ce.Cluster != "" {
		parts = append(parts, fmt.Sprintf("  Cluster: %s", ce.Cluster))
	}
	parts = append(parts, fmt.Sprintf("  Type: %s", ce.ErrorType))
	parts = append(parts, fmt.Sprintf("  Error: %s", ce.Message))

	if ce.Details != "" {
		parts = append(parts, fmt.Sprintf("  Details: %s", ce.Details))
	}

	if len(ce.Suggestions) > 0 {
		parts = append(parts, "  Suggestions:")
		for _, suggestion := range ce.Suggestions {
			parts = append(parts, fmt.Sprintf("    - %s", suggestion))
		}
	}

	return strings.Join(parts, "\n")
}

func newConfigurationError(path, cluster, errorType, message string, err error) *ConfigurationError {
	return &ConfigurationError{
		FilePath:  path,
		Cluster:   cluster,
		ErrorType: errorType,
		Message:   message,
		Err:       err,
	}
}
