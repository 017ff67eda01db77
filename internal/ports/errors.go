package ports

import (
	"errors"
	"fmt"
)

// ErrConfigNotFound reports a study file that does not exist.
var ErrConfigNotFound = errors.New("study file not found")

// ConfigError ties a failure to the study source that produced it.
type ConfigError struct {
	// Source is the file path, or "reader" for in-memory input.
	Source string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("study %s: %v", e.Source, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError wraps err with the study source it came from.
func NewConfigError(source string, err error) *ConfigError {
	return &ConfigError{Source: source, Err: err}
}
