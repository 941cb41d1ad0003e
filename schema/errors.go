package schema

import (
	"errors"
	"fmt"
)

// ConfigurationError reports a malformed weight vector, threshold or option.
// It is raised before any pair is scored.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s %s", e.Field, e.Reason)
}

// ValidationError reports a record that cannot take part in comparison.
type ValidationError struct {
	RecordID string // may be empty when the id itself is missing
	Row      int    // 1-based input position, 0 when unknown
	Reason   string
}

func (e *ValidationError) Error() string {
	switch {
	case e.RecordID != "":
		return fmt.Sprintf("invalid record %q: %s", e.RecordID, e.Reason)
	case e.Row > 0:
		return fmt.Sprintf("invalid record at row %d: %s", e.Row, e.Reason)
	default:
		return fmt.Sprintf("invalid record: %s", e.Reason)
	}
}

// IsConfigurationError reports whether err wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsValidationError reports whether err wraps a ValidationError.
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// ValidationErrors unwraps every ValidationError contained in err.
func ValidationErrors(err error) []*ValidationError {
	if err == nil {
		return nil
	}
	var out []*ValidationError
	var walk func(error)
	walk = func(e error) {
		if ve, ok := e.(*ValidationError); ok {
			out = append(out, ve)
			return
		}
		switch u := e.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			if inner := u.Unwrap(); inner != nil {
				walk(inner)
			}
		}
	}
	walk(err)
	return out
}
