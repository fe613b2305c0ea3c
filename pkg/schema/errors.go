package schema

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is returned for definition formats other than YAML and JSON.
var ErrUnsupportedFormat = errors.New("unsupported definition format")

// FieldError represents a single metadata field failure.
type FieldError struct {
	Processor string // Owning processor
	Key       string // Metadata key
	Reason    string // Human-readable reason for failure
	Value     any    // The value that failed the check
}

func (e *FieldError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("processor %q metadata %q: %s", e.Processor, e.Key, e.Reason)
	}
	return fmt.Sprintf("processor %q metadata %q: %s (got %T)", e.Processor, e.Key, e.Reason, e.Value)
}

// AggregateError represents multiple failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// Errors returns all failures if err is an AggregateError.
// Otherwise returns nil.
func Errors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}
