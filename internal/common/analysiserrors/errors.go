// Package analysiserrors contains the error types returned when input to an analysis run is unusable.
// Callers recover them with errors.As, which looks through any messages added with errors.WithMessage.
package analysiserrors

import (
	"fmt"
)

// ErrMalformedRecord is returned when a record of the input dataset cannot be parsed.
// Field and Value are optional and are omitted from the error message if not provided.
type ErrMalformedRecord struct {
	Line    int    // 1-based line of the input file, counting the header
	Field   string // Column that could not be parsed, e.g., "coding_abs"
	Value   string // The offending raw value
	Message string // An optional message, e.g., the underlying parse failure
}

func (err *ErrMalformedRecord) Error() (s string) {
	if err.Field != "" {
		s = fmt.Sprintf("malformed record on line %d: value %q is invalid for column %q", err.Line, err.Value, err.Field)
	} else {
		s = fmt.Sprintf("malformed record on line %d", err.Line)
	}
	if err.Message != "" {
		s = s + fmt.Sprintf("; %s", err.Message)
	}
	return
}

// ErrInvalidArgument is a generic error to be returned on invalid argument.
// Message is optional and is omitted from the error message if not provided.
type ErrInvalidArgument struct {
	Name    string // Name of the argument referred to, e.g., "batchSize"
	Value   any    // The invalid value that was provided
	Message string // An optional message explaining why the value is invalid
}

func (err *ErrInvalidArgument) Error() string {
	if err.Message == "" {
		return fmt.Sprintf("value %v is invalid for argument %q", err.Value, err.Name)
	} else {
		return fmt.Sprintf("value %v is invalid for argument %q; %s", err.Value, err.Name, err.Message)
	}
}
