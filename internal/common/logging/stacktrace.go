package logging

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const StacktraceField = "stacktrace"

// Implemented by errors created or wrapped by pkg/errors.
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// WithStacktrace adds err and, if one was recorded anywhere in its chain, the innermost pkg/errors
// stack trace to the entry.
func WithStacktrace(entry *logrus.Entry, err error) *logrus.Entry {
	entry = entry.WithError(err)
	if stack := ExtractStack(err); stack != nil {
		entry = entry.WithField(StacktraceField, stack)
	}
	return entry
}

// ExtractStack returns the stack trace recorded closest to the root cause of err, or nil if the chain
// carries none.
func ExtractStack(err error) errors.StackTrace {
	var stack errors.StackTrace
	for err != nil {
		if st, ok := err.(stackTracer); ok {
			stack = st.StackTrace()
		}
		err = errors.Unwrap(err)
	}
	return stack
}
