package sink

import (
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/mistral-io/phaseanalysis/internal/common/runctx"
	"github.com/mistral-io/phaseanalysis/internal/phaseanalysis/metrics"
	"github.com/mistral-io/phaseanalysis/internal/phaseanalysis/model"
)

// Multi writes every row to each of its sinks in turn.
type Multi struct {
	sinks []Sink
}

func NewMulti(sinks ...Sink) *Multi {
	return &Multi{sinks: sinks}
}

func (m *Multi) Name() string {
	names := make([]string, len(m.sinks))
	for i, s := range m.sinks {
		names[i] = s.Name()
	}
	return strings.Join(names, ",")
}

func (m *Multi) Write(ctx *runctx.Context, row model.OutputRow) error {
	for _, s := range m.sinks {
		if err := s.Write(ctx, row); err != nil {
			return errors.WithMessagef(err, "error writing to %s sink", s.Name())
		}
	}
	return nil
}

// Flush flushes each sink, stopping at the first failure.
func (m *Multi) Flush(ctx *runctx.Context) error {
	for _, s := range m.sinks {
		start := time.Now()
		if err := s.Flush(ctx); err != nil {
			return errors.WithMessagef(err, "error flushing %s sink", s.Name())
		}
		metrics.Get().RecordSinkFlush(s.Name(), time.Since(start))
	}
	return nil
}

// Close closes every sink, even if some fail, and returns all of the failures.
func (m *Multi) Close() error {
	var result *multierror.Error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			result = multierror.Append(result, errors.WithMessagef(err, "error closing %s sink", s.Name()))
		}
	}
	return result.ErrorOrNil()
}
