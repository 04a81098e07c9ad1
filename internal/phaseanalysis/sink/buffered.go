package sink

import (
	"embed"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/mistral-io/phaseanalysis/internal/common/runctx"
	"github.com/mistral-io/phaseanalysis/internal/common/util"
	"github.com/mistral-io/phaseanalysis/internal/phaseanalysis/model"
)

//go:embed schema/*.sql
var schemas embed.FS

//go:embed migrations/postgres/*.sql
var postgresMigrations embed.FS

// columns of TableName, in insertion order.
var columns = append([]string{"run_id"}, model.OutputColumns...)

// bufferedSink accumulates rows between flushes and hands them to insert as one batch.  A failed insert is
// retried with backoff; the buffer is kept until an insert succeeds.
type bufferedSink struct {
	rows        []model.OutputRow
	runId       string
	maxAttempts int
	maxBackoff  time.Duration
	insert      func(ctx *runctx.Context, rows []model.OutputRow) error
}

func newBufferedSink(runId string, maxAttempts int, maxBackoff time.Duration) *bufferedSink {
	return &bufferedSink{
		runId:       runId,
		maxAttempts: maxAttempts,
		maxBackoff:  maxBackoff,
	}
}

func (s *bufferedSink) Write(_ *runctx.Context, row model.OutputRow) error {
	s.rows = append(s.rows, row)
	return nil
}

func (s *bufferedSink) Flush(ctx *runctx.Context) error {
	if len(s.rows) == 0 {
		return nil
	}
	err := util.RetryWithBackoff(ctx, s.maxAttempts, s.maxBackoff, func() error {
		err := s.insert(ctx, s.rows)
		if err != nil {
			ctx.Log.WithError(err).Warnf("Failed to insert %d rows", len(s.rows))
		}
		return err
	})
	if err != nil {
		return errors.WithMessagef(err, "unable to insert %d rows", len(s.rows))
	}
	s.rows = s.rows[:0]
	return nil
}

func (s *bufferedSink) pending() int {
	return len(s.rows)
}

func (s *bufferedSink) values(row model.OutputRow) []any {
	return append([]any{s.runId}, row.Values()...)
}

// statements splits a schema file into its individual statements.
func statements(schema string) []string {
	var result []string
	for _, stmt := range strings.Split(schema, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			result = append(result, stmt)
		}
	}
	return result
}

func readSchema(name string) ([]string, error) {
	b, err := schemas.ReadFile("schema/" + name)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return statements(string(b)), nil
}
