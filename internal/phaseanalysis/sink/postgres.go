package sink

import (
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/mistral-io/phaseanalysis/internal/common/database"
	"github.com/mistral-io/phaseanalysis/internal/common/runctx"
	"github.com/mistral-io/phaseanalysis/internal/phaseanalysis/model"
)

// PostgresSink bulk loads rows into PostgreSQL with COPY.
type PostgresSink struct {
	*bufferedSink
	pool *pgxpool.Pool
}

// OpenPostgres connects to the database and brings its schema up to date.
func OpenPostgres(ctx *runctx.Context, config PostgresConfig, runId string, maxAttempts int, maxBackoff time.Duration) (*PostgresSink, error) {
	if len(config.Connection) == 0 {
		return nil, errors.New("postgres connection parameters are required")
	}
	pool, err := database.OpenPgxPool(ctx, config.Connection)
	if err != nil {
		return nil, errors.WithMessage(err, "error opening connection to postgres")
	}
	if err := MigratePostgres(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return NewPostgresSink(pool, runId, maxAttempts, maxBackoff), nil
}

// NewPostgresSink writes through an existing pool, which must already hold the output table.
func NewPostgresSink(pool *pgxpool.Pool, runId string, maxAttempts int, maxBackoff time.Duration) *PostgresSink {
	s := &PostgresSink{
		bufferedSink: newBufferedSink(runId, maxAttempts, maxBackoff),
		pool:         pool,
	}
	s.insert = s.insertRows
	return s
}

// MigratePostgres applies any outstanding schema migrations.
func MigratePostgres(ctx *runctx.Context, db database.Querier) error {
	migrations, err := database.ReadMigrations(postgresMigrations, "migrations/postgres")
	if err != nil {
		return errors.WithMessage(err, "error reading postgres migrations")
	}
	return errors.WithMessage(database.UpdateDatabase(ctx, db, migrations), "error migrating postgres")
}

func (s *PostgresSink) Name() string {
	return string(Postgres)
}

func (s *PostgresSink) insertRows(ctx *runctx.Context, rows []model.OutputRow) error {
	values := make([][]any, len(rows))
	for i, row := range rows {
		values[i] = s.values(row)
	}
	n, err := s.pool.CopyFrom(ctx, pgx.Identifier{TableName}, columns, pgx.CopyFromRows(values))
	if err != nil {
		return errors.WithMessagef(err, "copying %d rows", len(rows))
	}
	ctx.Log.Debugf("Copied %d rows into postgres", n)
	return nil
}

func (s *PostgresSink) Close() error {
	if n := s.pending(); n > 0 {
		log.Warnf("Discarding %d unflushed rows on closing the postgres sink", n)
	}
	s.pool.Close()
	return nil
}
