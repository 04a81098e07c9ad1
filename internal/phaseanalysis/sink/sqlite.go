package sink

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/mistral-io/phaseanalysis/internal/common/runctx"
	"github.com/mistral-io/phaseanalysis/internal/phaseanalysis/model"
)

var sqliteInsert = fmt.Sprintf(
	"INSERT INTO %s (%s) VALUES (%s)",
	TableName,
	strings.Join(columns, ", "),
	strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", "),
)

// SqliteSink appends rows to the job_similarity table of a SQLite database file.  Each flush is one
// transaction.
type SqliteSink struct {
	*bufferedSink
	db *sql.DB
}

// OpenSqlite opens, creating if needed, the database at path and ensures the output table exists.
func OpenSqlite(ctx *runctx.Context, path string, runId string, maxAttempts int, maxBackoff time.Duration) (*SqliteSink, error) {
	if path == "" {
		return nil, errors.New("a sqlite output path is required")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.WithMessagef(err, "could not make directory %s for sqlite database", dir)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WithMessagef(err, "error opening sqlite database %s", path)
	}
	// A single connection serialises writers, which SQLite requires anyway.
	db.SetMaxOpenConns(1)

	s := &SqliteSink{
		bufferedSink: newBufferedSink(runId, maxAttempts, maxBackoff),
		db:           db,
	}
	s.insert = s.insertRows
	if err := s.setup(ctx); err != nil {
		_ = db.Close()
		return nil, errors.WithMessagef(err, "error setting up sqlite database %s", path)
	}
	return s, nil
}

func (s *SqliteSink) setup(ctx *runctx.Context) error {
	pragmas := []string{"PRAGMA journal_mode=WAL", "PRAGMA synchronous=NORMAL"}
	schema, err := readSchema("sqlite.sql")
	if err != nil {
		return err
	}
	for _, stmt := range append(pragmas, schema...) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.WithMessagef(err, "error executing %q", stmt)
		}
	}
	return nil
}

func (s *SqliteSink) Name() string {
	return string(Sqlite)
}

func (s *SqliteSink) insertRows(ctx *runctx.Context, rows []model.OutputRow) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WithStack(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	stmt, err := tx.PrepareContext(ctx, sqliteInsert)
	if err != nil {
		return errors.WithStack(err)
	}
	defer stmt.Close()
	for _, row := range rows {
		if _, err = stmt.ExecContext(ctx, s.values(row)...); err != nil {
			return errors.WithStack(err)
		}
	}
	return errors.WithStack(tx.Commit())
}

func (s *SqliteSink) Close() error {
	if n := s.pending(); n > 0 {
		log.Warnf("Discarding %d unflushed rows on closing the sqlite sink", n)
	}
	return errors.WithStack(s.db.Close())
}
