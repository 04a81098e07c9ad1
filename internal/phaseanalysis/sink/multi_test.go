package sink

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mistral-io/phaseanalysis/internal/common/runctx"
	"github.com/mistral-io/phaseanalysis/internal/phaseanalysis/model"
)

type recordingSink struct {
	name     string
	written  []model.OutputRow
	flushes  int
	closed   bool
	closeErr error
	flushErr error
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Write(_ *runctx.Context, row model.OutputRow) error {
	s.written = append(s.written, row)
	return nil
}

func (s *recordingSink) Flush(_ *runctx.Context) error {
	s.flushes++
	return s.flushErr
}

func (s *recordingSink) Close() error {
	s.closed = true
	return s.closeErr
}

func TestMulti_FansOut(t *testing.T) {
	ctx := runctx.Discard()
	a, b := &recordingSink{name: "a"}, &recordingSink{name: "b"}
	m := NewMulti(a, b)

	for _, row := range testRows {
		require.NoError(t, m.Write(ctx, row))
	}
	require.NoError(t, m.Flush(ctx))
	require.NoError(t, m.Close())

	assert.Equal(t, "a,b", m.Name())
	for _, s := range []*recordingSink{a, b} {
		assert.Equal(t, testRows, s.written)
		assert.Equal(t, 1, s.flushes)
		assert.True(t, s.closed)
	}
}

func TestMulti_FlushStopsAtFirstFailure(t *testing.T) {
	a := &recordingSink{name: "a", flushErr: fmt.Errorf("broken pipe")}
	b := &recordingSink{name: "b"}
	err := NewMulti(a, b).Flush(runctx.Discard())
	assert.ErrorContains(t, err, "error flushing a sink")
	assert.Equal(t, 0, b.flushes)
}

func TestMulti_CloseReportsEveryFailure(t *testing.T) {
	a := &recordingSink{name: "a", closeErr: fmt.Errorf("first")}
	b := &recordingSink{name: "b", closeErr: fmt.Errorf("second")}
	err := NewMulti(a, b).Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first")
	assert.Contains(t, err.Error(), "second")
	assert.True(t, b.closed)
}

func TestOpen(t *testing.T) {
	ctx := runctx.Discard()
	dir := t.TempDir()
	config := Config{
		Sinks:       []Type{Csv, Sqlite},
		Csv:         CsvConfig{Path: filepath.Join(dir, "similarity.csv")},
		Sqlite:      SqliteConfig{Path: filepath.Join(dir, "similarity.db")},
		MaxAttempts: 1,
	}
	m, err := Open(ctx, config, "run")
	require.NoError(t, err)
	assert.Equal(t, "csv,sqlite", m.Name())
	require.NoError(t, m.Write(ctx, testRows[0]))
	require.NoError(t, m.Flush(ctx))
	require.NoError(t, m.Close())
}

func TestOpen_FailureClosesOpenedSinks(t *testing.T) {
	dir := t.TempDir()
	config := Config{
		Sinks:       []Type{Csv, Sqlite},
		Csv:         CsvConfig{Path: filepath.Join(dir, "similarity.csv")},
		MaxAttempts: 1,
	}
	_, err := Open(runctx.Discard(), config, "run")
	assert.ErrorContains(t, err, "error opening sqlite sink")
}

func TestMigrate(t *testing.T) {
	config := Config{
		Sinks:       []Type{Csv, Sqlite},
		Sqlite:      SqliteConfig{Path: filepath.Join(t.TempDir(), "similarity.db")},
		MaxAttempts: 1,
	}
	require.NoError(t, Migrate(runctx.Discard(), config))
}
