// Package sink writes the rows that survive the similarity threshold to one or more destinations.
package sink

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/mistral-io/phaseanalysis/internal/common/runctx"
	"github.com/mistral-io/phaseanalysis/internal/phaseanalysis/model"
)

// TableName is the table database sinks write to.
const TableName = "job_similarity"

type Type string

const (
	Csv        Type = "csv"
	Sqlite     Type = "sqlite"
	Postgres   Type = "postgres"
	ClickHouse Type = "clickhouse"
)

var validTypes = map[Type]bool{
	Csv:        true,
	Sqlite:     true,
	Postgres:   true,
	ClickHouse: true,
}

// UnmarshalText allows a Type to be decoded from configuration, case-insensitively.
func (t *Type) UnmarshalText(text []byte) error {
	candidate := Type(strings.ToLower(strings.TrimSpace(string(text))))
	if !validTypes[candidate] {
		types := maps.Keys(validTypes)
		slices.Sort(types)
		return errors.Errorf("unknown sink type %q.  Valid types are %v", string(text), types)
	}
	*t = candidate
	return nil
}

// Sink receives comparison rows in the order the aggregator accepts them.  Write may buffer; rows are only
// guaranteed to be persisted once Flush returns.
type Sink interface {
	Name() string
	Write(ctx *runctx.Context, row model.OutputRow) error
	Flush(ctx *runctx.Context) error
	Close() error
}

// Config selects and configures the sinks of a run.
type Config struct {
	Sinks  []Type `validate:"required,min=1,dive,oneof=csv sqlite postgres clickhouse"`
	Csv    CsvConfig
	Sqlite SqliteConfig
	// Connection parameters in libpq keyword form, e.g. host, port, user, password, dbname, sslmode.
	Postgres   PostgresConfig
	ClickHouse ClickHouseConfig
	// Number of times a flush to a database is attempted before the run fails.
	MaxAttempts int `validate:"gte=1"`
	// Upper bound on the wait between flush attempts.
	MaxBackoff time.Duration
}

type CsvConfig struct {
	Path string
}

type SqliteConfig struct {
	Path string
}

type PostgresConfig struct {
	Connection map[string]string
}

type ClickHouseConfig struct {
	Addr     string
	Database string
	Username string
	Password string
}
