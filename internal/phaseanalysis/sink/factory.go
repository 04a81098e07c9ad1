package sink

import (
	"github.com/pkg/errors"

	"github.com/mistral-io/phaseanalysis/internal/common/runctx"
)

// Open opens every sink named in config, creating database tables where they do not yet exist.  Rows written to
// database sinks are tagged with runId.  If any sink cannot be opened, those already open are closed again.
func Open(ctx *runctx.Context, config Config, runId string) (*Multi, error) {
	sinks := make([]Sink, 0, len(config.Sinks))
	for _, t := range config.Sinks {
		s, err := open(ctx, t, config, runId)
		if err != nil {
			if closeErr := NewMulti(sinks...).Close(); closeErr != nil {
				ctx.Log.WithError(closeErr).Warn("Error closing sinks")
			}
			return nil, errors.WithMessagef(err, "error opening %s sink", t)
		}
		ctx.Log.Infof("Opened %s sink", t)
		sinks = append(sinks, s)
	}
	return NewMulti(sinks...), nil
}

func open(ctx *runctx.Context, t Type, config Config, runId string) (Sink, error) {
	switch t {
	case Csv:
		return OpenCsv(config.Csv.Path)
	case Sqlite:
		return OpenSqlite(ctx, config.Sqlite.Path, runId, config.MaxAttempts, config.MaxBackoff)
	case Postgres:
		return OpenPostgres(ctx, config.Postgres, runId, config.MaxAttempts, config.MaxBackoff)
	case ClickHouse:
		return OpenClickHouse(ctx, config.ClickHouse, runId, config.MaxAttempts, config.MaxBackoff)
	default:
		return nil, errors.Errorf("unknown sink type %q", t)
	}
}

// Migrate creates the output tables of the database sinks named in config without writing any rows.
func Migrate(ctx *runctx.Context, config Config) error {
	for _, t := range config.Sinks {
		if t == Csv {
			continue
		}
		s, err := open(ctx, t, config, "")
		if err != nil {
			return errors.WithMessagef(err, "error migrating %s sink", t)
		}
		if err := s.Close(); err != nil {
			return err
		}
		ctx.Log.Infof("Schema of %s sink is up to date", t)
	}
	return nil
}
