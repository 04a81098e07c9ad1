package configuration

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"github.com/mistral-io/phaseanalysis/internal/common/config"
	"github.com/mistral-io/phaseanalysis/internal/phaseanalysis/sink"
)

func (c PhaseAnalysisConfiguration) Validate() error {
	if err := config.Validate(c); err != nil {
		return err
	}
	if slices.Contains(c.Output.Sinks, sink.Csv) && c.Output.Csv.Path == "" {
		return errors.New("output.csv.path is required when writing csv output")
	}
	if slices.Contains(c.Output.Sinks, sink.Sqlite) && c.Output.Sqlite.Path == "" {
		return errors.New("output.sqlite.path is required when writing sqlite output")
	}
	if slices.Contains(c.Output.Sinks, sink.Postgres) && len(c.Output.Postgres.Connection) == 0 {
		return errors.New("output.postgres.connection is required when writing postgres output")
	}
	if slices.Contains(c.Output.Sinks, sink.ClickHouse) && c.Output.ClickHouse.Addr == "" {
		return errors.New("output.clickhouse.addr is required when writing clickhouse output")
	}
	return nil
}
