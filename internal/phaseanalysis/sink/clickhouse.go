package sink

import (
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/mistral-io/phaseanalysis/internal/common/runctx"
	"github.com/mistral-io/phaseanalysis/internal/phaseanalysis/model"
)

// ClickHouseSink sends each flush to ClickHouse as a single native batch.
type ClickHouseSink struct {
	*bufferedSink
	conn driver.Conn
}

// OpenClickHouse connects to the server and creates the output table if it does not exist.
func OpenClickHouse(ctx *runctx.Context, config ClickHouseConfig, runId string, maxAttempts int, maxBackoff time.Duration) (*ClickHouseSink, error) {
	if config.Addr == "" {
		return nil, errors.New("a clickhouse address is required")
	}
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{config.Addr},
		Auth: clickhouse.Auth{
			Database: config.Database,
			Username: config.Username,
			Password: config.Password,
		},
		DialTimeout: 5 * time.Second,
		Compression: &clickhouse.Compression{Method: clickhouse.CompressionLZ4},
	})
	if err != nil {
		return nil, errors.WithMessagef(err, "could not connect to clickhouse on %s", config.Addr)
	}
	if err = conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, errors.WithMessagef(err, "could not ping clickhouse on %s", config.Addr)
	}
	if err = MigrateClickHouse(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	s := &ClickHouseSink{
		bufferedSink: newBufferedSink(runId, maxAttempts, maxBackoff),
		conn:         conn,
	}
	s.insert = s.insertRows
	return s, nil
}

// MigrateClickHouse creates the output table if it does not exist.
func MigrateClickHouse(ctx *runctx.Context, conn driver.Conn) error {
	schema, err := readSchema("clickhouse.sql")
	if err != nil {
		return err
	}
	for _, stmt := range schema {
		if err := conn.Exec(ctx, stmt); err != nil {
			return errors.WithMessage(err, "error creating clickhouse schema")
		}
	}
	return nil
}

func (s *ClickHouseSink) Name() string {
	return string(ClickHouse)
}

func (s *ClickHouseSink) insertRows(ctx *runctx.Context, rows []model.OutputRow) error {
	batch, err := s.conn.PrepareBatch(ctx, "INSERT INTO "+TableName)
	if err != nil {
		return errors.WithStack(err)
	}
	for _, row := range rows {
		err := batch.Append(
			s.runId,
			row.JobID1,
			row.JobID2,
			int32(row.NumPhases1),
			int32(row.NumPhases2),
			row.SimAbs,
			row.SimAbsAggZeros,
			row.SimChannels,
			row.SimPhases,
		)
		if err != nil {
			_ = batch.Abort()
			return errors.WithStack(err)
		}
	}
	return errors.WithMessagef(batch.Send(), "sending %d rows", len(rows))
}

func (s *ClickHouseSink) Close() error {
	if n := s.pending(); n > 0 {
		log.Warnf("Discarding %d unflushed rows on closing the clickhouse sink", n)
	}
	return errors.WithStack(s.conn.Close())
}
