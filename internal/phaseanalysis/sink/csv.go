package sink

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"

	"github.com/mistral-io/phaseanalysis/internal/common/runctx"
	"github.com/mistral-io/phaseanalysis/internal/phaseanalysis/model"
)

// CsvSink writes rows to a CSV file with a header line naming the output columns.
type CsvSink struct {
	w      *csv.Writer
	closer io.Closer
	record []string
}

// OpenCsv creates (or truncates) the file at path and writes the header.
func OpenCsv(path string) (*CsvSink, error) {
	if path == "" {
		return nil, errors.New("a csv output path is required")
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.WithMessagef(err, "unable to create output %s", path)
	}
	s, err := NewCsvSink(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	s.closer = f
	return s, nil
}

// NewCsvSink writes to w.  Closing the sink flushes it but does not close w.
func NewCsvSink(w io.Writer) (*CsvSink, error) {
	s := &CsvSink{
		w:      csv.NewWriter(w),
		record: make([]string, len(model.OutputColumns)),
	}
	if err := s.w.Write(model.OutputColumns); err != nil {
		return nil, errors.WithStack(err)
	}
	return s, nil
}

func (s *CsvSink) Name() string {
	return string(Csv)
}

func (s *CsvSink) Write(_ *runctx.Context, row model.OutputRow) error {
	s.record[0] = strconv.FormatInt(row.JobID1, 10)
	s.record[1] = strconv.FormatInt(row.JobID2, 10)
	s.record[2] = strconv.Itoa(row.NumPhases1)
	s.record[3] = strconv.Itoa(row.NumPhases2)
	s.record[4] = formatSimilarity(row.SimAbs)
	s.record[5] = formatSimilarity(row.SimAbsAggZeros)
	s.record[6] = formatSimilarity(row.SimChannels)
	s.record[7] = formatSimilarity(row.SimPhases)
	return errors.WithStack(s.w.Write(s.record))
}

func (s *CsvSink) Flush(_ *runctx.Context) error {
	s.w.Flush()
	return errors.WithStack(s.w.Error())
}

func (s *CsvSink) Close() error {
	s.w.Flush()
	err := s.w.Error()
	if s.closer != nil {
		if closeErr := s.closer.Close(); err == nil {
			err = closeErr
		}
	}
	return errors.WithStack(err)
}

func formatSimilarity(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
