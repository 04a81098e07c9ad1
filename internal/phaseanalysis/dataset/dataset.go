// Package dataset loads per-job activity codings from the CSV export of the monitoring database.
package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"

	"github.com/mistral-io/phaseanalysis/internal/common/analysiserrors"
	"github.com/mistral-io/phaseanalysis/internal/common/runctx"
	"github.com/mistral-io/phaseanalysis/internal/phaseanalysis/model"
	"github.com/mistral-io/phaseanalysis/internal/phaseanalysis/phases"
	"github.com/mistral-io/phaseanalysis/pkg/coding"
)

const (
	JobIdColumn            = "jobid"
	CodingAbsColumn        = "coding_abs"
	CodingAbsAggZeroColumn = "coding_abs_aggzeros"
)

// Stats describes the outcome of a load.
type Stats struct {
	Records int
	// Records dropped because no phase was detected in them.
	Dropped int
}

// Load reads the dataset at path.  See Read.
func Load(ctx *runctx.Context, path string, detect phases.DetectFunc) ([]*model.Job, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, errors.WithMessagef(err, "unable to open dataset %s", path)
	}
	defer f.Close()
	jobs, stats, err := Read(ctx, f, detect)
	if err != nil {
		return nil, stats, errors.WithMessagef(err, "error reading dataset %s", path)
	}
	return jobs, stats, nil
}

// Read parses a CSV stream with a header row.  Columns are located by name, so their order does not matter and
// unrecognised columns are ignored.  Any record that cannot be parsed aborts the load with an
// *analysiserrors.ErrMalformedRecord.  Jobs in which detect finds no phase are dropped.  File order is preserved.
func Read(ctx *runctx.Context, r io.Reader, detect phases.DetectFunc) ([]*model.Job, Stats, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return []*model.Job{}, Stats{}, nil
	} else if err != nil {
		return nil, Stats{}, asMalformed(err, 1)
	}
	cols, err := newColumnIndex(header)
	if err != nil {
		return nil, Stats{}, err
	}

	var stats Stats
	jobs := make([]*model.Job, 0)
	for {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, stats, asMalformed(err, stats.Records+2)
		}
		stats.Records++
		line, _ := reader.FieldPos(0)
		job, err := cols.parse(record, line)
		if err != nil {
			return nil, stats, err
		}
		job.Phases = detect(job.Abs)
		if len(job.Phases) == 0 {
			stats.Dropped++
			continue
		}
		jobs = append(jobs, job)
	}
	ctx.Log.Infof("Loaded %d jobs from %d records, dropped %d without phases", len(jobs), stats.Records, stats.Dropped)
	return jobs, stats, nil
}

type columnIndex struct {
	jobId       int
	abs         int
	absAggZeros int
	channels    [model.NumChannels]int
}

func newColumnIndex(header []string) (*columnIndex, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		positions[name] = i
	}
	lookup := func(name string) (int, error) {
		i, ok := positions[name]
		if !ok {
			return 0, &analysiserrors.ErrMalformedRecord{Line: 1, Message: "missing column " + name}
		}
		return i, nil
	}

	var cols columnIndex
	var err error
	if cols.jobId, err = lookup(JobIdColumn); err != nil {
		return nil, err
	}
	if cols.abs, err = lookup(CodingAbsColumn); err != nil {
		return nil, err
	}
	if cols.absAggZeros, err = lookup(CodingAbsAggZeroColumn); err != nil {
		return nil, err
	}
	for k, name := range model.ChannelNames {
		if cols.channels[k], err = lookup(name); err != nil {
			return nil, err
		}
	}
	return &cols, nil
}

func (c *columnIndex) parse(record []string, line int) (*model.Job, error) {
	id, err := strconv.ParseInt(record[c.jobId], 10, 64)
	if err != nil {
		return nil, &analysiserrors.ErrMalformedRecord{Line: line, Field: JobIdColumn, Value: record[c.jobId], Message: err.Error()}
	}
	job := &model.Job{ID: id}
	if job.Abs, err = decode(record, c.abs, CodingAbsColumn, line); err != nil {
		return nil, err
	}
	if job.AbsAggZeros, err = decode(record, c.absAggZeros, CodingAbsAggZeroColumn, line); err != nil {
		return nil, err
	}
	for k, name := range model.ChannelNames {
		if job.Channels[k], err = decode(record, c.channels[k], name, line); err != nil {
			return nil, err
		}
	}
	return job, nil
}

func decode(record []string, i int, column string, line int) (coding.Coding, error) {
	c, err := coding.Decode(record[i])
	if err != nil {
		return nil, &analysiserrors.ErrMalformedRecord{Line: line, Field: column, Value: record[i], Message: err.Error()}
	}
	return c, nil
}

func asMalformed(err error, line int) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return &analysiserrors.ErrMalformedRecord{Line: parseErr.Line, Message: parseErr.Err.Error()}
	}
	return &analysiserrors.ErrMalformedRecord{Line: line, Message: err.Error()}
}
