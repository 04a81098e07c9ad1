package model

import (
	"github.com/mistral-io/phaseanalysis/pkg/coding"
)

// ChannelNames lists the per-metric activity columns of the input dataset, in the order they are stored in
// Job.Channels.
var ChannelNames = [NumChannels]string{
	"md_file_create",
	"md_file_delete",
	"md_mod",
	"md_other",
	"md_read",
	"read_bytes",
	"read_calls",
	"write_bytes",
	"write_calls",
}

const NumChannels = 9

// Job is the immutable analysis record of a single batch job.  Jobs are shared by pointer between all
// comparison workers and must not be modified once loaded.
type Job struct {
	ID          int64
	Abs         coding.Coding
	AbsAggZeros coding.Coding
	Channels    [NumChannels]coding.Coding
	// Phases detected in Abs.  Never empty for a job taking part in a comparison.
	Phases []coding.Coding
}

// OutputRow holds the scores of one pairwise comparison.
type OutputRow struct {
	JobID1         int64
	JobID2         int64
	NumPhases1     int
	NumPhases2     int
	SimAbs         float64
	SimAbsAggZeros float64
	SimChannels    float64
	SimPhases      float64
}

// OutputColumns names the fields of an OutputRow as written by every sink.
var OutputColumns = []string{
	"jobid_1",
	"jobid_2",
	"num_phases_1",
	"num_phases_2",
	"sim_abs",
	"sim_abs_aggzeros",
	"sim_hex",
	"sim_phases",
}

// Values returns the row's fields in OutputColumns order.
func (r OutputRow) Values() []any {
	return []any{
		r.JobID1,
		r.JobID2,
		r.NumPhases1,
		r.NumPhases2,
		r.SimAbs,
		r.SimAbsAggZeros,
		r.SimChannels,
		r.SimPhases,
	}
}
