package engine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mistral-io/phaseanalysis/internal/common/analysiserrors"
	"github.com/mistral-io/phaseanalysis/internal/common/runctx"
	"github.com/mistral-io/phaseanalysis/internal/phaseanalysis/model"
	"github.com/mistral-io/phaseanalysis/internal/phaseanalysis/phases"
	"github.com/mistral-io/phaseanalysis/pkg/coding"
)

func testJobs(n int) []*model.Job {
	jobs := make([]*model.Job, n)
	for i := range jobs {
		abs := coding.Coding{uint16(i%3 + 1), 0, uint16(i%5 + 1)}
		jobs[i] = &model.Job{
			ID:          int64(1000 + i),
			Abs:         abs,
			AbsAggZeros: coding.Coding{uint16(i%3 + 1), uint16(i%5 + 1)},
			Phases:      phases.NewDetector(1).Detect(abs),
		}
	}
	return jobs
}

func collect(t *testing.T, results <-chan []model.OutputRow) [][]model.OutputRow {
	t.Helper()
	var batches [][]model.OutputRow
	timeout := time.After(10 * time.Second)
	for {
		select {
		case batch, ok := <-results:
			if !ok {
				return batches
			}
			batches = append(batches, batch)
		case <-timeout:
			t.Fatalf("timed out waiting for results")
		}
	}
}

func TestEngine_ComparesEveryPairOnce(t *testing.T) {
	tests := map[string]struct {
		numJobs          int
		nrows            int
		numWorkers       int
		resultBufferSize int
		expectedUnits    int
	}{
		"no jobs":                {numJobs: 0, nrows: 10, numWorkers: 2, expectedUnits: 0},
		"single job":             {numJobs: 1, nrows: 10, numWorkers: 2, expectedUnits: 0},
		"two jobs":               {numJobs: 2, nrows: 10, numWorkers: 2, expectedUnits: 1},
		"many jobs":              {numJobs: 40, nrows: 100, numWorkers: 4, expectedUnits: 39},
		"single worker":          {numJobs: 10, nrows: 100, numWorkers: 1, expectedUnits: 9},
		"more workers than jobs": {numJobs: 3, nrows: 100, numWorkers: 16, expectedUnits: 2},
		"nrows caps universe":    {numJobs: 40, nrows: 7, numWorkers: 3, expectedUnits: 6},
		"nrows zero":             {numJobs: 40, nrows: 0, numWorkers: 3, expectedUnits: 0},
		"bounded buffer":         {numJobs: 25, nrows: 100, numWorkers: 4, resultBufferSize: 1, expectedUnits: 24},
		"default workers":        {numJobs: 5, nrows: 100, numWorkers: 0, expectedUnits: 4},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			jobs := testJobs(tc.numJobs)
			e, err := New(jobs, tc.nrows, tc.numWorkers, tc.resultBufferSize, phases.JobSimilarity)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedUnits, e.UnitsOfWork())

			batches := collect(t, e.Start(runctx.Discard()))
			assert.Len(t, batches, tc.expectedUnits)

			universe := min(tc.nrows, tc.numJobs)
			seen := map[string]bool{}
			for _, batch := range batches {
				require.NotEmpty(t, batch)
				for k, row := range batch {
					assert.Less(t, row.JobID1, row.JobID2)
					assert.Equal(t, batch[0].JobID1, row.JobID1)
					if k > 0 {
						assert.Less(t, batch[k-1].JobID2, row.JobID2)
					}
					assert.Less(t, row.JobID2, int64(1000+universe))
					key := fmt.Sprintf("%d-%d", row.JobID1, row.JobID2)
					assert.False(t, seen[key], "pair %s seen twice", key)
					seen[key] = true
				}
			}
			assert.Len(t, seen, universe*(universe-1)/2)
		})
	}
}

func TestEngine_Compare(t *testing.T) {
	left := &model.Job{
		ID:          1,
		Abs:         coding.Coding{1, 2, 3, 4},
		AbsAggZeros: coding.Coding{1, 2, 3, 4},
		Channels:    [model.NumChannels]coding.Coding{{1, 2, 3, 4}, {0, 1, 0, 0}},
		Phases:      []coding.Coding{{1, 2, 3, 4}},
	}
	right := &model.Job{
		ID:          2,
		Abs:         coding.Coding{1, 2, 3, 4, 5},
		AbsAggZeros: coding.Coding{1, 2, 3, 4},
		Channels:    [model.NumChannels]coding.Coding{{1, 2, 3, 4, 5}, {0, 0, 0, 0, 1}},
		Phases:      []coding.Coding{{1, 2, 3, 4, 5}, {9}},
	}
	e, err := New([]*model.Job{left, right}, 2, 1, 0, phases.JobSimilarity)
	require.NoError(t, err)

	row := e.Compare(left, right)
	assert.Equal(t, int64(1), row.JobID1)
	assert.Equal(t, int64(2), row.JobID2)
	assert.Equal(t, 1, row.NumPhases1)
	assert.Equal(t, 2, row.NumPhases2)
	assert.InDelta(t, 0.8, row.SimAbs, 0.001)
	assert.Equal(t, 1.0, row.SimAbsAggZeros)
	// Channels 0 and 1 score 0.8 and 0.6, the seven empty channels score 1 each.
	assert.InDelta(t, (0.8+0.6+7)/9, row.SimChannels, 0.001)
	assert.InDelta(t, (0.8+0.8+0)/3, row.SimPhases, 0.001)
}

func TestEngine_IdenticalJobs(t *testing.T) {
	job := func(id int64) *model.Job {
		return &model.Job{
			ID:          id,
			Abs:         coding.Coding{3, 3, 0, 7},
			AbsAggZeros: coding.Coding{3, 3, 7},
			Channels:    [model.NumChannels]coding.Coding{{1}, {2}, {3}, {4}, {5}, {6}, {7}, {8}, {9}},
			Phases:      []coding.Coding{{3, 3}, {7}},
		}
	}
	e, err := New([]*model.Job{job(1), job(2), job(3)}, 10, 2, 0, phases.JobSimilarity)
	require.NoError(t, err)
	for _, batch := range collect(t, e.Start(runctx.Discard())) {
		for _, row := range batch {
			assert.Equal(t, 1.0, row.SimAbs)
			assert.Equal(t, 1.0, row.SimAbsAggZeros)
			assert.Equal(t, 1.0, row.SimChannels)
			assert.Equal(t, 1.0, row.SimPhases)
		}
	}
}

func TestEngine_SharesJobsReadOnly(t *testing.T) {
	jobs := testJobs(6)
	before := fmt.Sprintf("%v", jobs[3])
	e, err := New(jobs, 6, 3, 0, phases.JobSimilarity)
	require.NoError(t, err)
	collect(t, e.Start(runctx.Discard()))
	assert.Equal(t, before, fmt.Sprintf("%v", jobs[3]))
}

func TestEngine_StartsNoMoreWorkersThanUnits(t *testing.T) {
	logger, hook := test.NewNullLogger()
	ctx := runctx.New(context.Background(), logrus.NewEntry(logger))
	e, err := New(testJobs(3), 10, 72, 0, phases.JobSimilarity)
	require.NoError(t, err)

	collect(t, e.Start(ctx))
	assert.Equal(t, "Started 2 workers on 2 units of work", hook.AllEntries()[0].Message)
}

func TestEngine_Cancel(t *testing.T) {
	ctx, cancel := runctx.WithCancel(runctx.Discard())
	e, err := New(testJobs(50), 50, 2, 1, phases.JobSimilarity)
	require.NoError(t, err)

	results := e.Start(ctx)
	<-results
	cancel()
	// The channel is closed without every unit having been published.
	batches := collect(t, results)
	assert.Less(t, len(batches), e.UnitsOfWork())
}

func TestNew_InvalidArguments(t *testing.T) {
	tests := map[string]struct {
		nrows, numWorkers, resultBufferSize int
		compare                             phases.SimilarityFunc
		argument                            string
	}{
		"negative nrows":       {nrows: -1, compare: phases.JobSimilarity, argument: "nrows"},
		"negative workers":     {numWorkers: -1, compare: phases.JobSimilarity, argument: "numWorkers"},
		"negative buffer size": {resultBufferSize: -1, compare: phases.JobSimilarity, argument: "resultBufferSize"},
		"no phase similarity":  {argument: "comparePhases"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := New(testJobs(2), tc.nrows, tc.numWorkers, tc.resultBufferSize, tc.compare)
			var invalid *analysiserrors.ErrInvalidArgument
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, tc.argument, invalid.Name)
		})
	}
}
