// Package engine computes the similarity of every unordered pair of jobs using a fixed pool of workers.
package engine

import (
	"runtime"

	"github.com/mistral-io/phaseanalysis/internal/common/analysiserrors"
	"github.com/mistral-io/phaseanalysis/internal/common/runctx"
	"github.com/mistral-io/phaseanalysis/internal/phaseanalysis/metrics"
	"github.com/mistral-io/phaseanalysis/internal/phaseanalysis/model"
	"github.com/mistral-io/phaseanalysis/internal/phaseanalysis/phases"
	"github.com/mistral-io/phaseanalysis/internal/similarity"
)

// Engine divides the comparison of the first nrows jobs into units of work.  Unit i compares job i with every
// later job and publishes all of those rows as a single batch.  The last job has nothing after it, so there is
// one unit fewer than there are jobs.
type Engine struct {
	jobs             []*model.Job
	numWorkers       int
	resultBufferSize int
	comparePhases    phases.SimilarityFunc
}

// New returns an engine over the first nrows of jobs.  A numWorkers of zero means one worker per CPU.
// A resultBufferSize of zero sizes the result channel to hold every batch, so that workers never wait on the
// consumer; a positive value bounds the number of published batches waiting to be consumed.
func New(jobs []*model.Job, nrows int, numWorkers int, resultBufferSize int, comparePhases phases.SimilarityFunc) (*Engine, error) {
	if nrows < 0 {
		return nil, &analysiserrors.ErrInvalidArgument{Name: "nrows", Value: nrows, Message: "must not be negative"}
	}
	if numWorkers < 0 {
		return nil, &analysiserrors.ErrInvalidArgument{Name: "numWorkers", Value: numWorkers, Message: "must not be negative"}
	}
	if resultBufferSize < 0 {
		return nil, &analysiserrors.ErrInvalidArgument{Name: "resultBufferSize", Value: resultBufferSize, Message: "must not be negative"}
	}
	if comparePhases == nil {
		return nil, &analysiserrors.ErrInvalidArgument{Name: "comparePhases", Value: nil, Message: "a phase similarity function is required"}
	}
	if numWorkers == 0 {
		numWorkers = runtime.NumCPU()
	}
	return &Engine{
		jobs:             jobs[:min(nrows, len(jobs))],
		numWorkers:       numWorkers,
		resultBufferSize: resultBufferSize,
		comparePhases:    comparePhases,
	}, nil
}

// UnitsOfWork is the number of batches Start will publish.
func (e *Engine) UnitsOfWork() int {
	return max(len(e.jobs)-1, 0)
}

// NumWorkers is the size of the worker pool.
func (e *Engine) NumWorkers() int {
	return e.numWorkers
}

// Start launches the worker pool and returns the channel on which each unit's batch is published.  Batches
// arrive in completion order, not unit order.  The channel is closed once every unit has been published, or
// early if ctx is cancelled.
func (e *Engine) Start(ctx *runctx.Context) <-chan []model.OutputRow {
	units := e.UnitsOfWork()
	bufferSize := units
	if e.resultBufferSize > 0 {
		bufferSize = min(e.resultBufferSize, units)
	}
	results := make(chan []model.OutputRow, bufferSize)
	indices := make(chan int)

	g, ctx := runctx.ErrGroup(ctx)
	g.Go(func() error {
		defer close(indices)
		for i := 0; i < units; i++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case indices <- i:
			}
		}
		return nil
	})
	workers := min(e.numWorkers, max(units, 1))
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := range indices {
				rows := e.compareUnit(i)
				select {
				case <-ctx.Done():
					return ctx.Err()
				case results <- rows:
					metrics.Get().RecordUnitCompleted()
				}
			}
			return nil
		})
	}
	go func() {
		if err := g.Wait(); err != nil {
			ctx.Log.WithError(err).Warn("Comparison workers stopped before completing")
		}
		close(results)
	}()
	ctx.Log.Infof("Started %d workers on %d units of work", workers, units)
	return results
}

// compareUnit compares job i with every job after it, in ascending order.
func (e *Engine) compareUnit(i int) []model.OutputRow {
	left := e.jobs[i]
	rows := make([]model.OutputRow, 0, len(e.jobs)-i-1)
	for _, right := range e.jobs[i+1:] {
		rows = append(rows, e.Compare(left, right))
	}
	metrics.Get().RecordComparisons(len(rows))
	return rows
}

// Compare scores a single pair of jobs.
func (e *Engine) Compare(left, right *model.Job) model.OutputRow {
	return model.OutputRow{
		JobID1:         left.ID,
		JobID2:         right.ID,
		NumPhases1:     len(left.Phases),
		NumPhases2:     len(right.Phases),
		SimAbs:         similarity.Similarity1D(left.Abs, right.Abs),
		SimAbsAggZeros: similarity.Similarity1D(left.AbsAggZeros, right.AbsAggZeros),
		SimChannels:    similarity.Similarity2D(left.Channels[:], right.Channels[:]),
		SimPhases:      e.comparePhases(left.Phases, right.Phases),
	}
}
