// Package aggregator drains the comparison results in reporting cycles, keeps the rows that are similar enough
// and writes them out.
package aggregator

import (
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/mistral-io/phaseanalysis/internal/common/analysiserrors"
	"github.com/mistral-io/phaseanalysis/internal/common/runctx"
	"github.com/mistral-io/phaseanalysis/internal/common/util"
	"github.com/mistral-io/phaseanalysis/internal/phaseanalysis/metrics"
	"github.com/mistral-io/phaseanalysis/internal/phaseanalysis/model"
	"github.com/mistral-io/phaseanalysis/internal/phaseanalysis/sink"
)

// Filter decides which rows are written.  A row is kept if its absolute, aggregated-zero or phase similarity
// reaches MinSimilarity.  Channel similarity only counts when GateOnChannels is set.
type Filter struct {
	MinSimilarity  float64
	GateOnChannels bool
}

func (f Filter) Keep(row model.OutputRow) bool {
	return row.SimAbs >= f.MinSimilarity ||
		row.SimAbsAggZeros >= f.MinSimilarity ||
		row.SimPhases >= f.MinSimilarity ||
		(f.GateOnChannels && row.SimChannels >= f.MinSimilarity)
}

// Summary describes a completed aggregation.
type Summary struct {
	Cycles   int
	Units    int
	Received int
	Emitted  int
	Duration time.Duration
}

// Aggregator receives unitsOfWork batches, batchSize batches per reporting cycle.  After each cycle it reports
// progress and flushes the sink.
type Aggregator struct {
	unitsOfWork int
	batchSize   int
	filter      Filter
	sink        sink.Sink
}

func New(unitsOfWork int, batchSize int, filter Filter, output sink.Sink) (*Aggregator, error) {
	if unitsOfWork < 0 {
		return nil, &analysiserrors.ErrInvalidArgument{Name: "unitsOfWork", Value: unitsOfWork, Message: "must not be negative"}
	}
	if batchSize < 1 {
		return nil, &analysiserrors.ErrInvalidArgument{Name: "batchSize", Value: batchSize, Message: "must be at least 1"}
	}
	if output == nil {
		return nil, &analysiserrors.ErrInvalidArgument{Name: "output", Value: nil, Message: "an output sink is required"}
	}
	if filter.MinSimilarity < 0 || filter.MinSimilarity > 1 {
		return nil, &analysiserrors.ErrInvalidArgument{Name: "minSimilarity", Value: filter.MinSimilarity, Message: "must be between 0 and 1"}
	}
	return &Aggregator{
		unitsOfWork: unitsOfWork,
		batchSize:   batchSize,
		filter:      filter,
		sink:        output,
	}, nil
}

// CycleSizes returns the number of batches received in each reporting cycle.  Only the last cycle may be
// smaller than the batch size, and no cycle is empty.
func (a *Aggregator) CycleSizes() []int {
	return util.BatchSizes(a.unitsOfWork, a.batchSize)
}

// Run consumes results until every unit of work has been received.  Rows are written in the order they arrive.
// It is an error for results to be closed early, which happens when the producer is cancelled.
func (a *Aggregator) Run(ctx *runctx.Context, results <-chan []model.OutputRow) (Summary, error) {
	cycleSizes := a.CycleSizes()
	summary := Summary{Cycles: len(cycleSizes), Units: a.unitsOfWork}
	start := time.Now()
	for i, cycleSize := range cycleSizes {
		cycleStart := time.Now()
		received, emitted, err := a.runCycle(ctx, results, cycleSize)
		summary.Received += received
		summary.Emitted += emitted
		if err != nil {
			return summary, errors.WithMessagef(err, "error in cycle %d of %d", i+1, len(cycleSizes))
		}
		if err := a.sink.Flush(ctx); err != nil {
			return summary, errors.WithMessagef(err, "error flushing output after cycle %d of %d", i+1, len(cycleSizes))
		}
		cycleDuration := time.Since(cycleStart)
		metrics.Get().RecordCycleDuration(cycleDuration)
		ctx.Log.WithFields(log.Fields{
			"cycle":     i + 1,
			"cycles":    len(cycleSizes),
			"cycleSize": cycleSize,
			"units":     a.unitsOfWork,
			"rows":      received,
			"emitted":   emitted,
		}).Infof(
			"BATCH %d/%d (%.3f%%), BATCHSIZE %d RECEIVED %d rows in %.3f seconds",
			i+1, len(cycleSizes), float64(i+1)/float64(len(cycleSizes))*100, cycleSize, received, cycleDuration.Seconds())
	}
	summary.Duration = time.Since(start)
	ctx.Log.Infof("Duration %.3f", summary.Duration.Seconds())
	return summary, nil
}

func (a *Aggregator) runCycle(ctx *runctx.Context, results <-chan []model.OutputRow, cycleSize int) (received int, emitted int, err error) {
	for n := 0; n < cycleSize; n++ {
		var batch []model.OutputRow
		var ok bool
		select {
		case <-ctx.Done():
			return received, emitted, ctx.Err()
		case batch, ok = <-results:
		}
		if !ok {
			return received, emitted, errors.Errorf("results closed after %d of %d batches in this cycle", n, cycleSize)
		}
		batchEmitted := 0
		for _, row := range batch {
			if !a.filter.Keep(row) {
				continue
			}
			if err := a.sink.Write(ctx, row); err != nil {
				return received, emitted, err
			}
			batchEmitted++
		}
		received += len(batch)
		emitted += batchEmitted
		metrics.Get().RecordRows(batchEmitted, len(batch)-batchEmitted)
	}
	return received, emitted, nil
}
