package phaseanalysis

import (
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/mistral-io/phaseanalysis/internal/common"
	"github.com/mistral-io/phaseanalysis/internal/common/runctx"
	"github.com/mistral-io/phaseanalysis/internal/common/util"
	"github.com/mistral-io/phaseanalysis/internal/phaseanalysis/aggregator"
	"github.com/mistral-io/phaseanalysis/internal/phaseanalysis/configuration"
	"github.com/mistral-io/phaseanalysis/internal/phaseanalysis/dataset"
	"github.com/mistral-io/phaseanalysis/internal/phaseanalysis/engine"
	"github.com/mistral-io/phaseanalysis/internal/phaseanalysis/phases"
	"github.com/mistral-io/phaseanalysis/internal/phaseanalysis/sink"
)

// RunSummary describes a completed analysis run.
type RunSummary struct {
	aggregator.Summary
	RunId   string
	Records int
	Jobs    int
	Dropped int
}

// Run loads the dataset, compares every pair of jobs and writes the similar pairs to the configured outputs.
// It stops early, with an error, if ctx is cancelled.
func Run(ctx *runctx.Context, config configuration.PhaseAnalysisConfiguration) (RunSummary, error) {
	summary := RunSummary{RunId: util.NewULID()}
	ctx = runctx.WithLogField(ctx, "runId", summary.RunId)
	start := time.Now()

	shutdownMetricServer := common.ServeMetrics(config.Metrics.Port)
	defer shutdownMetricServer()

	ctx.Log.Infof("Reading dataset %s", config.Dataset.Path)
	detector := phases.NewDetector(config.Phases.MinPhaseLength)
	jobs, stats, err := dataset.Load(ctx, config.Dataset.Path, detector.Detect)
	if err != nil {
		return summary, err
	}
	summary.Records = stats.Records
	summary.Dropped = stats.Dropped
	summary.Jobs = len(jobs)

	e, err := engine.New(jobs, config.NRows, config.NumWorkers, config.ResultBufferSize, phases.JobSimilarity)
	if err != nil {
		return summary, err
	}

	out, err := sink.Open(ctx, config.Output, summary.RunId)
	if err != nil {
		return summary, err
	}

	filter := aggregator.Filter{MinSimilarity: config.MinSimilarity, GateOnChannels: config.GateOnChannels}
	a, err := aggregator.New(e.UnitsOfWork(), config.BatchSize, filter, out)
	if err != nil {
		util.CloseResource("outputs", out)
		return summary, err
	}

	ctx.Log.WithFields(log.Fields{
		"jobs":      summary.Jobs,
		"units":     e.UnitsOfWork(),
		"workers":   e.NumWorkers(),
		"batchSize": config.BatchSize,
		"cycles":    len(a.CycleSizes()),
		"outputs":   out.Name(),
	}).Infof("Comparing %d jobs", min(config.NRows, summary.Jobs))

	// Cancelling stops the workers if the aggregator gives up first.
	workCtx, cancel := runctx.WithCancel(ctx)
	defer cancel()
	summary.Summary, err = a.Run(workCtx, e.Start(workCtx))
	if closeErr := out.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return summary, errors.WithMessage(err, "analysis failed")
	}

	ctx.Log.WithFields(log.Fields{
		"records":  summary.Records,
		"dropped":  summary.Dropped,
		"compared": summary.Received,
		"emitted":  summary.Emitted,
		"cycles":   summary.Cycles,
	}).Infof("Analysis complete in %s", time.Since(start))
	return summary, nil
}
