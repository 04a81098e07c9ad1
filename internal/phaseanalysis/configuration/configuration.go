package configuration

import (
	"github.com/mistral-io/phaseanalysis/internal/common/logging"
	"github.com/mistral-io/phaseanalysis/internal/phaseanalysis/sink"
)

type PhaseAnalysisConfiguration struct {
	// Input dataset
	Dataset DatasetConfig
	// Phase detection
	Phases PhasesConfig
	// Maximum number of jobs, taken from the start of the dataset, to compare with each other
	NRows int `validate:"gte=0"`
	// Number of published batches received per reporting cycle; the output is flushed after each cycle
	BatchSize int `validate:"gte=1"`
	// Rows with no similarity reaching this value are not written
	MinSimilarity float64 `validate:"gte=0,lte=1"`
	// Number of comparison workers.  Zero means one per CPU
	NumWorkers int `validate:"gte=0"`
	// Maximum number of published batches waiting for the aggregator.  Zero means no limit
	ResultBufferSize int `validate:"gte=0"`
	// Whether channel similarity alone can qualify a row for output
	GateOnChannels bool
	// Output destinations
	Output sink.Config
	// Metrics configuration
	Metrics MetricsConfig
	// Logging configuration
	Logging logging.Config
}

type DatasetConfig struct {
	// Path of the CSV dataset
	Path string `validate:"required"`
}

type PhasesConfig struct {
	// Runs of activity shorter than this are not phases
	MinPhaseLength int `validate:"gte=1"`
}

type MetricsConfig struct {
	// Port serving prometheus metrics.  Zero disables the endpoint
	Port uint16
}
