package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const MetricsPrefix = "phaseanalysis_"

var comparisonsCounter = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: MetricsPrefix + "comparisons_total",
		Help: "Number of job pairs compared",
	},
)

var rowsCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: MetricsPrefix + "rows_total",
		Help: "Number of comparison rows received by the aggregator, by outcome",
	},
	[]string{"outcome"},
)

var unitsCompletedCounter = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: MetricsPrefix + "units_completed_total",
		Help: "Number of units of work whose batch has been published",
	},
)

var cycleDurationHist = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    MetricsPrefix + "cycle_duration_seconds",
		Help:    "Time taken to receive and write one reporting cycle",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 16),
	},
)

var sinkFlushHist = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    MetricsPrefix + "sink_flush_seconds",
		Help:    "Time taken to flush buffered rows to a sink",
		Buckets: []float64{0.001, 0.002, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1, 2, 5, 10},
	},
	[]string{"sink"},
)

const (
	OutcomeEmitted  = "emitted"
	OutcomeFiltered = "filtered"
)

type Metrics struct{}

var m = &Metrics{}

func Get() *Metrics {
	return m
}

func (m *Metrics) RecordComparisons(n int) {
	comparisonsCounter.Add(float64(n))
}

func (m *Metrics) RecordUnitCompleted() {
	unitsCompletedCounter.Inc()
}

func (m *Metrics) RecordRows(emitted int, filtered int) {
	rowsCounter.WithLabelValues(OutcomeEmitted).Add(float64(emitted))
	rowsCounter.WithLabelValues(OutcomeFiltered).Add(float64(filtered))
}

func (m *Metrics) RecordCycleDuration(d time.Duration) {
	cycleDurationHist.Observe(d.Seconds())
}

func (m *Metrics) RecordSinkFlush(sink string, d time.Duration) {
	sinkFlushHist.WithLabelValues(sink).Observe(d.Seconds())
}
