package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes hub operational metrics via Prometheus.
type Recorder struct {
	snapshotsPublished *prometheus.CounterVec
	signalsEnqueued    *prometheus.CounterVec
	signalsDrained     prometheus.Counter
	degradedWrites     *prometheus.CounterVec
	errorsTotal        *prometheus.CounterVec
	lastPrice          *prometheus.GaugeVec
	latency            *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		snapshotsPublished: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "markethub_snapshots_published_total",
				Help: "Total number of snapshots accepted by the hub",
			},
			[]string{"symbol"},
		),
		signalsEnqueued: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "markethub_signals_enqueued_total",
				Help: "Total number of signals enqueued",
			},
			[]string{"directive"},
		),
		signalsDrained: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "markethub_signals_drained_total",
				Help: "Total number of signals handed off to consumers",
			},
		),
		degradedWrites: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "markethub_degraded_writes_total",
				Help: "Writes where the current value landed but a dependent write failed",
			},
			[]string{"missing"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "markethub_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "markethub_last_price",
				Help: "Last published price for a symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "markethub_operation_duration_seconds",
				Help:    "Duration of hub operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordSnapshot records an accepted snapshot and its price.
func (r *Recorder) RecordSnapshot(symbol string, price float64) {
	r.snapshotsPublished.WithLabelValues(symbol).Inc()
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordSignal records an enqueued signal.
func (r *Recorder) RecordSignal(directive string) {
	r.signalsEnqueued.WithLabelValues(directive).Inc()
}

// RecordDrained records signals handed off to a consumer.
func (r *Recorder) RecordDrained(n int) {
	r.signalsDrained.Add(float64(n))
}

// RecordDegradedWrite records a partial write.
func (r *Recorder) RecordDegradedWrite(missing string) {
	r.degradedWrites.WithLabelValues(missing).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
