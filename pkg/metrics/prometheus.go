package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	trialsTotal   *prometheus.CounterVec
	trialDuration *prometheus.HistogramVec
	bestMAPE      *prometheus.GaugeVec
	predictions   *prometheus.HistogramVec
	signalsTotal  *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		trialsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockcast_tuner_trials_total",
				Help: "Completed tuner trials by outcome",
			},
			[]string{"outcome"},
		),
		trialDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockcast_tuner_trial_duration_seconds",
				Help:    "Wall-clock duration of tuner trials",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
			},
			[]string{"outcome"},
		),
		bestMAPE: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stockcast_tuner_best_mape",
				Help: "Best validation MAPE found for a symbol",
			},
			[]string{"symbol"},
		),
		predictions: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockcast_prediction_duration_seconds",
				Help:    "Duration of prediction runs",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"symbol"},
		),
		signalsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockcast_signals_total",
				Help: "Generated trading signals by action",
			},
			[]string{"symbol", "action"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockcast_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
	}
}

// RecordTrial records one completed tuner trial.
func (r *Recorder) RecordTrial(outcome string, seconds float64) {
	r.trialsTotal.WithLabelValues(outcome).Inc()
	r.trialDuration.WithLabelValues(outcome).Observe(seconds)
}

// RecordBestMAPE records the best validation MAPE for a symbol.
func (r *Recorder) RecordBestMAPE(symbol string, mape float64) {
	r.bestMAPE.WithLabelValues(symbol).Set(mape)
}

// RecordPrediction records a prediction run duration.
func (r *Recorder) RecordPrediction(symbol string, seconds float64) {
	r.predictions.WithLabelValues(symbol).Observe(seconds)
}

// RecordSignal records a generated signal.
func (r *Recorder) RecordSignal(symbol, action string) {
	r.signalsTotal.WithLabelValues(symbol, action).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
