package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Tracking Metrics
var (
	// SnapshotsObserved tracks snapshots accepted into session buffers
	SnapshotsObserved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roseglass_snapshots_observed_total",
			Help: "Total snapshots accepted into session buffers",
		},
	)

	// SnapshotsRejected tracks snapshots rejected at ingest by reason
	SnapshotsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roseglass_snapshots_rejected_total",
			Help: "Total snapshots rejected at ingest by reason (invalid_input/out_of_order)",
		},
		[]string{"reason"},
	)

	// AlertsRaised tracks interventions raised by cascade reason
	AlertsRaised = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roseglass_alerts_raised_total",
			Help: "Total interventions raised by cascade reason",
		},
		[]string{"reason"},
	)

	// PredictionConfidence tracks the confidence attached to each prediction
	PredictionConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "roseglass_prediction_confidence",
			Help:    "Confidence attached to each prediction",
			Buckets: []float64{.1, .2, .3, .4, .5, .6, .7, .8, .9, 1},
		},
	)
)

// Consensus Metrics
var (
	// InterferenceCoefficient tracks the most recent interference coefficient
	InterferenceCoefficient = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "roseglass_interference_coefficient",
			Help: "Most recent interference coefficient across estimator readings",
		},
	)

	// ConsensusAnalyses tracks consensus analyses by interference level
	ConsensusAnalyses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roseglass_consensus_analyses_total",
			Help: "Total consensus analyses by interference level",
		},
		[]string{"level"},
	)

	// LensDeviation tracks intensity deviation across estimator readings
	LensDeviation = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "roseglass_lens_deviation",
			Help:    "Intensity standard deviation across estimator readings",
			Buckets: []float64{.01, .025, .05, .1, .2, .4, .8},
		},
	)
)
