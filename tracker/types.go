package tracker

import (
	"errors"
	"time"

	"github.com/GreatPyreneseDad/RoseGlassLE/pattern"
)

// #region errors

var (
	// ErrInsufficientData reports that the history holds fewer snapshots
	// than the operation needs. Recoverable: add more snapshots and retry.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrOutOfOrderInput reports a snapshot timestamped strictly earlier
	// than the newest buffered one. Equal timestamps are accepted.
	ErrOutOfOrderInput = errors.New("out of order input")
)

// #endregion errors

// #region thresholds

// InterventionThresholds holds the trigger levels for the rule cascade.
// The falling thresholds are negative: a velocity below them means the
// dimension is collapsing faster than tolerated.
type InterventionThresholds struct {
	RisingActivationVelocity   float64 // rule 1: activation_energy velocity above this
	FallingConsistencyVelocity float64 // rule 2: consistency velocity below this
	ActivationCeiling          float64 // rule 3: predicted activation_energy above this
	FallingSocialVelocity      float64 // rule 4: social_architecture velocity below this
}

// DefaultInterventionThresholds returns sensible defaults.
func DefaultInterventionThresholds() InterventionThresholds {
	return InterventionThresholds{
		RisingActivationVelocity:   0.3,
		FallingConsistencyVelocity: -0.25,
		ActivationCeiling:          0.85,
		FallingSocialVelocity:      -0.4,
	}
}

// #endregion thresholds

// #region tracker-config

// TrackerConfig holds history and gradient parameters.
type TrackerConfig struct {
	Window     int // history capacity before FIFO eviction (default 50)
	MinSamples int // snapshots required before a gradient is available (default 3)
	Thresholds InterventionThresholds
}

// DefaultTrackerConfig returns sensible defaults.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		Window:     50,
		MinSamples: 3,
		Thresholds: DefaultInterventionThresholds(),
	}
}

// #endregion tracker-config

// #region gradient

// GradientVector pairs the first- and second-order finite-difference
// derivatives of the pattern vector, one value per dimension, in units of
// component-per-second and component-per-second².
type GradientVector struct {
	Velocity     pattern.Vector
	Acceleration pattern.Vector
}

// #endregion gradient

// #region prediction

// Prediction is a synthesized future snapshot with a stability confidence
// and the cascade verdict. Ephemeral, produced per call.
type Prediction struct {
	State      pattern.Snapshot
	Confidence float64
	Horizon    time.Duration
	Intervene  bool
	Reason     string // empty when Intervene is false
}

// #endregion prediction

// #region trend

// Trend labels the direction of a dimension's motion.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// #endregion trend

// #region report

// DimensionStats summarizes one dimension over the buffered history.
type DimensionStats struct {
	Dimension    pattern.Dimension
	Mean         float64
	StdDev       float64 // population standard deviation over the buffer
	Current      float64
	Velocity     float64
	Acceleration float64
	Trend        Trend
}

// TrajectoryReport is a read-only statistical view over the history,
// one entry per dimension in canonical order.
type TrajectoryReport struct {
	Samples    int
	TimeSpan   time.Duration // elapsed time between oldest and newest snapshot
	Dimensions []DimensionStats
}

// #endregion report
