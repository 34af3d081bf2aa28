package tracker

import (
	"fmt"

	"github.com/GreatPyreneseDad/RoseGlassLE/pattern"
)

// #region tracker

// Tracker owns a bounded snapshot history and derives gradients,
// predictions, and intervention verdicts from it. A tracker is exclusively
// owned by one caller and is not safe for concurrent use; callers sharing
// one must serialize add/gradient/predict sequences.
type Tracker struct {
	config  TrackerConfig
	history *History
	cascade *Cascade
}

// NewTracker creates a tracker. Non-positive Window and MinSamples below 2
// fall back to the defaults (velocity needs two snapshots).
func NewTracker(config TrackerConfig) *Tracker {
	defaults := DefaultTrackerConfig()
	if config.Window <= 0 {
		config.Window = defaults.Window
	}
	if config.MinSamples < 2 {
		config.MinSamples = defaults.MinSamples
	}
	return &Tracker{
		config:  config,
		history: NewHistory(config.Window),
		cascade: NewCascade(config.Thresholds),
	}
}

// History exposes the underlying buffer for read access.
func (t *Tracker) History() *History {
	return t.history
}

// Add appends a snapshot to the history.
func (t *Tracker) Add(snap pattern.Snapshot) error {
	return t.history.Add(snap)
}

// #endregion tracker

// #region velocity

// Velocity returns the first derivative over the two newest snapshots:
// (latest − previous) / Δt per dimension, Δt in seconds. A non-positive Δt
// (duplicate timestamps) yields the zero vector: no motion, not an error.
func (t *Tracker) Velocity() (pattern.Vector, error) {
	n := t.history.Len()
	if n < 2 {
		return pattern.Vector{}, fmt.Errorf("velocity needs 2 snapshots, have %d: %w", n, ErrInsufficientData)
	}
	return velocityBetween(t.history.At(n-2), t.history.At(n-1)), nil
}

// velocityBetween computes (b − a) / Δt per dimension with the zero-Δt
// fallback. a must not be newer than b.
func velocityBetween(a, b pattern.Snapshot) pattern.Vector {
	dt := b.Time.Sub(a.Time).Seconds()
	if dt <= 0 {
		return pattern.Vector{}
	}
	var v pattern.Vector
	for i := range v {
		v[i] = (b.Vector[i] - a.Vector[i]) / dt
	}
	return v
}

// #endregion velocity

// #region acceleration

// Acceleration returns the second derivative over the three newest
// snapshots: the difference between the two consecutive velocities divided
// by the mean of their Δts. If either pair spacing is non-positive the
// three-snapshot window is degenerate and the whole acceleration is the
// zero vector, matching the velocity fallback.
func (t *Tracker) Acceleration() (pattern.Vector, error) {
	n := t.history.Len()
	if n < 3 {
		return pattern.Vector{}, fmt.Errorf("acceleration needs 3 snapshots, have %d: %w", n, ErrInsufficientData)
	}
	return t.accelerationTail(), nil
}

// accelerationTail assumes at least three buffered snapshots.
func (t *Tracker) accelerationTail() pattern.Vector {
	n := t.history.Len()
	newest := t.history.At(n - 1)
	mid := t.history.At(n - 2)
	oldest := t.history.At(n - 3)

	dt1 := newest.Time.Sub(mid.Time).Seconds()
	dt2 := mid.Time.Sub(oldest.Time).Seconds()
	if dt1 <= 0 || dt2 <= 0 {
		return pattern.Vector{}
	}

	v1 := velocityBetween(mid, newest)
	v2 := velocityBetween(oldest, mid)
	avgDt := (dt1 + dt2) / 2

	var a pattern.Vector
	for i := range a {
		a[i] = (v1[i] - v2[i]) / avgDt
	}
	return a
}

// #endregion acceleration

// #region gradient

// Gradient returns velocity and acceleration once MinSamples snapshots are
// buffered. Below that it fails with ErrInsufficientData rather than
// returning a zero gradient a caller could mistake for real stillness.
// With MinSamples tuned down to 2, acceleration is the zero vector until a
// third snapshot arrives.
func (t *Tracker) Gradient() (GradientVector, error) {
	n := t.history.Len()
	if n < t.config.MinSamples {
		return GradientVector{}, fmt.Errorf("gradient needs %d snapshots, have %d: %w", t.config.MinSamples, n, ErrInsufficientData)
	}

	grad := GradientVector{
		Velocity: velocityBetween(t.history.At(n-2), t.history.At(n-1)),
	}
	if n >= 3 {
		grad.Acceleration = t.accelerationTail()
	}
	return grad, nil
}

// #endregion gradient
