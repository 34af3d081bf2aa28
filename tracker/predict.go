package tracker

import (
	"math"
	"time"

	"github.com/GreatPyreneseDad/RoseGlassLE/pattern"
)

// #region predict

// Predict extrapolates the newest snapshot by horizon using the current
// gradient: predicted = current + velocity·h + 0.5·acceleration·h² per
// dimension, every dimension clipped into [0,1] afterwards. It fails with
// ErrInsufficientData below MinSamples.
//
// Confidence is clamp(1 − ‖acceleration‖₂, 0, 1): a stability heuristic,
// not a statistical bound. High curvature means the quadratic extrapolation
// is likely to miss, so confidence drops toward zero.
func (t *Tracker) Predict(horizon time.Duration) (Prediction, error) {
	grad, err := t.Gradient()
	if err != nil {
		return Prediction{}, err
	}
	latest, _ := t.history.Latest()
	h := horizon.Seconds()

	var future pattern.Vector
	for i := range future {
		x := latest.Vector[i] + grad.Velocity[i]*h + 0.5*grad.Acceleration[i]*h*h
		future[i] = clamp(x, 0, 1)
	}

	confidence := clamp(1-vectorNorm(grad.Acceleration), 0, 1)
	intervene, reason := t.cascade.Evaluate(grad, future)

	return Prediction{
		State:      pattern.Snapshot{Time: latest.Time.Add(horizon), Vector: future},
		Confidence: confidence,
		Horizon:    horizon,
		Intervene:  intervene,
		Reason:     reason,
	}, nil
}

// #endregion predict

// #region helpers

// clamp bounds x into [lo, hi].
func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// vectorNorm computes the L2 norm of a pattern vector.
func vectorNorm(v pattern.Vector) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// #endregion helpers
