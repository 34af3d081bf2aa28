package eval

import (
	"fmt"
	"math"

	"github.com/GreatPyreneseDad/RoseGlassLE/pattern"
	"github.com/GreatPyreneseDad/RoseGlassLE/tracker"
)

// #region eval-harness
// EvalHarness runs lightweight validation on prediction output.
type EvalHarness struct {
	config EvalConfig
}

// NewEvalHarness creates an eval harness with the given configuration.
func NewEvalHarness(config EvalConfig) *EvalHarness {
	return &EvalHarness{config: config}
}

// Run validates a prediction and the gradient it was extrapolated from.
// Returns pass/fail with metrics.
func (h *EvalHarness) Run(pred tracker.Prediction, grad tracker.GradientVector) EvalResult {
	var metrics []EvalMetric
	passed := true
	var failReasons []string

	// 1. Clipping bounds: every predicted component stays inside [0,1]
	hi, lo := componentExtremes(pred.State.Vector)
	hiPass := hi <= 1.0
	metrics = append(metrics, EvalMetric{
		Name:  "predicted_max_component",
		Value: hi,
		Pass:  hiPass,
	})
	if !hiPass {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("predicted component %.4f exceeds 1", hi))
	}

	loPass := lo >= 0.0
	metrics = append(metrics, EvalMetric{
		Name:  "predicted_min_component",
		Value: lo,
		Pass:  loPass,
	})
	if !loPass {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("predicted component %.4f below 0", lo))
	}

	// 2. Confidence bounds
	confPass := pred.Confidence >= 0.0 && pred.Confidence <= 1.0
	metrics = append(metrics, EvalMetric{
		Name:  "confidence",
		Value: pred.Confidence,
		Pass:  confPass,
	})
	if !confPass {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("confidence %.4f outside [0,1]", pred.Confidence))
	}

	// 3. Velocity plausibility: L2 norm against the configured ceiling
	velNorm := gradientNorm(grad.Velocity)
	velPass := velNorm <= h.config.MaxVelocityNorm
	metrics = append(metrics, EvalMetric{
		Name:  "velocity_norm",
		Value: velNorm,
		Pass:  velPass,
	})
	if !velPass {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("velocity norm %.4f exceeds %.4f", velNorm, h.config.MaxVelocityNorm))
	}

	// 4. Acceleration check: informational, curvature already discounts confidence
	accNorm := gradientNorm(grad.Acceleration)
	accPass := accNorm <= h.config.MaxAccelerationNorm
	metrics = append(metrics, EvalMetric{
		Name:  "acceleration_norm",
		Value: accNorm,
		Pass:  accPass,
	})
	// Note: acceleration check is informational only, does not fail

	reason := "all checks passed"
	if !passed {
		reason = fmt.Sprintf("eval failed: %s", failReasons[0])
		if len(failReasons) > 1 {
			reason = fmt.Sprintf("eval failed: %d checks: %s", len(failReasons), failReasons[0])
		}
	}

	return EvalResult{
		Passed:  passed,
		Metrics: metrics,
		Reason:  reason,
	}
}

// #endregion eval-harness

// #region helpers
// componentExtremes returns the largest and smallest component of a vector.
func componentExtremes(v pattern.Vector) (hi, lo float64) {
	hi, lo = v[0], v[0]
	for _, x := range v[1:] {
		if x > hi {
			hi = x
		}
		if x < lo {
			lo = x
		}
	}
	return hi, lo
}

// gradientNorm computes the L2 norm of a gradient vector.
func gradientNorm(v pattern.Vector) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// #endregion helpers
