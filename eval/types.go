package eval

// #region eval-config
// EvalConfig holds plausibility ceilings for prediction validation.
type EvalConfig struct {
	MaxVelocityNorm     float64 // reject if the velocity L2 norm exceeds this
	MaxAccelerationNorm float64 // warn if the acceleration L2 norm exceeds this
}

// DefaultEvalConfig returns ceilings sized for per-second gradients of
// unit-interval dimensions.
func DefaultEvalConfig() EvalConfig {
	return EvalConfig{
		MaxVelocityNorm:     1.0,
		MaxAccelerationNorm: 1.0,
	}
}

// #endregion eval-config

// #region eval-metric
// EvalMetric captures a single validation check result.
type EvalMetric struct {
	Name  string
	Value float64
	Pass  bool
}

// #endregion eval-metric

// #region eval-result
// EvalResult is the output of prediction validation.
type EvalResult struct {
	Passed  bool
	Metrics []EvalMetric
	Reason  string
}

// #endregion eval-result
