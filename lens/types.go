package lens

import (
	"errors"

	"github.com/GreatPyreneseDad/RoseGlassLE/pattern"
)

// #region errors

// ErrInsufficientReadings reports fewer readings than an operation needs.
var ErrInsufficientReadings = errors.New("insufficient readings")

// #endregion

// #region types

// Reading is one estimator's view of the same underlying state. Readings
// carry no timestamp: every reading in a set describes the same moment.
type Reading = pattern.Vector

// Level buckets the interference coefficient.
type Level string

const (
	LevelStable   Level = "lens_stable"
	LevelLow      Level = "low_interference"
	LevelModerate Level = "moderate_interference"
	LevelHigh     Level = "high_interference"
)

// PairCompatibility scores how closely two readings agree across the
// primary dimensions. A and B index into the analyzed reading slice.
type PairCompatibility struct {
	A     int
	B     int
	Score float64
}

// Result is the interference breakdown for one reading set.
type Result struct {
	Coefficient   float64
	Variance      map[pattern.Dimension]float64
	MostStable    pattern.Dimension
	MostVariable  pattern.Dimension
	Compatibility []PairCompatibility
	Level         Level
	Message       string
}

// ResetDecision reports whether estimators agree closely enough to treat
// the reading as stable ground truth.
type ResetDecision struct {
	Reset     bool
	Deviation float64
}

// Stability maps deviation onto (0,1], approaching 1 as estimators converge.
func (r ResetDecision) Stability() float64 {
	return 1 / (1 + r.Deviation)
}

// #endregion

// #region config

// DefaultInvarianceThreshold is the deviation below which a reading set
// counts as estimator-invariant. ShouldReset takes the threshold
// explicitly; this is the value callers normally pass.
const DefaultInvarianceThreshold = 0.1

// meanFloor keeps the coefficient finite when mean intensity sits near
// zero. It is a deliberate safety floor, not a tunable.
const meanFloor = 0.01

// #endregion
