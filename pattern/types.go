package pattern

import (
	"errors"
	"time"
)

// #region dimension

// Dimension names one scalar component of a pattern vector.
type Dimension string

const (
	DimensionConsistency        Dimension = "consistency"
	DimensionDepth              Dimension = "depth"
	DimensionActivationEnergy   Dimension = "activation_energy"
	DimensionSocialArchitecture Dimension = "social_architecture"
	DimensionTemporalDepth      Dimension = "temporal_depth"
	DimensionIntensity          Dimension = "intensity"
)

// NumDimensions is the fixed width of a pattern vector.
const NumDimensions = 6

// #endregion dimension

// #region vector

// Vector holds one value per dimension in canonical order: consistency,
// depth, activation_energy, social_architecture, temporal_depth, intensity.
// Validated vectors have every component inside [0,1]; derived quantities
// (velocities, accelerations) reuse the type without that constraint.
type Vector [NumDimensions]float64

// #endregion vector

// #region snapshot

// Snapshot is one timestamped reading of the pattern vector. Immutable once
// created.
type Snapshot struct {
	Time   time.Time
	Vector Vector
}

// #endregion snapshot

// #region errors

// ErrInvalidInput reports a component outside [0,1] or an unrecognized
// dimension name. Inputs are rejected, never silently clipped.
var ErrInvalidInput = errors.New("invalid input")

// #endregion errors
