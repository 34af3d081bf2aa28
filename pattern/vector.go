package pattern

import (
	"fmt"
	"math"
	"time"
)

// #region dimension-order

var dimensionOrder = [NumDimensions]Dimension{
	DimensionConsistency,
	DimensionDepth,
	DimensionActivationEnergy,
	DimensionSocialArchitecture,
	DimensionTemporalDepth,
	DimensionIntensity,
}

var dimensionIndex = map[Dimension]int{
	DimensionConsistency:        0,
	DimensionDepth:              1,
	DimensionActivationEnergy:   2,
	DimensionSocialArchitecture: 3,
	DimensionTemporalDepth:      4,
	DimensionIntensity:          5,
}

// Dimensions returns all dimensions in canonical vector order.
func Dimensions() [NumDimensions]Dimension {
	return dimensionOrder
}

// PrimaryDimensions returns the four dimensions used for cross-lens
// stability and compatibility scoring. Intensity and temporal_depth are
// excluded.
func PrimaryDimensions() [4]Dimension {
	return [4]Dimension{
		DimensionConsistency,
		DimensionDepth,
		DimensionActivationEnergy,
		DimensionSocialArchitecture,
	}
}

// ParseDimension maps a name to its Dimension. Unknown names fail with
// ErrInvalidInput.
func ParseDimension(name string) (Dimension, error) {
	d := Dimension(name)
	if _, ok := dimensionIndex[d]; !ok {
		return "", fmt.Errorf("unknown dimension %q: %w", name, ErrInvalidInput)
	}
	return d, nil
}

// Index returns d's position in canonical vector order, or -1 when d is not
// a declared dimension.
func (d Dimension) Index() int {
	i, ok := dimensionIndex[d]
	if !ok {
		return -1
	}
	return i
}

// #endregion dimension-order

// #region constructors

// NewVector builds a validated Vector from components in canonical order.
func NewVector(consistency, depth, activationEnergy, socialArchitecture, temporalDepth, intensity float64) (Vector, error) {
	v := Vector{consistency, depth, activationEnergy, socialArchitecture, temporalDepth, intensity}
	if err := v.Validate(); err != nil {
		return Vector{}, err
	}
	return v, nil
}

// FromMap builds a validated Vector from named components. Every declared
// dimension must be present exactly once; unknown or missing names fail
// with ErrInvalidInput.
func FromMap(components map[Dimension]float64) (Vector, error) {
	if len(components) != NumDimensions {
		return Vector{}, fmt.Errorf("got %d components, want %d: %w", len(components), NumDimensions, ErrInvalidInput)
	}
	var v Vector
	for d, value := range components {
		i, ok := dimensionIndex[d]
		if !ok {
			return Vector{}, fmt.Errorf("unknown dimension %q: %w", d, ErrInvalidInput)
		}
		v[i] = value
	}
	if err := v.Validate(); err != nil {
		return Vector{}, err
	}
	return v, nil
}

// NewSnapshot validates vec and stamps it with t.
func NewSnapshot(t time.Time, vec Vector) (Snapshot, error) {
	if err := vec.Validate(); err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Time: t, Vector: vec}, nil
}

// #endregion constructors

// #region vector-ops

// Validate checks that every component lies inside [0,1]. NaN is rejected.
func (v Vector) Validate() error {
	for i, x := range v {
		if math.IsNaN(x) || x < 0 || x > 1 {
			return fmt.Errorf("%s component %v outside [0,1]: %w", dimensionOrder[i], x, ErrInvalidInput)
		}
	}
	return nil
}

// Component returns the value for d. Undeclared dimensions read as 0; use
// ParseDimension to validate names coming from outside the package.
func (v Vector) Component(d Dimension) float64 {
	i, ok := dimensionIndex[d]
	if !ok {
		return 0
	}
	return v[i]
}

// #endregion vector-ops
