package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/GreatPyreneseDad/RoseGlassLE/eval"
	"github.com/GreatPyreneseDad/RoseGlassLE/lens"
	"github.com/GreatPyreneseDad/RoseGlassLE/pattern"
	"github.com/GreatPyreneseDad/RoseGlassLE/tracker"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description    string                 `json:"description"`
	Config         FixtureConfig          `json:"config"`
	Observations   []FixtureObservation   `json:"observations"`
	ReadingSets    []FixtureReadingSet    `json:"reading_sets,omitempty"`
	ExpectedAlerts []FixtureExpectedAlert `json:"expected_alerts"`
}

// FixtureObservation mirrors replay.Observation with JSON tags. Components
// are keyed by dimension name and must cover every declared dimension.
type FixtureObservation struct {
	OffsetSeconds float64            `json:"offset_seconds"`
	Components    map[string]float64 `json:"components"`
}

// FixtureReadingSet mirrors replay.ReadingSet with JSON tags.
type FixtureReadingSet struct {
	Label    string               `json:"label"`
	Readings []map[string]float64 `json:"readings"`
}

// FixtureExpectedAlert captures one expected alert by offset.
type FixtureExpectedAlert struct {
	OffsetSeconds float64 `json:"offset_seconds"`
	Reason        string  `json:"reason"`
}

// FixtureConfig bundles all sub-configs for a replay run.
type FixtureConfig struct {
	Window              int               `json:"window"`
	MinSamples          int               `json:"min_samples"`
	HorizonSeconds      float64           `json:"horizon_seconds"`
	Thresholds          FixtureThresholds `json:"thresholds"`
	InvarianceThreshold float64           `json:"invariance_threshold"`
	Eval                FixtureEvalConfig `json:"eval"`
}

// FixtureThresholds mirrors tracker.InterventionThresholds with JSON tags.
type FixtureThresholds struct {
	RisingActivationVelocity   float64 `json:"rising_activation_velocity"`
	FallingConsistencyVelocity float64 `json:"falling_consistency_velocity"`
	ActivationCeiling          float64 `json:"activation_ceiling"`
	FallingSocialVelocity      float64 `json:"falling_social_velocity"`
}

// FixtureEvalConfig mirrors eval.EvalConfig with JSON tags.
type FixtureEvalConfig struct {
	MaxVelocityNorm     float64 `json:"max_velocity_norm"`
	MaxAccelerationNorm float64 `json:"max_acceleration_norm"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// toVector builds a validated Vector from named components.
func toVector(components map[string]float64) (pattern.Vector, error) {
	byDim := make(map[pattern.Dimension]float64, len(components))
	for name, value := range components {
		d, err := pattern.ParseDimension(name)
		if err != nil {
			return pattern.Vector{}, err
		}
		byDim[d] = value
	}
	return pattern.FromMap(byDim)
}

// ToObservation converts a FixtureObservation to a domain Observation.
func (fo *FixtureObservation) ToObservation() (Observation, error) {
	vec, err := toVector(fo.Components)
	if err != nil {
		return Observation{}, fmt.Errorf("observation at offset %gs: %w", fo.OffsetSeconds, err)
	}
	return Observation{OffsetSeconds: fo.OffsetSeconds, Vector: vec}, nil
}

// ToReadingSet converts a FixtureReadingSet to a domain ReadingSet.
func (fs *FixtureReadingSet) ToReadingSet() (ReadingSet, error) {
	readings := make([]lens.Reading, len(fs.Readings))
	for i, components := range fs.Readings {
		vec, err := toVector(components)
		if err != nil {
			return ReadingSet{}, fmt.Errorf("reading set %q, reading %d: %w", fs.Label, i, err)
		}
		readings[i] = vec
	}
	return ReadingSet{Label: fs.Label, Readings: readings}, nil
}

// ToReplayConfig converts a FixtureConfig to a domain ReplayConfig.
func (fc *FixtureConfig) ToReplayConfig() ReplayConfig {
	return ReplayConfig{
		Tracker: tracker.TrackerConfig{
			Window:     fc.Window,
			MinSamples: fc.MinSamples,
			Thresholds: tracker.InterventionThresholds{
				RisingActivationVelocity:   fc.Thresholds.RisingActivationVelocity,
				FallingConsistencyVelocity: fc.Thresholds.FallingConsistencyVelocity,
				ActivationCeiling:          fc.Thresholds.ActivationCeiling,
				FallingSocialVelocity:      fc.Thresholds.FallingSocialVelocity,
			},
		},
		Horizon:             time.Duration(fc.HorizonSeconds * float64(time.Second)),
		InvarianceThreshold: fc.InvarianceThreshold,
		Eval: eval.EvalConfig{
			MaxVelocityNorm:     fc.Eval.MaxVelocityNorm,
			MaxAccelerationNorm: fc.Eval.MaxAccelerationNorm,
		},
	}
}

// #endregion fixture-loader
