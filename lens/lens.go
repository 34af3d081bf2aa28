package lens

import (
	"fmt"
	"math"

	"github.com/GreatPyreneseDad/RoseGlassLE/pattern"
)

// #region validation

func validateReadings(readings []Reading) error {
	if len(readings) < 2 {
		return fmt.Errorf("consensus needs 2 readings, have %d: %w", len(readings), ErrInsufficientReadings)
	}
	for i, r := range readings {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("reading %d: %w", i, err)
		}
	}
	return nil
}

// #endregion

// #region statistics

func dimensionMeans(readings []Reading) [pattern.NumDimensions]float64 {
	var means [pattern.NumDimensions]float64
	for _, r := range readings {
		for i, v := range r {
			means[i] += v
		}
	}
	for i := range means {
		means[i] /= float64(len(readings))
	}
	return means
}

// dimensionVariances returns the population variance per dimension.
func dimensionVariances(readings []Reading, means [pattern.NumDimensions]float64) [pattern.NumDimensions]float64 {
	var vars [pattern.NumDimensions]float64
	for _, r := range readings {
		for i, v := range r {
			d := v - means[i]
			vars[i] += d * d
		}
	}
	for i := range vars {
		vars[i] /= float64(len(readings))
	}
	return vars
}

// #endregion

// #region analysis

// Analyze computes the interference breakdown for a set of estimator
// readings: the coefficient, per-dimension variances, the extreme
// dimensions among the primaries, and pairwise compatibility scores.
// It needs at least two readings and rejects any reading with components
// outside [0,1].
func Analyze(readings []Reading) (Result, error) {
	if err := validateReadings(readings); err != nil {
		return Result{}, err
	}

	means := dimensionMeans(readings)
	vars := dimensionVariances(readings, means)

	intensity := pattern.DimensionIntensity.Index()
	coefficient := vars[intensity] / math.Max(means[intensity], meanFloor)

	variance := make(map[pattern.Dimension]float64, pattern.NumDimensions)
	for _, d := range pattern.Dimensions() {
		variance[d] = vars[d.Index()]
	}

	// Extremes are ranked over the primary dimensions only; ties keep the
	// earliest dimension in canonical order.
	primary := pattern.PrimaryDimensions()
	mostStable := primary[0]
	mostVariable := primary[0]
	for _, d := range primary[1:] {
		if vars[d.Index()] < vars[mostStable.Index()] {
			mostStable = d
		}
		if vars[d.Index()] > vars[mostVariable.Index()] {
			mostVariable = d
		}
	}

	level, message := interpret(coefficient, mostVariable)

	return Result{
		Coefficient:   coefficient,
		Variance:      variance,
		MostStable:    mostStable,
		MostVariable:  mostVariable,
		Compatibility: pairwiseCompatibility(readings),
		Level:         level,
		Message:       message,
	}, nil
}

// pairwiseCompatibility scores each unordered pair of readings on the
// primary dimensions: 1 means identical, 0 means maximally far apart.
func pairwiseCompatibility(readings []Reading) []PairCompatibility {
	primary := pattern.PrimaryDimensions()
	pairs := make([]PairCompatibility, 0, len(readings)*(len(readings)-1)/2)
	for i := 0; i < len(readings); i++ {
		for j := i + 1; j < len(readings); j++ {
			diff := 0.0
			for _, d := range primary {
				diff += math.Abs(readings[i].Component(d) - readings[j].Component(d))
			}
			pairs = append(pairs, PairCompatibility{A: i, B: j, Score: 1 - diff/float64(len(primary))})
		}
	}
	return pairs
}

func interpret(coefficient float64, mostVariable pattern.Dimension) (Level, string) {
	switch {
	case coefficient < 0.1:
		return LevelStable, fmt.Sprintf("estimators agree on a stable pattern; %s varies most", mostVariable)
	case coefficient < 0.3:
		return LevelLow, fmt.Sprintf("estimators mostly agree, with minor variation in %s", mostVariable)
	case coefficient < 0.6:
		return LevelModerate, fmt.Sprintf("estimators diverge meaningfully on %s", mostVariable)
	default:
		return LevelHigh, fmt.Sprintf("readings are strongly estimator-dependent; %s shows extreme variation", mostVariable)
	}
}

// #endregion

// #region deviation

// Deviation returns the population standard deviation of the intensity
// component across readings, a coarser agreement signal than the
// interference coefficient.
func Deviation(readings []Reading) (float64, error) {
	if err := validateReadings(readings); err != nil {
		return 0, err
	}
	idx := pattern.DimensionIntensity.Index()
	mean := 0.0
	for _, r := range readings {
		mean += r[idx]
	}
	mean /= float64(len(readings))
	variance := 0.0
	for _, r := range readings {
		d := r[idx] - mean
		variance += d * d
	}
	variance /= float64(len(readings))
	return math.Sqrt(variance), nil
}

// ShouldReset reports whether estimator deviation has collapsed below the
// threshold, meaning the readings agree closely enough to treat as stable
// ground truth. The comparison is strict, so a zero threshold never
// resets.
func ShouldReset(readings []Reading, threshold float64) (ResetDecision, error) {
	deviation, err := Deviation(readings)
	if err != nil {
		return ResetDecision{}, err
	}
	return ResetDecision{Reset: deviation < threshold, Deviation: deviation}, nil
}

// #endregion

// #region selection

// FindOptimal returns the index of the reading with the highest value on
// the named dimension. Ties resolve to the earliest reading in input
// order.
func FindOptimal(readings []Reading, d pattern.Dimension) (int, error) {
	if len(readings) == 0 {
		return 0, fmt.Errorf("no readings to select from: %w", ErrInsufficientReadings)
	}
	if d.Index() < 0 {
		return 0, fmt.Errorf("unknown dimension %q: %w", string(d), pattern.ErrInvalidInput)
	}
	for i, r := range readings {
		if err := r.Validate(); err != nil {
			return 0, fmt.Errorf("reading %d: %w", i, err)
		}
	}
	best := 0
	for i := 1; i < len(readings); i++ {
		if readings[i].Component(d) > readings[best].Component(d) {
			best = i
		}
	}
	return best, nil
}

// #endregion
