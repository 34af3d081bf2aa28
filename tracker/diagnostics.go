package tracker

import (
	"math"

	"github.com/GreatPyreneseDad/RoseGlassLE/pattern"
)

// trendBand is the dead zone around zero velocity: motion slower than this
// in either direction is labeled stable.
const trendBand = 0.05

// #region diagnostics

// Diagnostics summarizes the buffered history per dimension: mean and
// population standard deviation over the whole buffer, the current value,
// the newest velocity and acceleration, and a trend label. It fails with
// ErrInsufficientData below MinSamples and holds no state of its own.
func (t *Tracker) Diagnostics() (TrajectoryReport, error) {
	grad, err := t.Gradient()
	if err != nil {
		return TrajectoryReport{}, err
	}

	snaps := t.history.Snapshots()
	n := len(snaps)
	latest := snaps[n-1]

	report := TrajectoryReport{
		Samples:    n,
		TimeSpan:   latest.Time.Sub(snaps[0].Time),
		Dimensions: make([]DimensionStats, 0, pattern.NumDimensions),
	}
	for i, d := range pattern.Dimensions() {
		var sum float64
		for _, s := range snaps {
			sum += s.Vector[i]
		}
		mean := sum / float64(n)

		var varSum float64
		for _, s := range snaps {
			diff := s.Vector[i] - mean
			varSum += diff * diff
		}
		std := math.Sqrt(varSum / float64(n))

		vel := grad.Velocity[i]
		trend := TrendStable
		switch {
		case vel > trendBand:
			trend = TrendIncreasing
		case vel < -trendBand:
			trend = TrendDecreasing
		}

		report.Dimensions = append(report.Dimensions, DimensionStats{
			Dimension:    d,
			Mean:         mean,
			StdDev:       std,
			Current:      latest.Vector[i],
			Velocity:     vel,
			Acceleration: grad.Acceleration[i],
			Trend:        trend,
		})
	}
	return report, nil
}

// #endregion diagnostics
