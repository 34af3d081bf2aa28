package replay

import (
	"fmt"
	"time"

	"github.com/GreatPyreneseDad/RoseGlassLE/eval"
	"github.com/GreatPyreneseDad/RoseGlassLE/lens"
	"github.com/GreatPyreneseDad/RoseGlassLE/pattern"
	"github.com/GreatPyreneseDad/RoseGlassLE/tracker"
)

// #region types

// Observation is a single recorded pattern reading for replay, positioned
// by its offset from the start of the session.
type Observation struct {
	OffsetSeconds float64
	Vector        pattern.Vector
}

// ReadingSet groups simultaneous readings of the same pattern for a
// consensus pass.
type ReadingSet struct {
	Label    string
	Readings []lens.Reading
}

// ReplayConfig bundles tracker, prediction, consensus, and eval settings
// for a replay run.
type ReplayConfig struct {
	Tracker             tracker.TrackerConfig
	Horizon             time.Duration
	InvarianceThreshold float64
	Eval                eval.EvalConfig
}

// DefaultReplayConfig returns sensible defaults for all pipeline stages.
func DefaultReplayConfig() ReplayConfig {
	return ReplayConfig{
		Tracker:             tracker.DefaultTrackerConfig(),
		Horizon:             20 * time.Second,
		InvarianceThreshold: lens.DefaultInvarianceThreshold,
		Eval:                eval.DefaultEvalConfig(),
	}
}

// StepResult captures the outcome of replaying one observation through the
// full pipeline.
type StepResult struct {
	Index         int
	OffsetSeconds float64
	Action        string // "rejected" | "buffered" | "predicted" | "alert"
	Reason        string

	// Prediction stage (nil while the tracker is warming up or the
	// observation was rejected)
	Prediction *tracker.Prediction

	// Eval stage (nil whenever Prediction is nil)
	EvalResult *eval.EvalResult
}

// ReplaySummary provides aggregate stats from a replay run. Eval failures
// are counted separately because they flag implausible engine output
// without changing a step's action.
type ReplaySummary struct {
	TotalObservations int
	Rejected          int
	Buffered          int
	Predicted         int
	Alerts            int
	EvalFailures      int
	FirstAlertOffset  float64 // seconds; -1 when no alert fired
	FirstAlertReason  string
}

// ReadingSetResult pairs a consensus analysis with its reset decision.
type ReadingSetResult struct {
	Label  string
	Result lens.Result
	Reset  lens.ResetDecision
}

// #endregion types

// #region replay

// Replay feeds observations through a fresh tracker in order, running the
// full pipeline per step: add → predict → eval → alert check. Operates
// entirely in-memory against a synthetic clock that starts at the Unix
// epoch.
func Replay(observations []Observation, config ReplayConfig) []StepResult {
	tr := tracker.NewTracker(config.Tracker)
	harness := eval.NewEvalHarness(config.Eval)

	start := time.Unix(0, 0).UTC()
	results := make([]StepResult, 0, len(observations))

	for i, obs := range observations {
		at := start.Add(time.Duration(obs.OffsetSeconds * float64(time.Second)))

		// 1. Add
		snap, err := pattern.NewSnapshot(at, obs.Vector)
		if err == nil {
			err = tr.Add(snap)
		}
		if err != nil {
			results = append(results, StepResult{
				Index:         i,
				OffsetSeconds: obs.OffsetSeconds,
				Action:        "rejected",
				Reason:        err.Error(),
			})
			continue
		}

		// 2. Predict
		pred, err := tr.Predict(config.Horizon)
		if err != nil {
			results = append(results, StepResult{
				Index:         i,
				OffsetSeconds: obs.OffsetSeconds,
				Action:        "buffered",
				Reason:        err.Error(),
			})
			continue
		}

		// 3. Eval. Gradient cannot fail once Predict has succeeded; both
		// gate on MinSamples.
		grad, _ := tr.Gradient()
		evalResult := harness.Run(pred, grad)

		step := StepResult{
			Index:         i,
			OffsetSeconds: obs.OffsetSeconds,
			Action:        "predicted",
			Reason:        evalResult.Reason,
			Prediction:    &pred,
			EvalResult:    &evalResult,
		}

		// 4. Alert check
		if pred.Intervene {
			step.Action = "alert"
			step.Reason = pred.Reason
		}
		results = append(results, step)
	}

	return results
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []StepResult) ReplaySummary {
	s := ReplaySummary{
		TotalObservations: len(results),
		FirstAlertOffset:  -1,
	}
	for _, r := range results {
		switch r.Action {
		case "rejected":
			s.Rejected++
		case "buffered":
			s.Buffered++
		case "predicted":
			s.Predicted++
		case "alert":
			s.Alerts++
			if s.FirstAlertOffset < 0 {
				s.FirstAlertOffset = r.OffsetSeconds
				s.FirstAlertReason = r.Reason
			}
		}
		if r.EvalResult != nil && !r.EvalResult.Passed {
			s.EvalFailures++
		}
	}
	return s
}

// ReplayReadings runs every reading set through a consensus analysis and a
// reset decision against config.InvarianceThreshold.
func ReplayReadings(sets []ReadingSet, config ReplayConfig) ([]ReadingSetResult, error) {
	results := make([]ReadingSetResult, 0, len(sets))
	for _, set := range sets {
		res, err := lens.Analyze(set.Readings)
		if err != nil {
			return nil, fmt.Errorf("reading set %q: %w", set.Label, err)
		}
		reset, err := lens.ShouldReset(set.Readings, config.InvarianceThreshold)
		if err != nil {
			return nil, fmt.Errorf("reading set %q: %w", set.Label, err)
		}
		results = append(results, ReadingSetResult{Label: set.Label, Result: res, Reset: reset})
	}
	return results, nil
}

// #endregion replay
