package monitor

import (
	"log/slog"
	"time"

	"github.com/GreatPyreneseDad/RoseGlassLE/lens"
	"github.com/GreatPyreneseDad/RoseGlassLE/store"
	"github.com/GreatPyreneseDad/RoseGlassLE/tracker"
	"github.com/jonboulle/clockwork"
)

// #region urgency

// Urgency grades how quickly an alert should be acted on.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyModerate Urgency = "moderate"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// #endregion

// #region alert

// Alert is an intervention recommendation raised on a session.
type Alert struct {
	AlertID       string
	SessionID     string
	RaisedAt      time.Time
	Reason        string
	Urgency       Urgency
	Confidence    float64
	WindowSeconds float64 // time available to act before the state moves on
	Prediction    tracker.Prediction
}

// #endregion

// #region monitor-config

// MonitorConfig wires tracking, prediction, and consensus behavior
// together with the monitor's ambient dependencies.
type MonitorConfig struct {
	Tracker             tracker.TrackerConfig
	Horizon             time.Duration   // prediction lookahead
	InvarianceThreshold float64         // consensus reset threshold
	Clock               clockwork.Clock // nil falls back to the wall clock
	Logger              *slog.Logger    // nil falls back to slog.Default()
	Store               *store.Store    // nil disables persistence
}

// DefaultMonitorConfig returns monitoring defaults without persistence.
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Tracker:             tracker.DefaultTrackerConfig(),
		Horizon:             20 * time.Second,
		InvarianceThreshold: lens.DefaultInvarianceThreshold,
	}
}

// #endregion
