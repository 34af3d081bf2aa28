package journal

import (
	"time"

	"github.com/GreatPyreneseDad/RoseGlassLE/pattern"
)

// #region alert-entry
// AlertEntry is a single row in the alert_log table.
type AlertEntry struct {
	AlertID       string
	SessionID     string
	Reason        string
	Urgency       string // "low" | "moderate" | "high" | "critical"
	Confidence    float64
	WindowSeconds float64
	Predicted     pattern.Vector
	RaisedAt      time.Time
}

// #endregion alert-entry

// #region consensus-entry
// ConsensusEntry is a single row in the consensus_log table.
type ConsensusEntry struct {
	ReportID     string
	SessionID    string
	Readings     int
	Coefficient  float64
	Level        string
	MostVariable string
	Deviation    float64
	RecordedAt   time.Time
}

// #endregion consensus-entry
