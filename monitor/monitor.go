package monitor

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/GreatPyreneseDad/RoseGlassLE/journal"
	"github.com/GreatPyreneseDad/RoseGlassLE/lens"
	"github.com/GreatPyreneseDad/RoseGlassLE/metrics"
	"github.com/GreatPyreneseDad/RoseGlassLE/pattern"
	"github.com/GreatPyreneseDad/RoseGlassLE/tracker"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// #region monitor-struct

// Monitor coordinates per-session trackers, raises alerts, and records
// consensus analyses. It is safe for concurrent use; the trackers stay
// single-threaded behind the monitor's lock.
type Monitor struct {
	mu       sync.Mutex
	config   MonitorConfig
	clock    clockwork.Clock
	logger   *slog.Logger
	sessions map[string]*session
}

type session struct {
	tracker *tracker.Tracker
	seq     int
}

// #endregion

// #region constructor

// NewMonitor creates a monitor, filling in defaults for any zero-valued
// ambient dependency.
func NewMonitor(config MonitorConfig) *Monitor {
	defaults := DefaultMonitorConfig()
	if config.Horizon <= 0 {
		config.Horizon = defaults.Horizon
	}
	if config.InvarianceThreshold <= 0 {
		config.InvarianceThreshold = defaults.InvarianceThreshold
	}
	clock := config.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		config:   config,
		clock:    clock,
		logger:   logger,
		sessions: make(map[string]*session),
	}
}

// #endregion

// #region sessions

// StartSession opens a fresh observation stream and returns its ID.
func (m *Monitor) StartSession() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New().String()
	if m.config.Store != nil {
		rec, err := m.config.Store.CreateSession(m.config.Tracker.Window, m.config.Tracker.MinSamples)
		if err != nil {
			return "", fmt.Errorf("create session: %w", err)
		}
		id = rec.SessionID
	}
	m.sessions[id] = &session{tracker: tracker.NewTracker(m.config.Tracker)}
	m.logger.Info("session started", "session", id)
	return id, nil
}

// EndSession drops a session's in-memory tracker. Persisted rows survive.
func (m *Monitor) EndSession(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	m.logger.Info("session ended", "session", sessionID)
}

// lookup must be called with the lock held.
func (m *Monitor) lookup(sessionID string) (*session, error) {
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("unknown session %s", sessionID)
	}
	return s, nil
}

// #endregion

// #region observe

// Observe stamps vec with the monitor clock, feeds it to the session's
// tracker, and runs the prediction cascade. A nil alert with a nil error
// means the buffer is still warming up or no rule fired.
//
// Persistence runs after the tracker has accepted the snapshot: a store or
// journal failure surfaces to the caller without unwinding the in-memory
// history or the metrics and log lines already emitted. A retried call
// appends a second snapshot rather than replaying the failed one.
func (m *Monitor) Observe(sessionID string, vec pattern.Vector) (*Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	snap := pattern.Snapshot{Time: m.clock.Now().UTC(), Vector: vec}
	if err := s.tracker.Add(snap); err != nil {
		switch {
		case errors.Is(err, pattern.ErrInvalidInput):
			metrics.SnapshotsRejected.WithLabelValues("invalid_input").Inc()
		case errors.Is(err, tracker.ErrOutOfOrderInput):
			metrics.SnapshotsRejected.WithLabelValues("out_of_order").Inc()
		}
		return nil, err
	}
	metrics.SnapshotsObserved.Inc()

	if m.config.Store != nil {
		if err := m.config.Store.AppendSnapshot(sessionID, s.seq, snap); err != nil {
			return nil, fmt.Errorf("persist snapshot: %w", err)
		}
	}
	s.seq++

	pred, err := s.tracker.Predict(m.config.Horizon)
	if errors.Is(err, tracker.ErrInsufficientData) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	metrics.PredictionConfidence.Observe(pred.Confidence)
	if !pred.Intervene {
		return nil, nil
	}

	alert := m.buildAlert(sessionID, snap, pred)
	metrics.AlertsRaised.WithLabelValues(alert.Reason).Inc()
	m.logger.Warn("intervention recommended",
		"session", sessionID,
		"reason", alert.Reason,
		"urgency", string(alert.Urgency),
		"confidence", alert.Confidence,
		"window_seconds", alert.WindowSeconds,
	)

	if m.config.Store != nil {
		entry := journal.AlertEntry{
			AlertID:       alert.AlertID,
			SessionID:     sessionID,
			Reason:        alert.Reason,
			Urgency:       string(alert.Urgency),
			Confidence:    alert.Confidence,
			WindowSeconds: alert.WindowSeconds,
			Predicted:     pred.State.Vector,
			RaisedAt:      alert.RaisedAt,
		}
		if err := journal.LogAlert(m.config.Store.DB(), entry); err != nil {
			return nil, fmt.Errorf("journal alert: %w", err)
		}
	}
	return &alert, nil
}

// buildAlert grades and stamps an intervention. The action window narrows
// as the current activation energy rises, floored at ten seconds.
func (m *Monitor) buildAlert(sessionID string, current pattern.Snapshot, pred tracker.Prediction) Alert {
	q := current.Vector.Component(pattern.DimensionActivationEnergy)
	return Alert{
		AlertID:       uuid.New().String(),
		SessionID:     sessionID,
		RaisedAt:      current.Time,
		Reason:        pred.Reason,
		Urgency:       urgencyFor(pred.Confidence),
		Confidence:    pred.Confidence,
		WindowSeconds: math.Max(60-q*40, 10),
		Prediction:    pred,
	}
}

// urgencyFor grades an alert by prediction confidence.
func urgencyFor(confidence float64) Urgency {
	switch {
	case confidence >= 0.8:
		return UrgencyCritical
	case confidence >= 0.6:
		return UrgencyHigh
	case confidence >= 0.4:
		return UrgencyModerate
	default:
		return UrgencyLow
	}
}

// #endregion

// #region consensus

// Consensus analyzes a set of estimator readings for a session and
// records the outcome.
func (m *Monitor) Consensus(sessionID string, readings []lens.Reading) (lens.Result, lens.ResetDecision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.lookup(sessionID); err != nil {
		return lens.Result{}, lens.ResetDecision{}, err
	}

	result, err := lens.Analyze(readings)
	if err != nil {
		return lens.Result{}, lens.ResetDecision{}, err
	}
	decision, err := lens.ShouldReset(readings, m.config.InvarianceThreshold)
	if err != nil {
		return lens.Result{}, lens.ResetDecision{}, err
	}

	metrics.InterferenceCoefficient.Set(result.Coefficient)
	metrics.ConsensusAnalyses.WithLabelValues(string(result.Level)).Inc()
	metrics.LensDeviation.Observe(decision.Deviation)
	m.logger.Info("consensus analyzed",
		"session", sessionID,
		"level", string(result.Level),
		"coefficient", result.Coefficient,
		"deviation", decision.Deviation,
		"reset", decision.Reset,
	)

	if m.config.Store != nil {
		entry := journal.ConsensusEntry{
			ReportID:     uuid.New().String(),
			SessionID:    sessionID,
			Readings:     len(readings),
			Coefficient:  result.Coefficient,
			Level:        string(result.Level),
			MostVariable: string(result.MostVariable),
			Deviation:    decision.Deviation,
			RecordedAt:   m.clock.Now().UTC(),
		}
		if err := journal.LogConsensus(m.config.Store.DB(), entry); err != nil {
			return lens.Result{}, lens.ResetDecision{}, fmt.Errorf("journal consensus: %w", err)
		}
	}
	return result, decision, nil
}

// #endregion

// #region diagnostics

// Diagnostics returns the per-dimension trajectory report for a session.
func (m *Monitor) Diagnostics(sessionID string) (tracker.TrajectoryReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.lookup(sessionID)
	if err != nil {
		return tracker.TrajectoryReport{}, err
	}
	return s.tracker.Diagnostics()
}

// #endregion
