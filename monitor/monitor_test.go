package monitor

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/GreatPyreneseDad/RoseGlassLE/journal"
	"github.com/GreatPyreneseDad/RoseGlassLE/lens"
	"github.com/GreatPyreneseDad/RoseGlassLE/pattern"
	"github.com/GreatPyreneseDad/RoseGlassLE/store"
	"github.com/jonboulle/clockwork"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMonitor(t *testing.T) (*Monitor, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Unix(0, 0).UTC())
	config := DefaultMonitorConfig()
	config.Clock = clock
	config.Logger = quietLogger()
	return NewMonitor(config), clock
}

// stressRows is the escalation trace: activation energy climbs from 0.35
// to 0.92 over fifty seconds at ten-second intervals.
var stressRows = [][6]float64{
	{0.75, 0.65, 0.35, 0.70, 0.45, 0.65},
	{0.72, 0.63, 0.42, 0.68, 0.40, 0.63},
	{0.70, 0.60, 0.52, 0.65, 0.35, 0.60},
	{0.65, 0.58, 0.68, 0.60, 0.30, 0.58},
	{0.58, 0.55, 0.82, 0.55, 0.25, 0.55},
	{0.50, 0.52, 0.92, 0.48, 0.20, 0.52},
}

func rowVector(t *testing.T, row [6]float64) pattern.Vector {
	t.Helper()
	vec, err := pattern.NewVector(row[0], row[1], row[2], row[3], row[4], row[5])
	if err != nil {
		t.Fatalf("vector: %v", err)
	}
	return vec
}

func TestObserveStressSequence(t *testing.T) {
	m, clock := testMonitor(t)
	id, err := m.StartSession()
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	var first *Alert
	firstStep := -1
	for i, row := range stressRows {
		if i > 0 {
			clock.Advance(10 * time.Second)
		}
		alert, err := m.Observe(id, rowVector(t, row))
		if err != nil {
			t.Fatalf("observe %d: %v", i, err)
		}
		if alert != nil && first == nil {
			first = alert
			firstStep = i
		}
	}

	if first == nil {
		t.Fatal("expected an alert during the escalation")
	}
	if firstStep != 3 {
		t.Fatalf("expected first alert at step 3 (t=30), got step %d", firstStep)
	}
	if first.Reason != "extreme activation predicted" {
		t.Fatalf("expected activation ceiling breach, got %q", first.Reason)
	}
	if first.Urgency != UrgencyCritical {
		t.Fatalf("expected critical urgency at confidence %v, got %s", first.Confidence, first.Urgency)
	}
	wantRaised := time.Unix(0, 0).UTC().Add(30 * time.Second)
	if !first.RaisedAt.Equal(wantRaised) {
		t.Fatalf("expected alert at %s, got %s", wantRaised, first.RaisedAt)
	}
	// Window narrows with activation energy: max(60 - 0.68*40, 10).
	if math.Abs(first.WindowSeconds-32.8) > 1e-9 {
		t.Fatalf("expected 32.8s action window, got %v", first.WindowSeconds)
	}
	if first.SessionID != id || first.AlertID == "" {
		t.Fatalf("alert identity incomplete: %+v", first)
	}
}

func TestObserveWarmupReturnsNothing(t *testing.T) {
	m, clock := testMonitor(t)
	id, err := m.StartSession()
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	for i := 0; i < 2; i++ {
		alert, err := m.Observe(id, rowVector(t, stressRows[i]))
		if err != nil {
			t.Fatalf("observe %d: %v", i, err)
		}
		if alert != nil {
			t.Fatalf("expected no alert during warmup, got %+v", alert)
		}
		clock.Advance(10 * time.Second)
	}
}

func TestObserveUnknownSession(t *testing.T) {
	m, _ := testMonitor(t)
	if _, err := m.Observe("missing", rowVector(t, stressRows[0])); err == nil {
		t.Fatal("expected error for unknown session")
	}
}

func TestObserveRejectsInvalidVector(t *testing.T) {
	m, _ := testMonitor(t)
	id, err := m.StartSession()
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	var vec pattern.Vector
	vec[pattern.DimensionDepth.Index()] = 1.5
	if _, err := m.Observe(id, vec); !errors.Is(err, pattern.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestEndSessionDropsTracker(t *testing.T) {
	m, _ := testMonitor(t)
	id, err := m.StartSession()
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	m.EndSession(id)
	if _, err := m.Observe(id, rowVector(t, stressRows[0])); err == nil {
		t.Fatal("expected error after session ended")
	}
}

func TestConsensus(t *testing.T) {
	m, _ := testMonitor(t)
	id, err := m.StartSession()
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	agree := []lens.Reading{rowVector(t, stressRows[0]), rowVector(t, stressRows[0])}
	result, decision, err := m.Consensus(id, agree)
	if err != nil {
		t.Fatalf("consensus: %v", err)
	}
	if result.Level != lens.LevelStable {
		t.Fatalf("expected %s, got %s", lens.LevelStable, result.Level)
	}
	if !decision.Reset {
		t.Fatalf("identical readings should reset, deviation %v", decision.Deviation)
	}

	if _, _, err := m.Consensus(id, agree[:1]); !errors.Is(err, lens.ErrInsufficientReadings) {
		t.Fatalf("expected ErrInsufficientReadings, got %v", err)
	}
	if _, _, err := m.Consensus("missing", agree); err == nil {
		t.Fatal("expected error for unknown session")
	}
}

func TestDiagnosticsPassthrough(t *testing.T) {
	m, clock := testMonitor(t)
	id, err := m.StartSession()
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := m.Observe(id, rowVector(t, stressRows[i])); err != nil {
			t.Fatalf("observe %d: %v", i, err)
		}
		clock.Advance(10 * time.Second)
	}

	report, err := m.Diagnostics(id)
	if err != nil {
		t.Fatalf("diagnostics: %v", err)
	}
	if report.Samples != 3 {
		t.Fatalf("expected 3 samples, got %d", report.Samples)
	}
}

func TestMonitorPersistsToStore(t *testing.T) {
	st, err := store.NewStore(filepath.Join(t.TempDir(), "monitor.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	clock := clockwork.NewFakeClockAt(time.Unix(0, 0).UTC())
	config := DefaultMonitorConfig()
	config.Clock = clock
	config.Logger = quietLogger()
	config.Store = st
	m := NewMonitor(config)

	id, err := m.StartSession()
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	sess, err := st.GetSession(id)
	if err != nil {
		t.Fatalf("session not persisted: %v", err)
	}
	if sess.Window != 50 || sess.MinSamples != 3 {
		t.Fatalf("unexpected session config: %+v", sess)
	}

	var gotAlert bool
	for i, row := range stressRows[:4] {
		if i > 0 {
			clock.Advance(10 * time.Second)
		}
		alert, err := m.Observe(id, rowVector(t, row))
		if err != nil {
			t.Fatalf("observe %d: %v", i, err)
		}
		if alert != nil {
			gotAlert = true
		}
	}
	if !gotAlert {
		t.Fatal("expected an alert by t=30")
	}

	snaps, err := st.Snapshots(id)
	if err != nil {
		t.Fatalf("Snapshots: %v", err)
	}
	if len(snaps) != 4 {
		t.Fatalf("expected 4 persisted snapshots, got %d", len(snaps))
	}
	for i, rec := range snaps {
		if rec.Seq != i {
			t.Fatalf("snapshot %d: expected seq %d, got %d", i, i, rec.Seq)
		}
	}

	alerts, err := journal.ListAlerts(st.DB(), id)
	if err != nil {
		t.Fatalf("ListAlerts: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("expected 1 journaled alert, got %d", len(alerts))
	}
	if alerts[0].Reason != "extreme activation predicted" {
		t.Fatalf("unexpected journaled reason %q", alerts[0].Reason)
	}

	readings := []lens.Reading{rowVector(t, stressRows[0]), rowVector(t, stressRows[1])}
	if _, _, err := m.Consensus(id, readings); err != nil {
		t.Fatalf("consensus: %v", err)
	}
	var count int
	if err := st.DB().QueryRow(`SELECT COUNT(*) FROM consensus_log WHERE session_id = ?`, id).Scan(&count); err != nil {
		t.Fatalf("count consensus rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 consensus row, got %d", count)
	}
}

func TestObserveKeepsSnapshotWhenPersistFails(t *testing.T) {
	st, err := store.NewStore(filepath.Join(t.TempDir(), "monitor.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	clock := clockwork.NewFakeClockAt(time.Unix(0, 0).UTC())
	config := DefaultMonitorConfig()
	config.Clock = clock
	config.Logger = quietLogger()
	config.Store = st
	m := NewMonitor(config)

	id, err := m.StartSession()
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := m.Observe(id, rowVector(t, stressRows[i])); err != nil {
			t.Fatalf("observe %d: %v", i, err)
		}
		clock.Advance(10 * time.Second)
	}

	// Kill persistence out from under the monitor.
	st.Close()
	if _, err := m.Observe(id, rowVector(t, stressRows[3])); err == nil {
		t.Fatal("expected an error once the store is closed")
	}

	// The tracker accepted the snapshot before persistence failed, so the
	// buffer holds four samples while the store recorded three.
	report, err := m.Diagnostics(id)
	if err != nil {
		t.Fatalf("diagnostics: %v", err)
	}
	if report.Samples != 4 {
		t.Fatalf("expected 4 buffered samples after the failed persist, got %d", report.Samples)
	}
}
