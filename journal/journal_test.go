package journal

import (
	"database/sql"
	"testing"
	"time"

	"github.com/GreatPyreneseDad/RoseGlassLE/pattern"
	_ "modernc.org/sqlite"
)

// #region helpers
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	_, err = db.Exec(`CREATE TABLE alert_log (
		alert_id       TEXT PRIMARY KEY,
		session_id     TEXT NOT NULL,
		raised_at      TEXT NOT NULL,
		reason         TEXT NOT NULL,
		urgency        TEXT NOT NULL,
		confidence     REAL NOT NULL,
		window_seconds REAL NOT NULL,
		predicted      BLOB NOT NULL
	)`)
	if err != nil {
		t.Fatalf("create alert_log: %v", err)
	}
	_, err = db.Exec(`CREATE TABLE consensus_log (
		report_id     TEXT PRIMARY KEY,
		session_id    TEXT NOT NULL,
		recorded_at   TEXT NOT NULL,
		readings      INTEGER NOT NULL,
		coefficient   REAL NOT NULL,
		level         TEXT NOT NULL,
		most_variable TEXT NOT NULL,
		deviation     REAL NOT NULL
	)`)
	if err != nil {
		t.Fatalf("create consensus_log: %v", err)
	}
	return db
}

func testVector(t *testing.T) pattern.Vector {
	t.Helper()
	vec, err := pattern.NewVector(0.5, 0.6, 0.95, 0.4, 0.3, 0.7)
	if err != nil {
		t.Fatalf("vector: %v", err)
	}
	return vec
}

// #endregion helpers

// #region log-alert-tests
func TestLogAlert_Success(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	entry := AlertEntry{
		AlertID:       "a1",
		SessionID:     "s1",
		Reason:        "extreme activation predicted",
		Urgency:       "critical",
		Confidence:    0.92,
		WindowSeconds: 22,
		Predicted:     testVector(t),
		RaisedAt:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	if err := LogAlert(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var count int
	db.QueryRow("SELECT COUNT(*) FROM alert_log").Scan(&count)
	if count != 1 {
		t.Errorf("expected 1 row, got %d", count)
	}

	var reason, urgency string
	db.QueryRow("SELECT reason, urgency FROM alert_log").Scan(&reason, &urgency)
	if reason != "extreme activation predicted" {
		t.Errorf("expected intervention reason, got %q", reason)
	}
	if urgency != "critical" {
		t.Errorf("expected urgency 'critical', got %q", urgency)
	}
}

func TestLogAlert_ZeroRaisedAt(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	entry := AlertEntry{
		AlertID:   "a2",
		SessionID: "s1",
		Reason:    "rapid escalation",
		Urgency:   "high",
		Predicted: testVector(t),
	}

	before := time.Now().UTC()
	if err := LogAlert(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var raisedStr string
	db.QueryRow("SELECT raised_at FROM alert_log").Scan(&raisedStr)
	raisedAt, err := time.Parse(time.RFC3339Nano, raisedStr)
	if err != nil {
		t.Fatalf("parse raised_at: %v", err)
	}
	if raisedAt.Before(before) {
		t.Error("expected auto-filled raised_at to be >= test start time")
	}
}

func TestLogAlert_Error(t *testing.T) {
	db := setupDB(t)
	db.Close() // close to force error

	entry := AlertEntry{AlertID: "a3", SessionID: "s1", Reason: "rapid escalation", Urgency: "low"}
	if err := LogAlert(db, entry); err == nil {
		t.Fatal("expected error on closed db")
	}
}

// #endregion log-alert-tests

// #region list-alerts-tests
func TestListAlerts_RoundTrip(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, reason := range []string{"rapid escalation", "coherence breakdown"} {
		entry := AlertEntry{
			AlertID:       string(rune('a'+i)) + "-alert",
			SessionID:     "s1",
			Reason:        reason,
			Urgency:       "moderate",
			Confidence:    0.5,
			WindowSeconds: 30,
			Predicted:     testVector(t),
			RaisedAt:      base.Add(time.Duration(i) * time.Second),
		}
		if err := LogAlert(db, entry); err != nil {
			t.Fatalf("log alert %d: %v", i, err)
		}
	}
	// A different session's alert must not leak into the listing.
	other := AlertEntry{
		AlertID: "other", SessionID: "s2", Reason: "rapid disconnection",
		Urgency: "low", Predicted: testVector(t), RaisedAt: base,
	}
	if err := LogAlert(db, other); err != nil {
		t.Fatalf("log alert: %v", err)
	}

	entries, err := ListAlerts(db, "s1")
	if err != nil {
		t.Fatalf("list alerts: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(entries))
	}
	if entries[0].Reason != "rapid escalation" || entries[1].Reason != "coherence breakdown" {
		t.Fatalf("alerts out of order: %q then %q", entries[0].Reason, entries[1].Reason)
	}
	want := testVector(t)
	for _, d := range pattern.Dimensions() {
		if entries[0].Predicted.Component(d) != want.Component(d) {
			t.Fatalf("%s: expected %v, got %v", d, want.Component(d), entries[0].Predicted.Component(d))
		}
	}
	if !entries[0].RaisedAt.Equal(base) {
		t.Fatalf("expected raised_at %s, got %s", base, entries[0].RaisedAt)
	}
}

// #endregion list-alerts-tests

// #region log-consensus-tests
func TestLogConsensus_Success(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	entry := ConsensusEntry{
		ReportID:     "r1",
		SessionID:    "s1",
		Readings:     3,
		Coefficient:  0.42,
		Level:        "moderate_interference",
		MostVariable: "depth",
		Deviation:    0.18,
		RecordedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	if err := LogConsensus(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var readings int
	var level string
	db.QueryRow("SELECT readings, level FROM consensus_log").Scan(&readings, &level)
	if readings != 3 {
		t.Errorf("expected 3 readings, got %d", readings)
	}
	if level != "moderate_interference" {
		t.Errorf("expected level 'moderate_interference', got %q", level)
	}
}

func TestLogConsensus_ZeroRecordedAt(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	entry := ConsensusEntry{ReportID: "r2", SessionID: "s1", Readings: 2, Level: "lens_stable", MostVariable: "consistency"}

	before := time.Now().UTC()
	if err := LogConsensus(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var recordedStr string
	db.QueryRow("SELECT recorded_at FROM consensus_log").Scan(&recordedStr)
	recordedAt, err := time.Parse(time.RFC3339Nano, recordedStr)
	if err != nil {
		t.Fatalf("parse recorded_at: %v", err)
	}
	if recordedAt.Before(before) {
		t.Error("expected auto-filled recorded_at to be >= test start time")
	}
}

// #endregion log-consensus-tests
