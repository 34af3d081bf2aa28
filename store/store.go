package store

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/GreatPyreneseDad/RoseGlassLE/pattern"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	session_id   TEXT PRIMARY KEY,
	started_at   TEXT NOT NULL,
	window_size  INTEGER NOT NULL,
	min_samples  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshots (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT NOT NULL,
	seq         INTEGER NOT NULL,
	taken_at    TEXT NOT NULL,
	vector      BLOB NOT NULL,
	UNIQUE (session_id, seq),
	FOREIGN KEY (session_id) REFERENCES sessions(session_id)
);

CREATE TABLE IF NOT EXISTS alert_log (
	alert_id        TEXT PRIMARY KEY,
	session_id      TEXT NOT NULL,
	raised_at       TEXT NOT NULL,
	reason          TEXT NOT NULL,
	urgency         TEXT NOT NULL,
	confidence      REAL NOT NULL,
	window_seconds  REAL NOT NULL,
	predicted       BLOB NOT NULL,
	FOREIGN KEY (session_id) REFERENCES sessions(session_id)
);

CREATE TABLE IF NOT EXISTS consensus_log (
	report_id      TEXT PRIMARY KEY,
	session_id     TEXT NOT NULL,
	recorded_at    TEXT NOT NULL,
	readings       INTEGER NOT NULL,
	coefficient    REAL NOT NULL,
	level          TEXT NOT NULL,
	most_variable  TEXT NOT NULL,
	deviation      REAL NOT NULL,
	FOREIGN KEY (session_id) REFERENCES sessions(session_id)
);
`

// #endregion schema

// #region store-struct
// Store persists sessions and their observations in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for use by other packages (e.g. journal).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion db-accessor

// #region create-session
// CreateSession registers a new observation stream.
func (s *Store) CreateSession(window, minSamples int) (SessionRecord, error) {
	rec := SessionRecord{
		SessionID:  uuid.New().String(),
		StartedAt:  time.Now().UTC(),
		Window:     window,
		MinSamples: minSamples,
	}

	_, err := s.db.Exec(
		`INSERT INTO sessions (session_id, started_at, window_size, min_samples)
		 VALUES (?, ?, ?, ?)`,
		rec.SessionID, rec.StartedAt.Format(time.RFC3339Nano), rec.Window, rec.MinSamples,
	)
	if err != nil {
		return SessionRecord{}, fmt.Errorf("insert session: %w", err)
	}
	return rec, nil
}

// #endregion create-session

// #region get-session
// GetSession retrieves a session by ID.
func (s *Store) GetSession(id string) (SessionRecord, error) {
	var rec SessionRecord
	var startedStr string

	err := s.db.QueryRow(
		`SELECT session_id, started_at, window_size, min_samples
		 FROM sessions WHERE session_id = ?`, id,
	).Scan(&rec.SessionID, &startedStr, &rec.Window, &rec.MinSamples)
	if err != nil {
		return SessionRecord{}, fmt.Errorf("get session %s: %w", id, err)
	}

	rec.StartedAt, _ = time.Parse(time.RFC3339Nano, startedStr)
	return rec, nil
}

// #endregion get-session

// #region list-sessions
// ListSessions returns the most recently started sessions.
func (s *Store) ListSessions(limit int) ([]SessionRecord, error) {
	rows, err := s.db.Query(
		`SELECT session_id, started_at, window_size, min_samples
		 FROM sessions ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var records []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		var startedStr string
		if err := rows.Scan(&rec.SessionID, &startedStr, &rec.Window, &rec.MinSamples); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		rec.StartedAt, _ = time.Parse(time.RFC3339Nano, startedStr)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// #endregion list-sessions

// #region append-snapshot
// AppendSnapshot persists one observation under the session's sequence.
func (s *Store) AppendSnapshot(sessionID string, seq int, snap pattern.Snapshot) error {
	_, err := s.db.Exec(
		`INSERT INTO snapshots (session_id, seq, taken_at, vector)
		 VALUES (?, ?, ?, ?)`,
		sessionID, seq, snap.Time.Format(time.RFC3339Nano), encodeVector(snap.Vector),
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// #endregion append-snapshot

// #region snapshots
// Snapshots returns a session's observations in sequence order.
func (s *Store) Snapshots(sessionID string) ([]SnapshotRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, seq, taken_at, vector
		 FROM snapshots WHERE session_id = ? ORDER BY seq ASC`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var records []SnapshotRecord
	for rows.Next() {
		var rec SnapshotRecord
		var takenStr string
		var vecBlob []byte
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Seq, &takenStr, &vecBlob); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		rec.Snapshot.Time, _ = time.Parse(time.RFC3339Nano, takenStr)
		rec.Snapshot.Vector = decodeVector(vecBlob)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// #endregion snapshots

// #region vector-encoding
func encodeVector(v pattern.Vector) []byte {
	buf := make([]byte, pattern.NumDimensions*8)
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

func decodeVector(b []byte) pattern.Vector {
	var v pattern.Vector
	for i := range v {
		if i*8+8 <= len(b) {
			v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
		}
	}
	return v
}

// #endregion vector-encoding
