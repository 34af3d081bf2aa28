package store

import (
	"time"

	"github.com/GreatPyreneseDad/RoseGlassLE/pattern"
)

// #region records
// SessionRecord describes one tracked observation stream.
type SessionRecord struct {
	SessionID  string
	StartedAt  time.Time
	Window     int // ring capacity the session was opened with
	MinSamples int // gradient floor the session was opened with
}

// SnapshotRecord is one persisted observation within a session.
type SnapshotRecord struct {
	ID        int64
	SessionID string
	Seq       int // position in the session's observation order
	Snapshot  pattern.Snapshot
}

// #endregion records
