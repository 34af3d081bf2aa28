package tracker

import (
	"fmt"

	"github.com/GreatPyreneseDad/RoseGlassLE/pattern"
)

// #region history

// History is a bounded FIFO of snapshots. Once capacity is reached the
// oldest snapshot is evicted on each append. Timestamps are non-decreasing
// in buffer order; Add enforces this.
type History struct {
	snaps    []pattern.Snapshot
	capacity int
}

// NewHistory creates a buffer holding at most capacity snapshots.
// Non-positive capacity falls back to the default window.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultTrackerConfig().Window
	}
	return &History{
		snaps:    make([]pattern.Snapshot, 0, capacity),
		capacity: capacity,
	}
}

// Add validates and appends snap. It fails with pattern.ErrInvalidInput if
// any component is outside [0,1], and with ErrOutOfOrderInput if snap is
// timestamped strictly earlier than the newest buffered snapshot.
func (h *History) Add(snap pattern.Snapshot) error {
	if err := snap.Vector.Validate(); err != nil {
		return err
	}
	if n := len(h.snaps); n > 0 && snap.Time.Before(h.snaps[n-1].Time) {
		return fmt.Errorf("snapshot at %s precedes latest at %s: %w",
			snap.Time.Format("15:04:05.000"), h.snaps[n-1].Time.Format("15:04:05.000"), ErrOutOfOrderInput)
	}
	h.snaps = append(h.snaps, snap)
	if len(h.snaps) > h.capacity {
		h.snaps = h.snaps[1:]
	}
	return nil
}

// Len returns the number of buffered snapshots.
func (h *History) Len() int {
	return len(h.snaps)
}

// At returns the i-th snapshot, oldest first.
func (h *History) At(i int) pattern.Snapshot {
	return h.snaps[i]
}

// Latest returns the newest snapshot and whether the buffer is non-empty.
func (h *History) Latest() (pattern.Snapshot, bool) {
	if len(h.snaps) == 0 {
		return pattern.Snapshot{}, false
	}
	return h.snaps[len(h.snaps)-1], true
}

// Snapshots returns a copy of the buffered snapshots, oldest first.
func (h *History) Snapshots() []pattern.Snapshot {
	out := make([]pattern.Snapshot, len(h.snaps))
	copy(out, h.snaps)
	return out
}

// #endregion history
