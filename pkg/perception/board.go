package perception

import (
	"sync"
	"time"
)

// Board is the single-slot mailbox between the sensor processors and the
// arbiter. Producers publish their field subset under one short mutex hold;
// the arbiter copies the whole snapshot out at the start of each tick and
// never blocks a producer for longer than that copy.
type Board struct {
	mu   sync.Mutex
	snap Snapshot

	now func() time.Time
}

// NewBoard returns an empty board. The initial snapshot reports nothing
// found, which leaves the arbiter in its search behavior.
func NewBoard() *Board {
	return &Board{now: time.Now}
}

// Snapshot returns a value copy of the current fused view.
func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snap
}

// publishGoal records one blob-frame evaluation. The offset is only
// overwritten when the goal is visible; area is refreshed on every
// evaluated frame because the reached-escape reads it independently.
func (b *Board) publishGoal(found bool, offset, area float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snap.GoalFound = found
	b.snap.GoalArea = area
	if found {
		b.snap.GoalOffset = offset
	}
	b.snap.BlobSeen = b.now()
}

// markBlobSeen records an empty frame without touching goal fields.
func (b *Board) markBlobSeen() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snap.BlobSeen = b.now()
}

// publishObstacle records one depth-frame evaluation. Depth alone cannot
// clear an obstacle raised by bumper contact.
func (b *Board) publishObstacle(near bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snap.ObstacleFound = near || b.snap.BumperContact
	b.snap.DepthSeen = b.now()
}

// publishBumper records a contact transition. A press forces the obstacle
// flag; a release clears contact only — the obstacle flag stays up until
// the next depth evaluation confirms the path is clear.
func (b *Board) publishBumper(pressed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snap.BumperContact = pressed
	if pressed {
		b.snap.ObstacleFound = true
	}
	b.snap.BumperSeen = b.now()
}

// StaleSources reports which periodic streams have not published within
// staleAfter. A zero window disables the check. Bumper events only arrive
// on contact transitions, so the bumper is never reported stale. Sources
// that have never published are stale until their first frame.
func (b *Board) StaleSources(staleAfter time.Duration) []string {
	if staleAfter <= 0 {
		return nil
	}
	b.mu.Lock()
	snap := b.snap
	now := b.now()
	b.mu.Unlock()

	var stale []string
	if snap.BlobSeen.IsZero() || now.Sub(snap.BlobSeen) > staleAfter {
		stale = append(stale, "blobs")
	}
	if snap.DepthSeen.IsZero() || now.Sub(snap.DepthSeen) > staleAfter {
		stale = append(stale, "depth")
	}
	return stale
}
