package perception

import (
	"testing"
	"time"
)

func TestBoard_SnapshotIsValueCopy(t *testing.T) {
	board := NewBoard()
	board.publishGoal(true, 12.5, 4000)

	snap := board.Snapshot()
	snap.GoalFound = false
	snap.GoalOffset = 999

	if got := board.Snapshot(); !got.GoalFound || got.GoalOffset != 12.5 {
		t.Errorf("mutating a snapshot copy leaked into the board: %+v", got)
	}
}

func TestBoard_GoalOffsetHeldWhileNotFound(t *testing.T) {
	board := NewBoard()
	board.publishGoal(true, -40, 5000)
	board.publishGoal(false, 0, 200)

	snap := board.Snapshot()
	if snap.GoalFound {
		t.Error("expected goal not found")
	}
	if snap.GoalOffset != -40 {
		t.Errorf("offset must hold its last found value, got %v", snap.GoalOffset)
	}
	if snap.GoalArea != 200 {
		t.Errorf("area must track every evaluated frame, got %v", snap.GoalArea)
	}
}

func TestBoard_StaleSources(t *testing.T) {
	board := NewBoard()
	now := time.Now()
	board.now = func() time.Time { return now }

	// Nothing ever published: both periodic streams stale.
	stale := board.StaleSources(time.Second)
	if len(stale) != 2 {
		t.Fatalf("expected blobs and depth stale, got %v", stale)
	}

	board.markBlobSeen()
	board.publishObstacle(false)
	if stale := board.StaleSources(time.Second); len(stale) != 0 {
		t.Errorf("fresh sources reported stale: %v", stale)
	}

	now = now.Add(2 * time.Second)
	stale = board.StaleSources(time.Second)
	if len(stale) != 2 {
		t.Errorf("expected both stale after window elapsed, got %v", stale)
	}

	// Zero window disables the check.
	if stale := board.StaleSources(0); stale != nil {
		t.Errorf("disabled check returned %v", stale)
	}
}
