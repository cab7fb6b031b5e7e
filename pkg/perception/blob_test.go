package perception

import (
	"math"
	"testing"

	"github.com/redbeacon-robotics/seekbot/internal/config"
)

const floatTolerance = 1e-6

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

func testPerceptionConfig() config.PerceptionConfig {
	return config.Default().Perception
}

func target() config.RGB {
	return testPerceptionConfig().TargetColor
}

func TestBlobEstimator_EmptyFrameIsNoOp(t *testing.T) {
	board := NewBoard()
	est := NewBlobEstimator(testPerceptionConfig(), board)

	// Establish a sighting first.
	err := est.HandleFrame(BlobFrame{
		Count: 1,
		Blobs: []Blob{{Color: target(), X: 400, Area: 5000}},
	})
	if err != nil {
		t.Fatalf("HandleFrame: %v", err)
	}
	before := board.Snapshot()
	if !before.GoalFound {
		t.Fatal("expected goal found after large matching blob")
	}

	// An empty frame must not disturb the goal fields.
	if err := est.HandleFrame(BlobFrame{Count: 0, Blobs: nil}); err != nil {
		t.Fatalf("HandleFrame empty: %v", err)
	}
	after := board.Snapshot()
	if after.GoalFound != before.GoalFound ||
		!floatEquals(after.GoalOffset, before.GoalOffset) ||
		!floatEquals(after.GoalArea, before.GoalArea) {
		t.Errorf("empty frame changed goal fields: before=%+v after=%+v", before, after)
	}
}

func TestBlobEstimator_AreaWeightedCentroid(t *testing.T) {
	cfg := testPerceptionConfig()
	cfg.AreaThresh = 100 // let a small frame pass the goal gate
	board := NewBoard()
	est := NewBlobEstimator(cfg, board)

	err := est.HandleFrame(BlobFrame{
		Count: 2,
		Blobs: []Blob{
			{Color: target(), X: 10, Area: 100},
			{Color: target(), X: 20, Area: 200},
		},
	})
	if err != nil {
		t.Fatalf("HandleFrame: %v", err)
	}

	// Weighted x = (100*10 + 200*20) / 300 = 16.666..., offset subtracts
	// half the image width.
	snap := board.Snapshot()
	wantOffset := 5000.0/300.0 - float64(cfg.ImageWidth)/2
	if !snap.GoalFound {
		t.Fatal("expected goal found")
	}
	if !floatEquals(snap.GoalOffset, wantOffset) {
		t.Errorf("offset: got %v, want %v", snap.GoalOffset, wantOffset)
	}
	if !floatEquals(snap.GoalArea, 300) {
		t.Errorf("area: got %v, want 300", snap.GoalArea)
	}
}

func TestBlobEstimator_ExactThresholdIsNotFound(t *testing.T) {
	board := NewBoard()
	est := NewBlobEstimator(testPerceptionConfig(), board)

	err := est.HandleFrame(BlobFrame{
		Count: 1,
		Blobs: []Blob{{Color: target(), X: 320, Area: 3000}},
	})
	if err != nil {
		t.Fatalf("HandleFrame: %v", err)
	}
	snap := board.Snapshot()
	if snap.GoalFound {
		t.Error("area exactly at threshold must not count as a sighting")
	}
	if !floatEquals(snap.GoalArea, 3000) {
		t.Errorf("area still republished: got %v, want 3000", snap.GoalArea)
	}

	// One more pixel of area tips it over.
	err = est.HandleFrame(BlobFrame{
		Count: 1,
		Blobs: []Blob{{Color: target(), X: 320, Area: 3001}},
	})
	if err != nil {
		t.Fatalf("HandleFrame: %v", err)
	}
	if !board.Snapshot().GoalFound {
		t.Error("area above threshold must count as a sighting")
	}
}

func TestBlobEstimator_IgnoresOtherColors(t *testing.T) {
	board := NewBoard()
	est := NewBlobEstimator(testPerceptionConfig(), board)

	err := est.HandleFrame(BlobFrame{
		Count: 2,
		Blobs: []Blob{
			{Color: config.RGB{R: 255, G: 0, B: 0}, X: 100, Area: 9000},
			{Color: target(), X: 320, Area: 100},
		},
	})
	if err != nil {
		t.Fatalf("HandleFrame: %v", err)
	}
	snap := board.Snapshot()
	if snap.GoalFound {
		t.Error("non-matching colors must not contribute to the goal")
	}
	if !floatEquals(snap.GoalArea, 100) {
		t.Errorf("only matched area counts: got %v, want 100", snap.GoalArea)
	}
}

func TestBlobEstimator_RejectsCountMismatch(t *testing.T) {
	board := NewBoard()
	est := NewBlobEstimator(testPerceptionConfig(), board)

	err := est.HandleFrame(BlobFrame{
		Count: 3,
		Blobs: []Blob{{Color: target(), X: 320, Area: 9000}},
	})
	if err == nil {
		t.Fatal("expected error for declared count > blob list")
	}
	if board.Snapshot().GoalFound {
		t.Error("malformed frame must not update the snapshot")
	}
}
