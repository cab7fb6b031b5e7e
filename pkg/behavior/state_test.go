package behavior

import (
	"testing"

	"github.com/redbeacon-robotics/seekbot/pkg/perception"
)

// reachedArea for a 640x480 frame at the stock 10% fraction.
const testReachedArea = 0.10 * 640 * 480

func TestDecide_TransitionTable(t *testing.T) {
	tests := []struct {
		name string
		s    State
		snap perception.Snapshot
		want Decision
	}{
		{"search sees obstacle", Search, perception.Snapshot{ObstacleFound: true}, Decision{Avoid, ActNone}},
		{"search obstacle outranks goal", Search, perception.Snapshot{ObstacleFound: true, GoalFound: true}, Decision{Avoid, ActNone}},
		{"search sees goal", Search, perception.Snapshot{GoalFound: true}, Decision{Approach, ActNone}},
		{"search sees nothing", Search, perception.Snapshot{}, Decision{Search, ActRotate}},

		{"approach sees obstacle", Approach, perception.Snapshot{ObstacleFound: true, GoalFound: true}, Decision{Avoid, ActNone}},
		{"approach loses goal", Approach, perception.Snapshot{}, Decision{Search, ActNone}},
		{"approach keeps goal", Approach, perception.Snapshot{GoalFound: true, GoalOffset: 30}, Decision{Approach, ActSeek}},

		{"avoid bumper maneuver", Avoid, perception.Snapshot{ObstacleFound: true, BumperContact: true}, Decision{Search, ActBumperManeuver}},
		{"avoid rotates off depth obstacle", Avoid, perception.Snapshot{ObstacleFound: true}, Decision{Avoid, ActRotate}},
		{"avoid clear path advances", Avoid, perception.Snapshot{}, Decision{Search, ActClearManeuver}},

		{"reached ignores everything", Reached, perception.Snapshot{ObstacleFound: true, GoalFound: true, BumperContact: true}, Decision{Reached, ActNone}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.s, tt.snap, testReachedArea, false)
			if got != tt.want {
				t.Errorf("Decide(%v, %+v) = %+v, want %+v", tt.s, tt.snap, got, tt.want)
			}
		})
	}
}

func TestDecide_AvoidEscapesToReached(t *testing.T) {
	// 10% of 640x480 = 30720; strictly above escapes, independent of the
	// bumper.
	snap := perception.Snapshot{
		GoalArea:      30721,
		ObstacleFound: true,
		BumperContact: true,
	}
	got := Decide(Avoid, snap, testReachedArea, false)
	if got.Next != Reached {
		t.Errorf("expected Reached, got %v", got.Next)
	}

	snap.GoalArea = 30720
	got = Decide(Avoid, snap, testReachedArea, false)
	if got.Next == Reached {
		t.Error("area exactly at the escape threshold must not escape")
	}
}

func TestDecide_ReachedEmitsStopOnce(t *testing.T) {
	snap := perception.Snapshot{GoalArea: testReachedArea + 1}

	got := Decide(Avoid, snap, testReachedArea, true)
	if got.Next != Reached || got.Act != ActStop {
		t.Errorf("entering Reached with stop enabled: got %+v", got)
	}

	// Once in Reached the stop never repeats.
	got = Decide(Reached, snap, testReachedArea, true)
	if got.Act != ActNone {
		t.Errorf("Reached must emit nothing, got action %v", got.Act)
	}
}

func TestDecide_ReachedIsAbsorbing(t *testing.T) {
	snaps := []perception.Snapshot{
		{},
		{GoalFound: true, GoalArea: 99999},
		{ObstacleFound: true},
		{BumperContact: true, ObstacleFound: true},
	}
	for _, snap := range snaps {
		got := Decide(Reached, snap, testReachedArea, true)
		if got.Next != Reached {
			t.Errorf("snapshot %+v escaped Reached to %v", snap, got.Next)
		}
	}
}
