// Package behavior implements the robot's finite-state arbiter: a fixed-rate
// loop that reads one perception snapshot per tick, selects among search,
// approach, obstacle-avoidance and goal-reached behaviors, and emits velocity
// commands.
//
// The transition logic is a pure function (Decide) with no I/O, kept
// separate from the tick-scheduling harness (Arbiter) so it can be tested
// exhaustively against the snapshot space.
package behavior

import (
	"fmt"

	"github.com/redbeacon-robotics/seekbot/pkg/perception"
)

// State is the arbiter's behavior mode.
type State int

const (
	// Search rotates in place until the goal or an obstacle shows up.
	Search State = iota
	// Approach drives toward the goal under proportional steering.
	Approach
	// Avoid handles an obstacle: rotate away, or back off after contact.
	Avoid
	// Reached is terminal. No snapshot can leave it.
	Reached
)

func (s State) String() string {
	switch s {
	case Search:
		return "SEARCH"
	case Approach:
		return "APPROACH"
	case Avoid:
		return "AVOID"
	case Reached:
		return "REACHED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Action is what the arbiter should do for the tick that produced it.
type Action int

const (
	// ActNone emits nothing this tick (pure transition).
	ActNone Action = iota
	// ActRotate spins in place for one tick.
	ActRotate
	// ActSeek steers toward the goal for one tick.
	ActSeek
	// ActBumperManeuver runs the timed retreat, rotate, advance sequence.
	ActBumperManeuver
	// ActClearManeuver runs the timed advance past a cleared obstacle.
	ActClearManeuver
	// ActStop emits a single zero command (entering Reached).
	ActStop
)

// Decision pairs the next state with the action for this tick.
type Decision struct {
	Next State
	Act  Action
}

// Decide is the state-transition function. reachedArea is the blob area,
// in px², above which a close obstacle is taken to be the goal itself.
//
// Priority within a state is fixed: avoidance outranks approach, which
// outranks search. Reached is absorbing.
func Decide(s State, snap perception.Snapshot, reachedArea float64, emitStop bool) Decision {
	switch s {
	case Search:
		if snap.ObstacleFound {
			return Decision{Avoid, ActNone}
		}
		if snap.GoalFound {
			return Decision{Approach, ActNone}
		}
		return Decision{Search, ActRotate}

	case Approach:
		if snap.ObstacleFound {
			return Decision{Avoid, ActNone}
		}
		if !snap.GoalFound {
			return Decision{Search, ActNone}
		}
		return Decision{Approach, ActSeek}

	case Avoid:
		// A target blob filling this much of the frame registers as a
		// depth obstacle too; the obstacle IS the goal, already reached.
		if snap.GoalArea > reachedArea {
			if emitStop {
				return Decision{Reached, ActStop}
			}
			return Decision{Reached, ActNone}
		}
		if snap.BumperContact {
			return Decision{Search, ActBumperManeuver}
		}
		if snap.ObstacleFound {
			return Decision{Avoid, ActRotate}
		}
		return Decision{Search, ActClearManeuver}

	default: // Reached
		return Decision{Reached, ActNone}
	}
}
