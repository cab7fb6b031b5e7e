package behavior

import (
	"sync"
	"time"

	"github.com/redbeacon-robotics/seekbot/internal/config"
	"github.com/redbeacon-robotics/seekbot/internal/log"
	"github.com/redbeacon-robotics/seekbot/pkg/drive"
	"github.com/redbeacon-robotics/seekbot/pkg/perception"
)

// maneuverStep is one timed leg of an avoidance maneuver: repeat cmd every
// tick until the wall-clock deadline passes.
type maneuverStep struct {
	cmd drive.Command
	dur time.Duration
}

// Arbiter owns the controller state exclusively and drives the behavior
// loop at a fixed rate. Each tick it reads one snapshot copy from the
// board, runs the transition function, and emits zero or more commands.
//
// While a maneuver is pending the board is not consulted: the maneuver
// runs to completion uninterruptibly, though producers keep publishing
// into the board concurrently.
type Arbiter struct {
	board *perception.Board
	pub   drive.Publisher
	steer *Steering

	reachedArea float64
	staleAfter  time.Duration
	interval    time.Duration
	bumperStep  time.Duration
	clearStep   time.Duration
	emitStop    bool

	mu      sync.RWMutex
	state   State
	lastCmd drive.Command

	pending      []maneuverStep
	stepDeadline time.Time

	now  func() time.Time
	stop chan struct{}

	// Diagnostics
	tickCount     uint64
	errorCount    uint64
	lastErrorTime time.Time
	staleLogged   bool
}

// NewArbiter wires the behavior loop. The publisher may be any drive sink;
// a failed publish is logged and the loop continues.
func NewArbiter(cfg config.Config, board *perception.Board, pub drive.Publisher) *Arbiter {
	p := cfg.Perception
	return &Arbiter{
		board:       board,
		pub:         pub,
		steer:       NewSteering(cfg.Drive),
		reachedArea: cfg.Arbiter.ReachedFraction * float64(p.ImageWidth) * float64(p.ImageHeight),
		staleAfter:  p.StaleAfter(),
		interval:    cfg.Arbiter.TickInterval(),
		bumperStep:  cfg.Arbiter.BumperStep(),
		clearStep:   cfg.Arbiter.ClearAdvance(),
		emitStop:    cfg.Arbiter.EmitStopOnReached,
		state:       Search,
		now:         time.Now,
		stop:        make(chan struct{}),
	}
}

// State returns the current behavior state.
func (a *Arbiter) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// LastCommand returns the most recently published command.
func (a *Arbiter) LastCommand() drive.Command {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastCmd
}

// Run starts the control loop. Blocks until Stop is called.
func (a *Arbiter) Run() {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	log.Info("arbiter started", "hz", float64(time.Second)/float64(a.interval))

	for {
		select {
		case <-a.stop:
			log.Info("arbiter stopped", "ticks", a.tickCount)
			return
		case <-ticker.C:
			a.tick()
		}
	}
}

// Stop halts the control loop gracefully.
func (a *Arbiter) Stop() {
	close(a.stop)
}

// tick executes one control cycle.
func (a *Arbiter) tick() {
	now := a.now()
	a.tickCount++

	// A pending maneuver preempts perception until it drains.
	if len(a.pending) > 0 {
		a.stepManeuver(now)
		return
	}

	if stale := a.board.StaleSources(a.staleAfter); len(stale) > 0 {
		if !a.staleLogged {
			log.Warn("sensor streams stale, holding last snapshot", "sources", stale)
			a.staleLogged = true
		}
	} else {
		a.staleLogged = false
	}

	snap := a.board.Snapshot()
	d := Decide(a.state, snap, a.reachedArea, a.emitStop)
	a.commit(d.Next, snap)

	switch d.Act {
	case ActRotate:
		a.publish(a.steer.Rotate())
	case ActSeek:
		a.publish(a.steer.Seek(snap.GoalOffset))
	case ActStop:
		a.publish(drive.Stop)
	case ActBumperManeuver:
		a.pending = []maneuverStep{
			{a.steer.Retreat(), a.bumperStep},
			{a.steer.Rotate(), a.bumperStep},
			{a.steer.Advance(), a.bumperStep},
		}
		a.stepManeuver(now)
	case ActClearManeuver:
		a.pending = []maneuverStep{{a.steer.Advance(), a.clearStep}}
		a.stepManeuver(now)
	}
}

// stepManeuver emits the current maneuver step and retires it once its
// deadline has passed.
func (a *Arbiter) stepManeuver(now time.Time) {
	if a.stepDeadline.IsZero() {
		a.stepDeadline = now.Add(a.pending[0].dur)
	}
	a.publish(a.pending[0].cmd)
	if !now.Before(a.stepDeadline) {
		a.pending = a.pending[1:]
		a.stepDeadline = time.Time{}
		if len(a.pending) == 0 {
			log.Debug("maneuver complete")
		}
	}
}

// commit records the transition, logging only on change.
func (a *Arbiter) commit(next State, snap perception.Snapshot) {
	a.mu.Lock()
	prev := a.state
	a.state = next
	a.mu.Unlock()

	if next != prev {
		log.Info("state transition",
			"from", prev.String(),
			"to", next.String(),
			"goal_found", snap.GoalFound,
			"goal_area", snap.GoalArea,
			"obstacle", snap.ObstacleFound,
			"bumper", snap.BumperContact)
	}
}

// publish delivers one command, logging failures at most every 5 seconds.
// State is committed before publish, so a failed delivery cannot corrupt
// the state machine.
func (a *Arbiter) publish(cmd drive.Command) {
	a.mu.Lock()
	a.lastCmd = cmd
	a.mu.Unlock()

	if err := a.pub.Publish(cmd); err != nil {
		a.errorCount++
		if a.lastErrorTime.IsZero() || a.now().Sub(a.lastErrorTime) > 5*time.Second {
			log.Error("command publish failed", "err", err, "total_errors", a.errorCount)
			a.lastErrorTime = a.now()
		}
	}
}
