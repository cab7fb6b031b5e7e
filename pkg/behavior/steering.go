package behavior

import (
	"github.com/redbeacon-robotics/seekbot/internal/config"
	"github.com/redbeacon-robotics/seekbot/pkg/drive"
)

// seekGain scales both the proportional steering gain and the cruise speed
// while seeking, trading top speed for tracking stability.
const seekGain = 0.7

// Steering converts perception offsets into velocity commands. The seek
// law is a proportional controller with output saturation; the remaining
// primitives are constant single-tick commands.
type Steering struct {
	cruise  float64
	angular float64
	clamp   float64
}

// NewSteering builds the steering laws from drive configuration.
func NewSteering(cfg config.DriveConfig) *Steering {
	return &Steering{
		cruise:  cfg.CruiseSpeed,
		angular: cfg.AngularSpeed,
		clamp:   cfg.AngularClamp,
	}
}

// Seek steers toward a goal offset given in pixels right of image center.
// A positive offset (goal to the right) produces a negative, clockwise
// angular command. Saturation preserves sign and caps magnitude.
func (s *Steering) Seek(goalOffset float64) drive.Command {
	angular := -goalOffset * s.angular * seekGain
	if angular > s.clamp {
		angular = s.clamp
	} else if angular < -s.clamp {
		angular = -s.clamp
	}
	return drive.Command{
		LinearX:  s.cruise * seekGain,
		AngularZ: angular,
	}
}

// Rotate spins in place at the base angular speed.
func (s *Steering) Rotate() drive.Command {
	return drive.Command{AngularZ: s.angular}
}

// Advance drives straight ahead at cruise speed.
func (s *Steering) Advance() drive.Command {
	return drive.Command{LinearX: s.cruise}
}

// Retreat backs up at cruise speed.
func (s *Steering) Retreat() drive.Command {
	return drive.Command{LinearX: -s.cruise}
}
