// Package drive defines the velocity command contract between the behavior
// arbiter and the external actuator, plus the publishers that deliver it.
package drive

// Command is one differential-drive velocity setpoint. Positive LinearX
// moves the robot forward; positive AngularZ turns it left (counter-
// clockwise about the vertical axis).
type Command struct {
	LinearX  float64 `json:"linear_x"`
	AngularZ float64 `json:"angular_z"`
}

// Stop is the zero command.
var Stop = Command{}

// Publisher delivers commands to the actuator. A failed publish is the
// caller's to log; it must never affect controller state.
type Publisher interface {
	Publish(cmd Command) error
	Close() error
}
