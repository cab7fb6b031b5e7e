package behavior

import (
	"math"
	"testing"

	"github.com/redbeacon-robotics/seekbot/internal/config"
)

const floatTolerance = 1e-9

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

func stockDrive() config.DriveConfig {
	return config.Default().Drive // cruise 0.15, angular 0.7, clamp 0.3
}

func TestSteering_SeekSaturation(t *testing.T) {
	steer := NewSteering(stockDrive())

	// offset -50: raw angular = -(-50)*0.7*0.7 = 24.5, clamped to +0.3.
	cmd := steer.Seek(-50)
	if !floatEquals(cmd.AngularZ, 0.3) {
		t.Errorf("angular: got %v, want 0.3", cmd.AngularZ)
	}
	if !floatEquals(cmd.LinearX, 0.105) {
		t.Errorf("linear: got %v, want 0.105", cmd.LinearX)
	}

	// Mirror image saturates negative.
	cmd = steer.Seek(50)
	if !floatEquals(cmd.AngularZ, -0.3) {
		t.Errorf("angular: got %v, want -0.3", cmd.AngularZ)
	}
}

func TestSteering_SeekProportionalBand(t *testing.T) {
	steer := NewSteering(stockDrive())

	// Small offsets stay inside the clamp: -0.2 * 0.49 = -0.098.
	cmd := steer.Seek(0.2)
	if !floatEquals(cmd.AngularZ, -0.2*0.7*0.7) {
		t.Errorf("angular: got %v, want %v", cmd.AngularZ, -0.2*0.7*0.7)
	}

	// Centered target steers straight.
	cmd = steer.Seek(0)
	if !floatEquals(cmd.AngularZ, 0) {
		t.Errorf("angular at center: got %v, want 0", cmd.AngularZ)
	}
}

func TestSteering_Primitives(t *testing.T) {
	steer := NewSteering(stockDrive())

	if cmd := steer.Rotate(); !floatEquals(cmd.AngularZ, 0.7) || !floatEquals(cmd.LinearX, 0) {
		t.Errorf("rotate: got %+v", cmd)
	}
	if cmd := steer.Advance(); !floatEquals(cmd.LinearX, 0.15) || !floatEquals(cmd.AngularZ, 0) {
		t.Errorf("advance: got %+v", cmd)
	}
	if cmd := steer.Retreat(); !floatEquals(cmd.LinearX, -0.15) || !floatEquals(cmd.AngularZ, 0) {
		t.Errorf("retreat: got %+v", cmd)
	}
}
