// Package config provides configuration for the seekbot controller.
//
// Defaults match the tuning the robot shipped with; a JSON file overrides
// defaults and a handful of environment variables override the file for
// deployment-specific knobs. Validation runs once at startup and is the
// only fatal error in the system.
package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"
)

// RGB is an exact color signature as produced by the upstream segmenter.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// PerceptionConfig holds thresholds for the three sensor processors.
type PerceptionConfig struct {
	TargetColor RGB     `json:"target_color"`
	AreaThresh  float64 `json:"area_threshold_px"`
	NearThresh  float64 `json:"depth_near_threshold"`
	PointThresh int     `json:"depth_point_threshold"`
	ROIRowStart int     `json:"roi_row_start"`
	ROIRowEnd   int     `json:"roi_row_end"` // exclusive
	ImageWidth  int     `json:"image_width"`
	ImageHeight int     `json:"image_height"`

	// StaleAfterSeconds flags a sensor source as stale when no frame has
	// arrived for this long. Zero disables the check.
	StaleAfterSeconds float64 `json:"stale_after_seconds"`
}

// DriveConfig holds speeds and the steering clamp.
type DriveConfig struct {
	CruiseSpeed  float64 `json:"cruise_speed"`
	AngularSpeed float64 `json:"angular_speed"`
	AngularClamp float64 `json:"angular_clamp"`
}

// ArbiterConfig holds the tick rate, maneuver timing, and the
// goal-reached escape threshold.
type ArbiterConfig struct {
	TickHz          float64 `json:"tick_hz"`
	ReachedFraction float64 `json:"reached_area_fraction"`

	// Maneuver step durations. The bumper branch runs retreat, rotate and
	// advance for BumperStepSeconds each; the clear-path branch advances
	// for ClearAdvanceSeconds.
	BumperStepSeconds   float64 `json:"bumper_step_seconds"`
	ClearAdvanceSeconds float64 `json:"clear_advance_seconds"`

	// EmitStopOnReached publishes a single zero command when the goal is
	// reached. The loop keeps ticking either way.
	EmitStopOnReached bool `json:"emit_stop_on_reached"`
}

// SerialConfig describes the optional serial-port bumper source.
type SerialConfig struct {
	Enabled  bool   `json:"enabled"`
	Port     string `json:"port"`
	BaudRate int    `json:"baud_rate"`
}

// Config aggregates all sections.
type Config struct {
	ListenAddr    string `json:"listen_addr"`    // sensor ingest websocket server
	DashboardAddr string `json:"dashboard_addr"` // telemetry dashboard, empty disables
	ActuatorURL   string `json:"actuator_url"`   // velocity command sink, empty logs only
	LogLevel      string `json:"log_level"`

	Perception PerceptionConfig `json:"perception"`
	Drive      DriveConfig      `json:"drive"`
	Arbiter    ArbiterConfig    `json:"arbiter"`
	Serial     SerialConfig     `json:"serial"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		ListenAddr:    ":9091",
		DashboardAddr: ":9090",
		ActuatorURL:   "",
		LogLevel:      "info",
		Perception: PerceptionConfig{
			TargetColor:       RGB{R: 185, G: 66, B: 36},
			AreaThresh:        3000,
			NearThresh:        0.7,
			PointThresh:       10,
			ROIRowStart:       180,
			ROIRowEnd:         420,
			ImageWidth:        640,
			ImageHeight:       480,
			StaleAfterSeconds: 0,
		},
		Drive: DriveConfig{
			CruiseSpeed:  0.15,
			AngularSpeed: 0.7,
			AngularClamp: 0.3,
		},
		Arbiter: ArbiterConfig{
			TickHz:              10,
			ReachedFraction:     0.10,
			BumperStepSeconds:   2,
			ClearAdvanceSeconds: 5,
			EmitStopOnReached:   true,
		},
		Serial: SerialConfig{
			Enabled:  false,
			Port:     "/dev/ttyUSB0",
			BaudRate: 115200,
		},
	}
}

// Load reads cfg from a JSON file on top of defaults, then applies
// environment overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrapf(err, "read config %s", path)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "parse config %s", path)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overrides deployment knobs from the environment.
func (c *Config) applyEnv() {
	if v := os.Getenv("SEEKBOT_LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("SEEKBOT_DASHBOARD_ADDR"); v != "" {
		c.DashboardAddr = v
	}
	if v := os.Getenv("SEEKBOT_ACTUATOR_URL"); v != "" {
		c.ActuatorURL = v
	}
	if v := os.Getenv("SEEKBOT_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("SEEKBOT_SERIAL_PORT"); v != "" {
		c.Serial.Port = v
		c.Serial.Enabled = true
	}
}

// Validate rejects configurations the controller cannot run with.
func (c Config) Validate() error {
	p := c.Perception
	if p.ImageWidth <= 0 || p.ImageHeight <= 0 {
		return errors.Errorf("image dimensions must be positive, got %dx%d", p.ImageWidth, p.ImageHeight)
	}
	if p.AreaThresh <= 0 {
		return errors.Errorf("area threshold must be positive, got %v", p.AreaThresh)
	}
	if p.NearThresh <= 0 {
		return errors.Errorf("depth near threshold must be positive, got %v", p.NearThresh)
	}
	if p.PointThresh <= 0 {
		return errors.Errorf("depth point threshold must be positive, got %d", p.PointThresh)
	}
	if p.ROIRowStart < 0 || p.ROIRowEnd <= p.ROIRowStart || p.ROIRowEnd > p.ImageHeight {
		return errors.Errorf("ROI rows [%d,%d) out of range for height %d", p.ROIRowStart, p.ROIRowEnd, p.ImageHeight)
	}
	if p.StaleAfterSeconds < 0 {
		return errors.Errorf("stale_after_seconds must be >= 0, got %v", p.StaleAfterSeconds)
	}

	d := c.Drive
	if d.CruiseSpeed <= 0 || d.AngularSpeed <= 0 || d.AngularClamp <= 0 {
		return errors.Errorf("speeds must be positive: cruise=%v angular=%v clamp=%v", d.CruiseSpeed, d.AngularSpeed, d.AngularClamp)
	}

	a := c.Arbiter
	if a.TickHz <= 0 {
		return errors.Errorf("tick rate must be positive, got %v", a.TickHz)
	}
	if a.ReachedFraction <= 0 || a.ReachedFraction > 1 {
		return errors.Errorf("reached fraction must be in (0,1], got %v", a.ReachedFraction)
	}
	if a.BumperStepSeconds <= 0 || a.ClearAdvanceSeconds <= 0 {
		return errors.Errorf("maneuver durations must be positive: bumper=%v clear=%v", a.BumperStepSeconds, a.ClearAdvanceSeconds)
	}

	if c.Serial.Enabled {
		if c.Serial.Port == "" {
			return errors.New("serial bumper enabled but port is empty")
		}
		if c.Serial.BaudRate <= 0 {
			return errors.Errorf("serial baud rate must be positive, got %d", c.Serial.BaudRate)
		}
	}
	return nil
}

// TickInterval converts the configured rate into a ticker period.
func (a ArbiterConfig) TickInterval() time.Duration {
	return time.Duration(float64(time.Second) / a.TickHz)
}

// BumperStep returns the duration of one bumper-maneuver step.
func (a ArbiterConfig) BumperStep() time.Duration {
	return time.Duration(a.BumperStepSeconds * float64(time.Second))
}

// ClearAdvance returns the duration of the clear-path advance.
func (a ArbiterConfig) ClearAdvance() time.Duration {
	return time.Duration(a.ClearAdvanceSeconds * float64(time.Second))
}

// StaleAfter returns the sensor staleness window, zero when disabled.
func (p PerceptionConfig) StaleAfter() time.Duration {
	return time.Duration(p.StaleAfterSeconds * float64(time.Second))
}
