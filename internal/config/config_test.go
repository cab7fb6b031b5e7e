package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("stock configuration failed validation: %v", err)
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero image width", func(c *Config) { c.Perception.ImageWidth = 0 }},
		{"negative area threshold", func(c *Config) { c.Perception.AreaThresh = -1 }},
		{"zero near threshold", func(c *Config) { c.Perception.NearThresh = 0 }},
		{"zero point threshold", func(c *Config) { c.Perception.PointThresh = 0 }},
		{"ROI past image bottom", func(c *Config) { c.Perception.ROIRowEnd = 500 }},
		{"inverted ROI", func(c *Config) { c.Perception.ROIRowStart = 420; c.Perception.ROIRowEnd = 180 }},
		{"zero cruise speed", func(c *Config) { c.Drive.CruiseSpeed = 0 }},
		{"zero tick rate", func(c *Config) { c.Arbiter.TickHz = 0 }},
		{"reached fraction above one", func(c *Config) { c.Arbiter.ReachedFraction = 1.5 }},
		{"zero maneuver duration", func(c *Config) { c.Arbiter.BumperStepSeconds = 0 }},
		{"serial enabled without port", func(c *Config) { c.Serial.Enabled = true; c.Serial.Port = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seekbot.json")
	body := `{"log_level":"debug","perception":{"target_color":{"r":238,"g":114,"b":76},"area_threshold_px":3000,"depth_near_threshold":0.7,"depth_point_threshold":10,"roi_row_start":180,"roi_row_end":420,"image_width":640,"image_height":480},"arbiter":{"tick_hz":20,"reached_area_fraction":0.1,"bumper_step_seconds":2,"clear_advance_seconds":5}}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level: got %q", cfg.LogLevel)
	}
	if cfg.Perception.TargetColor != (RGB{R: 238, G: 114, B: 76}) {
		t.Errorf("target color: got %+v", cfg.Perception.TargetColor)
	}
	if cfg.Arbiter.TickInterval() != 50*time.Millisecond {
		t.Errorf("tick interval: got %v, want 50ms", cfg.Arbiter.TickInterval())
	}
	// Untouched sections keep their defaults.
	if cfg.Drive.CruiseSpeed != 0.15 {
		t.Errorf("cruise speed default lost: got %v", cfg.Drive.CruiseSpeed)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SEEKBOT_ACTUATOR_URL", "ws://bridge:7000/cmd")
	t.Setenv("SEEKBOT_LOG_LEVEL", "warn")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ActuatorURL != "ws://bridge:7000/cmd" {
		t.Errorf("actuator url: got %q", cfg.ActuatorURL)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("log level: got %q", cfg.LogLevel)
	}
}

func TestLoad_MissingFileFails(t *testing.T) {
	if _, err := Load("/nonexistent/seekbot.json"); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestDurationHelpers(t *testing.T) {
	a := Default().Arbiter
	if a.TickInterval() != 100*time.Millisecond {
		t.Errorf("tick interval: got %v", a.TickInterval())
	}
	if a.BumperStep() != 2*time.Second {
		t.Errorf("bumper step: got %v", a.BumperStep())
	}
	if a.ClearAdvance() != 5*time.Second {
		t.Errorf("clear advance: got %v", a.ClearAdvance())
	}
}
