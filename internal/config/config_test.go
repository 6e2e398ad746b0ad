package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/coilsim/internal/coil"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Coil.Loops != coil.DefaultLoops {
		t.Errorf("expected %d loops, got %d", coil.DefaultLoops, cfg.Coil.Loops)
	}
	if cfg.Run.Dt != coil.FixedDt {
		t.Errorf("dt should be the fixed tick, got %v", cfg.Run.Dt)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coil.yaml")
	data := []byte("coil:\n  loops: 4\n  radius: 90\ndrive:\n  kind: square\n  period: 60\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Coil.Loops != 4 || cfg.Coil.Radius != 90 {
		t.Errorf("coil = %+v", cfg.Coil)
	}
	if cfg.Coil.WireWidth != coil.DefaultWireWidth {
		t.Errorf("omitted wire_width should keep default, got %v", cfg.Coil.WireWidth)
	}
	if cfg.Drive.Kind != "square" || cfg.Drive.Amplitude != DefaultAmplitude {
		t.Errorf("drive = %+v", cfg.Drive)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coil.yaml")
	cfg := DefaultConfig()
	cfg.Coil.CurrentFlow = "conventional"
	cfg.Run.Ticks = 42

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", loaded, cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero loops", func(c *Config) { c.Coil.Loops = 0 }},
		{"negative radius", func(c *Config) { c.Coil.Radius = -1 }},
		{"zero speed scale", func(c *Config) { c.Coil.SpeedScale = 0 }},
		{"bad flow", func(c *Config) { c.Coil.CurrentFlow = "holes" }},
		{"variable dt", func(c *Config) { c.Run.Dt = 0.5 }},
		{"zero ticks", func(c *Config) { c.Run.Ticks = 0 }},
		{"zero fps", func(c *Config) { c.Run.FPS = 0 }},
		{"unknown drive", func(c *Config) { c.Drive.Kind = "noise" }},
		{"zero period", func(c *Config) { c.Drive.Period = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestNewCoil(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Coil.Loops = 3
	cfg.Coil.CurrentFlow = "conventional"

	c, err := cfg.NewCoil()
	if err != nil {
		t.Fatalf("new coil failed: %v", err)
	}
	if c.SegmentCount() != 14 {
		t.Errorf("expected 14 segments, got %d", c.SegmentCount())
	}
	if c.CurrentFlow() != coil.ConventionalFlow {
		t.Errorf("expected conventional flow, got %v", c.CurrentFlow())
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("ac")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Coil.Loops != 3 || cfg.Drive.Kind != "sine" {
		t.Errorf("unexpected preset: %+v", cfg)
	}

	cfg.Coil.Loops = 9
	if Presets["ac"].Coil.Loops != 3 {
		t.Error("GetPreset returned shared config")
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsValid(t *testing.T) {
	names := ListPresets()
	if len(names) == 0 {
		t.Fatal("expected presets")
	}
	for _, name := range names {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}
