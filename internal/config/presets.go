package config

import "sort"

// Presets are named starting points. Each is a complete config.
var Presets = map[string]*Config{
	"steady": preset(func(c *Config) {
		c.Drive = DriveConfig{Kind: "constant", Amplitude: 0.6}
	}),
	"ac": preset(func(c *Config) {
		c.Coil.Loops = 3
		c.Drive = DriveConfig{Kind: "sine", Amplitude: 1.0, Period: 180}
	}),
	"pulse": preset(func(c *Config) {
		c.Coil.Loops = 2
		c.Coil.Radius = 75
		c.Drive = DriveConfig{Kind: "square", Amplitude: 0.9, Period: 120}
	}),
	"sweep": preset(func(c *Config) {
		c.Coil.Loops = 4
		c.Coil.Radius = 100
		c.Drive = DriveConfig{Kind: "ramp", Amplitude: 1.0, Period: 300}
		c.Run.Ticks = 900
	}),
	"weak": preset(func(c *Config) {
		c.Coil.Loops = 1
		c.Drive = DriveConfig{Kind: "sine", Amplitude: 0.05, Period: 240}
	}),
	"fast": preset(func(c *Config) {
		c.Coil.Loops = 3
		c.Coil.SpeedScale = 5
		c.Coil.CurrentFlow = "conventional"
		c.Drive = DriveConfig{Kind: "sine", Amplitude: 1.0, Period: 200}
	}),
}

func preset(fn func(*Config)) *Config {
	c := DefaultConfig()
	fn(c)
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
