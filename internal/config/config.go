package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/coilsim/internal/coil"
	"github.com/san-kum/coilsim/internal/drive"
)

const (
	DefaultTicks     = 600
	DefaultFPS       = 30
	DefaultDrive     = "sine"
	DefaultAmplitude = 0.8
	DefaultPeriod    = 240.0
)

type Config struct {
	Coil  CoilConfig  `yaml:"coil"`
	Drive DriveConfig `yaml:"drive"`
	Run   RunConfig   `yaml:"run"`
}

type CoilConfig struct {
	Loops           int     `yaml:"loops"`
	Radius          float64 `yaml:"radius"`
	WireWidth       float64 `yaml:"wire_width"`
	LoopSpacing     float64 `yaml:"loop_spacing"`
	SpeedScale      float64 `yaml:"speed_scale"`
	CarriersVisible bool    `yaml:"carriers_visible"`
	CurrentFlow     string  `yaml:"current_flow"`
}

type DriveConfig struct {
	Kind      string  `yaml:"kind"`
	Amplitude float64 `yaml:"amplitude"`
	Period    float64 `yaml:"period"`
	Offset    float64 `yaml:"offset"`
}

type RunConfig struct {
	Ticks int     `yaml:"ticks"`
	Dt    float64 `yaml:"dt"`
	FPS   int     `yaml:"fps"`
}

func DefaultConfig() *Config {
	return &Config{
		Coil: CoilConfig{
			Loops:           coil.DefaultLoops,
			Radius:          coil.DefaultRadius,
			WireWidth:       coil.DefaultWireWidth,
			LoopSpacing:     coil.DefaultLoopSpacing,
			SpeedScale:      coil.DefaultSpeedScale,
			CarriersVisible: coil.DefaultCarriersVisible,
			CurrentFlow:     coil.ElectronFlow.String(),
		},
		Drive: DriveConfig{
			Kind:      DefaultDrive,
			Amplitude: DefaultAmplitude,
			Period:    DefaultPeriod,
		},
		Run: RunConfig{
			Ticks: DefaultTicks,
			Dt:    coil.FixedDt,
			FPS:   DefaultFPS,
		},
	}
}

// Load reads a YAML file over the defaults, so omitted keys keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the values a coil or drive would otherwise reject later.
func (c *Config) Validate() error {
	if err := c.Geometry().Validate(); err != nil {
		return err
	}
	if c.Coil.SpeedScale <= 0 {
		return fmt.Errorf("speed_scale must be positive, got %v", c.Coil.SpeedScale)
	}
	if _, err := coil.ParseCurrentFlow(c.Coil.CurrentFlow); err != nil {
		return err
	}
	if c.Run.Dt != coil.FixedDt {
		return fmt.Errorf("dt must be %v, got %v", coil.FixedDt, c.Run.Dt)
	}
	if c.Run.Ticks <= 0 {
		return fmt.Errorf("ticks must be positive, got %d", c.Run.Ticks)
	}
	if c.Run.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", c.Run.FPS)
	}
	if _, err := drive.New(c.DriveSpec()); err != nil {
		return err
	}
	return nil
}

func (c *Config) Geometry() coil.Geometry {
	return coil.Geometry{
		Loops:       c.Coil.Loops,
		Radius:      c.Coil.Radius,
		WireWidth:   c.Coil.WireWidth,
		LoopSpacing: c.Coil.LoopSpacing,
	}
}

func (c *Config) DriveSpec() drive.Spec {
	return drive.Spec{
		Kind:      c.Drive.Kind,
		Amplitude: c.Drive.Amplitude,
		Period:    c.Drive.Period,
		Offset:    c.Drive.Offset,
	}
}

// CoilOptions converts the coil section into constructor options.
func (c *Config) CoilOptions() ([]coil.Option, error) {
	flow, err := coil.ParseCurrentFlow(c.Coil.CurrentFlow)
	if err != nil {
		return nil, err
	}
	return []coil.Option{
		coil.WithGeometry(c.Geometry()),
		coil.WithSpeedScale(c.Coil.SpeedScale),
		coil.WithCarriersVisible(c.Coil.CarriersVisible),
		coil.WithCurrentFlow(flow),
	}, nil
}

// NewCoil builds the configured coil.
func (c *Config) NewCoil(extra ...coil.Option) (*coil.Coil, error) {
	opts, err := c.CoilOptions()
	if err != nil {
		return nil, err
	}
	return coil.New(append(opts, extra...)...)
}
