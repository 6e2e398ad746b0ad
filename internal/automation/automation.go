package automation

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/san-kum/coilsim/internal/coil"
	"github.com/san-kum/coilsim/internal/config"
	"github.com/san-kum/coilsim/internal/drive"
	"github.com/san-kum/coilsim/internal/metrics"
	"github.com/san-kum/coilsim/internal/sim"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of phases played on a single coil. Each
// step changes some controls and then runs for a number of ticks, so geometry
// edits in later steps rebuild the coil mid-run.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Preset      string `yaml:"preset"`
	Steps       []Step `yaml:"steps"`
}

// Step is one phase of a scenario. Unset fields keep their previous value.
type Step struct {
	Ticks           int                 `yaml:"ticks"`
	Loops           *int                `yaml:"loops"`
	Radius          *float64            `yaml:"radius"`
	SpeedScale      *float64            `yaml:"speed_scale"`
	CarriersVisible *bool               `yaml:"carriers_visible"`
	CurrentFlow     string              `yaml:"current_flow"`
	Drive           *config.DriveConfig `yaml:"drive"`
	SaveAs          string              `yaml:"save_as"`
}

// StepResult pairs a step's run with the config in force while it ran.
type StepResult struct {
	Index  int
	Config *config.Config
	Result *sim.Result
	RunID  string
}

// Saver persists a finished step. *storage.Store satisfies it.
type Saver interface {
	Save(name string, cfg *config.Config, carriers int, result *sim.Result) (string, error)
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}

	return &scenario, nil
}

// BaseConfig is the config the first step starts from: the named preset, or
// the defaults.
func (sc *Scenario) BaseConfig() (*config.Config, error) {
	if sc.Preset == "" {
		return config.DefaultConfig(), nil
	}
	cfg := config.GetPreset(sc.Preset)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s", sc.Preset)
	}
	return cfg, nil
}

// RunScenario executes all steps in order on one coil. Progress lines go to
// out. Steps with save_as are stored through saver when it is non-nil.
func RunScenario(ctx context.Context, sc *Scenario, saver Saver, out io.Writer) ([]StepResult, error) {
	cfg, err := sc.BaseConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c, err := cfg.NewCoil()
	if err != nil {
		return nil, err
	}
	source, err := drive.New(cfg.DriveSpec())
	if err != nil {
		return nil, err
	}
	s := sim.New(c, source)
	for _, m := range metrics.Default() {
		s.AddMetric(m)
	}

	results := make([]StepResult, 0, len(sc.Steps))
	for i, step := range sc.Steps {
		if err := applyStep(s, cfg, step); err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		fmt.Fprintf(out, "Running step %d/%d: %d loops, radius %.0f, %s drive, %d ticks\n",
			i+1, len(sc.Steps), cfg.Coil.Loops, cfg.Coil.Radius, cfg.Drive.Kind, step.Ticks)

		result, err := s.Run(ctx, sim.Config{Dt: coil.FixedDt, Ticks: step.Ticks})
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Index: i, Config: snapshot(cfg), Result: result}
		if saver != nil && step.SaveAs != "" {
			sr.RunID, err = saver.Save(step.SaveAs, sr.Config, c.CarrierCount(), result)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}

// applyStep pushes a step's changes into the coil and drive, mirroring them
// in cfg. The coil rebuilds at most once per geometry field.
func applyStep(s *sim.Simulator, cfg *config.Config, step Step) error {
	c := s.Coil()
	if step.Ticks <= 0 {
		return fmt.Errorf("ticks must be positive, got %d", step.Ticks)
	}
	if step.Loops != nil {
		if err := c.SetNumberOfLoops(*step.Loops); err != nil {
			return err
		}
		cfg.Coil.Loops = *step.Loops
	}
	if step.Radius != nil {
		if err := c.SetLoopRadius(*step.Radius); err != nil {
			return err
		}
		cfg.Coil.Radius = *step.Radius
	}
	if step.SpeedScale != nil {
		if err := c.SetSpeedScale(*step.SpeedScale); err != nil {
			return err
		}
		cfg.Coil.SpeedScale = *step.SpeedScale
	}
	if step.CarriersVisible != nil {
		c.SetCarriersVisible(*step.CarriersVisible)
		cfg.Coil.CarriersVisible = *step.CarriersVisible
	}
	if step.CurrentFlow != "" {
		f, err := coil.ParseCurrentFlow(step.CurrentFlow)
		if err != nil {
			return err
		}
		c.SetCurrentFlow(f)
		cfg.Coil.CurrentFlow = step.CurrentFlow
	}
	if step.Drive != nil {
		spec := drive.Spec{
			Kind:      step.Drive.Kind,
			Amplitude: step.Drive.Amplitude,
			Period:    step.Drive.Period,
			Offset:    step.Drive.Offset,
		}
		src, err := drive.New(spec)
		if err != nil {
			return err
		}
		s.SetSource(src)
		cfg.Drive = *step.Drive
	}
	cfg.Run.Ticks = step.Ticks
	return nil
}

func snapshot(cfg *config.Config) *config.Config {
	cp := *cfg
	return &cp
}
