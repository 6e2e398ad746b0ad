package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/coilsim/internal/coil"
	"github.com/san-kum/coilsim/internal/curve"
	"github.com/san-kum/coilsim/internal/drive"
)

// Simulator is the fixed-step clock around a coil. Each tick it pulls the
// current indicator from the drive source, steps the coil and records the
// outcome.
type Simulator struct {
	coil      *coil.Coil
	source    drive.Source
	metrics   []Metric
	observers []Observer
	tick      int
}

func New(c *coil.Coil, source drive.Source) *Simulator {
	return &Simulator{
		coil:      c,
		source:    source,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }
func (s *Simulator) Coil() *coil.Coil       { return s.coil }

// SetSource swaps the drive waveform. The clock keeps running from its
// current tick.
func (s *Simulator) SetSource(src drive.Source) { s.source = src }

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	result := &Result{
		Records: make([]Record, 0, cfg.Ticks),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	for i := 0; i < cfg.Ticks; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		rec, err := s.Tick(cfg.Dt)
		if err != nil {
			return result, err
		}
		result.Records = append(result.Records, rec)
		result.StepsTaken++
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

// Tick advances the clock by one step.
func (s *Simulator) Tick(dt float64) (Record, error) {
	t := float64(s.tick) * dt
	indicator := s.source.Indicator(t)
	if err := s.coil.SetCurrentIndicator(indicator); err != nil {
		return Record{}, fmt.Errorf("tick %d: %w", s.tick, err)
	}
	if err := s.coil.Step(dt); err != nil {
		return Record{}, err
	}
	s.tick++

	rec := Record{
		Tick:      s.tick,
		Time:      t + dt,
		Indicator: indicator,
		Crossings: s.coil.LastCrossings(),
	}
	rec.MeanPosition, rec.Foreground = summarize(s.coil.Carriers())

	for _, m := range s.metrics {
		m.Observe(s.coil, rec.Time)
	}
	for _, obs := range s.observers {
		obs.OnStep(s.coil, rec)
	}
	return rec, nil
}

// Elapsed is the simulation time after the last tick.
func (s *Simulator) Elapsed(dt float64) float64 {
	return float64(s.tick) * dt
}

// Rewind restarts the clock at t = 0. The coil is not touched.
func (s *Simulator) Rewind() {
	s.tick = 0
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt != coil.FixedDt {
		return fmt.Errorf("dt must be %v, got %v", coil.FixedDt, cfg.Dt)
	}
	if cfg.Ticks <= 0 {
		return fmt.Errorf("ticks must be positive, got %d", cfg.Ticks)
	}
	return nil
}

func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(Record) bool) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}

	for i := 0; i < cfg.Ticks; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rec, err := s.Tick(cfg.Dt)
		if err != nil {
			return err
		}
		if !callback(rec) {
			return nil
		}
	}

	return nil
}

func summarize(carriers []coil.CarrierView) (meanPosition, foreground float64) {
	if len(carriers) == 0 {
		return 0, 0
	}
	fg := 0
	for _, cv := range carriers {
		meanPosition += cv.SegmentPosition
		if cv.Layer == curve.Foreground {
			fg++
		}
	}
	n := float64(len(carriers))
	return meanPosition / n, float64(fg) / n
}
