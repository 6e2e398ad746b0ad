// Package drive supplies the current indicator that a coil consumes each tick.
//
// The real value comes from a field/EMF model; the sources here are simple
// periodic waveforms that stand in for it when running the coil on its own.
package drive

import (
	"fmt"
	"math"
	"sort"
)

// Source produces a current indicator in [-1, 1] for simulation time t.
type Source interface {
	Indicator(t float64) float64
}

// Spec describes a source. Period is in ticks.
type Spec struct {
	Kind      string
	Amplitude float64
	Period    float64
	Offset    float64
}

var factories = map[string]func(Spec) Source{
	"constant": func(s Spec) Source { return Constant{Value: s.Amplitude + s.Offset} },
	"sine":     func(s Spec) Source { return Sine(s) },
	"square":   func(s Spec) Source { return Square(s) },
	"ramp":     func(s Spec) Source { return Ramp(s) },
}

// New builds the source named by spec.Kind.
func New(spec Spec) (Source, error) {
	fn, ok := factories[spec.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown drive: %s (available: %v)", spec.Kind, Kinds())
	}
	if spec.Kind != "constant" && !(spec.Period > 0) {
		return nil, fmt.Errorf("drive %s: period must be positive, got %v", spec.Kind, spec.Period)
	}
	return fn(spec), nil
}

func Kinds() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type Constant struct {
	Value float64
}

func (c Constant) Indicator(float64) float64 { return clamp(c.Value) }

// Sine oscillates around Offset.
type Sine Spec

func (s Sine) Indicator(t float64) float64 {
	return clamp(s.Offset + s.Amplitude*math.Sin(2*math.Pi*t/s.Period))
}

// Square alternates between Offset+Amplitude and Offset-Amplitude every half period.
type Square Spec

func (s Square) Indicator(t float64) float64 {
	phase := math.Mod(t, s.Period)
	if phase < 0 {
		phase += s.Period
	}
	if phase < s.Period/2 {
		return clamp(s.Offset + s.Amplitude)
	}
	return clamp(s.Offset - s.Amplitude)
}

// Ramp is a triangle wave starting at Offset-Amplitude.
type Ramp Spec

func (r Ramp) Indicator(t float64) float64 {
	phase := math.Mod(t, r.Period) / r.Period
	if phase < 0 {
		phase += 1
	}
	tri := 4*math.Abs(phase-0.5) - 1 // 1 -> -1 -> 1
	return clamp(r.Offset - r.Amplitude*tri)
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-1, math.Min(1, v))
}
