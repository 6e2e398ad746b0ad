package sim

import (
	"fmt"

	"github.com/san-kum/coilsim/internal/coil"
)

// Record is what one tick produced.
type Record struct {
	Tick         int     `json:"tick"`
	Time         float64 `json:"time"`
	Indicator    float64 `json:"indicator"`
	Crossings    int     `json:"crossings"`
	MeanPosition float64 `json:"mean_position"`
	Foreground   float64 `json:"foreground"`
}

type Metric interface {
	Name() string
	Observe(c *coil.Coil, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(c *coil.Coil, rec Record)
}

type Config struct {
	Dt    float64
	Ticks int
}

func DefaultConfig() Config {
	return Config{
		Dt:    coil.FixedDt,
		Ticks: 600,
	}
}

type Result struct {
	Records    []Record
	Metrics    map[string]float64
	StepsTaken int
}

// Series extracts one column of the records.
func (r *Result) Series(field string) ([]float64, error) {
	out := make([]float64, len(r.Records))
	for i, rec := range r.Records {
		switch field {
		case "indicator":
			out[i] = rec.Indicator
		case "crossings":
			out[i] = float64(rec.Crossings)
		case "mean_position":
			out[i] = rec.MeanPosition
		case "foreground":
			out[i] = rec.Foreground
		default:
			return nil, fmt.Errorf("unknown series: %s", field)
		}
	}
	return out, nil
}
