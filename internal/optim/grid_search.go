package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/san-kum/coilsim/internal/config"
	"github.com/san-kum/coilsim/internal/sim"
)

// ErrNoCandidate is returned when every grid point failed to build or run.
var ErrNoCandidate = errors.New("optim: no grid point produced a result")

// setters maps searchable parameter names onto config fields.
var setters = map[string]func(*config.Config, float64){
	"loops":        func(c *config.Config, v float64) { c.Coil.Loops = int(math.Round(v)) },
	"radius":       func(c *config.Config, v float64) { c.Coil.Radius = v },
	"wire_width":   func(c *config.Config, v float64) { c.Coil.WireWidth = v },
	"loop_spacing": func(c *config.Config, v float64) { c.Coil.LoopSpacing = v },
	"speed_scale":  func(c *config.Config, v float64) { c.Coil.SpeedScale = v },
	"amplitude":    func(c *config.Config, v float64) { c.Drive.Amplitude = v },
	"period":       func(c *config.Config, v float64) { c.Drive.Period = v },
	"offset":       func(c *config.Config, v float64) { c.Drive.Offset = v },
}

// Params lists the names ApplyParams understands.
func Params() []string {
	names := make([]string, 0, len(setters))
	for name := range setters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyParams returns a copy of base with the named values set.
func ApplyParams(base *config.Config, params map[string]float64) (*config.Config, error) {
	cfg := *base
	for name, v := range params {
		set, ok := setters[name]
		if !ok {
			return nil, fmt.Errorf("unknown parameter: %s", name)
		}
		set(&cfg, v)
	}
	return &cfg, nil
}

// ParseRange reads "min:max:step" or a comma separated list of values.
func ParseRange(s string) ([]float64, error) {
	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("range %q: want min:max:step", s)
		}
		bounds := make([]float64, 3)
		for i, p := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return nil, fmt.Errorf("range %q: %w", s, err)
			}
			bounds[i] = v
		}
		lo, hi, step := bounds[0], bounds[1], bounds[2]
		if step <= 0 || hi < lo {
			return nil, fmt.Errorf("range %q: need step > 0 and max >= min", s)
		}
		n := int(math.Floor((hi-lo)/step+1e-9)) + 1
		values := make([]float64, n)
		for i := range values {
			values[i] = lo + float64(i)*step
		}
		return values, nil
	}

	var values []float64
	for _, p := range strings.Split(s, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("range %q: %w", s, err)
		}
		values = append(values, v)
	}
	return values, nil
}

// GridSearch tries every combination of parameter values and keeps the one
// with the best metric. Lower is better unless Maximize is set.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	Maximize   bool
	Evaluated  int
	Skipped    int
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search runs build(params) for every grid point. Points whose simulator
// cannot be built or fails mid-run are skipped; context cancellation stops
// the search.
func (g *GridSearch) Search(
	ctx context.Context,
	build func(params map[string]float64) (*sim.Simulator, error),
	cfg sim.Config,
	metricName string,
) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("optim: %d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}

	best := math.Inf(1)
	if g.Maximize {
		best = math.Inf(-1)
	}
	var bestParams map[string]float64

	if err := g.searchRecursive(ctx, 0, make(map[string]float64), build, cfg, metricName, &best, &bestParams); err != nil {
		return nil, 0, err
	}
	if bestParams == nil {
		return nil, 0, ErrNoCandidate
	}

	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	build func(map[string]float64) (*sim.Simulator, error),
	cfg sim.Config,
	metricName string,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		s, err := build(current)
		if err != nil {
			g.Skipped++
			return nil
		}

		result, err := s.Run(ctx, cfg)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			g.Skipped++
			return nil
		}
		g.Evaluated++

		val, ok := result.Metrics[metricName]
		if !ok {
			return fmt.Errorf("optim: metric %q not recorded", metricName)
		}
		if g.better(val, *best) {
			*best = val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, build, cfg, metricName, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}

func (g *GridSearch) better(val, best float64) bool {
	if g.Maximize {
		return val > best
	}
	return val < best
}
