package optim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/coilsim/internal/coil"
	"github.com/san-kum/coilsim/internal/config"
	"github.com/san-kum/coilsim/internal/drive"
	"github.com/san-kum/coilsim/internal/metrics"
	"github.com/san-kum/coilsim/internal/sim"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		in   string
		want []float64
	}{
		{"1:4:1", []float64{1, 2, 3, 4}},
		{"25:100:25", []float64{25, 50, 75, 100}},
		{"0.5:1:0.25", []float64{0.5, 0.75, 1}},
		{"2", []float64{2}},
		{"1, 3,5", []float64{1, 3, 5}},
	}
	for _, tt := range tests {
		got, err := ParseRange(tt.in)
		if err != nil {
			t.Errorf("ParseRange(%q) error: %v", tt.in, err)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("ParseRange(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("ParseRange(%q)[%d] = %v, want %v", tt.in, i, got[i], tt.want[i])
			}
		}
	}

	for _, bad := range []string{"1:2", "4:1:1", "1:2:0", "a,b", "1:x:1"} {
		if _, err := ParseRange(bad); err == nil {
			t.Errorf("ParseRange(%q) expected error", bad)
		}
	}
}

func TestApplyParams(t *testing.T) {
	base := config.DefaultConfig()
	cfg, err := ApplyParams(base, map[string]float64{"loops": 3.6, "radius": 80, "period": 60})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Coil.Loops != 4 || cfg.Coil.Radius != 80 || cfg.Drive.Period != 60 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if base.Coil.Loops != coil.DefaultLoops {
		t.Error("base config was modified")
	}
	if _, err := ApplyParams(base, map[string]float64{"voltage": 1}); err == nil {
		t.Error("expected error for unknown parameter")
	}
}

func builder(t *testing.T) func(map[string]float64) (*sim.Simulator, error) {
	t.Helper()
	base := config.DefaultConfig()
	base.Drive = config.DriveConfig{Kind: "constant", Amplitude: 1}
	return func(params map[string]float64) (*sim.Simulator, error) {
		cfg, err := ApplyParams(base, params)
		if err != nil {
			return nil, err
		}
		c, err := cfg.NewCoil()
		if err != nil {
			return nil, err
		}
		src, err := drive.New(cfg.DriveSpec())
		if err != nil {
			return nil, err
		}
		s := sim.New(c, src)
		for _, m := range metrics.Default() {
			s.AddMetric(m)
		}
		return s, nil
	}
}

func TestGridSearchFindsFastestSpeed(t *testing.T) {
	g := NewGridSearch([]string{"speed_scale"}, [][]float64{{0.5, 1, 2}})
	g.Maximize = true

	best, val, err := g.Search(context.Background(), builder(t), sim.Config{Dt: coil.FixedDt, Ticks: 200}, "throughput")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if best["speed_scale"] != 2 {
		t.Errorf("best speed_scale = %v, want 2 (throughput %v)", best["speed_scale"], val)
	}
	if g.Evaluated != 3 {
		t.Errorf("evaluated %d points, want 3", g.Evaluated)
	}
}

func TestGridSearchSkipsInvalidPoints(t *testing.T) {
	g := NewGridSearch([]string{"radius", "loops"}, [][]float64{{10, 50}, {1, 2}})

	best, _, err := g.Search(context.Background(), builder(t), sim.Config{Dt: coil.FixedDt, Ticks: 10}, "stall")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if best["radius"] != 50 {
		t.Errorf("best radius = %v, want 50", best["radius"])
	}
	if g.Skipped != 2 || g.Evaluated != 2 {
		t.Errorf("skipped %d evaluated %d, want 2 and 2", g.Skipped, g.Evaluated)
	}
}

func TestGridSearchErrors(t *testing.T) {
	cfg := sim.Config{Dt: coil.FixedDt, Ticks: 5}

	g := NewGridSearch([]string{"radius"}, [][]float64{{5, 10}})
	if _, _, err := g.Search(context.Background(), builder(t), cfg, "stall"); !errors.Is(err, ErrNoCandidate) {
		t.Errorf("expected ErrNoCandidate, got %v", err)
	}

	g = NewGridSearch([]string{"loops"}, [][]float64{{1}})
	if _, _, err := g.Search(context.Background(), builder(t), cfg, "voltage"); err == nil {
		t.Error("expected error for unknown metric")
	}

	g = NewGridSearch([]string{"loops", "radius"}, [][]float64{{1}})
	if _, _, err := g.Search(context.Background(), builder(t), cfg, "stall"); err == nil {
		t.Error("expected error for mismatched ranges")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g = NewGridSearch([]string{"loops"}, [][]float64{{1, 2}})
	if _, _, err := g.Search(ctx, builder(t), cfg, "stall"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
