package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/coilsim/internal/coil"
)

func newCoil(t *testing.T, opts ...coil.Option) *coil.Coil {
	t.Helper()
	c, err := coil.New(opts...)
	if err != nil {
		t.Fatalf("coil.New failed: %v", err)
	}
	return c
}

func TestThroughput(t *testing.T) {
	c := newCoil(t, coil.WithLoops(1), coil.WithRadius(50))
	if err := c.SetCurrentIndicator(1); err != nil {
		t.Fatal(err)
	}

	m := NewThroughput()
	if err := c.Step(coil.FixedDt); err != nil {
		t.Fatal(err)
	}
	m.Observe(c, 1)

	// Half of the 12 carriers start at position 0 and cross on the first tick.
	if got := m.Value(); got != 6 {
		t.Errorf("throughput = %v, want 6", got)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero throughput after reset")
	}
}

func TestThroughputReverses(t *testing.T) {
	c := newCoil(t, coil.WithLoops(2))
	if err := c.SetCurrentIndicator(-1); err != nil {
		t.Fatal(err)
	}
	m := NewThroughput()
	for i := 0; i < 40; i++ {
		if err := c.Step(coil.FixedDt); err != nil {
			t.Fatal(err)
		}
		m.Observe(c, float64(i))
	}
	if m.Value() >= 0 {
		t.Errorf("expected negative throughput for reversed current, got %v", m.Value())
	}
}

func TestForegroundFraction(t *testing.T) {
	c := newCoil(t, coil.WithLoops(1), coil.WithRadius(50))
	m := NewForegroundFraction()
	m.Observe(c, 0)

	// Front-bottom, front-top and the right end are foreground: 6 of 12 carriers.
	if got := m.Value(); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("foreground = %v, want 0.5", got)
	}
}

func TestDriveEffortAndStall(t *testing.T) {
	c := newCoil(t)
	effort, stall := NewDriveEffort(), NewStall()

	for _, v := range []float64{0.5, -0.5, 0.0005, 0} {
		if err := c.SetCurrentIndicator(v); err != nil {
			t.Fatal(err)
		}
		effort.Observe(c, 0)
		stall.Observe(c, 0)
	}

	if got := effort.Value(); math.Abs(got-0.250125) > 1e-12 {
		t.Errorf("drive effort = %v, want 0.250125", got)
	}
	if got := stall.Value(); got != 0.5 {
		t.Errorf("stall = %v, want 0.5", got)
	}
}

func TestDefault(t *testing.T) {
	seen := make(map[string]bool)
	for _, m := range Default() {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %s", m.Name())
		}
		seen[m.Name()] = true
	}
	if len(seen) != 4 {
		t.Errorf("expected 4 metrics, got %d", len(seen))
	}
}
