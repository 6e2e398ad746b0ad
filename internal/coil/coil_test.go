package coil

import (
	"errors"
	"testing"
)

func segmentHistogram(c *Coil) map[int]int {
	h := make(map[int]int)
	for _, cv := range c.Carriers() {
		h[cv.SegmentIndex]++
	}
	return h
}

func TestCoil_RebuildDeterministic(t *testing.T) {
	c, err := New(WithLoops(3), WithRadius(80))
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	first := segmentHistogram(c)

	if err := c.SetNumberOfLoops(1); err != nil {
		t.Fatalf("set loops failed: %v", err)
	}
	if err := c.SetNumberOfLoops(3); err != nil {
		t.Fatalf("set loops failed: %v", err)
	}
	second := segmentHistogram(c)

	if len(first) != len(second) {
		t.Fatalf("segment counts differ: %d vs %d", len(first), len(second))
	}
	for seg, n := range first {
		if second[seg] != n {
			t.Errorf("segment %d: %d carriers, then %d", seg, n, second[seg])
		}
	}
}

func TestCoil_RebuildDiscardsMotion(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	initial := c.Carriers()

	if err := c.SetCurrentIndicator(0.7); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		if err := c.Step(FixedDt); err != nil {
			t.Fatalf("step %d failed: %v", i, err)
		}
	}
	if err := c.SetLoopRadius(c.LoopRadius()); err != nil {
		t.Fatal(err)
	}

	rebuilt := c.Carriers()
	for i := range initial {
		if rebuilt[i] != initial[i] {
			t.Fatalf("carrier %d not reset by rebuild: %+v vs %+v", i, rebuilt[i], initial[i])
		}
	}
}

func TestCoil_CrossingsPerStep(t *testing.T) {
	c, err := New(WithLoops(1), WithRadius(50))
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	if err := c.SetCurrentIndicator(1); err != nil {
		t.Fatal(err)
	}

	// Every segment holds 2 carriers at 0 and 0.5. The one at 0 crosses on the first tick.
	if err := c.Step(FixedDt); err != nil {
		t.Fatalf("step failed: %v", err)
	}
	if got := c.LastCrossings(); got != c.SegmentCount() {
		t.Errorf("crossings = %d, want %d", got, c.SegmentCount())
	}
}

func TestCoil_StepErrorContext(t *testing.T) {
	c, err := New(WithLoops(1), WithSpeedScale(1000))
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	if err := c.SetCurrentIndicator(-1); err != nil {
		t.Fatal(err)
	}

	err = c.Step(FixedDt)
	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("expected *StepError, got %v", err)
	}
	if stepErr.Tick != 1 || stepErr.Carrier != 0 {
		t.Errorf("unexpected context: %+v", stepErr)
	}
	if !errors.Is(err, ErrHandoffOverflow) {
		t.Errorf("expected wrapped ErrHandoffOverflow, got %v", err)
	}
}
