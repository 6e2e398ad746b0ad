package metrics

import (
	"github.com/san-kum/coilsim/internal/coil"
)

// Stall is the fraction of ticks on which no carrier could move, either
// because the indicator was below threshold or carriers were hidden.
type Stall struct {
	name    string
	stalled int
	samples int
}

func NewStall() *Stall {
	return &Stall{
		name: "stall",
	}
}

func (s *Stall) Name() string {
	return s.name
}

func (s *Stall) Observe(c *coil.Coil, t float64) {
	s.samples++
	if coil.SignedSpeed(c.CurrentIndicator()) == 0 || !c.CarriersVisible() {
		s.stalled++
	}
}

func (s *Stall) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.stalled) / float64(s.samples)
}

func (s *Stall) Reset() {
	s.stalled = 0
	s.samples = 0
}
