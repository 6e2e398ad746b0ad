package coil

import (
	"fmt"
	"math"
)

const (
	// FixedDt is the only tick size Step accepts. Step-fraction and
	// overshoot arithmetic are calibrated against it.
	FixedDt = 1.0

	// MaxStepFraction bounds per-tick travel as a fraction of one segment
	// at unit speed and unit scales.
	MaxStepFraction = 0.15

	// IndicatorThreshold suppresses carrier jitter near zero current.
	IndicatorThreshold = 0.001

	// CarrierSpacing is the nominal distance between carriers on an arc segment.
	CarrierSpacing = 25.0

	EndCarriersLeft  = 2
	EndCarriersRight = 2
)

// User-facing defaults restored by Reset.
const (
	DefaultLoops            = 2
	DefaultRadius           = 50.0
	DefaultCarriersVisible  = true
	DefaultCurrentIndicator = 0.0
)

// Developer tuning defaults. Reset leaves these alone.
const (
	DefaultWireWidth   = 16.0
	DefaultLoopSpacing = 8.0
	DefaultSpeedScale  = 1.0
)

// Geometry is the input to BuildSegments and Populate.
type Geometry struct {
	Loops       int
	Radius      float64
	WireWidth   float64
	LoopSpacing float64
}

func DefaultGeometry() Geometry {
	return Geometry{
		Loops:       DefaultLoops,
		Radius:      DefaultRadius,
		WireWidth:   DefaultWireWidth,
		LoopSpacing: DefaultLoopSpacing,
	}
}

// Validate rejects geometry that cannot be built.
func (g Geometry) Validate() error {
	if g.Loops < 1 {
		return fmt.Errorf("%w: loops must be >= 1, got %d", ErrInvalidGeometry, g.Loops)
	}
	if !(g.Radius > 0) || math.IsInf(g.Radius, 0) {
		return fmt.Errorf("%w: radius must be positive, got %v", ErrInvalidGeometry, g.Radius)
	}
	if !(g.WireWidth >= 0) || math.IsInf(g.WireWidth, 0) {
		return fmt.Errorf("%w: wire width must be >= 0, got %v", ErrInvalidGeometry, g.WireWidth)
	}
	if !(g.LoopSpacing >= 0) || math.IsInf(g.LoopSpacing, 0) {
		return fmt.Errorf("%w: loop spacing must be >= 0, got %v", ErrInvalidGeometry, g.LoopSpacing)
	}
	return nil
}

// SegmentCount is the chain length for a given loop count.
func SegmentCount(loops int) int {
	return 4*loops + 2
}

// CarriersPerArc is the carrier count of every interior segment.
func (g Geometry) CarriersPerArc() int {
	return int(math.Floor(g.Radius / CarrierSpacing))
}

// endSpeedScale equalizes apparent speed on an end stub holding count carriers
// against an arc segment holding CarriersPerArc.
func (g Geometry) endSpeedScale(count int) float64 {
	return (g.Radius / CarrierSpacing) / float64(count)
}

// CurrentFlow selects the direction convention for carrier motion.
type CurrentFlow int

const (
	// ElectronFlow moves carriers opposite to conventional current.
	ElectronFlow CurrentFlow = iota
	// ConventionalFlow moves positive carriers with the current.
	ConventionalFlow
)

func (f CurrentFlow) String() string {
	if f == ConventionalFlow {
		return "conventional"
	}
	return "electron"
}

// ParseCurrentFlow accepts "electron" or "conventional".
func ParseCurrentFlow(s string) (CurrentFlow, error) {
	switch s {
	case "", "electron":
		return ElectronFlow, nil
	case "conventional":
		return ConventionalFlow, nil
	default:
		return ElectronFlow, fmt.Errorf("unknown current flow: %s", s)
	}
}

// Toggle returns the other flow convention.
func (f CurrentFlow) Toggle() CurrentFlow {
	if f == ConventionalFlow {
		return ElectronFlow
	}
	return ConventionalFlow
}

// sign is applied to the signed speed.
func (f CurrentFlow) sign() float64 {
	if f == ConventionalFlow {
		return -1
	}
	return 1
}
