package coil

import (
	"errors"
	"fmt"
)

// Contract violations. None of these are expected during normal operation.
var (
	// ErrInvalidGeometry indicates a loop count, radius, width or spacing outside its domain.
	ErrInvalidGeometry = errors.New("coil: invalid geometry")

	// ErrCarrierSpacing indicates a radius too small to hold one carrier per segment.
	ErrCarrierSpacing = errors.New("coil: radius too small for carrier spacing")

	// ErrTickMismatch indicates Step was called with a dt other than FixedDt.
	ErrTickMismatch = errors.New("coil: dt does not match fixed tick size")

	// ErrHandoffOverflow indicates a single tick crossed more boundaries than the chain has segments.
	ErrHandoffOverflow = errors.New("coil: handoff did not terminate within chain length")

	// ErrNonFinite indicates a carrier position became NaN or Inf.
	ErrNonFinite = errors.New("coil: non-finite carrier position")

	// ErrInvalidSpeedScale indicates a global speed scale that is not positive.
	ErrInvalidSpeedScale = errors.New("coil: speed scale must be positive")
)

// StepError wraps a failure during Step with the offending carrier.
type StepError struct {
	Tick     int
	Carrier  int
	Segment  int
	Position float64
	Wrapped  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("tick %d carrier %d (segment %d, t=%.6f): %v",
		e.Tick, e.Carrier, e.Segment, e.Position, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
