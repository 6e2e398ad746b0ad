package coil

import (
	"fmt"
	"math"

	"github.com/san-kum/coilsim/internal/curve"
)

// Carrier is one charge carrier riding the segment chain.
// Its position is a parameter on the current segment, always within [0, 1].
type Carrier struct {
	segment  int
	position float64
	point    curve.Vec2
	layer    curve.Layer
}

// CarrierView is a read-only copy of a carrier's state.
type CarrierView struct {
	SegmentIndex    int
	SegmentPosition float64
	Position        curve.Vec2
	Layer           curve.Layer
}

func newCarrier(segments []*curve.Segment, segment int, position float64) Carrier {
	c := Carrier{segment: segment, position: position}
	c.sync(segments)
	return c
}

func (c *Carrier) SegmentIndex() int        { return c.segment }
func (c *Carrier) SegmentPosition() float64 { return c.position }
func (c *Carrier) Position() curve.Vec2     { return c.point }
func (c *Carrier) Layer() curve.Layer       { return c.layer }

func (c *Carrier) View() CarrierView {
	return CarrierView{
		SegmentIndex:    c.segment,
		SegmentPosition: c.position,
		Position:        c.point,
		Layer:           c.layer,
	}
}

// SignedSpeed maps the current indicator onto a carrier speed and direction.
// Magnitudes below IndicatorThreshold give 0.
func SignedSpeed(indicator float64) float64 {
	if math.Abs(indicator) < IndicatorThreshold {
		return 0
	}
	return speedMap.apply(indicator)
}

// indicator range [-1, 1] onto speed range [-1, 1]
var speedMap = linearMap{a1: -1, a2: 1, b1: -1, b2: 1}

type linearMap struct {
	a1, a2 float64
	b1, b2 float64
}

func (m linearMap) apply(x float64) float64 {
	return m.b1 + (x-m.a1)*(m.b2-m.b1)/(m.a2-m.a1)
}

// Advance moves the carrier for one tick. A positive signedSpeed moves it
// toward each segment's End and on to the next segment; a negative one moves
// it back toward Start and the previous segment. Indices wrap around the
// chain in both directions.
//
// The returned count is the signed number of segment boundaries crossed.
// On error the carrier is left unchanged.
func (c *Carrier) Advance(segments []*curve.Segment, signedSpeed, speedScale, dt float64) (int, error) {
	if signedSpeed == 0 {
		return 0, nil
	}

	n := len(segments)
	index := c.segment
	current := segments[index]
	candidate := c.position - dt*MaxStepFraction*signedSpeed*speedScale*current.SpeedScale()
	if math.IsNaN(candidate) || math.IsInf(candidate, 0) {
		return 0, fmt.Errorf("%w: candidate %v", ErrNonFinite, candidate)
	}

	crossings := 0
	switch {
	case candidate <= 0:
		for candidate <= 0 {
			if crossings >= n {
				return 0, fmt.Errorf("%w: %d handoffs forward", ErrHandoffOverflow, crossings)
			}
			index = (index + 1) % n
			next := segments[index]
			overshoot := math.Abs(candidate) * (next.SpeedScale() / current.SpeedScale())
			candidate = 1.0 - overshoot
			current = next
			crossings++
		}
	case candidate >= 1:
		for candidate >= 1 {
			if -crossings >= n {
				return 0, fmt.Errorf("%w: %d handoffs backward", ErrHandoffOverflow, -crossings)
			}
			index = (index - 1 + n) % n
			prev := segments[index]
			overshoot := math.Abs(1-candidate) * (prev.SpeedScale() / current.SpeedScale())
			candidate = overshoot
			current = prev
			crossings--
		}
	}

	point := current.Eval(candidate)
	if !point.IsFinite() {
		return 0, fmt.Errorf("%w: segment %d at t=%v", ErrNonFinite, index, candidate)
	}

	c.segment = index
	c.position = candidate
	c.point = point
	c.layer = current.Layer()
	return crossings, nil
}

func (c *Carrier) sync(segments []*curve.Segment) {
	seg := segments[c.segment]
	c.point = seg.Eval(c.position)
	c.layer = seg.Layer()
}
