package coil

import (
	"fmt"

	"github.com/san-kum/coilsim/internal/curve"
)

// Control-point fractions of the loop radius. Tuned so that the seams between
// consecutive segments show no visible kink.
const (
	frontBulge   = 0.70 // x reach of the control points on each arc
	sideReach    = 0.80 // x reach of the arc midpoints
	arcCurl      = 0.92 // y reach of the arc control points
	firstTopLift = 1.20 // y reach of the first top control point
	slant        = 0.25 // fraction of loop spacing covered per front quarter
)

// Fixed offsets of the open wire ends, in model units.
var (
	leadControl = curve.V(15, -20)
	leadTip     = curve.V(20, -40)
)

// BuildSegments generates the coil's segment chain, left to right, centered
// on x = 0. Consecutive segments share an anchor: seg[k].End() equals
// seg[k+1].Start(). The chain is open between the last segment and the first.
func BuildSegments(g Geometry) ([]*curve.Segment, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	b := &chainBuilder{segments: make([]*curve.Segment, 0, SegmentCount(g.Loops))}

	r := g.Radius
	spacing := g.WireWidth + g.LoopSpacing
	xStart := -(spacing * float64(g.Loops-1) / 2)

	for i := 0; i < g.Loops; i++ {
		x := xStart + float64(i)*spacing
		top := curve.V(x, -r)
		back := curve.V(x+sideReach*r, 0)
		bottom := curve.V(x, r)
		front := curve.V(x-sideReach*r+2*slant*spacing, 0)
		nextTop := curve.V(x+spacing, -r)

		if i == 0 {
			join := curve.V(x-spacing/2, -r)
			b.add("left end", join.Add(flipX(leadTip)), join.Add(flipX(leadControl)), join,
				curve.Background, curve.WithSpeedScale(g.endSpeedScale(EndCarriersLeft)))
			b.add("first top", join, curve.V(x+frontBulge*r, -firstTopLift*r), back, curve.Background)
		} else {
			b.add("top", top, curve.V(x+frontBulge*r, -arcCurl*r), back, curve.Background)
		}

		b.add("back bottom", back, curve.V(x+frontBulge*r, arcCurl*r), bottom, curve.Background)
		b.add("front bottom", bottom, curve.V(x-frontBulge*r+slant*spacing, arcCurl*r), front, curve.Foreground)
		b.add("front top", front, curve.V(x-frontBulge*r+3*slant*spacing, -arcCurl*r), nextTop, curve.Foreground)

		if i == g.Loops-1 {
			b.add("right end", nextTop, nextTop.Add(leadControl), nextTop.Add(leadTip),
				curve.Foreground, curve.WithSpeedScale(g.endSpeedScale(EndCarriersRight)))
		}
	}

	if b.err != nil {
		return nil, b.err
	}
	if len(b.segments) != SegmentCount(g.Loops) {
		return nil, fmt.Errorf("%w: built %d segments for %d loops", ErrInvalidGeometry, len(b.segments), g.Loops)
	}
	return b.segments, nil
}

type chainBuilder struct {
	segments []*curve.Segment
	err      error
}

func (b *chainBuilder) add(name string, start, control, end curve.Vec2, layer curve.Layer, opts ...curve.SegmentOption) {
	if b.err != nil {
		return
	}
	seg, err := curve.NewSegment(start, control, end, layer, opts...)
	if err != nil {
		b.err = fmt.Errorf("%s segment %d: %w", name, len(b.segments), err)
		return
	}
	b.segments = append(b.segments, seg)
}

func flipX(v curve.Vec2) curve.Vec2 {
	return curve.V(-v.X, v.Y)
}
