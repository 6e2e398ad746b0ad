package curve

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidSpeedScale is returned for a speed scale that is not a positive finite number.
var ErrInvalidSpeedScale = errors.New("curve: speed scale must be positive and finite")

// Layer is the pseudo-3D draw layer of a segment.
type Layer int

const (
	Background Layer = iota
	Foreground
)

func (l Layer) String() string {
	switch l {
	case Background:
		return "background"
	case Foreground:
		return "foreground"
	default:
		return fmt.Sprintf("layer(%d)", int(l))
	}
}

// Segment is one quadratic Bézier piece of the wire path.
// The zero value is not useful; use NewSegment.
type Segment struct {
	start      Vec2
	control    Vec2
	end        Vec2
	layer      Layer
	speedScale float64
}

type SegmentOption func(*Segment)

// WithSpeedScale overrides the default speed scale of 1.
func WithSpeedScale(s float64) SegmentOption {
	return func(seg *Segment) { seg.speedScale = s }
}

func NewSegment(start, control, end Vec2, layer Layer, opts ...SegmentOption) (*Segment, error) {
	seg := &Segment{
		start:      start,
		control:    control,
		end:        end,
		layer:      layer,
		speedScale: 1.0,
	}
	for _, opt := range opts {
		opt(seg)
	}
	if seg.speedScale <= 0 || math.IsNaN(seg.speedScale) || math.IsInf(seg.speedScale, 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidSpeedScale, seg.speedScale)
	}
	if !start.IsFinite() || !control.IsFinite() || !end.IsFinite() {
		return nil, fmt.Errorf("curve: non-finite control point %v %v %v", start, control, end)
	}
	return seg, nil
}

func (s *Segment) Start() Vec2         { return s.start }
func (s *Segment) Control() Vec2       { return s.control }
func (s *Segment) End() Vec2           { return s.end }
func (s *Segment) Layer() Layer        { return s.layer }
func (s *Segment) SpeedScale() float64 { return s.speedScale }

// Eval returns the point at parameter t. Eval(0) is End and Eval(1) is Start.
func (s *Segment) Eval(t float64) Vec2 {
	u := 1 - t
	a := u * u
	b := 2 * u * t
	c := t * t
	return Vec2{
		X: a*s.end.X + b*s.control.X + c*s.start.X,
		Y: a*s.end.Y + b*s.control.Y + c*s.start.Y,
	}
}

// Flatten samples the curve at n+1 evenly spaced parameters, ordered from
// Start to End.
func (s *Segment) Flatten(n int) []Vec2 {
	if n < 1 {
		n = 1
	}
	pts := make([]Vec2, n+1)
	for i := 0; i <= n; i++ {
		pts[i] = s.Eval(1 - float64(i)/float64(n))
	}
	return pts
}

// Length approximates arc length with an n-piece polyline.
func (s *Segment) Length(n int) float64 {
	pts := s.Flatten(n)
	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += pts[i].Distance(pts[i-1])
	}
	return total
}

// Bounds returns the control polygon's bounding box, which contains the curve.
func (s *Segment) Bounds() Rect {
	return Rect{Min: s.start, Max: s.start}.Extend(s.control).Extend(s.end)
}
