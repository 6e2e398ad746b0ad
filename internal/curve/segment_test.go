package curve

import (
	"errors"
	"math"
	"testing"
)

func mustSegment(t *testing.T, start, control, end Vec2, opts ...SegmentOption) *Segment {
	t.Helper()
	seg, err := NewSegment(start, control, end, Foreground, opts...)
	if err != nil {
		t.Fatalf("NewSegment failed: %v", err)
	}
	return seg
}

func TestSegmentEndpoints(t *testing.T) {
	seg := mustSegment(t, V(0, 0), V(5, 10), V(10, 0))

	if got := seg.Eval(0); got != seg.End() {
		t.Errorf("Eval(0) = %v, want end %v", got, seg.End())
	}
	if got := seg.Eval(1); got != seg.Start() {
		t.Errorf("Eval(1) = %v, want start %v", got, seg.Start())
	}
}

func TestSegmentMidpoint(t *testing.T) {
	seg := mustSegment(t, V(0, 0), V(5, 10), V(10, 0))

	// B(0.5) = 0.25*end + 0.5*control + 0.25*start
	want := V(5, 5)
	if got := seg.Eval(0.5); !got.ApproxEqual(want, 1e-12) {
		t.Errorf("Eval(0.5) = %v, want %v", got, want)
	}
}

func TestSegmentSpeedScale(t *testing.T) {
	seg := mustSegment(t, V(0, 0), V(1, 1), V(2, 0))
	if seg.SpeedScale() != 1 {
		t.Errorf("default speed scale = %v, want 1", seg.SpeedScale())
	}

	seg = mustSegment(t, V(0, 0), V(1, 1), V(2, 0), WithSpeedScale(2.5))
	if seg.SpeedScale() != 2.5 {
		t.Errorf("speed scale = %v, want 2.5", seg.SpeedScale())
	}

	tests := []struct {
		name  string
		scale float64
	}{
		{"zero", 0},
		{"negative", -1},
		{"NaN", math.NaN()},
		{"+Inf", math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSegment(V(0, 0), V(1, 1), V(2, 0), Background, WithSpeedScale(tt.scale))
			if !errors.Is(err, ErrInvalidSpeedScale) {
				t.Errorf("expected ErrInvalidSpeedScale, got %v", err)
			}
		})
	}
}

func TestSegmentRejectsNonFinitePoints(t *testing.T) {
	_, err := NewSegment(V(math.NaN(), 0), V(1, 1), V(2, 0), Background)
	if err == nil {
		t.Error("expected error for NaN control point")
	}
}

func TestSegmentFlattenOrder(t *testing.T) {
	seg := mustSegment(t, V(0, 0), V(5, 10), V(10, 0))
	pts := seg.Flatten(8)

	if len(pts) != 9 {
		t.Fatalf("expected 9 points, got %d", len(pts))
	}
	if pts[0] != seg.Start() {
		t.Errorf("first point = %v, want start", pts[0])
	}
	if pts[len(pts)-1] != seg.End() {
		t.Errorf("last point = %v, want end", pts[len(pts)-1])
	}
}

func TestSegmentLength(t *testing.T) {
	// Collinear control point degenerates to a straight line.
	seg := mustSegment(t, V(0, 0), V(5, 0), V(10, 0))
	if got := seg.Length(16); math.Abs(got-10) > 1e-9 {
		t.Errorf("Length = %v, want 10", got)
	}
}

func TestSegmentBounds(t *testing.T) {
	seg := mustSegment(t, V(0, 0), V(5, 10), V(10, -2))
	b := seg.Bounds()
	if b.Min != V(0, -2) || b.Max != V(10, 10) {
		t.Errorf("Bounds = %v..%v", b.Min, b.Max)
	}
	if b.Width() != 10 || b.Height() != 12 {
		t.Errorf("size = %vx%v, want 10x12", b.Width(), b.Height())
	}
}

func TestLayerString(t *testing.T) {
	if Background.String() != "background" || Foreground.String() != "foreground" {
		t.Errorf("unexpected layer names %q %q", Background, Foreground)
	}
}
