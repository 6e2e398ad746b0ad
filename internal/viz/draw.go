package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/coilsim/internal/coil"
	"github.com/san-kum/coilsim/internal/curve"
)

const flattenSteps = 24

// Projector maps model coordinates onto canvas sub-pixels with a uniform
// scale, centering the fitted bounds.
type Projector struct {
	origin curve.Vec2
	scale  float64
	offX   float64
	offY   float64
}

// FitProjector fits bounds into a cw x ch sub-pixel area leaving margin on every side.
func FitProjector(bounds curve.Rect, cw, ch, margin int) Projector {
	availW := float64(cw - 2*margin - 1)
	availH := float64(ch - 2*margin - 1)
	w, h := bounds.Width(), bounds.Height()

	scale := 1.0
	switch {
	case w > 0 && h > 0:
		scale = math.Min(availW/w, availH/h)
	case w > 0:
		scale = availW / w
	case h > 0:
		scale = availH / h
	}
	if scale <= 0 || math.IsInf(scale, 0) || math.IsNaN(scale) {
		scale = 1
	}

	return Projector{
		origin: bounds.Min,
		scale:  scale,
		offX:   float64(margin) + (availW-w*scale)/2,
		offY:   float64(margin) + (availH-h*scale)/2,
	}
}

func (p Projector) Project(v curve.Vec2) (int, int) {
	x := p.offX + (v.X-p.origin.X)*p.scale
	y := p.offY + (v.Y-p.origin.Y)*p.scale
	return int(math.Round(x)), int(math.Round(y))
}

// chainBounds is the union of every segment's control polygon bounds.
func chainBounds(segments []*curve.Segment) curve.Rect {
	bounds := segments[0].Bounds()
	for _, seg := range segments[1:] {
		bounds = bounds.Union(seg.Bounds())
	}
	return bounds
}

// DrawCoil renders the segment chain onto c. Foreground segments are drawn
// as connected strokes and background segments as a dotted trace. Carriers
// are placed as glyphs on top: the charge sign in front of the coil and a
// small dot behind it.
func DrawCoil(c *Canvas, segments []*curve.Segment, carriers []coil.CarrierView, flow coil.CurrentFlow) {
	c.Clear()
	if len(segments) == 0 {
		return
	}

	p := FitProjector(chainBounds(segments), c.Width*2, c.Height*4, 2)

	for _, layer := range []curve.Layer{curve.Background, curve.Foreground} {
		for _, seg := range segments {
			if seg.Layer() != layer {
				continue
			}
			pts := seg.Flatten(flattenSteps)
			for i, pt := range pts {
				x, y := p.Project(pt)
				if layer == curve.Background {
					if i%2 == 0 {
						c.Set(x, y)
					}
					continue
				}
				if i > 0 {
					px, py := p.Project(pts[i-1])
					c.DrawLine(px, py, x, y)
				}
			}
		}
	}

	front := chargeGlyph(flow)
	for _, layer := range []curve.Layer{curve.Background, curve.Foreground} {
		for _, cv := range carriers {
			if cv.Layer != layer {
				continue
			}
			x, y := p.Project(cv.Position)
			if layer == curve.Foreground {
				c.Mark(x, y, front)
			} else {
				c.Mark(x, y, '·')
			}
		}
	}
}

func chargeGlyph(f coil.CurrentFlow) rune {
	if f == coil.ConventionalFlow {
		return '+'
	}
	return '−'
}

// Render returns the canvas with wire dots and carrier glyphs styled separately.
func (c *Canvas) Render(wire, carrier lipgloss.Style) string {
	var b strings.Builder
	var run strings.Builder
	runIsMark := false

	flush := func() {
		if run.Len() == 0 {
			return
		}
		if runIsMark {
			b.WriteString(carrier.Render(run.String()))
		} else {
			b.WriteString(wire.Render(run.String()))
		}
		run.Reset()
	}

	for row := range c.Grid {
		for col := range c.Grid[row] {
			r, _ := c.Cell(row, col)
			_, isMark := c.marks[[2]int{row, col}]
			if isMark != runIsMark {
				flush()
				runIsMark = isMark
			}
			run.WriteRune(r)
		}
		flush()
		b.WriteString("\n")
	}
	return b.String()
}
