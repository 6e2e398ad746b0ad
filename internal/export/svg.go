package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/coilsim/internal/coil"
	"github.com/san-kum/coilsim/internal/curve"
	"github.com/san-kum/coilsim/internal/viz"
)

// SVGOptions controls CoilSVG output.
type SVGOptions struct {
	Padding         float64
	WireWidth       float64
	CarrierRadius   float64
	ForegroundColor string
	BackgroundColor string
	CarrierColor    string
	ShowCarriers    bool
	Flow            coil.CurrentFlow
}

func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		Padding:         20,
		WireWidth:       6,
		CarrierRadius:   3,
		ForegroundColor: "#c87533",
		BackgroundColor: "#7a4a22",
		CarrierColor:    "#66ccff",
		ShowCarriers:    true,
	}
}

// CoilSVG draws the segment chain as quadratic paths. Background segments
// and their carriers are emitted before foreground ones so the front of the
// coil overlaps the back.
func CoilSVG(segments []*curve.Segment, carriers []coil.CarrierView, opts SVGOptions) string {
	if len(segments) == 0 {
		return ""
	}

	bounds := segments[0].Bounds()
	for _, seg := range segments[1:] {
		bounds = bounds.Union(seg.Bounds())
	}
	pad := opts.Padding + opts.WireWidth
	minX, minY := bounds.Min.X-pad, bounds.Min.Y-pad
	width, height := bounds.Width()+2*pad, bounds.Height()+2*pad

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="%.1f %.1f %.1f %.1f">
<rect x="%.1f" y="%.1f" width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, minX, minY, width, height, minX, minY))

	for _, layer := range []curve.Layer{curve.Background, curve.Foreground} {
		color := opts.BackgroundColor
		if layer == curve.Foreground {
			color = opts.ForegroundColor
		}
		sb.WriteString(fmt.Sprintf(`<g class="%s" fill="none" stroke="%s" stroke-width="%.1f" stroke-linecap="round">
`, layer, color, opts.WireWidth))
		for _, seg := range segments {
			if seg.Layer() != layer {
				continue
			}
			s, c, e := seg.Start(), seg.Control(), seg.End()
			sb.WriteString(fmt.Sprintf(`<path d="M%.2f,%.2f Q%.2f,%.2f %.2f,%.2f"/>
`, s.X, s.Y, c.X, c.Y, e.X, e.Y))
		}
		sb.WriteString("</g>\n")

		if !opts.ShowCarriers {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<g class="%s-carriers" fill="%s">
`, layer, opts.CarrierColor))
		for _, cv := range carriers {
			if cv.Layer != layer {
				continue
			}
			sb.WriteString(fmt.Sprintf(`<circle cx="%.2f" cy="%.2f" r="%.1f"><title>%s</title></circle>
`, cv.Position.X, cv.Position.Y, opts.CarrierRadius, chargeLabel(opts.Flow)))
		}
		sb.WriteString("</g>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func chargeLabel(f coil.CurrentFlow) string {
	if f == coil.ConventionalFlow {
		return "+"
	}
	return "-"
}

// CanvasToSVG converts a Braille canvas to SVG format
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2   // 2 sub-pixels per char
	height := float64(canvas.Height) * scale * 4 // 4 sub-pixels per char

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff00">
`, width, height, width, height))

	dotRadius := scale * 0.4

	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4

			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if canvas.IsSet(col*2+dx, row*4+dy) {
						cx := baseX + float64(dx)*scale + scale/2
						cy := baseY + float64(dy)*scale + scale/2
						sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, cx, cy, dotRadius))
					}
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// SeriesToSVG plots a time series as a polyline.
func SeriesToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}

	minY, maxY := values[0], values[0]
	for _, v := range values {
		if v < minY {
			minY = v
		}
		if v > maxY {
			maxY = v
		}
	}

	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY
	rangeX := float64(len(values) - 1)

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, v := range values {
		x := float64(i) / rangeX * float64(width)
		y := float64(height) - (v-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
