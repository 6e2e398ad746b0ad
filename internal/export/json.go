package export

import (
	"encoding/json"
	"io"

	"github.com/san-kum/coilsim/internal/coil"
	"github.com/san-kum/coilsim/internal/curve"
	"github.com/san-kum/coilsim/internal/sim"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type SegmentData struct {
	Start      Point   `json:"start"`
	Control    Point   `json:"control"`
	End        Point   `json:"end"`
	Layer      string  `json:"layer"`
	SpeedScale float64 `json:"speed_scale"`
}

type CarrierData struct {
	Segment  int     `json:"segment"`
	Position float64 `json:"position"`
	Point    Point   `json:"point"`
	Layer    string  `json:"layer"`
}

// Snapshot is the renderer-facing state of a coil at one instant.
type Snapshot struct {
	Loops       int           `json:"loops"`
	Radius      float64       `json:"radius"`
	WireWidth   float64       `json:"wire_width"`
	LoopSpacing float64       `json:"loop_spacing"`
	Indicator   float64       `json:"indicator"`
	CurrentFlow string        `json:"current_flow"`
	Tick        int           `json:"tick"`
	Segments    []SegmentData `json:"segments"`
	Carriers    []CarrierData `json:"carriers"`
}

// RunData is a stored run's series in export form.
type RunData struct {
	ID      string             `json:"id"`
	Ticks   int                `json:"ticks"`
	Records []sim.Record       `json:"records"`
	Metrics map[string]float64 `json:"metrics"`
}

func point(v curve.Vec2) Point { return Point{X: v.X, Y: v.Y} }

func NewSnapshot(c *coil.Coil) Snapshot {
	g := c.Geometry()
	snap := Snapshot{
		Loops:       g.Loops,
		Radius:      g.Radius,
		WireWidth:   g.WireWidth,
		LoopSpacing: g.LoopSpacing,
		Indicator:   c.CurrentIndicator(),
		CurrentFlow: c.CurrentFlow().String(),
		Tick:        c.Ticks(),
	}
	for _, seg := range c.Segments() {
		snap.Segments = append(snap.Segments, SegmentData{
			Start:      point(seg.Start()),
			Control:    point(seg.Control()),
			End:        point(seg.End()),
			Layer:      seg.Layer().String(),
			SpeedScale: seg.SpeedScale(),
		})
	}
	for _, cv := range c.Carriers() {
		snap.Carriers = append(snap.Carriers, CarrierData{
			Segment:  cv.SegmentIndex,
			Position: cv.SegmentPosition,
			Point:    point(cv.Position),
			Layer:    cv.Layer.String(),
		})
	}
	return snap
}

func WriteJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
