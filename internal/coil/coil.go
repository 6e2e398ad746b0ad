package coil

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/coilsim/internal/curve"
)

// ErrIndicatorRange indicates a current indicator outside [-1, 1].
var ErrIndicatorRange = errors.New("coil: current indicator outside [-1, 1]")

// Observer receives change notifications. Both methods are called
// synchronously on the goroutine that mutated the coil.
type Observer interface {
	OnGeometryChanged(c *Coil)
	OnCarriersMoved(c *Coil)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	GeometryChanged func(c *Coil)
	CarriersMoved   func(c *Coil)
}

func (o ObserverFuncs) OnGeometryChanged(c *Coil) {
	if o.GeometryChanged != nil {
		o.GeometryChanged(c)
	}
}

func (o ObserverFuncs) OnCarriersMoved(c *Coil) {
	if o.CarriersMoved != nil {
		o.CarriersMoved(c)
	}
}

// Coil owns the geometry parameters, the derived segment chain and the
// carriers riding it.
type Coil struct {
	geometry   Geometry
	indicator  float64
	speedScale float64
	visible    bool
	flow       CurrentFlow

	segments []*curve.Segment
	carriers []Carrier
	scratch  []Carrier

	observers []Observer
	ticks     int
	crossings int
}

type Option func(*Coil)

func WithLoops(n int) Option               { return func(c *Coil) { c.geometry.Loops = n } }
func WithRadius(r float64) Option          { return func(c *Coil) { c.geometry.Radius = r } }
func WithWireWidth(w float64) Option       { return func(c *Coil) { c.geometry.WireWidth = w } }
func WithLoopSpacing(s float64) Option     { return func(c *Coil) { c.geometry.LoopSpacing = s } }
func WithSpeedScale(s float64) Option      { return func(c *Coil) { c.speedScale = s } }
func WithCarriersVisible(v bool) Option    { return func(c *Coil) { c.visible = v } }
func WithCurrentFlow(f CurrentFlow) Option { return func(c *Coil) { c.flow = f } }
func WithObserver(o Observer) Option       { return func(c *Coil) { c.observers = append(c.observers, o) } }
func WithGeometry(g Geometry) Option       { return func(c *Coil) { c.geometry = g } }

// New builds a coil with default geometry, overridden by opts.
func New(opts ...Option) (*Coil, error) {
	c := &Coil{
		geometry:   DefaultGeometry(),
		indicator:  DefaultCurrentIndicator,
		speedScale: DefaultSpeedScale,
		visible:    DefaultCarriersVisible,
		flow:       ElectronFlow,
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := validateSpeedScale(c.speedScale); err != nil {
		return nil, err
	}
	if err := c.rebuild(c.geometry); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Coil) AddObserver(o Observer) { c.observers = append(c.observers, o) }

func (c *Coil) Geometry() Geometry        { return c.geometry }
func (c *Coil) NumberOfLoops() int        { return c.geometry.Loops }
func (c *Coil) LoopRadius() float64       { return c.geometry.Radius }
func (c *Coil) CurrentIndicator() float64 { return c.indicator }
func (c *Coil) SpeedScale() float64       { return c.speedScale }
func (c *Coil) CarriersVisible() bool     { return c.visible }
func (c *Coil) CurrentFlow() CurrentFlow  { return c.flow }
func (c *Coil) Ticks() int                { return c.ticks }
func (c *Coil) LastCrossings() int        { return c.crossings }
func (c *Coil) CarrierCount() int         { return len(c.carriers) }
func (c *Coil) SegmentCount() int         { return len(c.segments) }

// Segments returns the current chain. Segments are immutable, so the
// returned slice may be kept across rebuilds.
func (c *Coil) Segments() []*curve.Segment {
	out := make([]*curve.Segment, len(c.segments))
	copy(out, c.segments)
	return out
}

// Carriers returns a snapshot of every carrier.
func (c *Coil) Carriers() []CarrierView {
	out := make([]CarrierView, len(c.carriers))
	for i := range c.carriers {
		out[i] = c.carriers[i].View()
	}
	return out
}

func (c *Coil) SetNumberOfLoops(n int) error {
	g := c.geometry
	g.Loops = n
	return c.rebuild(g)
}

func (c *Coil) SetLoopRadius(r float64) error {
	g := c.geometry
	g.Radius = r
	return c.rebuild(g)
}

func (c *Coil) SetWireWidth(w float64) error {
	g := c.geometry
	g.WireWidth = w
	return c.rebuild(g)
}

func (c *Coil) SetLoopSpacing(s float64) error {
	g := c.geometry
	g.LoopSpacing = s
	return c.rebuild(g)
}

func (c *Coil) SetCurrentIndicator(v float64) error {
	if math.IsNaN(v) || v < -1 || v > 1 {
		return fmt.Errorf("%w: got %v", ErrIndicatorRange, v)
	}
	c.indicator = v
	return nil
}

func (c *Coil) SetSpeedScale(s float64) error {
	if err := validateSpeedScale(s); err != nil {
		return err
	}
	c.speedScale = s
	return nil
}

func (c *Coil) SetCarriersVisible(v bool)    { c.visible = v }
func (c *Coil) SetCurrentFlow(f CurrentFlow) { c.flow = f }

// Reset restores the user-facing controls to their defaults and rebuilds.
// Wire width, loop spacing and the global speed scale are left as they are.
func (c *Coil) Reset() error {
	c.indicator = DefaultCurrentIndicator
	c.visible = DefaultCarriersVisible
	c.flow = ElectronFlow
	g := c.geometry
	g.Loops = DefaultLoops
	g.Radius = DefaultRadius
	return c.rebuild(g)
}

// Step advances every carrier by one tick. dt must equal FixedDt. Carriers
// move only when the indicator is non-zero and carriers are visible; in that
// case observers are told after all carriers have moved. On error no carrier
// is changed.
func (c *Coil) Step(dt float64) error {
	if dt != FixedDt {
		return fmt.Errorf("%w: got %v, want %v", ErrTickMismatch, dt, FixedDt)
	}
	c.ticks++
	c.crossings = 0

	if c.indicator == 0 || !c.visible {
		return nil
	}
	speed := SignedSpeed(c.indicator) * c.flow.sign()
	if speed == 0 {
		return nil
	}

	c.scratch = append(c.scratch[:0], c.carriers...)
	total := 0
	for i := range c.scratch {
		n, err := c.scratch[i].Advance(c.segments, speed, c.speedScale, dt)
		if err != nil {
			return &StepError{
				Tick:     c.ticks,
				Carrier:  i,
				Segment:  c.carriers[i].segment,
				Position: c.carriers[i].position,
				Wrapped:  err,
			}
		}
		total += n
	}
	c.carriers, c.scratch = c.scratch, c.carriers
	c.crossings = total

	for _, o := range c.observers {
		o.OnCarriersMoved(c)
	}
	return nil
}

// rebuild replaces the chain and carriers wholesale. On error the previous
// geometry stays in place.
func (c *Coil) rebuild(g Geometry) error {
	segments, err := BuildSegments(g)
	if err != nil {
		return err
	}
	carriers, err := Populate(segments, g)
	if err != nil {
		return err
	}

	c.geometry = g
	c.segments = segments
	c.carriers = carriers
	c.scratch = make([]Carrier, 0, len(carriers))

	for _, o := range c.observers {
		o.OnGeometryChanged(c)
	}
	return nil
}

func validateSpeedScale(s float64) error {
	if !(s > 0) || math.IsInf(s, 0) {
		return fmt.Errorf("%w: got %v", ErrInvalidSpeedScale, s)
	}
	return nil
}
