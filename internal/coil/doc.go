// Package coil models charge transport through a wound wire coil.
//
// The package has three layers:
//
//   - [BuildSegments]: generates the ordered chain of [curve.Segment] values
//     for a given [Geometry]
//   - [Populate]: places [Carrier] values evenly along the chain
//   - [Coil]: owns the geometry, rebuilds the chain on change and advances
//     every carrier once per [Coil.Step]
//
// # Example
//
//	c, _ := coil.New(coil.WithLoops(3), coil.WithRadius(50))
//	c.SetCurrentIndicator(0.5)
//	if err := c.Step(coil.FixedDt); err != nil {
//	    return err
//	}
//	for _, cv := range c.Carriers() {
//	    draw(cv.Position, cv.Layer)
//	}
//
// # Thread Safety
//
// Coil instances are NOT thread-safe. A single clock goroutine must call
// Step; renderers read [Coil.Segments] and [Coil.Carriers] snapshots between
// ticks.
package coil
