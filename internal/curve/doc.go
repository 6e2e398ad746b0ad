// Package curve provides the immutable quadratic Bézier segments that make up
// a coil's wire path.
//
// A [Segment] is evaluated over t ∈ [0, 1]. The parameter runs against the
// direction of current flow:
//
//   - Eval(0) returns the segment's End anchor
//   - Eval(1) returns the segment's Start anchor
//
// so a carrier whose position decreases toward 0 is moving from Start to End,
// and continues on the next segment in the chain at t ≈ 1.
//
// Each segment also carries a [Layer] (pseudo-3D draw order) and a speed
// scale used to equalize apparent carrier speed across segments of unequal
// length.
package curve
