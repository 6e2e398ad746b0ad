package coil

import (
	"fmt"

	"github.com/san-kum/coilsim/internal/curve"
)

// CarrierCounts returns how many carriers each segment of a chain with the
// given geometry holds. The two end stubs hold a fixed count; every arc holds
// floor(Radius / CarrierSpacing), which must be at least 1.
func CarrierCounts(g Geometry) ([]int, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	perArc := g.CarriersPerArc()
	if perArc < 1 {
		return nil, fmt.Errorf("%w: radius %v with spacing %v gives %d carriers per segment",
			ErrCarrierSpacing, g.Radius, CarrierSpacing, perArc)
	}

	n := SegmentCount(g.Loops)
	counts := make([]int, n)
	for i := range counts {
		counts[i] = perArc
	}
	counts[0] = EndCarriersLeft
	counts[n-1] = EndCarriersRight
	return counts, nil
}

// Populate places carriers on every segment of the chain. Within a segment
// holding k carriers the positions are j/k for j in [0, k).
func Populate(segments []*curve.Segment, g Geometry) ([]Carrier, error) {
	counts, err := CarrierCounts(g)
	if err != nil {
		return nil, err
	}
	if len(counts) != len(segments) {
		return nil, fmt.Errorf("%w: chain has %d segments, geometry expects %d",
			ErrInvalidGeometry, len(segments), len(counts))
	}

	total := 0
	for _, k := range counts {
		total += k
	}

	carriers := make([]Carrier, 0, total)
	for i, k := range counts {
		for j := 0; j < k; j++ {
			carriers = append(carriers, newCarrier(segments, i, float64(j)/float64(k)))
		}
	}
	return carriers, nil
}
