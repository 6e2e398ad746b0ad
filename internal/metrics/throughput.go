package metrics

import (
	"github.com/san-kum/coilsim/internal/coil"
	"github.com/san-kum/coilsim/internal/curve"
	"github.com/san-kum/coilsim/internal/sim"
)

// Throughput is the mean net number of segment boundaries crossed per tick.
// Positive values mean net flow toward the right-hand wire end.
type Throughput struct {
	name    string
	net     int
	samples int
}

func NewThroughput() *Throughput {
	return &Throughput{name: "throughput"}
}

func (m *Throughput) Name() string { return m.name }

func (m *Throughput) Observe(c *coil.Coil, t float64) {
	m.net += c.LastCrossings()
	m.samples++
}

func (m *Throughput) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return float64(m.net) / float64(m.samples)
}

func (m *Throughput) Reset() {
	m.net = 0
	m.samples = 0
}

// ForegroundFraction is the time-averaged share of carriers drawn in front.
type ForegroundFraction struct {
	name    string
	sum     float64
	samples int
}

func NewForegroundFraction() *ForegroundFraction {
	return &ForegroundFraction{name: "foreground"}
}

func (m *ForegroundFraction) Name() string { return m.name }

func (m *ForegroundFraction) Observe(c *coil.Coil, t float64) {
	carriers := c.Carriers()
	if len(carriers) == 0 {
		return
	}
	fg := 0
	for _, cv := range carriers {
		if cv.Layer == curve.Foreground {
			fg++
		}
	}
	m.sum += float64(fg) / float64(len(carriers))
	m.samples++
}

func (m *ForegroundFraction) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *ForegroundFraction) Reset() {
	m.sum = 0
	m.samples = 0
}

// Default is the metric set recorded with every stored run.
func Default() []sim.Metric {
	return []sim.Metric{
		NewThroughput(),
		NewForegroundFraction(),
		NewDriveEffort(),
		NewStall(),
	}
}
