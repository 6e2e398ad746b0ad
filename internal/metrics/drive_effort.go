package metrics

import (
	"math"

	"github.com/san-kum/coilsim/internal/coil"
)

// DriveEffort is the mean |current indicator| over the run.
type DriveEffort struct {
	name    string
	sum     float64
	samples int
}

func NewDriveEffort() *DriveEffort {
	return &DriveEffort{
		name: "drive_effort",
	}
}

func (d *DriveEffort) Name() string {
	return d.name
}

func (d *DriveEffort) Observe(c *coil.Coil, t float64) {
	d.sum += math.Abs(c.CurrentIndicator())
	d.samples++
}

func (d *DriveEffort) Value() float64 {
	if d.samples == 0 {
		return 0
	}
	return d.sum / float64(d.samples)
}

func (d *DriveEffort) Reset() {
	d.sum = 0
	d.samples = 0
}
