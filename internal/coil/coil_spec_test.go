package coil

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Coil", func() {
	var c *Coil

	BeforeEach(func() {
		var err error
		c, err = New(WithLoops(3), WithRadius(50))
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("construction", func() {
		It("builds 4n+2 segments and 28 carriers for three loops of radius 50", func() {
			Expect(c.SegmentCount()).To(Equal(14))
			Expect(c.CarrierCount()).To(Equal(28))
		})

		It("rejects a zero loop count", func() {
			_, err := New(WithLoops(0))
			Expect(err).To(MatchError(ErrInvalidGeometry))
		})

		It("rejects a radius below the carrier spacing", func() {
			_, err := New(WithRadius(10))
			Expect(err).To(MatchError(ErrCarrierSpacing))
		})

		It("rejects a non-positive speed scale", func() {
			_, err := New(WithSpeedScale(0))
			Expect(err).To(MatchError(ErrInvalidSpeedScale))
		})
	})

	Describe("Step", func() {
		It("fails fast on a mismatched dt", func() {
			Expect(c.SetCurrentIndicator(0.5)).To(Succeed())
			err := c.Step(FixedDt / 2)
			Expect(err).To(MatchError(ErrTickMismatch))
			Expect(c.Ticks()).To(BeZero())
		})

		It("leaves carriers untouched with zero current", func() {
			before := c.Carriers()
			for i := 0; i < 50; i++ {
				Expect(c.Step(FixedDt)).To(Succeed())
			}
			Expect(c.Carriers()).To(Equal(before))
		})

		It("leaves carriers untouched below the indicator threshold", func() {
			Expect(c.SetCurrentIndicator(0.0005)).To(Succeed())
			before := c.Carriers()
			for i := 0; i < 50; i++ {
				Expect(c.Step(FixedDt)).To(Succeed())
			}
			Expect(c.Carriers()).To(Equal(before))
		})

		It("leaves carriers untouched while they are hidden", func() {
			Expect(c.SetCurrentIndicator(1)).To(Succeed())
			c.SetCarriersVisible(false)
			before := c.Carriers()
			Expect(c.Step(FixedDt)).To(Succeed())
			Expect(c.Carriers()).To(Equal(before))
		})

		It("moves carriers in opposite directions for the two flow conventions", func() {
			Expect(c.SetCurrentIndicator(0.5)).To(Succeed())
			start := c.Carriers()[3].SegmentPosition

			Expect(c.Step(FixedDt)).To(Succeed())
			electron := c.Carriers()[3].SegmentPosition
			Expect(electron).To(BeNumerically("<", start))

			c.SetCurrentFlow(ConventionalFlow)
			Expect(c.Step(FixedDt)).To(Succeed())
			Expect(c.Carriers()[3].SegmentPosition).To(BeNumerically("~", start, 1e-12))
		})

		It("keeps every carrier within range across many ticks", func() {
			Expect(c.SetSpeedScale(4)).To(Succeed())
			for tick := 0; tick < 2000; tick++ {
				Expect(c.SetCurrentIndicator(math.Sin(float64(tick) / 37))).To(Succeed())
				Expect(c.Step(FixedDt)).To(Succeed())
				for _, cv := range c.Carriers() {
					Expect(cv.SegmentPosition).To(BeNumerically(">=", 0))
					Expect(cv.SegmentPosition).To(BeNumerically("<=", 1))
					Expect(cv.SegmentIndex).To(BeNumerically(">=", 0))
					Expect(cv.SegmentIndex).To(BeNumerically("<", c.SegmentCount()))
				}
			}
		})

		It("reports a handoff overflow without moving any carrier", func() {
			Expect(c.SetSpeedScale(500)).To(Succeed())
			Expect(c.SetCurrentIndicator(1)).To(Succeed())
			before := c.Carriers()

			err := c.Step(FixedDt)
			Expect(err).To(MatchError(ErrHandoffOverflow))
			var stepErr *StepError
			Expect(err).To(BeAssignableToTypeOf(stepErr))
			Expect(c.Carriers()).To(Equal(before))
		})
	})

	Describe("observers", func() {
		var geometryChanges, moves int

		BeforeEach(func() {
			geometryChanges, moves = 0, 0
			c.AddObserver(ObserverFuncs{
				GeometryChanged: func(*Coil) { geometryChanges++ },
				CarriersMoved:   func(*Coil) { moves++ },
			})
		})

		It("notifies after a rebuild", func() {
			Expect(c.SetNumberOfLoops(4)).To(Succeed())
			Expect(c.SetLoopRadius(75)).To(Succeed())
			Expect(geometryChanges).To(Equal(2))
			Expect(c.SegmentCount()).To(Equal(18))
		})

		It("notifies only when carriers move", func() {
			Expect(c.Step(FixedDt)).To(Succeed())
			Expect(moves).To(BeZero())

			Expect(c.SetCurrentIndicator(-0.3)).To(Succeed())
			Expect(c.Step(FixedDt)).To(Succeed())
			Expect(moves).To(Equal(1))
		})

		It("keeps the previous geometry when a rebuild fails", func() {
			Expect(c.SetLoopRadius(5)).To(MatchError(ErrCarrierSpacing))
			Expect(c.LoopRadius()).To(Equal(50.0))
			Expect(c.CarrierCount()).To(Equal(28))
			Expect(geometryChanges).To(BeZero())
		})
	})

	Describe("Reset", func() {
		It("restores user controls and keeps developer tuning", func() {
			Expect(c.SetSpeedScale(3)).To(Succeed())
			Expect(c.SetWireWidth(30)).To(Succeed())
			Expect(c.SetCurrentIndicator(0.8)).To(Succeed())
			c.SetCarriersVisible(false)
			c.SetCurrentFlow(ConventionalFlow)

			Expect(c.Reset()).To(Succeed())

			Expect(c.NumberOfLoops()).To(Equal(DefaultLoops))
			Expect(c.LoopRadius()).To(Equal(DefaultRadius))
			Expect(c.CurrentIndicator()).To(BeZero())
			Expect(c.CarriersVisible()).To(BeTrue())
			Expect(c.CurrentFlow()).To(Equal(ElectronFlow))
			Expect(c.SpeedScale()).To(Equal(3.0))
			Expect(c.Geometry().WireWidth).To(Equal(30.0))
		})
	})

	It("rejects an indicator outside [-1, 1]", func() {
		Expect(c.SetCurrentIndicator(1.5)).To(MatchError(ErrIndicatorRange))
		Expect(c.SetCurrentIndicator(math.NaN())).To(MatchError(ErrIndicatorRange))
	})
})
