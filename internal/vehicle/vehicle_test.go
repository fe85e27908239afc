package vehicle_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/descentsim/internal/atmosphere"
	"github.com/san-kum/descentsim/internal/vehicle"
)

var _ = Describe("Vehicle", func() {
	var v *vehicle.Vehicle

	BeforeEach(func() {
		v = vehicle.New()
	})

	Context("at entry interface", func() {
		It("should start with the default initial conditions", func() {
			Expect(v.Altitude).To(Equal(125_000.0))
			Expect(v.Velocity).To(Equal(5_800.0))
			Expect(v.Mass).To(Equal(3_200.0))
			Expect(v.Fuel).To(Equal(400.0))
			Expect(v.Stage).To(Equal(vehicle.Entry))
			Expect(v.TimeElapsed).To(BeZero())
		})

		It("should use the heat shield parameters", func() {
			Expect(v.DragCoefficient).To(Equal(1.5))
			Expect(v.CrossSection).To(BeNumerically("~", math.Pi*4.5*4.5, 1e-9))
			Expect(v.MaxThrust).To(BeZero())
		})

		It("should derive dry mass from the fuel load", func() {
			Expect(v.DryMass()).To(Equal(2_800.0))
		})

		It("should not transition while high and fast", func() {
			Expect(v.CheckStageTransition()).To(BeFalse())
			Expect(v.Stage).To(Equal(vehicle.Entry))
		})

		It("should produce no thrust", func() {
			Expect(v.Thrust(1.0)).To(BeZero())
		})
	})

	Context("parachute deployment", func() {
		It("should deploy inside the mach and altitude window", func() {
			v.Altitude = 9_000
			v.Velocity = 2.0 * atmosphere.SpeedOfSound(9_000)

			Expect(v.CheckStageTransition()).To(BeTrue())
			Expect(v.Stage).To(Equal(vehicle.Parachute))
			Expect(v.ParachuteDeployed).To(BeTrue())
			Expect(v.DragCoefficient).To(Equal(1.8))
			Expect(v.CrossSection).To(BeNumerically("~", math.Pi*10.75*10.75, 1e-9))
		})

		It("should wait while still above mach 2.5", func() {
			v.Altitude = 9_000
			v.Velocity = 3.0 * atmosphere.SpeedOfSound(9_000)

			Expect(v.CheckStageTransition()).To(BeFalse())
			Expect(v.Stage).To(Equal(vehicle.Entry))
		})

		It("should fall back to deploying below 7 km", func() {
			v.Altitude = 6_500
			v.Velocity = 4.0 * atmosphere.SpeedOfSound(6_500)

			Expect(v.CheckStageTransition()).To(BeTrue())
			Expect(v.Stage).To(Equal(vehicle.Parachute))
			Expect(v.ParachuteDeployed).To(BeTrue())
		})
	})

	Context("powered descent", func() {
		BeforeEach(func() {
			v.ParachuteDeployed = true
			v.SetStage(vehicle.Parachute)
		})

		It("should ignite between 100 m and 2100 m", func() {
			v.Altitude = 1_500
			v.Velocity = 80

			Expect(v.CheckStageTransition()).To(BeTrue())
			Expect(v.Stage).To(Equal(vehicle.PoweredDescent))
			Expect(v.PoweredDescentStarted).To(BeTrue())
			Expect(v.MaxThrust).To(Equal(15_000.0))
			Expect(v.SpecificImpulse).To(Equal(220.0))
			Expect(v.CrossSection).To(Equal(15.0))
		})

		It("should stay on the parachute above the window", func() {
			v.Altitude = 2_500
			Expect(v.CheckStageTransition()).To(BeFalse())
			Expect(v.Stage).To(Equal(vehicle.Parachute))
		})

		It("should command no thrust without fuel", func() {
			v.SetStage(vehicle.PoweredDescent)
			v.Altitude = 1_500
			v.Fuel = 0

			Expect(v.Thrust(0.8)).To(BeZero())
		})

		It("should clamp throttle into [0, 1]", func() {
			v.SetStage(vehicle.PoweredDescent)

			Expect(v.Thrust(1.7)).To(Equal(15_000.0))
			Expect(v.Thrust(-0.3)).To(BeZero())
			Expect(v.Thrust(0.5)).To(Equal(7_500.0))
		})
	})

	Context("touchdown", func() {
		DescribeTable("classifies the landing by velocity",
			func(from vehicle.Stage, velocity float64, want vehicle.Stage) {
				v.SetStage(from)
				v.Altitude = 0
				v.Velocity = velocity

				Expect(v.CheckStageTransition()).To(BeTrue())
				Expect(v.Stage).To(Equal(want))
				Expect(v.Altitude).To(BeZero())
			},
			Entry("soft landing", vehicle.PoweredDescent, 10.0, vehicle.Success),
			Entry("hard impact", vehicle.PoweredDescent, 20.0, vehicle.Crashed),
			Entry("exactly at the threshold", vehicle.PoweredDescent, 12.0, vehicle.Crashed),
			Entry("just under the threshold", vehicle.PoweredDescent, 11.999, vehicle.Success),
			Entry("still on the parachute", vehicle.Parachute, 30.0, vehicle.Crashed),
		)

		It("should take priority over other transitions", func() {
			Expect(vehicle.NextStage(vehicle.Entry, 0, 5, 0.1, false)).To(Equal(vehicle.Success))
		})

		It("should be absorbing", func() {
			v.SetStage(vehicle.PoweredDescent)
			v.Altitude = 0
			v.Velocity = 5
			Expect(v.CheckStageTransition()).To(BeTrue())

			before := *v
			for i := 0; i < 5; i++ {
				Expect(v.CheckStageTransition()).To(BeFalse())
			}
			Expect(*v).To(Equal(before))
		})
	})

	Context("fuel consumption", func() {
		BeforeEach(func() {
			v.SetStage(vehicle.PoweredDescent)
		})

		It("should burn thrust/(Isp*g0) per second", func() {
			v.ConsumeFuel(15_000, 1.0)

			used := 15_000 / (220 * vehicle.StandardGravity)
			Expect(v.Fuel).To(BeNumerically("~", 400-used, 1e-9))
			Expect(v.Mass).To(BeNumerically("~", 3_200-used, 1e-9))
		})

		It("should ignore zero thrust", func() {
			v.ConsumeFuel(0, 1.0)
			Expect(v.Fuel).To(Equal(400.0))
			Expect(v.Mass).To(Equal(3_200.0))
		})

		It("should never go below empty tanks or dry mass", func() {
			for i := 0; i < 10_000; i++ {
				v.ConsumeFuel(15_000, 0.1)
			}
			Expect(v.Fuel).To(BeZero())
			Expect(v.Mass).To(BeNumerically(">=", v.DryMass()))
		})
	})

	Describe("Stage", func() {
		It("should round-trip through its text form", func() {
			for _, s := range []vehicle.Stage{vehicle.Entry, vehicle.Parachute, vehicle.PoweredDescent, vehicle.Success, vehicle.Crashed} {
				text, err := s.MarshalText()
				Expect(err).NotTo(HaveOccurred())

				var got vehicle.Stage
				Expect(got.UnmarshalText(text)).To(Succeed())
				Expect(got).To(Equal(s))
			}
		})

		It("should reject unknown names", func() {
			_, err := vehicle.ParseStage("Orbit")
			Expect(err).To(HaveOccurred())
		})

		It("should only mark success and crash as terminal", func() {
			Expect(vehicle.Entry.Terminal()).To(BeFalse())
			Expect(vehicle.PoweredDescent.Terminal()).To(BeFalse())
			Expect(vehicle.Success.Terminal()).To(BeTrue())
			Expect(vehicle.Crashed.Terminal()).To(BeTrue())
		})
	})
})
