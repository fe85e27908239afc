package sim_test

import (
	"bytes"
	"context"
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/san-kum/descentsim/internal/guidance"
	"github.com/san-kum/descentsim/internal/kinematics"
	"github.com/san-kum/descentsim/internal/sim"
	"github.com/san-kum/descentsim/internal/vehicle"
)

type stepCounter struct {
	n int
}

func (c *stepCounter) Name() string                 { return "steps" }
func (c *stepCounter) Observe(o sim.Observation)    { c.n++ }
func (c *stepCounter) Value() float64               { return float64(c.n) }
func (c *stepCounter) Reset()                       { c.n = 0 }
func (c *stepCounter) OnStep(s sim.TelemetrySample) { c.n++ }
func (c *stepCounter) OnStatus(t vehicle.Telemetry) { c.n++ }

func quietRun() sim.RunOptions {
	opts := sim.DefaultRunOptions()
	opts.Verbose = false
	return opts
}

var _ = Describe("Simulator", func() {
	var s *sim.Simulator

	BeforeEach(func() {
		var err error
		s, err = sim.New(sim.DefaultDt, false)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("construction", func() {
		DescribeTable("rejects a non-positive or non-finite step",
			func(dt float64) {
				_, err := sim.New(dt, false)
				Expect(err).To(MatchError(sim.ErrInvalidStep))
			},
			Entry("zero", 0.0),
			Entry("negative", -0.1),
			Entry("NaN", math.NaN()),
			Entry("infinite", math.Inf(1)),
		)

		It("should start from the default entry state", func() {
			v := s.Vehicle()
			Expect(v.Altitude).To(Equal(125_000.0))
			Expect(v.Stage).To(Equal(vehicle.Entry))
			Expect(s.Dt()).To(Equal(0.1))
			Expect(s.Realtime()).To(BeFalse())
			Expect(s.Controller()).To(BeAssignableToTypeOf(&guidance.Guidance{}))
		})

		It("should accept custom initial conditions", func() {
			s, err := sim.New(0.1, false, sim.WithInitialConditions(vehicle.InitialConditions{
				Altitude: 9_000, Velocity: 300, Mass: 3_000, Fuel: 200,
			}))
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Vehicle().Altitude).To(Equal(9_000.0))
			Expect(s.Vehicle().DryMass()).To(Equal(2_800.0))
		})
	})

	Describe("Step", func() {
		It("should apply gravity and drag on the first step", func() {
			accel, forces := kinematics.NetAcceleration(3_200, 125_000, 5_800, 0, 1.5, math.Pi*4.5*4.5)

			Expect(s.Step()).To(BeTrue())

			v := s.Vehicle()
			Expect(forces.Thrust).To(BeZero())
			Expect(v.Velocity).To(BeNumerically("~", 5_800+accel*0.1, 1e-9))
			Expect(v.Velocity).To(BeNumerically(">", 5_800))
			Expect(v.Altitude).To(BeNumerically("~", 125_000-580-0.5*accel*0.01, 1e-6))
			Expect(v.TimeElapsed).To(BeNumerically("~", 0.1, 1e-12))
			Expect(v.Fuel).To(Equal(400.0))

			tel := s.Summary().Telemetry
			Expect(tel).To(HaveLen(1))
			Expect(tel[0].Thrust).To(BeZero())
			Expect(tel[0].Stage).To(Equal(vehicle.Entry))
		})

		It("should be a no-op once terminal", func() {
			s.Vehicle().SetStage(vehicle.Success)
			before := *s.Vehicle()

			Expect(s.Step()).To(BeFalse())
			Expect(*s.Vehicle()).To(Equal(before))
			Expect(s.Summary().Steps).To(BeZero())
			Expect(s.Done()).To(BeTrue())
		})

		It("should record a touchdown without integrating", func() {
			v := s.Vehicle()
			v.SetStage(vehicle.PoweredDescent)
			v.Altitude = 0
			v.Velocity = 8

			Expect(s.Step()).To(BeFalse())
			Expect(v.Stage).To(Equal(vehicle.Success))

			sum := s.Summary()
			Expect(sum.Outcome).To(Equal(sim.OutcomeLanded))
			Expect(sum.Transitions).To(HaveLen(1))
			Expect(sum.Telemetry).To(BeEmpty())
		})

		It("should log stage transitions", func() {
			var buf bytes.Buffer
			s, err := sim.New(0.1, false,
				sim.WithLogger(zerolog.New(&buf)),
				sim.WithInitialConditions(vehicle.InitialConditions{
					Altitude: 9_000, Velocity: 300, Mass: 3_200, Fuel: 400,
				}),
			)
			Expect(err).NotTo(HaveOccurred())

			s.Step()
			Expect(s.Vehicle().Stage).To(Equal(vehicle.Parachute))
			Expect(buf.String()).To(ContainSubstring(`"message":"stage transition"`))
			Expect(buf.String()).To(ContainSubstring(`"stage":"Parachute"`))
		})
	})

	Describe("Run", func() {
		It("should land the default mission", func() {
			sum, err := s.Run(context.Background(), quietRun())
			Expect(err).NotTo(HaveOccurred())

			Expect(sum.Outcome).To(Equal(sim.OutcomeLanded))
			Expect(sum.Outcome.Conclusive()).To(BeTrue())
			Expect(sum.FinalStage).To(Equal(vehicle.Success))
			Expect(sum.FinalAltitude).To(BeZero())
			Expect(sum.FinalVelocity).To(BeNumerically("<", vehicle.SafeLandingVelocity))
			Expect(sum.Time).To(BeNumerically("~", 136, 5))
			Expect(sum.Steps).To(BeNumerically("<=", int(sim.DefaultTimeout/sim.DefaultDt)+1))
			Expect(sum.FinalFuel).To(BeNumerically(">", 0))
			Expect(sum.PeakGLoad).To(BeNumerically(">", 1))
		})

		It("should pass through the stages in order", func() {
			sum, err := s.Run(context.Background(), quietRun())
			Expect(err).NotTo(HaveOccurred())

			stages := make([]vehicle.Stage, 0, len(sum.Transitions))
			for _, ev := range sum.Transitions {
				stages = append(stages, ev.Stage)
			}
			Expect(stages).To(Equal([]vehicle.Stage{vehicle.Parachute, vehicle.PoweredDescent, vehicle.Success}))

			chute := sum.Transitions[0]
			Expect(chute.Altitude).To(BeNumerically("<", vehicle.DeployMaxAltitude))
			Expect(chute.Altitude).To(BeNumerically(">", vehicle.PoweredMaxAltitude))

			powered := sum.Transitions[1]
			Expect(powered.Altitude).To(BeNumerically("<", vehicle.PoweredMaxAltitude))
			Expect(powered.Time).To(BeNumerically(">", chute.Time))
		})

		It("should keep the telemetry physically consistent", func() {
			sum, err := s.Run(context.Background(), quietRun())
			Expect(err).NotTo(HaveOccurred())
			Expect(sum.Telemetry).To(HaveLen(sum.Steps))

			prev := 0.0
			for _, sample := range sum.Telemetry {
				Expect(sample.Altitude).To(BeNumerically(">=", 0))
				Expect(sample.Fuel).To(BeNumerically(">=", 0))
				Expect(sample.Fuel).To(BeNumerically("<=", 400))
				Expect(sample.Mass).To(BeNumerically(">=", 2_800))
				Expect(sample.Throttle).To(BeNumerically(">=", 0))
				Expect(sample.Throttle).To(BeNumerically("<=", 1))
				Expect(sample.Time).To(BeNumerically(">", prev))
				if sample.Stage != vehicle.PoweredDescent {
					Expect(sample.Thrust).To(BeZero())
				}
				prev = sample.Time
			}
		})

		It("should crash without guidance", func() {
			s, err := sim.New(0.1, false, sim.WithController(guidance.NewNone()))
			Expect(err).NotTo(HaveOccurred())

			sum, err := s.Run(context.Background(), quietRun())
			Expect(err).NotTo(HaveOccurred())
			Expect(sum.Outcome).To(Equal(sim.OutcomeCrashed))
			Expect(sum.FinalVelocity).To(BeNumerically(">=", vehicle.SafeLandingVelocity))
			Expect(sum.FinalFuel).To(Equal(400.0))
		})

		It("should stop at the timeout", func() {
			opts := quietRun()
			opts.Timeout = 1

			sum, err := s.Run(context.Background(), opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(sum.Outcome).To(Equal(sim.OutcomeTimeout))
			Expect(sum.Outcome.Conclusive()).To(BeFalse())
			Expect(sum.FinalStage).To(Equal(vehicle.Entry))
			Expect(sum.Time).To(BeNumerically(">", 1))
			Expect(sum.Steps).To(BeNumerically("~", 11, 1))
		})

		It("should follow the same trajectory when paced in real time", func() {
			const dt = 0.05
			opts := quietRun()
			opts.Timeout = 0.2

			paced, err := sim.New(dt, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(paced.Realtime()).To(BeTrue())
			unpaced, err := sim.New(dt, false)
			Expect(err).NotTo(HaveOccurred())

			start := time.Now()
			want, err := paced.Run(context.Background(), opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(time.Since(start)).To(BeNumerically(">=", time.Duration(want.Steps-1)*50*time.Millisecond))

			got, err := unpaced.Run(context.Background(), opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Steps).To(BeNumerically(">", 1))
			Expect(got.Outcome).To(Equal(want.Outcome))
			Expect(got.Telemetry).To(Equal(want.Telemetry))
			Expect(got.Transitions).To(Equal(want.Transitions))
		})

		It("should reject a non-positive timeout", func() {
			opts := quietRun()
			opts.Timeout = 0

			_, err := s.Run(context.Background(), opts)
			Expect(err).To(MatchError(sim.ErrInvalidTimeout))
		})

		It("should stop when the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			sum, err := s.Run(ctx, quietRun())
			Expect(err).To(MatchError(context.Canceled))
			Expect(sum).NotTo(BeNil())
			Expect(sum.Outcome).To(Equal(sim.OutcomeInterrupted))
			Expect(sum.Steps).To(BeZero())
		})

		It("should feed metrics and observers once per step", func() {
			metric := &stepCounter{n: 42}
			observer := &stepCounter{}
			s.AddMetric(metric)
			s.AddObserver(observer)

			sum, err := s.Run(context.Background(), quietRun())
			Expect(err).NotTo(HaveOccurred())
			Expect(metric.n).To(Equal(sum.Steps))
			Expect(observer.n).To(Equal(sum.Steps))
			Expect(sum.Metrics).To(HaveKeyWithValue("steps", float64(sum.Steps)))
		})

		It("should report status only when verbose", func() {
			reporter := &stepCounter{}
			s.AddReporter(reporter)

			sum, err := s.Run(context.Background(), sim.DefaultRunOptions())
			Expect(err).NotTo(HaveOccurred())
			Expect(reporter.n).To(BeNumerically("~", int(sum.Time/sim.DefaultDisplayInterval), 1))

			quiet, err := sim.New(0.1, false)
			Expect(err).NotTo(HaveOccurred())
			silent := &stepCounter{}
			quiet.AddReporter(silent)
			_, err = quiet.Run(context.Background(), quietRun())
			Expect(err).NotTo(HaveOccurred())
			Expect(silent.n).To(BeZero())
		})
	})

	Describe("Summary", func() {
		It("should hand out copies", func() {
			for i := 0; i < 3; i++ {
				s.Step()
			}
			sum := s.Summary()
			sum.Telemetry[0].Altitude = -1

			Expect(s.Summary().Telemetry[0].Altitude).To(BeNumerically(">", 0))
		})

		It("should report pending before any terminal stage", func() {
			s.Step()
			Expect(s.Summary().Outcome).To(Equal(sim.OutcomePending))
			Expect(s.Summary().Outcome.String()).To(Equal("pending"))
		})
	})
})
