package sweep_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/san-kum/descentsim/internal/config"
	"github.com/san-kum/descentsim/internal/experiment"
	"github.com/san-kum/descentsim/internal/sim"
	"github.com/san-kum/descentsim/internal/sweep"
)

func sequential(cfgs []config.Config) []*sim.Summary {
	out := make([]*sim.Summary, len(cfgs))
	for i, cfg := range cfgs {
		cfg.Verbose = false
		exp := experiment.New(cfg)
		Expect(exp.Setup(experiment.NewRegistry(), zerolog.Nop())).To(Succeed())
		sum, err := exp.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		out[i] = sum
	}
	return out
}

var _ = Describe("Sweep", func() {
	var (
		s    *sweep.Sweep
		base config.Config
	)

	BeforeEach(func() {
		s = sweep.New(experiment.NewRegistry(), zerolog.Nop())
		base = *config.DefaultConfig()
	})

	It("should expand time steps from a base configuration", func() {
		cfgs := sweep.TimeSteps(base, []float64{0.05, 0.1, 0.2})
		Expect(cfgs).To(HaveLen(3))
		Expect(cfgs[0].Dt).To(Equal(0.05))
		Expect(cfgs[2].Dt).To(Equal(0.2))
		Expect(cfgs[1].InitState).To(Equal(base.InitState))
	})

	It("should match a sequential run exactly", func() {
		cfgs := sweep.TimeSteps(base, []float64{0.2, 0.1, 0.5})

		results, err := s.Run(context.Background(), cfgs)
		Expect(err).NotTo(HaveOccurred())
		expected := sequential(cfgs)

		Expect(results).To(HaveLen(len(cfgs)))
		for i, r := range results {
			Expect(r.Config.Dt).To(Equal(cfgs[i].Dt))
			Expect(r.Summary.Outcome).To(Equal(expected[i].Outcome))
			Expect(r.Summary.Steps).To(Equal(expected[i].Steps))
			Expect(r.Summary.FinalVelocity).To(Equal(expected[i].FinalVelocity))
			Expect(r.Summary.FinalFuel).To(Equal(expected[i].FinalFuel))
			Expect(r.Summary.Transitions).To(Equal(expected[i].Transitions))
		}
	})

	It("should land across a range of time steps", func() {
		results, err := s.WithWorkers(2).Run(context.Background(), sweep.TimeSteps(base, []float64{0.05, 0.1, 0.2}))
		Expect(err).NotTo(HaveOccurred())
		for _, r := range results {
			Expect(r.Summary.Outcome).To(Equal(sim.OutcomeLanded), "dt=%v", r.Config.Dt)
		}
	})

	It("should fail the sweep when one configuration is invalid", func() {
		cfgs := sweep.TimeSteps(base, []float64{0.1, -1})

		results, err := s.Run(context.Background(), cfgs)
		Expect(err).To(MatchError(config.ErrInvalidConfig))
		Expect(results).To(BeNil())
	})

	It("should stop when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := s.Run(ctx, sweep.TimeSteps(base, []float64{0.1, 0.2}))
		Expect(err).To(MatchError(context.Canceled))
	})

	It("should return nothing for an empty sweep", func() {
		results, err := s.Run(context.Background(), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(BeEmpty())
	})
})
