// Package sweep runs independent descents concurrently. Runs share no
// state, so results are identical to running the same configurations one
// after another.
package sweep

import (
	"context"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/descentsim/internal/config"
	"github.com/san-kum/descentsim/internal/experiment"
	"github.com/san-kum/descentsim/internal/sim"
)

type Result struct {
	Config  config.Config
	Summary *sim.Summary
}

type Sweep struct {
	registry *experiment.Registry
	logger   zerolog.Logger
	workers  int
}

func New(registry *experiment.Registry, logger zerolog.Logger) *Sweep {
	return &Sweep{
		registry: registry,
		logger:   logger,
		workers:  runtime.GOMAXPROCS(0),
	}
}

// WithWorkers caps the number of concurrent runs. n <= 0 means unbounded.
func (s *Sweep) WithWorkers(n int) *Sweep {
	s.workers = n
	return s
}

// Run executes every configuration and returns results in input order. The
// first failing run cancels the others.
func (s *Sweep) Run(ctx context.Context, cfgs []config.Config) ([]Result, error) {
	results := make([]Result, len(cfgs))

	g, ctx := errgroup.WithContext(ctx)
	if s.workers > 0 {
		g.SetLimit(s.workers)
	}

	for i := range cfgs {
		cfg := cfgs[i]
		cfg.Realtime = false
		cfg.Verbose = false

		g.Go(func() error {
			exp := experiment.New(cfg)
			logger := s.logger.With().Int("run", i).Float64("dt", cfg.Dt).Logger()
			if err := exp.Setup(s.registry, logger); err != nil {
				return err
			}
			sum, err := exp.Run(ctx)
			if err != nil {
				return err
			}
			results[i] = Result{Config: cfg, Summary: sum}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// TimeSteps expands base into one configuration per time step.
func TimeSteps(base config.Config, dts []float64) []config.Config {
	cfgs := make([]config.Config, len(dts))
	for i, dt := range dts {
		cfgs[i] = base
		cfgs[i].Dt = dt
	}
	return cfgs
}
