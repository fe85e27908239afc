package experiment

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/san-kum/descentsim/internal/config"
	"github.com/san-kum/descentsim/internal/sim"
)

// Experiment is one configured descent: a simulator built from a Config
// with the registry's controller and metrics attached.
type Experiment struct {
	cfg       config.Config
	simulator *sim.Simulator
}

func New(cfg config.Config) *Experiment {
	return &Experiment{cfg: cfg}
}

func (e *Experiment) Setup(r *Registry, logger zerolog.Logger) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	ctrl, err := r.GetController(e.cfg.Controller)
	if err != nil {
		return err
	}

	s, err := sim.New(e.cfg.Dt, e.cfg.Realtime,
		sim.WithController(ctrl),
		sim.WithInitialConditions(e.cfg.InitialConditions()),
		sim.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	for _, m := range r.DefaultMetrics() {
		s.AddMetric(m)
	}

	e.simulator = s
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Summary, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.cfg.RunOptions())
}

func (e *Experiment) Config() config.Config { return e.cfg }

// Simulator returns the underlying simulator for adding observers and
// reporters before Run.
func (e *Experiment) Simulator() *sim.Simulator {
	return e.simulator
}
