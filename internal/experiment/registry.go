package experiment

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/descentsim/internal/guidance"
	"github.com/san-kum/descentsim/internal/metrics"
	"github.com/san-kum/descentsim/internal/sim"
)

var ErrUnknownController = errors.New("unknown controller")

type Registry struct {
	controllers map[string]func() guidance.Controller
}

func NewRegistry() *Registry {
	r := &Registry{
		controllers: make(map[string]func() guidance.Controller),
	}

	r.controllers["guidance"] = func() guidance.Controller { return guidance.New() }
	r.controllers["none"] = func() guidance.Controller { return guidance.NewNone() }

	return r
}

// Register adds or replaces a named controller factory.
func (r *Registry) Register(name string, fn func() guidance.Controller) {
	r.controllers[name] = fn
}

func (r *Registry) GetController(name string) (guidance.Controller, error) {
	fn, ok := r.controllers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownController, name)
	}
	return fn(), nil
}

func (r *Registry) ListControllers() []string {
	names := make([]string, 0, len(r.controllers))
	for name := range r.controllers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics() []sim.Metric {
	return metrics.Standard()
}
