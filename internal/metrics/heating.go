package metrics

import (
	"math"

	"github.com/san-kum/descentsim/internal/atmosphere"
	"github.com/san-kum/descentsim/internal/sim"
)

// MaxDynamicPressure tracks max-Q in pascals.
type MaxDynamicPressure struct {
	name string
	peak float64
}

func NewMaxDynamicPressure() *MaxDynamicPressure {
	return &MaxDynamicPressure{name: "max_q"}
}

func (m *MaxDynamicPressure) Name() string { return m.name }

func (m *MaxDynamicPressure) Observe(o sim.Observation) {
	m.peak = math.Max(m.peak, atmosphere.DynamicPressure(o.Velocity, o.Altitude))
}

func (m *MaxDynamicPressure) Value() float64 { return m.peak }

func (m *MaxDynamicPressure) Reset() { m.peak = 0 }

// HeatLoad integrates the heating proxy over time. Only the shape of the
// curve matters; the units are arbitrary.
type HeatLoad struct {
	name  string
	total float64
}

func NewHeatLoad() *HeatLoad {
	return &HeatLoad{name: "heat_load"}
}

func (h *HeatLoad) Name() string { return h.name }

func (h *HeatLoad) Observe(o sim.Observation) {
	h.total += atmosphere.HeatingProxy(o.Velocity, o.Altitude) * o.Dt
}

func (h *HeatLoad) Value() float64 { return h.total }

func (h *HeatLoad) Reset() { h.total = 0 }

// Standard returns the metric set attached to every CLI run.
func Standard() []sim.Metric {
	return []sim.Metric{
		NewControlEffort(),
		NewBurnTime(),
		NewMaxDynamicPressure(),
		NewHeatLoad(),
	}
}
