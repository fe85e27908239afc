package metrics

import (
	"github.com/san-kum/descentsim/internal/sim"
	"github.com/san-kum/descentsim/internal/vehicle"
)

// ControlEffort is the mean throttle over the steps where the engine was
// commandable.
type ControlEffort struct {
	name    string
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{
		name: "control_effort",
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(o sim.Observation) {
	if o.Stage != vehicle.PoweredDescent {
		return
	}
	c.sum += o.Throttle
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}

type BurnTime struct {
	name    string
	elapsed float64
}

func NewBurnTime() *BurnTime {
	return &BurnTime{name: "burn_time"}
}

func (b *BurnTime) Name() string { return b.name }

func (b *BurnTime) Observe(o sim.Observation) {
	if o.Thrust > 0 {
		b.elapsed += o.Dt
	}
}

func (b *BurnTime) Value() float64 { return b.elapsed }

func (b *BurnTime) Reset() { b.elapsed = 0 }
