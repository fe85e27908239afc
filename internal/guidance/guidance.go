package guidance

import (
	"math"

	"github.com/san-kum/descentsim/internal/atmosphere"
	"github.com/san-kum/descentsim/internal/vehicle"
)

const (
	Kp              = 0.25
	FeedForwardGain = 0.3
)

type Controller interface {
	Throttle(s vehicle.State) float64
}

// TargetVelocity is the commanded descent rate in m/s at altitude alt.
func TargetVelocity(alt float64) float64 {
	switch {
	case alt > 1000:
		return 30 + (alt/2000)*40
	case alt > 300:
		return 15 + (alt/1000)*15
	case alt > 50:
		return 5 + (alt/300)*10
	default:
		return math.Max(1.5, alt/50*5)
	}
}

func Throttle(s vehicle.State) float64 {
	if s.Stage != vehicle.PoweredDescent || s.Fuel <= 0 || s.MaxThrust <= 0 {
		return 0
	}

	alt, vel := s.Altitude, s.Velocity
	target := TargetVelocity(alt)

	base := s.Mass * atmosphere.Gravity(alt) / s.MaxThrust
	velErr := vel - target
	correction := Kp * velErr

	if velErr > 0 && alt > 0 {
		timeToTarget := alt / math.Max(target, 1.0)
		neededDecel := velErr / timeToTarget
		correction += FeedForwardGain * (s.Mass * neededDecel) / s.MaxThrust
	}

	throttle := math.Max(0, math.Min(1, base+correction))

	if alt < 100 {
		throttle = math.Max(throttle, 0.6+(100-alt)/100*0.3)
	}
	if alt < 20 && vel > 2.0 {
		throttle = 0.95
	}
	// emergency: far too fast close to the ground
	if alt < 200 && vel > 2*target {
		throttle = 1.0
	}

	return throttle
}

// Guidance is the closed-loop descent law as a Controller.
type Guidance struct{}

func New() *Guidance {
	return &Guidance{}
}

func (g *Guidance) Throttle(s vehicle.State) float64 {
	return Throttle(s)
}

// None never fires the engine. Useful as a ballistic baseline.
type None struct{}

func NewNone() *None {
	return &None{}
}

func (n *None) Throttle(s vehicle.State) float64 {
	return 0
}
