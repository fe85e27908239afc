// Package kinematics advances the 1-D descent state.
//
// Sign convention: altitude is positive up, velocity and acceleration are
// positive downward.
package kinematics

import (
	"math"

	"github.com/san-kum/descentsim/internal/atmosphere"
)

// Forces is the per-step force breakdown in newtons (downward positive)
// together with the resulting acceleration.
type Forces struct {
	Gravity  float64
	Drag     float64
	Thrust   float64
	NetAccel float64
}

func NetAcceleration(mass, alt, v, thrust, cd, area float64) (float64, Forces) {
	gravityAccel := atmosphere.Gravity(alt)

	drag := atmosphere.DragForce(math.Abs(v), alt, cd, area)
	dragAccel := -drag / mass
	if v < 0 {
		dragAccel = drag / mass
	}

	thrustAccel := -thrust / mass
	net := gravityAccel + dragAccel + thrustAccel

	return net, Forces{
		Gravity:  gravityAccel * mass,
		Drag:     dragAccel * mass,
		Thrust:   thrustAccel * mass,
		NetAccel: net,
	}
}

// Integrate advances altitude and velocity by dt. The altitude update uses
// the velocity from before the step; landing thresholds are tuned against
// this exact scheme.
func Integrate(alt, v, accel, dt float64) (float64, float64) {
	newV := v + accel*dt
	newAlt := alt - v*dt - 0.5*accel*dt*dt
	if newAlt < 0 {
		newAlt = 0
	}
	return newAlt, newV
}
