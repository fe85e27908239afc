package vehicle

import (
	"math"

	"github.com/san-kum/descentsim/internal/atmosphere"
)

// StandardGravity is g0 in the specific-impulse mass flow relation. It is
// Earth's value regardless of the body being landed on.
const StandardGravity = 9.81

type InitialConditions struct {
	Altitude float64
	Velocity float64
	Mass     float64
	Fuel     float64
}

// DefaultInitialConditions is an MSL-class entry: 125 km interface,
// 5.8 km/s, 3.2 t with 400 kg of descent propellant.
func DefaultInitialConditions() InitialConditions {
	return InitialConditions{
		Altitude: 125_000,
		Velocity: 5_800,
		Mass:     3_200,
		Fuel:     400,
	}
}

// Vehicle is the mutable state of the descending body. Altitude is meters
// above the surface, velocity is positive downward.
type Vehicle struct {
	Altitude    float64
	Velocity    float64
	Mass        float64
	Fuel        float64
	FuelMax     float64
	InitialMass float64
	TimeElapsed float64
	Stage       Stage

	ParachuteDeployed     bool
	PoweredDescentStarted bool

	Params
}

func New() *Vehicle {
	return NewWithConditions(DefaultInitialConditions())
}

func NewWithConditions(ic InitialConditions) *Vehicle {
	v := &Vehicle{
		Altitude:    ic.Altitude,
		Velocity:    ic.Velocity,
		Mass:        ic.Mass,
		Fuel:        ic.Fuel,
		FuelMax:     ic.Fuel,
		InitialMass: ic.Mass,
		Stage:       Entry,
	}
	v.SetStage(Entry)
	return v
}

// SetStage switches stage and reloads the stage parameters.
func (v *Vehicle) SetStage(s Stage) {
	v.Stage = s
	v.Params = ParamsFor(s, v.ParachuteDeployed)
}

func (v *Vehicle) DryMass() float64 {
	return v.InitialMass - v.FuelMax
}

// CheckStageTransition applies at most one stage change and reports whether
// one happened. Terminal stages never change.
func (v *Vehicle) CheckStageTransition() bool {
	if v.Stage.Terminal() {
		return false
	}

	mach := atmosphere.Mach(v.Velocity, v.Altitude)
	next := NextStage(v.Stage, v.Altitude, v.Velocity, mach, v.ParachuteDeployed)
	if next == v.Stage {
		return false
	}

	switch next {
	case Success, Crashed:
		v.Altitude = 0
	case Parachute:
		v.ParachuteDeployed = true
	case PoweredDescent:
		v.PoweredDescentStarted = true
	}
	v.SetStage(next)
	return true
}

// Thrust converts a throttle command into newtons. Only the powered descent
// stage with propellant left can produce thrust.
func (v *Vehicle) Thrust(throttle float64) float64 {
	if v.Stage != PoweredDescent || v.Fuel <= 0 {
		return 0
	}
	return v.MaxThrust * math.Max(0, math.Min(1, throttle))
}

func (v *Vehicle) ConsumeFuel(thrust, dt float64) {
	if thrust <= 0 || v.Fuel <= 0 {
		return
	}
	used := thrust / (v.SpecificImpulse * StandardGravity) * dt
	v.Fuel = math.Max(0, v.Fuel-used)
	v.Mass = math.Max(v.Mass-used, v.DryMass())
}

// Advance writes back an integrated state and moves the clock.
func (v *Vehicle) Advance(alt, vel, dt float64) {
	v.Altitude = alt
	v.Velocity = vel
	v.TimeElapsed += dt
}

// State is the read-only snapshot handed to controllers.
type State struct {
	Stage     Stage
	Altitude  float64
	Velocity  float64
	Mass      float64
	Fuel      float64
	MaxThrust float64
}

func (v *Vehicle) State() State {
	return State{
		Stage:     v.Stage,
		Altitude:  v.Altitude,
		Velocity:  v.Velocity,
		Mass:      v.Mass,
		Fuel:      v.Fuel,
		MaxThrust: v.MaxThrust,
	}
}

// Telemetry is a display snapshot with derived atmospheric quantities.
type Telemetry struct {
	Time            float64
	Altitude        float64
	Velocity        float64
	Mass            float64
	Fuel            float64
	FuelPercent     float64
	Stage           Stage
	Mach            float64
	DynamicPressure float64
	Density         float64
}

func (v *Vehicle) Telemetry() Telemetry {
	pct := 0.0
	if v.FuelMax > 0 {
		pct = v.Fuel / v.FuelMax * 100
	}
	return Telemetry{
		Time:            v.TimeElapsed,
		Altitude:        v.Altitude,
		Velocity:        v.Velocity,
		Mass:            v.Mass,
		Fuel:            v.Fuel,
		FuelPercent:     pct,
		Stage:           v.Stage,
		Mach:            atmosphere.Mach(v.Velocity, v.Altitude),
		DynamicPressure: atmosphere.DynamicPressure(v.Velocity, v.Altitude),
		Density:         atmosphere.Density(v.Altitude),
	}
}
