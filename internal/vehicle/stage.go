package vehicle

import (
	"fmt"
	"math"
)

type Stage int

const (
	Entry Stage = iota
	Parachute
	PoweredDescent
	Success
	Crashed
)

var stageNames = map[Stage]string{
	Entry:          "Entry",
	Parachute:      "Parachute",
	PoweredDescent: "Powered Descent",
	Success:        "Success",
	Crashed:        "Crashed",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Terminal reports whether s is absorbing.
func (s Stage) Terminal() bool {
	return s == Success || s == Crashed
}

func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Stage) UnmarshalText(text []byte) error {
	parsed, err := ParseStage(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func ParseStage(name string) (Stage, error) {
	for s, n := range stageNames {
		if n == name {
			return s, nil
		}
	}
	return Entry, fmt.Errorf("unknown stage: %q", name)
}

// Transition thresholds.
const (
	SafeLandingVelocity = 12.0 // m/s, exclusive

	DeployMach        = 2.5
	DeployMinAltitude = 7_000.0  // m
	DeployMaxAltitude = 11_000.0 // m

	PoweredMinAltitude = 100.0   // m
	PoweredMaxAltitude = 2_100.0 // m
)

// Params are the aerodynamic and propulsion properties of a stage.
// Propulsion fields are zero outside powered flight.
type Params struct {
	DragCoefficient     float64
	CrossSection        float64 // m^2
	MaxThrust           float64 // N
	FuelConsumptionRate float64 // kg/s at full thrust, reference only
	SpecificImpulse     float64 // s
}

var (
	heatShield  = Params{DragCoefficient: 1.5, CrossSection: math.Pi * 4.5 * 4.5}
	stowedChute = Params{DragCoefficient: 0.8, CrossSection: 10}

	// 21.5 m supersonic disk-gap-band canopy
	deployedChute = Params{DragCoefficient: 1.8, CrossSection: math.Pi * (21.5 / 2) * (21.5 / 2)}

	descentStage = Params{
		DragCoefficient:     0.5,
		CrossSection:        15,
		MaxThrust:           15_000,
		FuelConsumptionRate: 2.0,
		SpecificImpulse:     220,
	}
)

var stageParams = map[Stage]Params{
	Entry:          heatShield,
	Parachute:      stowedChute,
	PoweredDescent: descentStage,
	Success:        descentStage,
	Crashed:        descentStage,
}

// ParamsFor looks up the parameter table. deployed only matters during the
// parachute stage.
func ParamsFor(stage Stage, deployed bool) Params {
	if stage == Parachute && deployed {
		return deployedChute
	}
	return stageParams[stage]
}

// NextStage picks the stage for the following step. Touchdown wins over
// every other rule.
func NextStage(stage Stage, alt, v, mach float64, deployed bool) Stage {
	if stage.Terminal() {
		return stage
	}

	if alt <= 0 {
		if v < SafeLandingVelocity {
			return Success
		}
		return Crashed
	}

	switch stage {
	case Entry:
		if mach < DeployMach && alt > DeployMinAltitude && alt < DeployMaxAltitude {
			return Parachute
		}
		// missed the mach window
		if alt < DeployMinAltitude && !deployed {
			return Parachute
		}
	case Parachute:
		if alt > PoweredMinAltitude && alt < PoweredMaxAltitude {
			return PoweredDescent
		}
	}

	return stage
}
