package sim

import (
	"errors"
	"fmt"

	"github.com/san-kum/descentsim/internal/kinematics"
	"github.com/san-kum/descentsim/internal/vehicle"
)

var (
	ErrInvalidStep    = errors.New("sim: time step must be positive")
	ErrInvalidTimeout = errors.New("sim: timeout must be positive")
)

const (
	DefaultDt              = 0.1
	DefaultTimeout         = 600.0
	DefaultDisplayInterval = 5.0

	// EarthG normalizes accelerations into g-loads.
	EarthG = 9.81
)

// TelemetrySample is recorded once per completed physics step.
type TelemetrySample struct {
	Time         float64       `json:"time"`
	Altitude     float64       `json:"altitude"`
	Velocity     float64       `json:"velocity"`
	Mass         float64       `json:"mass"`
	Fuel         float64       `json:"fuel"`
	Stage        vehicle.Stage `json:"stage"`
	Thrust       float64       `json:"thrust"`
	Throttle     float64       `json:"throttle"`
	Acceleration float64       `json:"acceleration"`
}

type StageTransitionEvent struct {
	Time     float64       `json:"time"`
	Stage    vehicle.Stage `json:"stage"`
	Altitude float64       `json:"altitude"`
	Velocity float64       `json:"velocity"`
}

type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeLanded
	OutcomeCrashed
	OutcomeTimeout
	OutcomeInterrupted
)

func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeLanded:
		return "landed"
	case OutcomeCrashed:
		return "crashed"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeInterrupted:
		return "interrupted"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Outcome) UnmarshalText(text []byte) error {
	parsed, err := ParseOutcome(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

func ParseOutcome(name string) (Outcome, error) {
	for o := OutcomePending; o <= OutcomeInterrupted; o++ {
		if o.String() == name {
			return o, nil
		}
	}
	return OutcomePending, fmt.Errorf("unknown outcome: %q", name)
}

// Conclusive reports whether the run reached a terminal stage.
func (o Outcome) Conclusive() bool {
	return o == OutcomeLanded || o == OutcomeCrashed
}

// Summary is the complete output of a run. Slices are copies owned by the
// caller.
type Summary struct {
	Outcome       Outcome                `json:"outcome"`
	FinalStage    vehicle.Stage          `json:"final_stage"`
	Time          float64                `json:"time"`
	Steps         int                    `json:"steps"`
	FinalAltitude float64                `json:"final_altitude"`
	FinalVelocity float64                `json:"final_velocity"`
	FinalMass     float64                `json:"final_mass"`
	FinalFuel     float64                `json:"final_fuel"`
	FuelMax       float64                `json:"fuel_max"`
	PeakGLoad     float64                `json:"peak_g_load"`
	PeakHeating   float64                `json:"peak_heating"`
	Transitions   []StageTransitionEvent `json:"transitions"`
	Telemetry     []TelemetrySample      `json:"telemetry"`
	Metrics       map[string]float64     `json:"metrics,omitempty"`
}

type RunOptions struct {
	DisplayInterval float64
	Verbose         bool
	Timeout         float64
}

func DefaultRunOptions() RunOptions {
	return RunOptions{
		DisplayInterval: DefaultDisplayInterval,
		Verbose:         true,
		Timeout:         DefaultTimeout,
	}
}

// Observation is what a Metric sees for each physics step, taken before
// integration.
type Observation struct {
	Time     float64
	Dt       float64
	Stage    vehicle.Stage
	Altitude float64
	Velocity float64
	Mass     float64
	Throttle float64
	Thrust   float64
	Forces   kinematics.Forces
}

type Metric interface {
	Name() string
	Observe(o Observation)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s TelemetrySample)
}

// StatusReporter receives periodic status snapshots during verbose runs.
type StatusReporter interface {
	OnStatus(t vehicle.Telemetry)
}
