package sim

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/san-kum/descentsim/internal/atmosphere"
	"github.com/san-kum/descentsim/internal/guidance"
	"github.com/san-kum/descentsim/internal/kinematics"
	"github.com/san-kum/descentsim/internal/vehicle"
)

type Simulator struct {
	dt         float64
	realtime   bool
	vehicle    *vehicle.Vehicle
	controller guidance.Controller
	logger     zerolog.Logger
	metrics    []Metric
	observers  []Observer
	reporters  []StatusReporter

	steps       int
	peakGLoad   float64
	peakHeating float64
	transitions []StageTransitionEvent
	telemetry   []TelemetrySample
	outcome     Outcome
}

type Option func(*Simulator)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Simulator) { s.logger = l }
}

func WithController(c guidance.Controller) Option {
	return func(s *Simulator) { s.controller = c }
}

// WithInitialConditions replaces the default entry state.
func WithInitialConditions(ic vehicle.InitialConditions) Option {
	return func(s *Simulator) { s.vehicle = vehicle.NewWithConditions(ic) }
}

// New builds a simulator with a fresh vehicle. realtime only paces Run for
// display; it never changes the trajectory.
func New(dt float64, realtime bool, opts ...Option) (*Simulator, error) {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return nil, fmt.Errorf("%w, got %v", ErrInvalidStep, dt)
	}

	s := &Simulator{
		dt:         dt,
		realtime:   realtime,
		vehicle:    vehicle.New(),
		controller: guidance.New(),
		logger:     zerolog.Nop(),
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
		reporters:  make([]StatusReporter, 0),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.telemetry = make([]TelemetrySample, 0, 1024)
	return s, nil
}

func (s *Simulator) AddMetric(m Metric) {
	m.Reset()
	s.metrics = append(s.metrics, m)
}

func (s *Simulator) AddObserver(o Observer)          { s.observers = append(s.observers, o) }
func (s *Simulator) AddReporter(r StatusReporter)    { s.reporters = append(s.reporters, r) }
func (s *Simulator) Dt() float64                     { return s.dt }
func (s *Simulator) Realtime() bool                  { return s.realtime }
func (s *Simulator) Controller() guidance.Controller { return s.controller }

// Vehicle exposes the simulated vehicle for setup and inspection. It must
// not be modified while Run is in progress.
func (s *Simulator) Vehicle() *vehicle.Vehicle { return s.vehicle }

// Done reports whether the vehicle reached a terminal stage.
func (s *Simulator) Done() bool { return s.vehicle.Stage.Terminal() }

// Step advances the simulation by one time step and reports whether any
// physics was applied. Once the vehicle is terminal, Step is a no-op.
func (s *Simulator) Step() bool {
	v := s.vehicle
	if v.Stage.Terminal() {
		return false
	}

	if v.CheckStageTransition() {
		ev := StageTransitionEvent{
			Time:     v.TimeElapsed,
			Stage:    v.Stage,
			Altitude: v.Altitude,
			Velocity: v.Velocity,
		}
		s.transitions = append(s.transitions, ev)
		s.logger.Info().
			Float64("t", ev.Time).
			Stringer("stage", ev.Stage).
			Float64("altitude_m", ev.Altitude).
			Float64("velocity_mps", ev.Velocity).
			Msg("stage transition")
	}
	if v.Stage.Terminal() {
		return false
	}

	throttle := s.controller.Throttle(v.State())
	thrust := v.Thrust(throttle)
	if thrust == 0 {
		throttle = 0
	}

	accel, forces := kinematics.NetAcceleration(v.Mass, v.Altitude, v.Velocity, thrust, v.DragCoefficient, v.CrossSection)

	s.peakGLoad = math.Max(s.peakGLoad, math.Abs(accel)/EarthG)
	s.peakHeating = math.Max(s.peakHeating, atmosphere.HeatingProxy(v.Velocity, v.Altitude))

	obs := Observation{
		Time:     v.TimeElapsed,
		Dt:       s.dt,
		Stage:    v.Stage,
		Altitude: v.Altitude,
		Velocity: v.Velocity,
		Mass:     v.Mass,
		Throttle: throttle,
		Thrust:   thrust,
		Forces:   forces,
	}
	for _, m := range s.metrics {
		m.Observe(obs)
	}

	alt, vel := kinematics.Integrate(v.Altitude, v.Velocity, accel, s.dt)
	v.Advance(alt, vel, s.dt)
	v.ConsumeFuel(thrust, s.dt)
	s.steps++

	sample := TelemetrySample{
		Time:         v.TimeElapsed,
		Altitude:     v.Altitude,
		Velocity:     v.Velocity,
		Mass:         v.Mass,
		Fuel:         v.Fuel,
		Stage:        v.Stage,
		Thrust:       thrust,
		Throttle:     throttle,
		Acceleration: accel,
	}
	s.telemetry = append(s.telemetry, sample)
	for _, o := range s.observers {
		o.OnStep(sample)
	}

	return true
}

// Run steps until the vehicle is terminal or its clock passes
// opts.Timeout. Cancelling ctx stops the loop after the current step; the
// partial summary is returned together with ctx.Err().
func (s *Simulator) Run(ctx context.Context, opts RunOptions) (*Summary, error) {
	if opts.Timeout <= 0 {
		return nil, fmt.Errorf("%w, got %v", ErrInvalidTimeout, opts.Timeout)
	}

	start := time.Now()
	lastDisplay := s.vehicle.TimeElapsed

	for {
		if err := ctx.Err(); err != nil {
			s.outcome = OutcomeInterrupted
			s.logger.Warn().Float64("t", s.vehicle.TimeElapsed).Msg("simulation interrupted")
			return s.Summary(), err
		}

		stepped := s.Step()
		if stepped && s.realtime {
			pace(ctx, time.Duration(s.dt*float64(time.Second)))
		}

		if opts.Verbose && s.vehicle.TimeElapsed-lastDisplay >= opts.DisplayInterval {
			t := s.vehicle.Telemetry()
			for _, r := range s.reporters {
				r.OnStatus(t)
			}
			lastDisplay = s.vehicle.TimeElapsed
		}

		if s.vehicle.Stage.Terminal() {
			break
		}
		if s.vehicle.TimeElapsed > opts.Timeout {
			s.outcome = OutcomeTimeout
			s.logger.Warn().
				Float64("timeout_s", opts.Timeout).
				Stringer("stage", s.vehicle.Stage).
				Float64("altitude_m", s.vehicle.Altitude).
				Msg("simulation timed out")
			break
		}
	}

	summary := s.Summary()
	s.logger.Info().
		Stringer("outcome", summary.Outcome).
		Int("steps", summary.Steps).
		Float64("t", summary.Time).
		Float64("velocity_mps", summary.FinalVelocity).
		Dur("wall", time.Since(start)).
		Msg("simulation finished")

	return summary, nil
}

func pace(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Summary snapshots the run so far.
func (s *Simulator) Summary() *Summary {
	v := s.vehicle

	outcome := s.outcome
	switch v.Stage {
	case vehicle.Success:
		outcome = OutcomeLanded
	case vehicle.Crashed:
		outcome = OutcomeCrashed
	}

	metrics := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		metrics[m.Name()] = m.Value()
	}

	transitions := make([]StageTransitionEvent, len(s.transitions))
	copy(transitions, s.transitions)
	telemetry := make([]TelemetrySample, len(s.telemetry))
	copy(telemetry, s.telemetry)

	return &Summary{
		Outcome:       outcome,
		FinalStage:    v.Stage,
		Time:          v.TimeElapsed,
		Steps:         s.steps,
		FinalAltitude: v.Altitude,
		FinalVelocity: v.Velocity,
		FinalMass:     v.Mass,
		FinalFuel:     v.Fuel,
		FuelMax:       v.FuelMax,
		PeakGLoad:     s.peakGLoad,
		PeakHeating:   s.peakHeating,
		Transitions:   transitions,
		Telemetry:     telemetry,
		Metrics:       metrics,
	}
}
