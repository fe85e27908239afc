// Package sim drives a descent simulation with a fixed time step.
//
// Each [Simulator.Step] evaluates staging, asks the controller for a
// throttle, integrates the vehicle one step and records a
// [TelemetrySample]. [Simulator.Run] repeats this until the vehicle lands,
// crashes, or the timeout passes:
//
//	s, _ := sim.New(sim.DefaultDt, false)
//	summary, err := s.Run(ctx, sim.DefaultRunOptions())
//
// # Thread Safety
//
// A Simulator is NOT safe for concurrent use. Independent runs share no
// state and can run in parallel; see package sweep.
package sim
