// Package vehicle holds the lander state and its staging logic.
//
// A [Vehicle] moves through Entry, Parachute and PoweredDescent before it
// ends in Success or Crashed. Each stage carries its own [Params], looked up
// from a table by [ParamsFor]. [NextStage] is the pure transition rule;
// [Vehicle.CheckStageTransition] applies it.
package vehicle
