// Package guidance computes throttle commands for powered descent.
//
// [Throttle] is a stateless law: a hover-equivalent base throttle, a
// proportional correction toward an altitude-scheduled descent rate
// ([TargetVelocity]) and a feed-forward braking term, followed by low
// altitude overrides. Controllers implementing [Controller] can be swapped
// into the simulation driver.
package guidance
