// Package atmosphere models the environment a lander descends through.
//
// All functions are pure and take altitude in meters above the mean surface:
//
//   - [Density], [Pressure], [Temperature]: exponential atmosphere
//   - [Gravity]: inverse-square gravitational acceleration
//   - [SpeedOfSound], [Mach]: compressibility terms
//   - [DynamicPressure], [DragForce], [HeatingProxy]: aerodynamic loads
//
// Negative altitudes are treated as the surface.
package atmosphere
