// Package viz provides a live terminal view of a descent using the Bubble
// Tea framework. The model advances the simulator a few steps per frame and
// renders the status panel next to altitude and velocity charts.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	+/-   - Faster/slower (steps per frame)
//	Q     - Quit
package viz
