// Package traject provides the core propagation primitives shared by the
// integrator and event-detection layers:
//
//   - [State]: vector representing system state
//   - [Snapshot]: state stamped with time and derivative
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator]: numerical stepper interface
//   - [Interpolator]: dense output inside one accepted step
//
// # Thread Safety
//
// None of the types here are safe for concurrent use. A propagation leg
// owns its states and interpolants exclusively.
package traject
