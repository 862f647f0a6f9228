// Package physics provides dynamical system models for propagation.
//
// Each model implements the [traject.System] interface, defining the
// differential equations governing the system's evolution:
//
//   - [Pendulum]: damped pendulum
//   - [SpringMass]: chain of spring-coupled masses
//   - [Kepler]: planar two-body orbit around a fixed central mass
//
// The models also implement [traject.Configurable] for runtime parameter
// adjustment and [traject.Hamiltonian] for energy calculation.
//
// # Energy Conservation
//
// For conservative systems, use [traject.Hamiltonian] to monitor energy
// drift:
//
//	sys := physics.NewPendulum()
//	if h, ok := any(sys).(traject.Hamiltonian); ok {
//	    energy := h.Energy(state)
//	}
package physics
