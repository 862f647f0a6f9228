package traject

import (
	"fmt"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

// Snapshot is a state vector stamped with the time it was reached. Xdot
// carries the dynamics derivative at T when the producer knows it; a nil
// Xdot is legal for caller-built snapshots.
type Snapshot struct {
	T    float64
	X    State
	Xdot State
}

func (s Snapshot) Clone() Snapshot {
	c := Snapshot{T: s.T, X: s.X.Clone()}
	if s.Xdot != nil {
		c.Xdot = s.Xdot.Clone()
	}
	return c
}

func (s Snapshot) IsValid() bool {
	return !math.IsNaN(s.T) && !math.IsInf(s.T, 0) && s.X.IsValid()
}

// System is the ODE right-hand side dX/dt = f(X, t).
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

// Hamiltonian is an optional capability for systems with a conserved energy.
type Hamiltonian interface {
	Energy(x State) float64
}

// Configurable is an optional capability for systems with named runtime
// parameters.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

type Integrator interface {
	Step(sys System, x State, t, dt float64) State
}

type AdaptiveIntegrator interface {
	Integrator
	// StepAdaptive advances one step of size dt and returns the new state
	// plus the suggested size for the next step.
	StepAdaptive(sys System, x State, t, dt, tol float64) (State, float64, error)
}

// Observer receives every accepted propagation step.
type Observer interface {
	OnStep(s Snapshot)
}

type PropagationError struct {
	Time    float64
	Wrapped error
}

func (e *PropagationError) Error() string {
	return fmt.Sprintf("t=%.6f: %s", e.Time, e.Wrapped.Error())
}

func (e *PropagationError) Unwrap() error {
	return e.Wrapped
}
