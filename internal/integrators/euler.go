package integrators

import "github.com/san-kum/propel/internal/traject"

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys traject.System, x traject.State, t, dt float64) traject.State {
	dx := sys.Derive(x, t)
	result := make(traject.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}
