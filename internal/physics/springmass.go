package physics

import (
	"fmt"

	"github.com/san-kum/propel/internal/traject"
)

const (
	DefaultMass      = 1.0
	DefaultStiffness = 10.0
	DefaultDamping   = 0.5
)

// SpringMass is a chain of point masses coupled by springs, grounded at
// both ends. State layout: positions x[0..n-1], velocities x[n..2n-1].
type SpringMass struct {
	NumMasses int
	Masses    []float64
	Stiffness []float64
	Damping   []float64
}

func NewSpringMass() *SpringMass {
	return &SpringMass{
		NumMasses: 1,
		Masses:    []float64{DefaultMass},
		Stiffness: []float64{DefaultStiffness, DefaultStiffness},
		Damping:   []float64{0},
	}
}

func NewSpringMassChain(n int) *SpringMass {
	masses := make([]float64, n)
	stiffness := make([]float64, n+1)
	damping := make([]float64, n)

	for i := 0; i < n; i++ {
		masses[i] = DefaultMass
		stiffness[i] = DefaultStiffness
		damping[i] = 0.2
	}
	stiffness[n] = DefaultStiffness

	return &SpringMass{
		NumMasses: n,
		Masses:    masses,
		Stiffness: stiffness,
		Damping:   damping,
	}
}

func (s *SpringMass) StateDim() int { return s.NumMasses * 2 }

func (s *SpringMass) Derive(x traject.State, t float64) traject.State {
	n := s.NumMasses
	dx := make(traject.State, n*2)

	for i := 0; i < n; i++ {
		dx[i] = x[n+i]
	}

	for i := 0; i < n; i++ {
		pos, vel := x[i], x[n+i]

		var forceLeft, forceRight float64
		if i == 0 {
			forceLeft = -s.Stiffness[0] * pos
		} else {
			forceLeft = -s.Stiffness[i] * (pos - x[i-1])
		}

		if i == n-1 {
			if len(s.Stiffness) > n {
				forceRight = -s.Stiffness[n] * pos
			}
		} else {
			forceRight = -s.Stiffness[i+1] * (pos - x[i+1])
		}

		dx[n+i] = (forceLeft + forceRight - s.Damping[i]*vel) / s.Masses[i]
	}

	return dx
}

func (s *SpringMass) Energy(x traject.State) float64 {
	n := s.NumMasses
	energy := 0.0

	for i := 0; i < n; i++ {
		v := x[n+i]
		energy += 0.5 * s.Masses[i] * v * v
	}

	for i := 0; i < n; i++ {
		pos := x[i]
		if i == 0 {
			energy += 0.5 * s.Stiffness[0] * pos * pos
		} else {
			stretch := pos - x[i-1]
			energy += 0.5 * s.Stiffness[i] * stretch * stretch
		}
	}

	if len(s.Stiffness) > n {
		energy += 0.5 * s.Stiffness[n] * x[n-1] * x[n-1]
	}

	return energy
}

func (s *SpringMass) GetParams() map[string]float64 {
	return map[string]float64{
		"masses":    float64(s.NumMasses),
		"stiffness": s.Stiffness[0],
		"damping":   s.Damping[0],
	}
}

func (s *SpringMass) SetParam(name string, value float64) error {
	switch name {
	case "stiffness":
		for i := range s.Stiffness {
			s.Stiffness[i] = value
		}
	case "damping":
		for i := range s.Damping {
			s.Damping[i] = value
		}
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
