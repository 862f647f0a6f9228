package config

import (
	"fmt"

	"github.com/san-kum/propel/internal/detectors"
	"github.com/san-kum/propel/internal/events"
	"github.com/san-kum/propel/internal/integrators"
	"github.com/san-kum/propel/internal/physics"
	"github.com/san-kum/propel/internal/traject"
)

// BuildSystem resolves the configured model into a system and its initial
// state.
func (c *Config) BuildSystem() (traject.System, traject.State, error) {
	switch c.Model {
	case "pendulum":
		return physics.NewPendulum(), traject.State{c.InitState.Theta, c.InitState.Omega}, nil
	case "springmass":
		return physics.NewSpringMass(), traject.State{c.InitState.Pos, c.InitState.Vel}, nil
	case "springchain":
		n := c.InitState.Masses
		if n < 1 {
			n = DefaultMasses
		}
		sys := physics.NewSpringMassChain(n)
		x0 := make(traject.State, sys.StateDim())
		x0[0] = c.InitState.Pos
		x0[n] = c.InitState.Vel
		return sys, x0, nil
	case "kepler":
		kep := physics.NewKepler()
		a := c.InitState.SemiMajor
		if a <= 0 {
			a = DefaultSemiMajor
		}
		return kep, kep.EllipticOrbit(a, c.InitState.Eccentricity), nil
	default:
		return nil, nil, fmt.Errorf("unknown model: %s", c.Model)
	}
}

// BuildIntegrator resolves the configured integrator name.
func (c *Config) BuildIntegrator() (traject.Integrator, error) {
	switch c.Integrator {
	case "euler":
		return integrators.NewEuler(), nil
	case "rk4", "":
		return integrators.NewRK4(), nil
	case "rk45":
		return integrators.NewRK45(), nil
	default:
		return nil, fmt.Errorf("unknown integrator: %s", c.Integrator)
	}
}

// BuildDetectors resolves the configured detector list against the system
// the detectors will watch.
func (c *Config) BuildDetectors(sys traject.System) ([]events.Detector, error) {
	out := make([]events.Detector, 0, len(c.Detectors))
	for i, dc := range c.Detectors {
		d, err := buildDetector(dc, sys)
		if err != nil {
			return nil, fmt.Errorf("detector %d: %w", i, err)
		}
		out = append(out, d)
	}
	return out, nil
}

func buildDetector(dc DetectorConfig, sys traject.System) (events.Detector, error) {
	var leaf *events.FuncDetector
	switch dc.Type {
	case "time":
		leaf = detectors.AtTime(dc.At)
	case "component":
		leaf = detectors.Component(dc.Index, dc.Value)
	case "norm":
		leaf = detectors.Norm(dc.Value)
	case "energy":
		h, ok := sys.(traject.Hamiltonian)
		if !ok {
			return nil, fmt.Errorf("model has no energy to watch")
		}
		leaf = detectors.Energy(h, dc.Value)
	case "altitude":
		kep, ok := sys.(*physics.Kepler)
		if !ok {
			return nil, fmt.Errorf("altitude detectors need the kepler model")
		}
		leaf = detectors.Altitude(kep, dc.Value)
	case "apside":
		kep, ok := sys.(*physics.Kepler)
		if !ok {
			return nil, fmt.Errorf("apside detectors need the kepler model")
		}
		leaf = detectors.Apside(kep)
	default:
		return nil, fmt.Errorf("unknown detector type: %s", dc.Type)
	}

	if dc.MaxCheck > 0 {
		leaf = leaf.WithMaxCheck(dc.MaxCheck)
	}
	if dc.Threshold > 0 {
		leaf = leaf.WithThreshold(dc.Threshold)
	}

	switch dc.Action {
	case "", "continue":
	case "stop":
		leaf = leaf.WithHandler(events.OnEvent(events.Stop))
	default:
		return nil, fmt.Errorf("unknown action: %s", dc.Action)
	}

	var d events.Detector = leaf
	switch dc.Filter {
	case "":
	case "increasing":
		d = events.FilterSlope(d, events.OnlyIncreasing)
	case "decreasing":
		d = events.FilterSlope(d, events.OnlyDecreasing)
	default:
		return nil, fmt.Errorf("unknown filter: %s", dc.Filter)
	}

	if dc.ShiftIncreasing != 0 || dc.ShiftDecreasing != 0 {
		d = events.ShiftEvents(d, dc.ShiftIncreasing, dc.ShiftDecreasing)
	}
	return d, nil
}
