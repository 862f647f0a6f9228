package detectors

import (
	"github.com/san-kum/propel/internal/events"
	"github.com/san-kum/propel/internal/traject"
)

// Component fires when state component i crosses the given value,
// increasing when the component rises through it.
func Component(i int, value float64) *events.FuncDetector {
	return events.NewDetector(func(s traject.Snapshot) float64 {
		return s.X[i] - value
	})
}

// Norm fires when the state vector norm crosses the given value.
func Norm(value float64) *events.FuncDetector {
	return events.NewDetector(func(s traject.Snapshot) float64 {
		return s.X.Norm() - value
	})
}

// Energy fires when the system's energy crosses the given level. The
// system must expose its Hamiltonian.
func Energy(h traject.Hamiltonian, level float64) *events.FuncDetector {
	return events.NewDetector(func(s traject.Snapshot) float64 {
		return h.Energy(s.X) - level
	})
}
