package detectors

import (
	"github.com/san-kum/propel/internal/events"
	"github.com/san-kum/propel/internal/physics"
	"github.com/san-kum/propel/internal/traject"
)

// Apside fires at orbital apsides: g is the radial velocity r.v, which
// crosses zero upward at periapsis and downward at apoapsis. Combine with
// an events.SlopeFilter to keep only one of the two.
func Apside(k *physics.Kepler) *events.FuncDetector {
	return events.NewDetector(func(s traject.Snapshot) float64 {
		return k.RadialVelocity(s.X)
	})
}

// Periapsis fires only at the closest approach.
func Periapsis(k *physics.Kepler) events.Detector {
	return events.FilterSlope(Apside(k), events.OnlyIncreasing)
}

// Apoapsis fires only at the farthest point.
func Apoapsis(k *physics.Kepler) events.Detector {
	return events.FilterSlope(Apside(k), events.OnlyDecreasing)
}

// Altitude fires when the orbital radius crosses the given value,
// increasing on the way out.
func Altitude(k *physics.Kepler, radius float64) *events.FuncDetector {
	return events.NewDetector(func(s traject.Snapshot) float64 {
		return k.Radius(s.X) - radius
	})
}
