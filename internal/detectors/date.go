// Package detectors provides ready-made event detectors for common
// propagation concerns: reaching a time, a state component crossing a
// value, and orbital apsides. Each is a thin switching function on top of
// the events engine; wrap them with the events package decorators for
// filtering, shifting or logging.
package detectors

import (
	"github.com/san-kum/propel/internal/events"
	"github.com/san-kum/propel/internal/traject"
)

// AtTime fires when propagation reaches the given time, in either
// direction. g = t - target, so the crossing is increasing when
// propagating forward.
func AtTime(target float64) *events.FuncDetector {
	return events.NewDetector(func(s traject.Snapshot) float64 {
		return s.T - target
	})
}

// StopAt fires at the given time and halts the propagation there.
func StopAt(target float64) *events.FuncDetector {
	return AtTime(target).WithHandler(events.OnEvent(events.Stop))
}
