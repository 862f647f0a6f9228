package events

import (
	"fmt"
	"math"

	"github.com/san-kum/propel/internal/traject"
)

// EventState owns the root search bookkeeping of one detector for one
// propagation leg: last evaluated time and sign, pending candidate root and
// the time of the last accepted event. It is created when the detector is
// registered and rebased (not recreated) on state resets.
type EventState struct {
	det Detector

	// NonConvergence, when set, is told about root searches that ran out
	// of iterations before reaching the detector threshold.
	NonConvergence func(d Detector, ta, tb float64)

	t0         float64
	g0         float64
	g0Positive bool

	// signKnown records whether g0Positive was ever derived from a
	// nonzero g value; a leg that starts inside a flat zero span has no
	// side to remember, and the first nonzero sample decides.
	signKnown bool

	pending     bool
	pendingTime float64
	increasing  bool

	lastEvent float64

	// searchEpoch is the coordinator epoch at which the cached search
	// result is valid; zero forces a re-scan.
	searchEpoch uint64
}

func NewEventState(det Detector) *EventState {
	return &EventState{det: det, lastEvent: math.NaN()}
}

func (es *EventState) Detector() Detector { return es.det }

// StartLeg prepares the tracker for a new propagation leg starting at start
// and aiming at target.
func (es *EventState) StartLeg(start traject.Snapshot, target float64) error {
	es.det.Init(start, target)
	if init, ok := es.det.EventHandler().(Initializer); ok {
		init.Init(start, target)
	}
	es.pending = false
	es.searchEpoch = 0
	es.lastEvent = math.NaN()
	es.signKnown = false
	return es.Rebase(start)
}

// FinishLeg runs the handler finish hook, if any.
func (es *EventState) FinishLeg(final traject.Snapshot) {
	if fin, ok := es.det.EventHandler().(Finisher); ok {
		fin.Finish(final)
	}
}

// Rebase moves the search start to the given snapshot and re-evaluates g
// there. Used at step ends, after truncations and after state resets, so the
// tracker always observes the post-reset state.
func (es *EventState) Rebase(s traject.Snapshot) error {
	g := es.det.G(s)
	if math.IsNaN(g) || math.IsInf(g, 0) {
		return fmt.Errorf("%w: g(t=%g) = %v", ErrNonFiniteG, s.T, g)
	}
	es.t0 = s.T
	es.g0 = g
	if g != 0 {
		es.g0Positive = g > 0
		es.signKnown = true
	}
	es.pending = false
	es.searchEpoch = 0
	return nil
}

// Pending reports whether the last search found a candidate root.
func (es *EventState) Pending() bool { return es.pending }

// EventTime returns the candidate root located by the last search.
func (es *EventState) EventTime() float64 { return es.pendingTime }

// Search scans the remainder of the step for the earliest sign change of g,
// sampling at subintervals no longer than the detector's max check interval
// and refining brackets with the hybrid solver. The result is cached under
// epoch; refreshG additionally re-evaluates g at the search start, for the
// case where an accepted event changed the g definition.
func (es *EventState) Search(interp traject.Interpolator, epoch uint64, refreshG bool) (bool, error) {
	if !refreshG && es.searchEpoch == epoch {
		return es.pending, nil
	}
	es.pending = false
	es.searchEpoch = epoch

	forward := interp.IsForward()
	dir := 1.0
	if !forward {
		dir = -1.0
	}
	t1 := interp.End().T
	if dir*(t1-es.t0) <= 0 {
		return false, nil
	}

	threshold := es.det.Threshold()
	ta := es.t0
	ga := es.g0
	if refreshG {
		snap := interp.StateAt(ta)
		g := es.det.G(snap)
		if math.IsNaN(g) || math.IsInf(g, 0) {
			return false, fmt.Errorf("%w: g(t=%g) = %v", ErrNonFiniteG, ta, g)
		}
		es.g0 = g
		if g != 0 {
			es.g0Positive = g > 0
			es.signKnown = true
		}
		ga = g
	}

	if ga == 0 {
		// Residual zero of a prior event: advance past the instant so
		// the same root is not triggered again.
		ta = ta + dir*threshold
		if dir*(t1-ta) <= 0 {
			return false, nil
		}
		ga = es.det.G(interp.StateAt(ta))
		if math.IsNaN(ga) || math.IsInf(ga, 0) {
			return false, fmt.Errorf("%w: g(t=%g) = %v", ErrNonFiniteG, ta, ga)
		}
	}
	gaPos := ga > 0 || (ga == 0 && es.g0Positive)
	known := es.signKnown || ga != 0

	// The max check interval is re-consulted at every subinterval start so
	// a state-dependent interval that tightens mid-step is honored.
	for dir*(t1-ta) > 0 {
		check := es.det.MaxCheck(interp.StateAt(ta))
		if !(check > 0) {
			return false, fmt.Errorf("events: max check interval %g at t=%g is not positive", check, ta)
		}
		tb := ta + dir*check
		if dir*(t1-tb) <= 0 {
			tb = t1
		}
		gb := es.det.G(interp.StateAt(tb))
		if math.IsNaN(gb) || math.IsInf(gb, 0) {
			return false, fmt.Errorf("%w: g(t=%g) = %v", ErrNonFiniteG, tb, gb)
		}

		if gb == 0 {
			// An exact zero on a sampling boundary is a legitimate
			// root, not something to skip. Consecutive zeros are a
			// flat span, not new roots.
			if ga != 0 && es.accept(tb, forward, gaPos) {
				return true, nil
			}
		} else if (gb > 0) != gaPos || (ga == 0 && !known) {
			// A flat span with no remembered side (leg started on
			// it) exits toward whichever sign appears first.
			brkPos := gaPos
			if ga == 0 && !known {
				brkPos = !(gb > 0)
			}
			solver := Solver{
				Threshold: threshold,
				MaxIter:   es.det.MaxIter(),
			}
			if es.NonConvergence != nil {
				det := es.det
				solver.OnNonConverged = func(a, b float64) { es.NonConvergence(det, a, b) }
			}
			root := solver.Root(func(t float64) float64 {
				return es.det.G(interp.StateAt(t))
			}, ta, tb, ga, gb)
			if es.accept(root, forward, brkPos) {
				return true, nil
			}
		}

		ta, ga = tb, gb
		if gb != 0 {
			gaPos = gb > 0
			known = true
		}
	}
	return false, nil
}


// accept records a candidate root unless it is a re-find of the last
// accepted event within the convergence threshold.
func (es *EventState) accept(root float64, forward, gaPos bool) bool {
	if !math.IsNaN(es.lastEvent) && math.Abs(root-es.lastEvent) <= es.det.Threshold() {
		return false
	}
	es.pending = true
	es.pendingTime = root
	if forward {
		es.increasing = !gaPos
	} else {
		es.increasing = gaPos
	}
	return true
}

// DoEvent invokes the handler for the pending event at the interpolated
// snapshot and advances the bookkeeping past the event.
func (es *EventState) DoEvent(s traject.Snapshot, forward bool) Occurrence {
	action := es.det.EventHandler().EventOccurred(s, es.det, es.increasing)
	es.t0 = s.T
	es.g0 = 0
	es.g0Positive = es.increasing == forward
	es.signKnown = true
	es.lastEvent = s.T
	es.pending = false
	es.searchEpoch = 0
	return Occurrence{
		Time:       s.T,
		Detector:   es.det,
		Increasing: es.increasing,
		Action:     action,
		State:      s,
	}
}
