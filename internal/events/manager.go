package events

import (
	"fmt"
	"math"

	"github.com/san-kum/propel/internal/traject"
)

// DefaultMaxEventResets bounds RESET_EVENTS re-scans within a single step.
const DefaultMaxEventResets = 1000

// Occurrence is one confirmed event: where, which detector, which polarity
// and what the handler decided.
type Occurrence struct {
	Time       float64
	Detector   Detector
	Increasing bool
	Action     Action
	State      traject.Snapshot
}

// StepOutcome is the result of coordinating one integration step.
type StepOutcome struct {
	Events []Occurrence

	// Stop is set when a handler halted the propagation at TruncatedAt.
	Stop bool

	// Truncated is set when the step must end early at TruncatedAt.
	Truncated   bool
	TruncatedAt float64

	// NewState carries the replacement state after a ResetState event.
	NewState *traject.Snapshot

	// DerivativesChanged signals that the dynamics must be re-evaluated
	// from TruncatedAt even though the state itself is unchanged.
	DerivativesChanged bool
}

// Manager owns the event trackers of one propagation leg and coordinates
// them across each integration step: every tracker searches the step, the
// chronologically earliest candidate wins (ties broken by registration
// order), its handler runs, and the search restarts on the remainder until
// no candidate is left or the step is cut short.
//
// The manager is strictly sequential and owned by a single propagation; it
// needs no locking.
type Manager struct {
	states []*EventState

	// MaxEventResets caps RESET_EVENTS re-scans per step; exceeding it
	// is a fatal error.
	MaxEventResets int

	// OnNonConverged, when set, is called for every root search that
	// spent its iteration budget before reaching the threshold. The
	// default policy is to accept the best estimate silently.
	OnNonConverged func(d Detector, ta, tb float64)

	// epoch counts accepted events; trackers cache search results per
	// epoch so a handler's side effects are always observed.
	epoch uint64
}

func NewManager() *Manager {
	return &Manager{MaxEventResets: DefaultMaxEventResets}
}

// Register adds a detector. Registration order is the tie-break order for
// simultaneous events.
func (m *Manager) Register(d Detector) {
	es := NewEventState(d)
	es.NonConvergence = func(det Detector, ta, tb float64) {
		if m.OnNonConverged != nil {
			m.OnNonConverged(det, ta, tb)
		}
	}
	m.states = append(m.states, es)
}

// Clear removes all detectors.
func (m *Manager) Clear() { m.states = nil }

// Detectors lists the registered detectors in registration order.
func (m *Manager) Detectors() []Detector {
	ds := make([]Detector, len(m.states))
	for i, es := range m.states {
		ds[i] = es.Detector()
	}
	return ds
}

// StartLeg initializes every tracker for a new propagation leg.
func (m *Manager) StartLeg(start traject.Snapshot, target float64) error {
	for _, es := range m.states {
		if err := es.StartLeg(start, target); err != nil {
			return err
		}
	}
	return nil
}

// FinishLeg runs the handler finish hooks.
func (m *Manager) FinishLeg(final traject.Snapshot) {
	for _, es := range m.states {
		es.FinishLeg(final)
	}
}

// AcceptStep runs the close-events protocol on one integration step.
func (m *Manager) AcceptStep(interp traject.Interpolator) (StepOutcome, error) {
	var out StepOutcome
	forward := interp.IsForward()
	resets := 0
	refresh := false
	m.epoch++

	for {
		var best *EventState
		for _, es := range m.states {
			has, err := es.Search(interp, m.epoch, refresh)
			if err != nil {
				return out, err
			}
			if has && (best == nil || earlier(forward, es.EventTime(), best.EventTime())) {
				best = es
			}
		}
		refresh = false

		if best == nil {
			end := interp.End()
			for _, es := range m.states {
				if err := es.Rebase(end); err != nil {
					return out, err
				}
			}
			return out, nil
		}

		// Candidates within the earliest candidate's threshold of it are
		// the same instant: the first registered of them wins, reported at
		// the earliest candidate's time. Judging simultaneity by each
		// candidate's own threshold would let a coarse detector swallow a
		// genuinely earlier fine-threshold event.
		tc := best.EventTime()
		sameInstant := best.Detector().Threshold()
		for _, es := range m.states {
			if es.Pending() && math.Abs(es.EventTime()-tc) <= sameInstant {
				best = es
				break
			}
		}
		// Roots within threshold of the previous accepted event are
		// the same instant: report them at the same time so
		// simultaneous events stay deterministic.
		if n := len(out.Events); n > 0 {
			if last := out.Events[n-1].Time; math.Abs(tc-last) <= best.Detector().Threshold() {
				tc = last
			}
		}

		s := interp.StateAt(tc)
		occ := best.DoEvent(s, forward)
		out.Events = append(out.Events, occ)
		m.epoch++

		switch occ.Action {
		case Continue:
			// Only the resolved tracker moved; the others' cached
			// searches stay valid under the new epoch.
			for _, es := range m.states {
				if es != best && es.searchEpoch != 0 {
					es.searchEpoch = m.epoch
				}
			}

		case Stop:
			for _, es := range m.states {
				if es == best {
					continue
				}
				if err := es.Rebase(s); err != nil {
					return out, err
				}
			}
			out.Stop = true
			out.Truncated = true
			out.TruncatedAt = tc
			return out, nil

		case ResetState:
			resetter, ok := occ.Detector.EventHandler().(Resetter)
			if !ok {
				return out, fmt.Errorf("%w (detector %T)", ErrNoResetState, occ.Detector)
			}
			ns, defined := resetter.ResetState(occ.Detector, s)
			if !defined || !ns.X.IsValid() {
				return out, fmt.Errorf("%w (detector %T, t=%g)", ErrNoResetState, occ.Detector, tc)
			}
			ns.T = tc
			// Every tracker observes the replacement state before
			// the next search, never the stale one.
			for _, es := range m.states {
				if err := es.Rebase(ns); err != nil {
					return out, err
				}
			}
			out.Truncated = true
			out.TruncatedAt = tc
			out.NewState = &ns
			return out, nil

		case ResetDerivatives:
			for _, es := range m.states {
				if es == best {
					continue
				}
				if err := es.Rebase(s); err != nil {
					return out, err
				}
			}
			out.Truncated = true
			out.TruncatedAt = tc
			out.DerivativesChanged = true
			return out, nil

		case ResetEvents:
			resets++
			if resets > m.MaxEventResets {
				return out, fmt.Errorf("%w (%d resets at t=%g)", ErrTooManyResets, resets, tc)
			}
			// Some g definition may have changed: force a full
			// re-scan with fresh switching function values.
			refresh = true

		default:
			return out, fmt.Errorf("events: unknown action %d", occ.Action)
		}
	}
}

func earlier(forward bool, a, b float64) bool {
	if forward {
		return a < b
	}
	return a > b
}
