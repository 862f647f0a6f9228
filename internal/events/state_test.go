package events

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/propel/internal/traject"
)

// tspan builds dense output where x(t) = t exactly, which is all the
// time-driven switching functions in these tests need.
func tspan(t0, t1 float64) traject.Interpolator {
	return traject.NewStepInterpolant(
		traject.Snapshot{T: t0, X: traject.State{t0}, Xdot: traject.State{1}},
		traject.Snapshot{T: t1, X: traject.State{t1}, Xdot: traject.State{1}},
	)
}

func snapAt(t float64) traject.Snapshot {
	return traject.Snapshot{T: t, X: traject.State{t}, Xdot: traject.State{1}}
}

func TestEventStateFindsCrossing(t *testing.T) {
	det := NewDetector(func(s traject.Snapshot) float64 { return s.T - 2.5 }).
		WithThreshold(1e-9)
	es := NewEventState(det)
	if err := es.StartLeg(snapAt(0), 10); err != nil {
		t.Fatal(err)
	}

	found, err := es.Search(tspan(0, 5), 1, false)
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("expected a crossing in [0, 5]")
	}
	if got := es.EventTime(); math.Abs(got-2.5) > 1e-6 {
		t.Errorf("event time = %g, want 2.5", got)
	}
	if !es.increasing {
		t.Error("crossing from negative to positive must be increasing")
	}
}

func TestEventStateBoundaryZeroIsARoot(t *testing.T) {
	det := NewDetector(func(s traject.Snapshot) float64 { return s.T - 5 })
	es := NewEventState(det)
	if err := es.StartLeg(snapAt(0), 5); err != nil {
		t.Fatal(err)
	}

	found, err := es.Search(tspan(0, 5), 1, false)
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("a zero exactly on the step end must count as a root")
	}
	if got := es.EventTime(); got != 5 {
		t.Errorf("event time = %g, want exactly 5", got)
	}
}

// A double root touches zero without changing sign. Whether it is noticed
// depends on sampling luck, but it must never produce an error or a bogus
// sign change.
func TestEventStateDoubleRootDoesNotCrash(t *testing.T) {
	det := NewDetector(func(s traject.Snapshot) float64 {
		d := s.T - 2.3
		return d * d
	})
	es := NewEventState(det)
	if err := es.StartLeg(snapAt(0), 5); err != nil {
		t.Fatal(err)
	}

	found, err := es.Search(tspan(0, 5), 1, false)
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Errorf("g never changes sign, but a crossing was reported at %g", es.EventTime())
	}
}

func TestEventStateNoRefindAfterEvent(t *testing.T) {
	det := NewDetector(func(s traject.Snapshot) float64 { return s.T - 2.5 }).
		WithThreshold(1e-9)
	es := NewEventState(det)
	if err := es.StartLeg(snapAt(0), 10); err != nil {
		t.Fatal(err)
	}

	interp := tspan(0, 5)
	if found, _ := es.Search(interp, 1, false); !found {
		t.Fatal("expected the crossing on the first search")
	}
	occ := es.DoEvent(interp.StateAt(es.EventTime()), true)
	if occ.Action != Continue {
		t.Fatalf("default handler answered %v", occ.Action)
	}

	found, err := es.Search(interp, 2, false)
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Errorf("the same root was found again at %g", es.EventTime())
	}
}

func TestEventStateBackwardSearch(t *testing.T) {
	det := NewDetector(func(s traject.Snapshot) float64 { return s.T - 2.5 }).
		WithThreshold(1e-9)
	es := NewEventState(det)
	if err := es.StartLeg(snapAt(5), 0); err != nil {
		t.Fatal(err)
	}

	found, err := es.Search(tspan(5, 0), 1, false)
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("expected the crossing while scanning backward")
	}
	if got := es.EventTime(); math.Abs(got-2.5) > 1e-6 {
		t.Errorf("event time = %g, want 2.5", got)
	}
	// g goes from positive to negative in scan order, which in forward
	// time is an increasing crossing.
	if !es.increasing {
		t.Error("backward scan must classify the crossing in forward time")
	}
}

func TestEventStateNonFiniteG(t *testing.T) {
	det := NewDetector(func(s traject.Snapshot) float64 {
		if s.T > 1 {
			return math.NaN()
		}
		return -1
	})
	es := NewEventState(det)
	if err := es.StartLeg(snapAt(0), 5); err != nil {
		t.Fatal(err)
	}

	if _, err := es.Search(tspan(0, 5), 1, false); !errors.Is(err, ErrNonFiniteG) {
		t.Errorf("err = %v, want ErrNonFiniteG", err)
	}
}

// A g that turns non-finite right after an accepted event must surface as an
// error from the residual-zero advance, not poison the sign bookkeeping.
func TestEventStateNonFiniteGAfterEvent(t *testing.T) {
	det := NewDetector(func(s traject.Snapshot) float64 {
		if s.T > 2 {
			return math.NaN()
		}
		return s.T - 2
	}).WithThreshold(1e-3)
	es := NewEventState(det)
	if err := es.StartLeg(snapAt(0), 5); err != nil {
		t.Fatal(err)
	}

	interp := tspan(0, 5)
	if found, err := es.Search(interp, 1, false); err != nil || !found {
		t.Fatalf("found=%v err=%v, want the crossing at 2", found, err)
	}
	es.DoEvent(interp.StateAt(es.EventTime()), true)

	if _, err := es.Search(interp, 2, false); !errors.Is(err, ErrNonFiniteG) {
		t.Errorf("err = %v, want ErrNonFiniteG", err)
	}
}

// A check interval that tightens near a feature must be honored mid-scan; a
// narrow positive spike between the coarse samples is otherwise stepped over.
func TestEventStateStateDependentCheckInterval(t *testing.T) {
	det := NewDetector(func(s traject.Snapshot) float64 {
		return 0.07 - math.Abs(s.T-2.13)
	}).
		WithThreshold(1e-9).
		WithMaxCheckFunc(func(s traject.Snapshot) float64 {
			if math.Abs(s.T-2.13) < 0.5 {
				return 0.05
			}
			return 1.0
		})
	es := NewEventState(det)
	if err := es.StartLeg(snapAt(0), 5); err != nil {
		t.Fatal(err)
	}

	found, err := es.Search(tspan(0, 5), 1, false)
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("the tightened check interval must catch the spike")
	}
	if got := es.EventTime(); math.Abs(got-2.06) > 1e-6 {
		t.Errorf("event time = %g, want 2.06", got)
	}
}

func TestEventStateRejectsNonPositiveCheckInterval(t *testing.T) {
	det := NewDetector(func(s traject.Snapshot) float64 { return s.T - 2 }).
		WithMaxCheck(0)
	es := NewEventState(det)
	if err := es.StartLeg(snapAt(0), 5); err != nil {
		t.Fatal(err)
	}

	if _, err := es.Search(tspan(0, 5), 1, false); err == nil {
		t.Fatal("a non-positive check interval must be rejected")
	}
}

// After an accepted event the tracker sits on a residual zero of g; the
// next search must step past it instead of re-resolving the same instant.
func TestEventStateResidualZeroAdvance(t *testing.T) {
	det := NewDetector(func(s traject.Snapshot) float64 { return s.T }).
		WithThreshold(1e-9)
	es := NewEventState(det)
	if err := es.StartLeg(snapAt(0), 5); err != nil {
		t.Fatal(err)
	}

	found, err := es.Search(tspan(0, 5), 1, false)
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Errorf("leaving an initial zero along one sign is not a crossing, got event at %g", es.EventTime())
	}
}
