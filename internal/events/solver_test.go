package events

import (
	"math"
	"testing"
)

func TestSolverLinearRoot(t *testing.T) {
	f := func(x float64) float64 { return x - 3 }
	s := Solver{Threshold: 1e-12, MaxIter: 100}

	root := s.Root(f, 0, 10, f(0), f(10))
	if math.Abs(root-3) > 1e-9 {
		t.Errorf("root = %g, want 3", root)
	}
}

func TestSolverBackwardBracket(t *testing.T) {
	f := func(x float64) float64 { return x - 3 }
	s := Solver{Threshold: 1e-12, MaxIter: 100}

	root := s.Root(f, 5, 1, f(5), f(1))
	if math.Abs(root-3) > 1e-9 {
		t.Errorf("root = %g, want 3", root)
	}
}

func TestSolverRightEndpointZero(t *testing.T) {
	f := func(x float64) float64 { return x - 5 }
	s := Solver{Threshold: 1e-12, MaxIter: 100}

	if root := s.Root(f, 0, 5, -5, 0); root != 5 {
		t.Errorf("root = %g, want the exact right endpoint 5", root)
	}
}

func TestSolverNonlinearRoot(t *testing.T) {
	f := func(x float64) float64 { return math.Cos(x) }
	s := Solver{Threshold: 1e-12, MaxIter: 100}

	root := s.Root(f, 1, 2, f(1), f(2))
	if math.Abs(root-math.Pi/2) > 1e-9 {
		t.Errorf("root = %g, want pi/2", root)
	}
}

// A function sitting flat at zero on the left of the bracket must converge
// to the instant it leaves zero, not to an arbitrary point of the flat span.
func TestSolverFlatLeftBracket(t *testing.T) {
	f := func(x float64) float64 {
		if x <= 2 {
			return 0
		}
		return x - 2
	}
	s := Solver{Threshold: 1e-9, MaxIter: 100}

	root := s.Root(f, 0, 4, 0, 2)
	if math.Abs(root-2) > 1e-6 {
		t.Errorf("root = %g, want the flat exit at 2", root)
	}
}

func TestSolverNonConvergenceReported(t *testing.T) {
	f := func(x float64) float64 { return x - 3 }
	var called bool
	s := Solver{
		Threshold:      1e-12,
		MaxIter:        1,
		OnNonConverged: func(ta, tb float64) { called = true },
	}

	root := s.Root(f, 0, 10, f(0), f(10))
	if !called {
		t.Error("expected the non-convergence callback to fire with MaxIter=1")
	}
	if root < 0 || root > 10 {
		t.Errorf("best estimate %g left the original bracket", root)
	}
}

func TestSolverHardIterationCap(t *testing.T) {
	calls := 0
	f := func(x float64) float64 {
		calls++
		return x - 3
	}
	s := Solver{Threshold: 0, MaxIter: 1 << 30}

	s.Root(f, 0, 10, -3, 7)
	if calls > hardIterCap {
		t.Errorf("%d evaluations, cap is %d", calls, hardIterCap)
	}
}
