package traject

import (
	"errors"
	"math"
	"testing"
)

func TestStateClone(t *testing.T) {
	s := State{1, 2, 3}
	c := s.Clone()
	c[0] = 99

	if s[0] != 1 {
		t.Error("clone shares backing storage")
	}
}

func TestStateIsValid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  bool
	}{
		{"finite", State{1, -2, 0}, true},
		{"empty", State{}, true},
		{"nan", State{1, math.NaN()}, false},
		{"inf", State{math.Inf(1)}, false},
	}
	for _, tt := range tests {
		if got := tt.state.IsValid(); got != tt.want {
			t.Errorf("%s: IsValid = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestStateNorm(t *testing.T) {
	if got := (State{3, 4}).Norm(); math.Abs(got-5) > 1e-12 {
		t.Errorf("Norm = %g, want 5", got)
	}
	if got := (State{}).Norm(); got != 0 {
		t.Errorf("empty Norm = %g, want 0", got)
	}
}

func TestStateArithmetic(t *testing.T) {
	a := State{1, 2}
	b := State{10, 20}

	if sum := a.Add(b); sum[0] != 11 || sum[1] != 22 {
		t.Errorf("Add = %v", sum)
	}
	if diff := b.Sub(a); diff[0] != 9 || diff[1] != 18 {
		t.Errorf("Sub = %v", diff)
	}
	if scaled := a.Scale(3); scaled[0] != 3 || scaled[1] != 6 {
		t.Errorf("Scale = %v", scaled)
	}

	// Mismatched lengths keep the receiver's extra components.
	if sum := a.Add(State{5}); sum[1] != 2 {
		t.Errorf("short Add = %v, want second component unchanged", sum)
	}
}

func TestSnapshotClone(t *testing.T) {
	s := Snapshot{T: 1, X: State{2}, Xdot: State{3}}
	c := s.Clone()
	c.X[0] = 99
	c.Xdot[0] = 99

	if s.X[0] != 2 || s.Xdot[0] != 3 {
		t.Error("clone shares backing storage")
	}

	noDeriv := Snapshot{T: 1, X: State{2}}
	if cloned := noDeriv.Clone(); cloned.Xdot != nil {
		t.Error("clone invented a derivative")
	}
}

func TestSnapshotIsValid(t *testing.T) {
	if !(Snapshot{T: 0, X: State{1}}).IsValid() {
		t.Error("finite snapshot should be valid")
	}
	if (Snapshot{T: math.NaN(), X: State{1}}).IsValid() {
		t.Error("NaN time should be invalid")
	}
	if (Snapshot{T: 0, X: State{math.Inf(-1)}}).IsValid() {
		t.Error("infinite state should be invalid")
	}
}

func TestPropagationErrorUnwrap(t *testing.T) {
	inner := errors.New("state diverged")
	err := &PropagationError{Time: 1.25, Wrapped: inner}

	if !errors.Is(err, inner) {
		t.Error("Unwrap should expose the inner error")
	}
	if got := err.Error(); got != "t=1.250000: state diverged" {
		t.Errorf("Error = %q", got)
	}
}
