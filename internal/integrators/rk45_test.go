package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/propel/internal/traject"
)

func TestRK45Accuracy(t *testing.T) {
	sys := &oscillator{}
	integ := NewRK45()

	x := traject.State{1.0, 0.0}
	dt := 0.05
	steps := 20

	for i := 0; i < steps; i++ {
		x = integ.Step(sys, x, float64(i)*dt, dt)
	}

	expected := math.Cos(float64(steps) * dt)
	if math.Abs(x[0]-expected) > 1e-6 {
		t.Errorf("position error too large: got %.8f, expected %.8f", x[0], expected)
	}
}

func TestRK45StepSizeControl(t *testing.T) {
	sys := &oscillator{}
	integ := NewRK45()

	x := traject.State{1.0, 0.0}

	_, dtNext, err := integ.StepAdaptive(sys, x, 0, 0.01, 1e-6)
	if err != nil {
		t.Fatalf("adaptive step failed: %v", err)
	}
	if dtNext <= 0 {
		t.Errorf("expected positive suggested step, got %f", dtNext)
	}

	// A sloppy tolerance should allow growth, a tight one should shrink.
	_, dtLoose, _ := integ.StepAdaptive(sys, x, 0, 0.01, 1e-2)
	_, dtTight, _ := integ.StepAdaptive(sys, x, 0, 0.5, 1e-12)
	if dtLoose < 0.01 {
		t.Errorf("loose tolerance shrank the step: %f", dtLoose)
	}
	if dtTight >= 0.5 {
		t.Errorf("tight tolerance did not shrink the step: %f", dtTight)
	}
}
