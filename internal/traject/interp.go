package traject

// Interpolator gives access to the state at any time inside the last
// accepted integration step (dense output). Implementations must support
// both forward and backward steps.
type Interpolator interface {
	StateAt(t float64) Snapshot
	Start() Snapshot
	End() Snapshot
	// Restrict returns a view of the same dense output limited to
	// [t0, t1] (in propagation order). The receiver is unchanged.
	Restrict(t0, t1 float64) Interpolator
	IsForward() bool
}

// StepInterpolant is a cubic Hermite dense output built from the states and
// derivatives at both ends of one integration step. Third-order accurate,
// which is enough for root bracketing as long as steps respect the
// detectors' max check intervals.
type StepInterpolant struct {
	start Snapshot
	end   Snapshot
}

// NewStepInterpolant builds dense output for the step from start to end.
// Both snapshots must carry their derivatives.
func NewStepInterpolant(start, end Snapshot) *StepInterpolant {
	if start.Xdot == nil || end.Xdot == nil {
		panic("traject: step interpolant requires derivatives at both ends")
	}
	return &StepInterpolant{start: start, end: end}
}

func (si *StepInterpolant) Start() Snapshot { return si.start }
func (si *StepInterpolant) End() Snapshot   { return si.end }

func (si *StepInterpolant) IsForward() bool {
	return si.end.T >= si.start.T
}

func (si *StepInterpolant) StateAt(t float64) Snapshot {
	h := si.end.T - si.start.T
	if h == 0 {
		return si.start.Clone()
	}
	theta := (t - si.start.T) / h

	// Hermite basis on the normalized step.
	t2 := theta * theta
	t3 := t2 * theta
	h00 := 2*t3 - 3*t2 + 1
	h10 := t3 - 2*t2 + theta
	h01 := -2*t3 + 3*t2
	h11 := t3 - t2

	// Basis derivatives with respect to t (chain rule through theta).
	d00 := (6*t2 - 6*theta) / h
	d10 := (3*t2 - 4*theta + 1)
	d01 := (-6*t2 + 6*theta) / h
	d11 := (3*t2 - 2*theta)

	n := len(si.start.X)
	x := make(State, n)
	xdot := make(State, n)
	for i := 0; i < n; i++ {
		x[i] = h00*si.start.X[i] + h10*h*si.start.Xdot[i] +
			h01*si.end.X[i] + h11*h*si.end.Xdot[i]
		xdot[i] = d00*si.start.X[i] + d10*si.start.Xdot[i] +
			d01*si.end.X[i] + d11*si.end.Xdot[i]
	}
	return Snapshot{T: t, X: x, Xdot: xdot}
}

func (si *StepInterpolant) Restrict(t0, t1 float64) Interpolator {
	return &StepInterpolant{
		start: si.StateAt(t0),
		end:   si.StateAt(t1),
	}
}
