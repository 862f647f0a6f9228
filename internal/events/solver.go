package events

import "math"

// hardIterCap bounds solver iterations regardless of configuration, so a
// threshold finer than floating-point resolution still terminates.
const hardIterCap = 200

// Solver locates a sign change of a scalar function inside a known bracket.
// It mixes bisection (guaranteed convergence) with secant steps (speed) and
// stops when the bracket width falls below Threshold or MaxIter iterations
// were spent. Running out of iterations is not an error: the best estimate
// is accepted and OnNonConverged, when set, is told about it.
type Solver struct {
	Threshold float64
	MaxIter   int

	// OnNonConverged is called with the final bracket when MaxIter was
	// exhausted before the bracket shrank to Threshold. Nil means the
	// best estimate is accepted silently.
	OnNonConverged func(ta, tb float64)
}

// Root refines the bracket [ta, tb] (in either time direction) where
// f(ta)=ga and f(tb)=gb lie on opposite sides of zero, and returns the root
// estimate. Probes that hit zero exactly are kept on the ta side, so a
// bracket whose left part sits flat at zero converges to the instant the
// function leaves zero rather than to an arbitrary point of the flat span.
func (s Solver) Root(f func(float64) float64, ta, tb, ga, gb float64) float64 {
	if gb == 0 {
		return tb
	}

	maxIter := s.MaxIter
	if maxIter <= 0 || maxIter > hardIterCap {
		maxIter = hardIterCap
	}

	lo, hi := math.Min(ta, tb), math.Max(ta, tb)

	for i := 0; i < maxIter && math.Abs(tb-ta) > s.Threshold; i++ {
		// Secant candidate, falling back to bisection whenever the
		// secant step degenerates or leaves the bracket.
		var tc float64
		if gb != ga {
			tc = tb - gb*(tb-ta)/(gb-ga)
		}
		mid := 0.5 * (ta + tb)
		if gb == ga || tc <= lo || tc >= hi {
			tc = mid
		}
		if tc == ta || tc == tb {
			// No representable point strictly inside: the bracket
			// is at floating-point resolution already.
			break
		}

		gc := f(tc)
		if gc == 0 || (gc > 0) != (gb > 0) {
			ta, ga = tc, gc
		} else {
			tb, gb = tc, gc
		}
		lo, hi = math.Min(ta, tb), math.Max(ta, tb)
	}

	if math.Abs(tb-ta) > s.Threshold && s.OnNonConverged != nil {
		s.OnNonConverged(ta, tb)
	}
	return 0.5 * (ta + tb)
}
