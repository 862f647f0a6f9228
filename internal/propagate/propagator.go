package propagate

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/propel/internal/events"
	"github.com/san-kum/propel/internal/traject"
)

type Config struct {
	Dt            float64
	Tolerance     float64
	MaxDt         float64
	MinDt         float64
	Adaptive      bool
	ValidateState bool
	MaxSteps      int
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.01,
		Tolerance:     1e-6,
		MaxDt:         0.1,
		MinDt:         1e-8,
		Adaptive:      false,
		ValidateState: true,
		MaxSteps:      10_000_000,
	}
}

// Propagator advances a system step by step and coordinates event detection
// on every accepted step: the step's dense output goes to the event
// manager, and the outcome decides whether the step stands, is truncated,
// or is replaced by a reset state.
//
// A Propagator serves one propagation leg at a time and is not safe for
// concurrent use.
type Propagator struct {
	sys       traject.System
	integ     traject.Integrator
	manager   *events.Manager
	observers []traject.Observer
	cfg       Config

	current   traject.Snapshot
	legActive bool
	stopped   bool
	occurred  []events.Occurrence
}

// New builds a propagator positioned at state x0 at time t0.
func New(sys traject.System, integ traject.Integrator, x0 traject.State, t0 float64, cfg Config) *Propagator {
	p := &Propagator{
		sys:     sys,
		integ:   integ,
		manager: events.NewManager(),
		cfg:     cfg,
	}
	p.current = p.snapshot(t0, x0)
	return p
}

// Manager exposes the event coordinator, e.g. to tune the reset cap or the
// non-convergence policy.
func (p *Propagator) Manager() *events.Manager { return p.manager }

func (p *Propagator) RegisterDetector(d events.Detector) { p.manager.Register(d) }

func (p *Propagator) RemoveAllDetectors() { p.manager.Clear() }

func (p *Propagator) AddObserver(o traject.Observer) {
	p.observers = append(p.observers, o)
}

// Current returns the propagator's present state.
func (p *Propagator) Current() traject.Snapshot { return p.current }

// Stopped reports whether the last propagation ended on a Stop action
// rather than by reaching its target.
func (p *Propagator) Stopped() bool { return p.stopped }

// Events returns the events confirmed during the last Propagate call.
func (p *Propagator) Events() []events.Occurrence { return p.occurred }

// Reset repositions the propagator at a fresh initial state and begins a
// new leg: detectors are reinitialized on the next Propagate call.
func (p *Propagator) Reset(x0 traject.State, t0 float64) {
	p.current = p.snapshot(t0, x0)
	p.legActive = false
}

// Propagate advances until target or until a handler stops the run, and
// returns the final state. After a stop the same call can be issued again
// with a new target: detectors keep their bookkeeping, so no event is
// reported twice.
func (p *Propagator) Propagate(ctx context.Context, target float64) (traject.Snapshot, error) {
	if err := p.validate(target); err != nil {
		return p.current, err
	}
	p.occurred = p.occurred[:0]
	p.stopped = false

	if target == p.current.T {
		return p.current, nil
	}
	forward := target > p.current.T
	dir := 1.0
	if !forward {
		dir = -1.0
	}

	if !p.legActive {
		if err := p.manager.StartLeg(p.current, target); err != nil {
			return p.current, err
		}
		p.legActive = true
	}

	dt := dir * p.cfg.Dt
	steps := 0

	for dir*(target-p.current.T) > 0 {
		select {
		case <-ctx.Done():
			return p.current, ctx.Err()
		default:
		}
		if steps++; steps > p.cfg.MaxSteps {
			return p.current, &traject.PropagationError{
				Time:    p.current.T,
				Wrapped: fmt.Errorf("step limit %d exceeded", p.cfg.MaxSteps),
			}
		}

		if remaining := target - p.current.T; math.Abs(remaining) < math.Abs(dt) {
			dt = remaining
		}

		end, dtNext, err := p.step(p.current, dt)
		if err != nil {
			return p.current, err
		}
		if p.cfg.ValidateState && !end.X.IsValid() {
			return p.current, &traject.PropagationError{
				Time:    end.T,
				Wrapped: traject.ErrInvalidState,
			}
		}

		interp := traject.NewStepInterpolant(p.current, end)
		outcome, err := p.manager.AcceptStep(interp)
		if err != nil {
			return p.current, err
		}
		p.occurred = append(p.occurred, outcome.Events...)

		switch {
		case outcome.Stop:
			p.current = interp.StateAt(outcome.TruncatedAt)
			p.stopped = true
			p.notify()
			return p.current, nil

		case outcome.NewState != nil:
			// Step remainder is discarded; restart from the
			// replacement state with fresh derivatives.
			p.current = p.snapshot(outcome.NewState.T, outcome.NewState.X)

		case outcome.DerivativesChanged:
			cut := interp.StateAt(outcome.TruncatedAt)
			p.current = p.snapshot(cut.T, cut.X)

		default:
			p.current = end
		}
		p.notify()
		dt = dtNext
	}

	p.manager.FinishLeg(p.current)
	p.legActive = false
	return p.current, nil
}

// step advances one integration step from s by dt and suggests the next
// step size (adaptive integrators may grow or shrink it).
func (p *Propagator) step(s traject.Snapshot, dt float64) (traject.Snapshot, float64, error) {
	if p.cfg.Adaptive {
		if adaptive, ok := p.integ.(traject.AdaptiveIntegrator); ok {
			newX, dtNext, err := adaptive.StepAdaptive(p.sys, s.X, s.T, dt, p.cfg.Tolerance)
			if err != nil {
				return traject.Snapshot{}, 0, err
			}
			dtNext = clampStep(dtNext, dt, p.cfg.MinDt, p.cfg.MaxDt)
			return p.snapshot(s.T+dt, newX), dtNext, nil
		}
	}
	newX := p.integ.Step(p.sys, s.X, s.T, dt)
	return p.snapshot(s.T+dt, newX), dt, nil
}

func (p *Propagator) snapshot(t float64, x traject.State) traject.Snapshot {
	return traject.Snapshot{T: t, X: x, Xdot: p.sys.Derive(x, t)}
}

func (p *Propagator) notify() {
	for _, o := range p.observers {
		o.OnStep(p.current)
	}
}

func (p *Propagator) validate(target float64) error {
	if math.IsNaN(target) || math.IsInf(target, 0) {
		return traject.ErrInvalidTarget
	}
	if p.cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", p.cfg.Dt)
	}
	if p.cfg.Adaptive && p.cfg.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive for adaptive stepping")
	}
	if len(p.current.X) != p.sys.StateDim() {
		return traject.ErrDimensionMismatch
	}
	return nil
}

// clampStep bounds an adaptive step suggestion while preserving direction.
func clampStep(suggested, previous, min, max float64) float64 {
	sign := 1.0
	if previous < 0 {
		sign = -1.0
	}
	mag := math.Abs(suggested)
	if mag < min {
		mag = min
	}
	if max > 0 && mag > max {
		mag = max
	}
	return sign * mag
}
