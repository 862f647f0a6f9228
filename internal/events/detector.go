package events

import "github.com/san-kum/propel/internal/traject"

// Default detection parameters, used by NewDetector.
const (
	DefaultMaxCheck  = 1.0
	DefaultThreshold = 1e-6
	DefaultMaxIter   = 100
)

// Detector pairs a switching function g with its timing parameters and a
// handler. A sign change of g marks an event. No sign structure is assumed:
// multiple roots, flat regions and roots exactly on step boundaries are all
// legal. g must stay finite wherever it is evaluated.
type Detector interface {
	// G is the switching function.
	G(s traject.Snapshot) float64

	// MaxCheck is the maximum interval between two g evaluations while
	// scanning a step. It may depend on the current state.
	MaxCheck(s traject.Snapshot) float64

	// Threshold is the time convergence tolerance of the root search.
	Threshold() float64

	// MaxIter bounds the root solver iterations for one event.
	MaxIter() int

	// EventHandler returns the decision logic for confirmed events.
	EventHandler() Handler

	// Init is called once per propagation leg, before any event search.
	Init(start traject.Snapshot, target float64)
}

// FuncDetector is the concrete leaf detector: a g closure plus parameters.
// The With* modifiers return copies, so a configured detector is immutable
// and safe to share between propagation scenarios (not between concurrent
// legs).
type FuncDetector struct {
	g         func(traject.Snapshot) float64
	maxCheck  func(traject.Snapshot) float64
	threshold float64
	maxIter   int
	handler   Handler
}

// NewDetector builds a detector around g with default parameters and a
// handler that always continues.
func NewDetector(g func(traject.Snapshot) float64) *FuncDetector {
	return &FuncDetector{
		g:         g,
		maxCheck:  func(traject.Snapshot) float64 { return DefaultMaxCheck },
		threshold: DefaultThreshold,
		maxIter:   DefaultMaxIter,
		handler:   OnEvent(Continue),
	}
}

func (d *FuncDetector) WithMaxCheck(interval float64) *FuncDetector {
	c := *d
	c.maxCheck = func(traject.Snapshot) float64 { return interval }
	return &c
}

// WithMaxCheckFunc sets a state-dependent max check interval.
func (d *FuncDetector) WithMaxCheckFunc(fn func(traject.Snapshot) float64) *FuncDetector {
	c := *d
	c.maxCheck = fn
	return &c
}

func (d *FuncDetector) WithThreshold(threshold float64) *FuncDetector {
	c := *d
	c.threshold = threshold
	return &c
}

func (d *FuncDetector) WithMaxIter(n int) *FuncDetector {
	c := *d
	c.maxIter = n
	return &c
}

func (d *FuncDetector) WithHandler(h Handler) *FuncDetector {
	c := *d
	c.handler = h
	return &c
}

func (d *FuncDetector) G(s traject.Snapshot) float64        { return d.g(s) }
func (d *FuncDetector) MaxCheck(s traject.Snapshot) float64 { return d.maxCheck(s) }
func (d *FuncDetector) Threshold() float64                  { return d.threshold }
func (d *FuncDetector) MaxIter() int                        { return d.maxIter }
func (d *FuncDetector) EventHandler() Handler               { return d.handler }

func (d *FuncDetector) Init(start traject.Snapshot, target float64) {}
