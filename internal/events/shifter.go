package events

import "github.com/san-kum/propel/internal/traject"

// Shifter reports the wrapped detector's events offset in time, with
// independent offsets per polarity: an unshifted increasing event at t is
// reported at t+incShift, a decreasing one at t+decShift, each keeping its
// original polarity.
//
// The shifted switching functions are combined by a cancellation-safe
// min/max, which is exact as long as consecutive raw events are separated
// by more than |incShift-decShift|.
//
// Evaluating g at a shifted instant needs a state for that instant. The
// default shift keeps the state vector and moves only the time stamp, which
// is exact for time-driven switching functions; state-driven ones should
// supply a proper extrapolation via WithShiftFunc.
type Shifter struct {
	raw      Detector
	incShift float64
	decShift float64
	shift    func(s traject.Snapshot, dt float64) traject.Snapshot
}

// ShiftEvents wraps raw with per-polarity time offsets.
func ShiftEvents(raw Detector, incShift, decShift float64) *Shifter {
	return &Shifter{
		raw:      raw,
		incShift: incShift,
		decShift: decShift,
		shift: func(s traject.Snapshot, dt float64) traject.Snapshot {
			return traject.Snapshot{T: s.T + dt, X: s.X, Xdot: s.Xdot}
		},
	}
}

// WithShiftFunc sets the state extrapolation used to evaluate the raw
// switching function at shifted instants.
func (f *Shifter) WithShiftFunc(fn func(s traject.Snapshot, dt float64) traject.Snapshot) *Shifter {
	c := *f
	c.shift = fn
	return &c
}

func (f *Shifter) G(s traject.Snapshot) float64 {
	gi := f.raw.G(f.shift(s, -f.incShift))
	if f.incShift == f.decShift {
		return gi
	}
	gd := f.raw.G(f.shift(s, -f.decShift))
	if f.incShift <= f.decShift {
		if gi > gd {
			return gi
		}
		return gd
	}
	if gi < gd {
		return gi
	}
	return gd
}

func (f *Shifter) MaxCheck(s traject.Snapshot) float64 { return f.raw.MaxCheck(s) }
func (f *Shifter) Threshold() float64                  { return f.raw.Threshold() }
func (f *Shifter) MaxIter() int                        { return f.raw.MaxIter() }

func (f *Shifter) Init(start traject.Snapshot, target float64) {
	f.raw.Init(start, target)
}

func (f *Shifter) EventHandler() Handler { return shifterHandler{f: f} }

// shifterHandler forwards shifted events to the raw handler; state resets
// delegate too and apply at the shifted (reported) time.
type shifterHandler struct {
	f *Shifter
}

func (h shifterHandler) EventOccurred(s traject.Snapshot, d Detector, increasing bool) Action {
	return h.f.raw.EventHandler().EventOccurred(s, d, increasing)
}

func (h shifterHandler) ResetState(d Detector, s traject.Snapshot) (traject.Snapshot, bool) {
	return delegateReset(h.f.raw.EventHandler(), d, s)
}

func (h shifterHandler) Init(start traject.Snapshot, target float64) {
	if init, ok := h.f.raw.EventHandler().(Initializer); ok {
		init.Init(start, target)
	}
}

func (h shifterHandler) Finish(final traject.Snapshot) {
	if fin, ok := h.f.raw.EventHandler().(Finisher); ok {
		fin.Finish(final)
	}
}
