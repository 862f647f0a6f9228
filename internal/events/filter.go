package events

import "github.com/san-kum/propel/internal/traject"

// FilterKind selects which polarity of events a SlopeFilter lets through.
type FilterKind int

const (
	OnlyIncreasing FilterKind = iota
	OnlyDecreasing
)

// SlopeFilter wraps a detector and suppresses events of one polarity. The
// filtered switching function clamps the half-wave leading up to a wanted
// crossing flat to zero and passes the raw value through after it, so the
// wanted crossing is the exact instant the filtered function leaves the
// flat span while the unwanted crossing produces no sign change at all.
// Clamp transitions are recorded in a bounded history so re-evaluations
// behind the scan front stay consistent. Queries older than the history
// window reuse the oldest remembered transition and may extrapolate the
// wrong sign; this is the documented cost of keeping the memory bounded.
type SlopeFilter struct {
	raw  Detector
	kind FilterKind

	current transformer
	hist    history
	extreme float64
	forward bool
	started bool
}

// FilterSlope wraps raw so only events of the given polarity reach its
// handler.
func FilterSlope(raw Detector, kind FilterKind) *SlopeFilter {
	return &SlopeFilter{raw: raw, kind: kind}
}

func (f *SlopeFilter) Init(start traject.Snapshot, target float64) {
	f.forward = target >= start.T
	f.current = uninitialized
	f.hist.reset(f.forward)
	f.started = false
	f.raw.Init(start, target)
}

func (f *SlopeFilter) G(s traject.Snapshot) float64 {
	g := f.raw.G(s)
	leading := !f.started ||
		(f.forward && s.T >= f.extreme) ||
		(!f.forward && s.T <= f.extreme)
	if !leading {
		return f.hist.at(s.T).apply(g)
	}

	next := f.next(g)
	if next != f.current {
		f.current = next
		f.hist.record(s.T, next)
	}
	f.extreme = s.T
	f.started = true
	return next.apply(g)
}

// next advances the transformer at the scan front. The half-wave before a
// wanted crossing is clamped flat to zero and the half-wave after it passes
// through, so the clamp releases exactly at the wanted root (the clamp and
// the raw value agree there) and re-engages when the unwanted crossing has
// passed. Touching the flat span from the pass-through side leaves a
// boundary artifact of the unwanted polarity, which the handler drops.
func (f *SlopeFilter) next(g float64) transformer {
	// An increasing event scanned backward looks like a decreasing one,
	// so the table is chosen per scan direction.
	wantUp := (f.kind == OnlyIncreasing) == f.forward
	if wantUp {
		switch f.current {
		case uninitialized, clampMax:
			if g > 0 {
				return plus
			}
			return clampMax
		case plus:
			if g < 0 {
				return clampMax
			}
		}
		return f.current
	}
	switch f.current {
	case uninitialized, clampMin:
		if g < 0 {
			return plus
		}
		return clampMin
	case plus:
		if g > 0 {
			return clampMin
		}
	}
	return f.current
}

func (f *SlopeFilter) MaxCheck(s traject.Snapshot) float64 { return f.raw.MaxCheck(s) }
func (f *SlopeFilter) Threshold() float64                  { return f.raw.Threshold() }
func (f *SlopeFilter) MaxIter() int                        { return f.raw.MaxIter() }

func (f *SlopeFilter) EventHandler() Handler { return slopeHandler{f: f} }

// slopeHandler drops events of the unwanted polarity (clamp artifacts) and
// forwards the rest to the raw detector's handler.
type slopeHandler struct {
	f *SlopeFilter
}

func (h slopeHandler) EventOccurred(s traject.Snapshot, d Detector, increasing bool) Action {
	if increasing != (h.f.kind == OnlyIncreasing) {
		return Continue
	}
	return h.f.raw.EventHandler().EventOccurred(s, d, increasing)
}

func (h slopeHandler) ResetState(d Detector, s traject.Snapshot) (traject.Snapshot, bool) {
	return delegateReset(h.f.raw.EventHandler(), d, s)
}

func (h slopeHandler) Init(start traject.Snapshot, target float64) {
	if init, ok := h.f.raw.EventHandler().(Initializer); ok {
		init.Init(start, target)
	}
}

func (h slopeHandler) Finish(final traject.Snapshot) {
	if fin, ok := h.f.raw.EventHandler().(Finisher); ok {
		fin.Finish(final)
	}
}

// delegateReset forwards a reset request to h when it is a Resetter;
// otherwise the replacement state is undefined.
func delegateReset(h Handler, d Detector, s traject.Snapshot) (traject.Snapshot, bool) {
	if r, ok := h.(Resetter); ok {
		return r.ResetState(d, s)
	}
	return traject.Snapshot{}, false
}
