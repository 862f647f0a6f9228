package events

import "github.com/san-kum/propel/internal/traject"

// EnablingFilter gates a detector behind an external predicate: sign changes
// register only while the predicate holds. While disabled the filtered
// function holds the raw value observed at the disable instant, so it keeps
// a constant sign and produces no crossings of its own. If the raw function
// has a net sign change across a disabled span, one crossing surfaces at the
// instant the predicate enables again; a crossing that reverses itself while
// disabled surfaces not at all, and its handler never runs.
//
// Predicate transitions are kept in a bounded history of HistorySize
// entries so that re-evaluations behind the scan front stay consistent.
// Queries older than the remembered window reuse the oldest entry.
type EnablingFilter struct {
	raw  Detector
	pred func(traject.Snapshot) bool

	entries []enableSpan
	extreme float64
	forward bool
	started bool
}

// enableSpan is one predicate transition: from t on (in scan direction) the
// predicate held enabled, or the filtered value was frozen at held.
type enableSpan struct {
	t       float64
	enabled bool
	held    float64
}

// FilterEnabling wraps raw so events are detected only while pred holds.
func FilterEnabling(raw Detector, pred func(traject.Snapshot) bool) *EnablingFilter {
	return &EnablingFilter{raw: raw, pred: pred}
}

func (f *EnablingFilter) Init(start traject.Snapshot, target float64) {
	f.forward = target >= start.T
	f.entries = f.entries[:0]
	f.started = false
	f.raw.Init(start, target)
}

func (f *EnablingFilter) G(s traject.Snapshot) float64 {
	g := f.raw.G(s)
	leading := !f.started ||
		(f.forward && s.T >= f.extreme) ||
		(!f.forward && s.T <= f.extreme)
	if !leading {
		return f.valueAt(s.T, g)
	}

	enabled := f.pred(s)
	if !f.started || enabled != f.entries[len(f.entries)-1].enabled {
		f.record(enableSpan{t: s.T, enabled: enabled, held: g})
	}
	f.extreme = s.T
	f.started = true
	if enabled {
		return g
	}
	return f.entries[len(f.entries)-1].held
}

func (f *EnablingFilter) record(e enableSpan) {
	if len(f.entries) == HistorySize {
		copy(f.entries, f.entries[1:])
		f.entries = f.entries[:HistorySize-1]
	}
	f.entries = append(f.entries, e)
}

// valueAt evaluates the filtered function behind the scan front: the raw
// value inside enabled spans, the frozen value inside disabled ones.
func (f *EnablingFilter) valueAt(t, g float64) float64 {
	for i := len(f.entries) - 1; i >= 0; i-- {
		e := f.entries[i]
		if (f.forward && e.t <= t) || (!f.forward && e.t >= t) {
			if e.enabled {
				return g
			}
			return e.held
		}
	}
	if len(f.entries) > 0 {
		if e := f.entries[0]; !e.enabled {
			return e.held
		}
	}
	return g
}

func (f *EnablingFilter) MaxCheck(s traject.Snapshot) float64 { return f.raw.MaxCheck(s) }
func (f *EnablingFilter) Threshold() float64                  { return f.raw.Threshold() }
func (f *EnablingFilter) MaxIter() int                        { return f.raw.MaxIter() }

func (f *EnablingFilter) EventHandler() Handler { return enablingHandler{f: f} }

// enablingHandler forwards to the raw detector's handler. The frozen spans
// cannot produce roots of their own, so every confirmed event is genuine;
// in particular an event resolved just below the enable instant must not be
// re-checked against the predicate, which still reads disabled there.
type enablingHandler struct {
	f *EnablingFilter
}

func (h enablingHandler) EventOccurred(s traject.Snapshot, d Detector, increasing bool) Action {
	return h.f.raw.EventHandler().EventOccurred(s, d, increasing)
}

func (h enablingHandler) ResetState(d Detector, s traject.Snapshot) (traject.Snapshot, bool) {
	return delegateReset(h.f.raw.EventHandler(), d, s)
}

func (h enablingHandler) Init(start traject.Snapshot, target float64) {
	if init, ok := h.f.raw.EventHandler().(Initializer); ok {
		init.Init(start, target)
	}
}

func (h enablingHandler) Finish(final traject.Snapshot) {
	if fin, ok := h.f.raw.EventHandler().(Finisher); ok {
		fin.Finish(final)
	}
}
