package events

import "github.com/san-kum/propel/internal/traject"

// Handler is the caller-supplied decision logic invoked when an event is
// confirmed. The detector passed in is the one the caller registered, so a
// single handler can serve several detectors.
type Handler interface {
	EventOccurred(s traject.Snapshot, d Detector, increasing bool) Action
}

// Resetter is an optional Handler capability consulted when EventOccurred
// returns ResetState. The bool result reports whether the replacement state
// is defined; returning false is a fatal usage error.
type Resetter interface {
	ResetState(d Detector, s traject.Snapshot) (traject.Snapshot, bool)
}

// Initializer is an optional Handler capability called once per propagation
// leg before any event is searched.
type Initializer interface {
	Init(start traject.Snapshot, target float64)
}

// Finisher is an optional Handler capability called once when a propagation
// leg ends.
type Finisher interface {
	Finish(final traject.Snapshot)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(s traject.Snapshot, d Detector, increasing bool) Action

func (f HandlerFunc) EventOccurred(s traject.Snapshot, d Detector, increasing bool) Action {
	return f(s, d, increasing)
}

// OnEvent returns a handler that always answers with the given action.
func OnEvent(a Action) Handler {
	return HandlerFunc(func(traject.Snapshot, Detector, bool) Action {
		return a
	})
}
