package events

import "github.com/san-kum/propel/internal/traject"

// LogEntry is one recorded event observation.
type LogEntry struct {
	Time       float64
	Detector   Detector
	Increasing bool
	State      traject.Snapshot
}

// Recorder transparently logs the events of the detectors it monitors. It
// changes nothing about detection: the wrapped detector's parameters,
// switching function and handler decisions all pass through unchanged.
type Recorder struct {
	entries []LogEntry
}

func NewRecorder() *Recorder { return &Recorder{} }

// Monitor returns a detector equivalent to d whose events are additionally
// recorded. Entries keep the identity of the monitored detector.
func (r *Recorder) Monitor(d Detector) Detector {
	return &monitored{raw: d, rec: r}
}

// Entries returns the recorded events in confirmation order.
func (r *Recorder) Entries() []LogEntry {
	out := make([]LogEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *Recorder) Clear() { r.entries = r.entries[:0] }

type monitored struct {
	raw Detector
	rec *Recorder
}

func (m *monitored) G(s traject.Snapshot) float64        { return m.raw.G(s) }
func (m *monitored) MaxCheck(s traject.Snapshot) float64 { return m.raw.MaxCheck(s) }
func (m *monitored) Threshold() float64                  { return m.raw.Threshold() }
func (m *monitored) MaxIter() int                        { return m.raw.MaxIter() }
func (m *monitored) Init(start traject.Snapshot, target float64) {
	m.raw.Init(start, target)
}

func (m *monitored) EventHandler() Handler { return recordingHandler{m: m} }

type recordingHandler struct {
	m *monitored
}

func (h recordingHandler) EventOccurred(s traject.Snapshot, d Detector, increasing bool) Action {
	h.m.rec.entries = append(h.m.rec.entries, LogEntry{
		Time:       s.T,
		Detector:   h.m.raw,
		Increasing: increasing,
		State:      s,
	})
	return h.m.raw.EventHandler().EventOccurred(s, d, increasing)
}

func (h recordingHandler) ResetState(d Detector, s traject.Snapshot) (traject.Snapshot, bool) {
	return delegateReset(h.m.raw.EventHandler(), d, s)
}

func (h recordingHandler) Init(start traject.Snapshot, target float64) {
	if init, ok := h.m.raw.EventHandler().(Initializer); ok {
		init.Init(start, target)
	}
}

func (h recordingHandler) Finish(final traject.Snapshot) {
	if fin, ok := h.m.raw.EventHandler().(Finisher); ok {
		fin.Finish(final)
	}
}
