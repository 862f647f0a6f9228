package events

import "math"

// HistorySize bounds how many transformer transitions a filtering decorator
// remembers. Queries older than the remembered window fall back to the
// oldest entry, which may extrapolate the wrong sign; this is a documented
// bounded-memory trade-off, not a defect.
const HistorySize = 128

// transformer maps a raw switching function value to the filtered one.
// plus passes the value through, min and max clamp away one polarity. The
// clamped spans sit exactly at zero, which the search machinery treats as a
// flat span rather than a string of roots.
type transformer int

const (
	uninitialized transformer = iota
	plus
	clampMin // min(g, 0): no value above zero
	clampMax // max(g, 0): no value below zero
)

func (tr transformer) apply(g float64) float64 {
	switch tr {
	case plus:
		return g
	case clampMin:
		return math.Min(g, 0)
	case clampMax:
		return math.Max(g, 0)
	default:
		return 0
	}
}

type transition struct {
	t  float64
	tr transformer
}

// history is the bounded record of transformer transitions, ordered in scan
// direction. When full, the oldest transition is dropped.
type history struct {
	entries []transition
	forward bool
}

func (h *history) reset(forward bool) {
	h.entries = h.entries[:0]
	h.forward = forward
}

func (h *history) record(t float64, tr transformer) {
	if len(h.entries) == HistorySize {
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:HistorySize-1]
	}
	h.entries = append(h.entries, transition{t: t, tr: tr})
}

// at returns the transformer applicable at time t. Times before the
// remembered window use the oldest entry.
func (h *history) at(t float64) transformer {
	for i := len(h.entries) - 1; i >= 0; i-- {
		e := h.entries[i]
		if (h.forward && e.t <= t) || (!h.forward && e.t >= t) {
			return e.tr
		}
	}
	if len(h.entries) > 0 {
		return h.entries[0].tr
	}
	return uninitialized
}
