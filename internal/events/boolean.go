package events

import "github.com/san-kum/propel/internal/traject"

// BooleanDetector combines detectors with AND/OR semantics:
//
//	g_or  = max(g1, g2, ...)
//	g_and = min(g1, g2, ...)
//
// The extrema are taken by branch comparison, never by arithmetic
// combination, so near-zero floating noise in one operand cannot cancel
// against a decisively-signed other operand and flip the combination.
type BooleanDetector struct {
	dets    []Detector
	conj    bool
	handler Handler
}

// Or fires while at least one wrapped detector's g is positive. At least
// one operand is required.
func Or(dets ...Detector) *BooleanDetector {
	if len(dets) == 0 {
		panic("events: Or needs at least one detector")
	}
	return &BooleanDetector{dets: dets, handler: OnEvent(Continue)}
}

// And fires only while every wrapped detector's g is positive. At least
// one operand is required.
func And(dets ...Detector) *BooleanDetector {
	if len(dets) == 0 {
		panic("events: And needs at least one detector")
	}
	return &BooleanDetector{dets: dets, conj: true, handler: OnEvent(Continue)}
}

func (b *BooleanDetector) WithHandler(h Handler) *BooleanDetector {
	c := *b
	c.handler = h
	return &c
}

func (b *BooleanDetector) G(s traject.Snapshot) float64 {
	v := b.dets[0].G(s)
	for _, d := range b.dets[1:] {
		g := d.G(s)
		if b.conj {
			if g < v {
				v = g
			}
		} else {
			if g > v {
				v = g
			}
		}
	}
	return v
}

// MaxCheck and Threshold take the tightest of the operands, MaxIter the
// largest, so the combination is never coarser than any of its parts.
func (b *BooleanDetector) MaxCheck(s traject.Snapshot) float64 {
	v := b.dets[0].MaxCheck(s)
	for _, d := range b.dets[1:] {
		if c := d.MaxCheck(s); c < v {
			v = c
		}
	}
	return v
}

func (b *BooleanDetector) Threshold() float64 {
	v := b.dets[0].Threshold()
	for _, d := range b.dets[1:] {
		if t := d.Threshold(); t < v {
			v = t
		}
	}
	return v
}

func (b *BooleanDetector) MaxIter() int {
	v := b.dets[0].MaxIter()
	for _, d := range b.dets[1:] {
		if n := d.MaxIter(); n > v {
			v = n
		}
	}
	return v
}

func (b *BooleanDetector) EventHandler() Handler { return b.handler }

func (b *BooleanDetector) Init(start traject.Snapshot, target float64) {
	for _, d := range b.dets {
		d.Init(start, target)
	}
}

// NotDetector inverts a detector's switching function. Events keep their
// location but flip polarity.
type NotDetector struct {
	raw Detector
}

func Not(raw Detector) *NotDetector { return &NotDetector{raw: raw} }

func (n *NotDetector) G(s traject.Snapshot) float64        { return -n.raw.G(s) }
func (n *NotDetector) MaxCheck(s traject.Snapshot) float64 { return n.raw.MaxCheck(s) }
func (n *NotDetector) Threshold() float64                  { return n.raw.Threshold() }
func (n *NotDetector) MaxIter() int                        { return n.raw.MaxIter() }
func (n *NotDetector) EventHandler() Handler               { return n.raw.EventHandler() }
func (n *NotDetector) Init(start traject.Snapshot, target float64) {
	n.raw.Init(start, target)
}
