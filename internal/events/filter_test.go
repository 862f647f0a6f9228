package events

import (
	"math"
	"testing"

	"github.com/san-kum/propel/internal/traject"
)

// callRecorder is a handler that remembers every event it is given.
type callRecorder struct {
	times      []float64
	increasing []bool
}

func (r *callRecorder) EventOccurred(s traject.Snapshot, d Detector, increasing bool) Action {
	r.times = append(r.times, s.T)
	r.increasing = append(r.increasing, increasing)
	return Continue
}

func sineDetector(rec *callRecorder) *FuncDetector {
	return NewDetector(func(s traject.Snapshot) float64 { return math.Sin(s.T) }).
		WithMaxCheck(0.5).
		WithThreshold(1e-9).
		WithHandler(rec)
}

// Over [0.5, 47.5] the sine has 15 crossings: increasing at 2pi..14pi,
// decreasing at pi..15pi.
func TestSlopeFilterOnlyIncreasing(t *testing.T) {
	rec := &callRecorder{}
	m := startedManager(t, 0.5, 47.5, FilterSlope(sineDetector(rec), OnlyIncreasing))

	if _, err := m.AcceptStep(tspan(0.5, 47.5)); err != nil {
		t.Fatal(err)
	}
	if len(rec.times) != 7 {
		t.Fatalf("handler ran %d times, want the 7 increasing crossings", len(rec.times))
	}
	for i, at := range rec.times {
		want := 2 * float64(i+1) * math.Pi
		if math.Abs(at-want) > 1e-6 {
			t.Errorf("event %d at %g, want %g", i, at, want)
		}
		if !rec.increasing[i] {
			t.Errorf("event %d reported as decreasing", i)
		}
	}
}

func TestSlopeFilterOnlyDecreasing(t *testing.T) {
	rec := &callRecorder{}
	m := startedManager(t, 0.5, 47.5, FilterSlope(sineDetector(rec), OnlyDecreasing))

	if _, err := m.AcceptStep(tspan(0.5, 47.5)); err != nil {
		t.Fatal(err)
	}
	if len(rec.times) != 8 {
		t.Fatalf("handler ran %d times, want the 8 decreasing crossings", len(rec.times))
	}
	for i, at := range rec.times {
		want := (2*float64(i) + 1) * math.Pi
		if math.Abs(at-want) > 1e-6 {
			t.Errorf("event %d at %g, want %g", i, at, want)
		}
		if rec.increasing[i] {
			t.Errorf("event %d reported as increasing", i)
		}
	}
}

// Scanned backward, an increasing crossing still reports as increasing in
// forward time, and the filter still keeps only that polarity.
func TestSlopeFilterBackward(t *testing.T) {
	rec := &callRecorder{}
	m := startedManager(t, 47.5, 0.5, FilterSlope(sineDetector(rec), OnlyIncreasing))

	if _, err := m.AcceptStep(tspan(47.5, 0.5)); err != nil {
		t.Fatal(err)
	}
	if len(rec.times) != 7 {
		t.Fatalf("handler ran %d times, want 7", len(rec.times))
	}
	for i, at := range rec.times {
		want := 2 * float64(7-i) * math.Pi
		if math.Abs(at-want) > 1e-6 {
			t.Errorf("event %d at %g, want %g", i, at, want)
		}
		if !rec.increasing[i] {
			t.Errorf("event %d reported as decreasing", i)
		}
	}
}

// A leg that begins inside the suppressed half-wave has no sign memory to
// start from; the first wanted crossing must still come out exact.
func TestSlopeFilterStartsInSuppressedSpan(t *testing.T) {
	rec := &callRecorder{}
	// sin is negative at t=4, the suppressed side for OnlyIncreasing.
	m := startedManager(t, 4, 14, FilterSlope(sineDetector(rec), OnlyIncreasing))

	if _, err := m.AcceptStep(tspan(4, 14)); err != nil {
		t.Fatal(err)
	}
	want := []float64{2 * math.Pi, 4 * math.Pi}
	if len(rec.times) != len(want) {
		t.Fatalf("handler ran %d times, want %d", len(rec.times), len(want))
	}
	for i, at := range rec.times {
		if math.Abs(at-want[i]) > 1e-6 {
			t.Errorf("event %d at %g, want %g", i, at, want[i])
		}
	}
}
