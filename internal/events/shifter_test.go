package events

import (
	"math"
	"testing"
)

// The sine's decreasing crossing at pi and increasing crossing at 2pi,
// shifted by -0.20 and +0.15 respectively, must come out at pi-0.20 and
// 2pi+0.15 with their polarities intact.
func TestShifterPerPolarityOffsets(t *testing.T) {
	rec := &callRecorder{}
	m := startedManager(t, 0.5, 7, ShiftEvents(sineDetector(rec), 0.15, -0.20))

	out, err := m.AcceptStep(tspan(0.5, 7))
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Events) != 2 {
		t.Fatalf("got %d events, want 2", len(out.Events))
	}
	if at := out.Events[0].Time; math.Abs(at-(math.Pi-0.20)) > 1e-6 {
		t.Errorf("decreasing event at %g, want pi-0.20 = %g", at, math.Pi-0.20)
	}
	if out.Events[0].Increasing {
		t.Error("first event must keep its decreasing polarity")
	}
	if at := out.Events[1].Time; math.Abs(at-(2*math.Pi+0.15)) > 1e-6 {
		t.Errorf("increasing event at %g, want 2pi+0.15 = %g", at, 2*math.Pi+0.15)
	}
	if !out.Events[1].Increasing {
		t.Error("second event must keep its increasing polarity")
	}
	// The raw handler sees the shifted instants too.
	if len(rec.times) != 2 {
		t.Fatalf("raw handler ran %d times, want 2", len(rec.times))
	}
}

func TestShifterEqualOffsets(t *testing.T) {
	rec := &callRecorder{}
	m := startedManager(t, 1, 8, ShiftEvents(sineDetector(rec), 0.5, 0.5))

	out, err := m.AcceptStep(tspan(1, 8))
	if err != nil {
		t.Fatal(err)
	}
	want := []struct {
		at         float64
		increasing bool
	}{
		{math.Pi + 0.5, false},
		{2*math.Pi + 0.5, true},
	}
	if len(out.Events) != len(want) {
		t.Fatalf("got %d events, want %d", len(out.Events), len(want))
	}
	for i, w := range want {
		if math.Abs(out.Events[i].Time-w.at) > 1e-6 {
			t.Errorf("event %d at %g, want %g", i, out.Events[i].Time, w.at)
		}
		if out.Events[i].Increasing != w.increasing {
			t.Errorf("event %d increasing = %v, want %v", i, out.Events[i].Increasing, w.increasing)
		}
	}
}

func TestShifterZeroOffsetsMatchRaw(t *testing.T) {
	rec := &callRecorder{}
	m := startedManager(t, 0.5, 7, ShiftEvents(sineDetector(rec), 0, 0))

	out, err := m.AcceptStep(tspan(0.5, 7))
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{math.Pi, 2 * math.Pi}
	if len(out.Events) != len(want) {
		t.Fatalf("got %d events, want %d", len(out.Events), len(want))
	}
	for i, w := range want {
		if math.Abs(out.Events[i].Time-w) > 1e-6 {
			t.Errorf("event %d at %g, want %g", i, out.Events[i].Time, w)
		}
	}
}
