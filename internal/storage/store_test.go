package storage

import (
	"math"
	"testing"

	"github.com/san-kum/propel/internal/traject"
)

func sampleRecord() *RunRecord {
	return &RunRecord{
		Times:  []float64{0, 0.5, 1.0},
		States: []traject.State{{0, 1}, {0.5, 0.8}, {1.0, 0.2}},
		Events: []EventRecord{
			{Time: 0.7, Detector: "component[0]=0.7", Increasing: true, Action: "CONTINUE", State: traject.State{0.7, 0.6}},
		},
		Stopped: false,
	}
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	runID, err := store.Save("pendulum", "rk4", 0.01, 1.0, sampleRecord())
	if err != nil {
		t.Fatal(err)
	}

	meta, err := store.Load(runID)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Model != "pendulum" || meta.Integrator != "rk4" {
		t.Errorf("metadata lost fields: %+v", meta)
	}
	if meta.Steps != 3 || meta.Events != 1 {
		t.Errorf("steps=%d events=%d, want 3 and 1", meta.Steps, meta.Events)
	}

	states, times, err := store.LoadStates(runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(states) != 3 || len(times) != 3 {
		t.Fatalf("loaded %d states, %d times, want 3 each", len(states), len(times))
	}
	if math.Abs(states[1][1]-0.8) > 1e-9 {
		t.Errorf("state value = %g, want 0.8", states[1][1])
	}

	evs, err := store.LoadEvents(runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 1 {
		t.Fatalf("loaded %d events, want 1", len(evs))
	}
	if evs[0].Detector != "component[0]=0.7" || !evs[0].Increasing {
		t.Errorf("event lost fields: %+v", evs[0])
	}
	if math.Abs(evs[0].Time-0.7) > 1e-9 {
		t.Errorf("event time = %g, want 0.7", evs[0].Time)
	}
	if len(evs[0].State) != 2 {
		t.Errorf("event state = %v, want 2 components", evs[0].State)
	}
}

func TestStoreList(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Save("pendulum", "rk4", 0.01, 1.0, sampleRecord()); err != nil {
		t.Fatal(err)
	}
	runs, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Errorf("listed %d runs, want 1", len(runs))
	}
}

func TestStoreListEmpty(t *testing.T) {
	store := New(t.TempDir() + "/missing")
	runs, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("listed %d runs from a missing directory, want 0", len(runs))
	}
}

func TestRecordObserver(t *testing.T) {
	var rec Record
	rec.OnStep(traject.Snapshot{T: 1, X: traject.State{2}})
	rec.OnStep(traject.Snapshot{T: 2, X: traject.State{3}})

	if len(rec.Times) != 2 || rec.Times[1] != 2 {
		t.Errorf("times = %v, want [1 2]", rec.Times)
	}
	if rec.States[0][0] != 2 {
		t.Errorf("states = %v", rec.States)
	}
}
