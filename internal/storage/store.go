package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/propel/internal/traject"
)

// Store persists propagation runs on disk, one directory per run:
// metadata.json, the sampled trajectory in states.csv and the resolved
// events in events.csv.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string    `json:"id"`
	Model      string    `json:"model"`
	Timestamp  time.Time `json:"timestamp"`
	Dt         float64   `json:"dt"`
	Duration   float64   `json:"duration"`
	Integrator string    `json:"integrator"`
	Steps      int       `json:"steps"`
	Events     int       `json:"events"`
	Stopped    bool      `json:"stopped"`
}

// EventRecord is one resolved event, flattened for persistence.
type EventRecord struct {
	Time       float64
	Detector   string
	Increasing bool
	Action     string
	State      traject.State
}

// RunRecord is everything a finished propagation leaves behind.
type RunRecord struct {
	Times   []float64
	States  []traject.State
	Events  []EventRecord
	Stopped bool
}

// Record is a trajectory-collecting observer; pass it to the propagator
// and hand the result to Save.
type Record struct {
	RunRecord
}

func (r *Record) OnStep(s traject.Snapshot) {
	r.Times = append(r.Times, s.T)
	r.States = append(r.States, s.X.Clone())
}

func (s *Store) Save(model, integrator string, dt, duration float64, rec *RunRecord) (string, error) {
	runID := fmt.Sprintf("%s_%d", model, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Model:      model,
		Timestamp:  time.Now(),
		Dt:         dt,
		Duration:   duration,
		Integrator: integrator,
		Steps:      len(rec.Times),
		Events:     len(rec.Events),
		Stopped:    rec.Stopped,
	}
	if err := s.writeMetadata(runDir, meta); err != nil {
		return "", err
	}
	if err := s.writeStates(runDir, rec); err != nil {
		return "", err
	}
	if err := s.writeEvents(runDir, rec.Events); err != nil {
		return "", err
	}
	return runID, nil
}

func (s *Store) writeMetadata(runDir string, meta RunMetadata) error {
	f, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func (s *Store) writeStates(runDir string, rec *RunRecord) error {
	f, err := os.Create(filepath.Join(runDir, "states.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if len(rec.States) == 0 {
		return nil
	}

	header := []string{"time"}
	for i := range rec.States[0] {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range rec.States {
		row := []string{strconv.FormatFloat(rec.Times[i], 'f', 9, 64)}
		for _, val := range rec.States[i] {
			row = append(row, strconv.FormatFloat(val, 'f', 9, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) writeEvents(runDir string, evs []EventRecord) error {
	f, err := os.Create(filepath.Join(runDir, "events.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"time", "detector", "increasing", "action", "state"}); err != nil {
		return err
	}
	for _, ev := range evs {
		stateJSON, err := json.Marshal(ev.State)
		if err != nil {
			return err
		}
		row := []string{
			strconv.FormatFloat(ev.Time, 'f', 9, 64),
			ev.Detector,
			strconv.FormatBool(ev.Increasing),
			ev.Action,
			string(stateJSON),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadStates(runID string) ([][]float64, []float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return [][]float64{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	states := make([][]float64, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) == 0 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		state := make([]float64, 0, len(record)-1)
		for _, field := range record[1:] {
			val, err := strconv.ParseFloat(field, 64)
			if err != nil {
				continue
			}
			state = append(state, val)
		}
		times = append(times, t)
		states = append(states, state)
	}
	return states, times, nil
}

func (s *Store) LoadEvents(runID string) ([]EventRecord, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "events.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []EventRecord{}, nil
	}

	evs := make([]EventRecord, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 5 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		increasing, _ := strconv.ParseBool(record[2])
		var state traject.State
		if err := json.Unmarshal([]byte(record[4]), &state); err != nil {
			continue
		}
		evs = append(evs, EventRecord{
			Time:       t,
			Detector:   record[1],
			Increasing: increasing,
			Action:     record[3],
			State:      state,
		})
	}
	return evs, nil
}
