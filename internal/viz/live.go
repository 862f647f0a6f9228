package viz

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/propel/internal/events"
	"github.com/san-kum/propel/internal/propagate"
	"github.com/san-kum/propel/internal/traject"
)

const (
	historyCapacity = 600
	recentEvents    = 8
	chartWidth      = 64
	chartHeight     = 10
)

type TickMsg time.Time

// Labeler names a detector for display.
type Labeler func(events.Detector) string

// tape keeps a bounded window of accepted snapshots for plotting.
type tape struct {
	states []traject.State
}

func (tp *tape) OnStep(s traject.Snapshot) {
	tp.states = append(tp.states, s.X.Clone())
	if len(tp.states) > historyCapacity {
		tp.states = tp.states[1:]
	}
}

// Live is a Bubble Tea model that advances a propagator a fixed slice of
// simulated time per frame and renders the trajectory and event log.
type Live struct {
	prop   *propagate.Propagator
	label  Labeler
	energy func(traject.State) float64
	name   string

	start  float64
	target float64
	stride float64

	tape    *tape
	log     []events.Occurrence
	running bool
	done    bool
	err     error
}

// NewLive prepares a live view over prop, advancing stride units of
// simulated time per frame until target. energy may be nil.
func NewLive(prop *propagate.Propagator, target, stride float64, name string, label Labeler, energy func(traject.State) float64) Live {
	start := prop.Current().T
	stride = math.Abs(stride)
	if stride == 0 {
		stride = math.Abs(target-start) / 300
	}
	if target < start {
		stride = -stride
	}
	tp := &tape{}
	tp.OnStep(prop.Current())
	prop.AddObserver(tp)
	if label == nil {
		label = func(events.Detector) string { return "detector" }
	}
	return Live{
		prop:    prop,
		label:   label,
		energy:  energy,
		name:    name,
		start:   start,
		target:  target,
		stride:  stride,
		tape:    tp,
		running: true,
	}
}

func (m Live) Init() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if !m.done {
				m.running = !m.running
			}
		}
	case TickMsg:
		if m.running && !m.done && m.err == nil {
			m = m.advance()
		}
		return m, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

// advance runs one frame of propagation and folds its events into the log.
func (m Live) advance() Live {
	next := m.prop.Current().T + m.stride
	if (m.stride > 0 && next > m.target) || (m.stride < 0 && next < m.target) {
		next = m.target
	}

	_, err := m.prop.Propagate(context.Background(), next)
	m.log = append(m.log, m.prop.Events()...)
	if err != nil {
		m.err = err
		m.running = false
		return m
	}
	if m.prop.Stopped() || m.prop.Current().T == m.target {
		m.done = true
		m.running = false
	}
	return m
}

func (m Live) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")
	b.WriteString(m.statusLine() + "\n\n")

	b.WriteString(graphStyle.Render(Trajectory(m.tape.states, nil, nil, chartWidth, chartHeight)) + "\n\n")

	cur := m.prop.Current()
	b.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.3f", cur.T)) + "\n")
	if m.energy != nil {
		b.WriteString(labelStyle.Render("Energy") + valueStyle.Render(fmt.Sprintf("%.6f", m.energy(cur.X))) + "\n")
	}
	b.WriteString(labelStyle.Render("Events") + valueStyle.Render(fmt.Sprintf("%d", len(m.log))) + "\n")

	span := m.target - m.start
	if span != 0 {
		percent := (cur.T - m.start) / span
		b.WriteString(labelStyle.Render("Progress") + ProgressBar(percent, 30) + "\n")
	}

	b.WriteString("\n" + Separator(chartWidth) + "\n")
	b.WriteString(m.eventLog())
	b.WriteString(helpStyle.Render("SP:Pause  Q:Quit"))
	return b.String()
}

func (m Live) statusLine() string {
	switch {
	case m.err != nil:
		return statusError.Render("ERROR: " + m.err.Error())
	case m.prop.Stopped():
		return statusStopped.Render("STOPPED BY EVENT")
	case m.done:
		return statusStopped.Render("DONE")
	case !m.running:
		return statusStopped.Render("PAUSED")
	default:
		return statusRunning.Render("RUNNING")
	}
}

func (m Live) eventLog() string {
	if len(m.log) == 0 {
		return subtle.Render("(no events yet)") + "\n"
	}
	first := 0
	if len(m.log) > recentEvents {
		first = len(m.log) - recentEvents
	}
	rows := make([]EventRow, 0, len(m.log)-first)
	for _, occ := range m.log[first:] {
		rows = append(rows, EventRow{
			Time:       occ.Time,
			Name:       m.label(occ.Detector),
			Increasing: occ.Increasing,
			Action:     occ.Action.String(),
		})
	}
	return EventTable(rows)
}
