package viz

import (
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/propel/internal/events"
	"github.com/san-kum/propel/internal/traject"
)

var seriesPalette = []asciigraph.AnsiColor{
	asciigraph.Green,
	asciigraph.Cyan,
	asciigraph.Magenta,
	asciigraph.Yellow,
	asciigraph.Blue,
	asciigraph.Red,
}

// componentSeries extracts one state component from a recorded trajectory.
func componentSeries(states []traject.State, index int) []float64 {
	out := make([]float64, 0, len(states))
	for _, s := range states {
		if index >= len(s) {
			out = append(out, 0)
			continue
		}
		out = append(out, s[index])
	}
	return out
}

// Trajectory plots the selected state components against step number.
// labels must parallel indices; both may be empty, in which case every
// component is plotted unlabeled.
func Trajectory(states []traject.State, indices []int, labels []string, width, height int) string {
	if len(states) < 2 {
		return subtle.Render("(not enough samples to plot)")
	}
	if len(indices) == 0 {
		for i := range states[0] {
			indices = append(indices, i)
		}
	}

	series := make([][]float64, 0, len(indices))
	for _, idx := range indices {
		series = append(series, componentSeries(states, idx))
	}

	opts := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.Width(width),
	}
	if len(labels) == len(series) && len(labels) > 0 {
		// Legends require one series color each.
		colors := make([]asciigraph.AnsiColor, len(labels))
		for i := range colors {
			colors[i] = seriesPalette[i%len(seriesPalette)]
		}
		opts = append(opts, asciigraph.SeriesColors(colors...), asciigraph.SeriesLegends(labels...))
	}
	if len(series) == 1 {
		return asciigraph.Plot(series[0], opts...)
	}
	return asciigraph.PlotMany(series, opts...)
}

// SwitchingFunction samples a detector's g along a recorded trajectory and
// plots it. Roots of the curve are where events were resolved.
func SwitchingFunction(times []float64, states []traject.State, d events.Detector, width, height int) string {
	if len(times) < 2 || len(times) != len(states) {
		return subtle.Render("(not enough samples to plot)")
	}
	g := make([]float64, len(times))
	for i := range times {
		g[i] = d.G(traject.Snapshot{T: times[i], X: states[i]})
	}
	return asciigraph.Plot(g,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("g(t)"),
	)
}

// EventRuler renders a time axis spanning [t0, t1] with a marker at each
// event time. Events outside the span are dropped.
func EventRuler(t0, t1 float64, eventTimes []float64, width int) string {
	if width < 2 {
		width = 2
	}
	if t1 < t0 {
		t0, t1 = t1, t0
	}
	span := t1 - t0
	if span <= 0 {
		return strings.Repeat("─", width)
	}

	ruler := []rune(strings.Repeat("─", width))
	for _, t := range eventTimes {
		if t < t0 || t > t1 {
			continue
		}
		col := int((t - t0) / span * float64(width-1))
		ruler[col] = '▲'
	}
	return string(ruler)
}
