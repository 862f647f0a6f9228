// Package viz renders propagation results in the terminal.
//
// Static output plots recorded trajectories with asciigraph and lists
// resolved events in lipgloss-styled tables. [Live] is a Bubble Tea model
// that advances a propagator in real time and shows the trajectory and
// event log as they unfold.
package viz
