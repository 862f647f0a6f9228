package viz

import (
	"fmt"
	"strings"
)

// EventRow is one resolved event prepared for display.
type EventRow struct {
	Time       float64
	Name       string
	Increasing bool
	Action     string
}

// EventTable renders resolved events in confirmation order.
func EventTable(rows []EventRow) string {
	if len(rows) == 0 {
		return subtle.Render("(no events)")
	}

	nameW := 8
	for _, r := range rows {
		if len(r.Name) > nameW {
			nameW = len(r.Name)
		}
	}

	var b strings.Builder
	header := fmt.Sprintf("%-12s %-*s %-5s %s", "TIME", nameW, "DETECTOR", "DIR", "ACTION")
	b.WriteString(tableHeaderStyle.Render(header) + "\n")
	for _, r := range rows {
		dir := eventDecreasing.Render("↓")
		if r.Increasing {
			dir = eventIncreasing.Render("↑")
		}
		b.WriteString(fmt.Sprintf("%-12.6f %-*s %-5s %s\n", r.Time, nameW, r.Name, dir, r.Action))
	}
	return b.String()
}
