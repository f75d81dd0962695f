package service

import (
	"fmt"
	"strings"

	waypointdomain "github.com/tripline/tripline/internal/waypoint/domain"
)

const timeLayout = "2006.01.02 15:04"

// BuildComparison renders the planned-vs-actual report. Waypoints without
// any actual timestamp are omitted; arrival and departure deltas are
// independent, signed, and rounded to one decimal hour.
func BuildComparison(waypoints []*waypointdomain.Waypoint) string {
	var b strings.Builder
	b.WriteString("Comparison - Planned vs. Actual\n\n")

	var withActuals []*waypointdomain.Waypoint
	for _, w := range waypoints {
		if w.HasActuals() {
			withActuals = append(withActuals, w)
		}
	}
	if len(withActuals) == 0 {
		return b.String()
	}

	b.WriteString("Waypoint timings:\n")
	for _, w := range withActuals {
		fmt.Fprintf(&b, "\n%s:\n", w.Name)

		if w.PlannedArrival != nil && w.ActualArrival != nil {
			delta := w.ActualArrival.Sub(*w.PlannedArrival).Hours()
			fmt.Fprintf(&b, "  Arrival: planned %s, actual %s, delta %+.1f h\n",
				w.PlannedArrival.Format(timeLayout),
				w.ActualArrival.Format(timeLayout),
				delta,
			)
		}
		if w.PlannedDeparture != nil && w.ActualDeparture != nil {
			delta := w.ActualDeparture.Sub(*w.PlannedDeparture).Hours()
			fmt.Fprintf(&b, "  Departure: planned %s, actual %s, delta %+.1f h\n",
				w.PlannedDeparture.Format(timeLayout),
				w.ActualDeparture.Format(timeLayout),
				delta,
			)
		}
	}

	return b.String()
}
