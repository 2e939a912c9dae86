package streaks

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/julianstephens/soberlit/internal/constants"
	"github.com/julianstephens/soberlit/internal/models"
)

// RenderGrid draws weeks as rows. Sober days show their intensity (with
// "*" at the cap), other past days ".", future days "-". Today is bracketed.
func RenderGrid(weeks []models.Week, today string) string {
	var b strings.Builder
	b.WriteString("          Sun  Mon  Tue  Wed  Thu  Fri  Sat\n")
	for _, w := range weeks {
		if len(w.Days) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s ", weekLabel(w))
		for _, d := range w.Days {
			cell := cellText(d, today)
			if d.ID == today {
				fmt.Fprintf(&b, " [%s] ", cell)
			} else {
				fmt.Fprintf(&b, "  %s  ", cell)
			}
		}
		if marker := monthMarker(w); marker != "" {
			b.WriteString(" " + marker)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func weekLabel(w models.Week) string {
	d := w.Days[0]
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// monthMarker names the month that starts inside the week, if any.
func monthMarker(w models.Week) string {
	for _, d := range w.Days {
		if d.IsFirstOfMonth {
			return d.Date[:7]
		}
	}
	return ""
}

func cellText(d models.Day, today string) string {
	switch {
	case d.ID > today:
		return "-"
	case !d.Sober:
		return "."
	case d.Intensity >= constants.MaxIntensity:
		return "*"
	default:
		return strconv.Itoa(d.Intensity)
	}
}
