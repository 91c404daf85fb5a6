package printers

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/daybook/pkg/timeutil"
)

const width = len("11 12 13 14 15 16 17") // an example week

// HabitMonth prints the month containing day as a calendar. Completed days
// are bold green, scheduled days that were missed are red, and days the
// habit is not scheduled on are faint. Days after today are left plain.
func (pp *PrettyPrint) HabitMonth(day, today timeutil.Day, completed map[timeutil.Day]bool, scheduled func(timeutil.Day) bool) {
	first := timeutil.NewDay(day.Year, day.Month, 1)
	days := DaysIn(first)

	tf := color.New(color.FgWhite, color.Italic)
	m := fmt.Sprintf("%s %d", day.Month, day.Year)
	mid := (width - len(m)) / 2
	_, _ = tf.Fprintf(pp.out(), "%s%s%s\n", strings.Repeat(" ", mid), m, strings.Repeat(" ", width-mid-len(m)))

	// Pad out the start of the month.
	d := first.Weekday()
	_, _ = fmt.Fprint(pp.out(), strings.Repeat("   ", int(d)))

	hit := color.New(color.Bold, color.FgGreen)
	miss := color.New(color.FgRed)
	off := color.New(color.Faint, color.FgWhite)
	plain := color.New()

	for i := 0; i < days; i++ {
		cur := first.AddDays(i)
		printer := plain
		switch {
		case completed[cur]:
			printer = hit
		case cur.After(today):
		case scheduled != nil && !scheduled(cur):
			printer = off
		default:
			printer = miss
		}
		_, _ = printer.Fprintf(pp.out(), "%2d ", i+1)

		d++
		if d > time.Saturday {
			d = time.Sunday
			_, _ = fmt.Fprint(pp.out(), "\n")
		}
	}
	_, _ = fmt.Fprint(pp.out(), "\n\n")
}

func DaysIn(first timeutil.Day) int {
	return time.Date(first.Year, first.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
