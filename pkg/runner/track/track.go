// Package track provides the runners that check in habits.
package track

import (
	"context"
	"errors"
	"fmt"

	"tableflip.dev/daybook/pkg/app"
	"tableflip.dev/daybook/pkg/printers"
	"tableflip.dev/daybook/pkg/recurrence"
	"tableflip.dev/daybook/pkg/streak"
	"tableflip.dev/daybook/pkg/timeutil"
)

// Track toggles the check-in of one habit, or of every due habit when All is
// set.
type Track struct {
	HabitID string
	All     bool
	Day     timeutil.Day
	Service *app.Service
	Printer *printers.PrettyPrint
}

// Do applies the check-in and reprints the habit. In batch mode every habit
// is reported separately and the command fails if any of them failed.
func (n *Track) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not check in, no service")
	}
	pp := n.Printer
	if pp == nil {
		pp = &printers.PrettyPrint{}
	}
	day := n.Day
	if day.IsZero() {
		day = n.Service.Today()
	}

	if n.All {
		results, err := n.Service.CheckInAll(ctx, day)
		if err != nil {
			return err
		}
		names := map[string]string{}
		failed := 0
		for _, r := range results {
			if h, ok := n.Service.Habits.Get(r.HabitID); ok {
				names[r.HabitID] = h.Name
			}
			if r.Err != nil {
				failed++
			}
		}
		pp.NewLine()
		pp.CheckIns(results, names)
		if failed > 0 {
			return fmt.Errorf("%d of %d check-ins failed", failed, len(results))
		}
		return nil
	}

	done, err := n.Service.CheckInHabit(ctx, n.HabitID, day)
	if err != nil {
		return err
	}
	if err := <-done; err != nil {
		return err
	}

	h, _ := n.Service.Habits.Get(n.HabitID)
	completed := map[timeutil.Day]bool{}
	for _, d := range streak.CompletedDays(n.Service.Logs.List(), h.ID) {
		completed[d] = true
	}
	res, err := n.Service.Streak(h.ID, day)
	if err != nil {
		return err
	}

	pp.NewLine()
	pp.Habits([]app.HabitItem{{Habit: h, Done: completed[day], Streak: res}})
	pp.HabitMonth(day, n.Service.Today(), completed, recurrence.Scheduled(recurrence.ForHabit(h), n.Service.Today()))
	return nil
}
