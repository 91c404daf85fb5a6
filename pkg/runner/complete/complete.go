// Package complete provides the runner logic for toggling tasks done.
package complete

import (
	"context"
	"errors"

	"tableflip.dev/daybook/pkg/app"
	"tableflip.dev/daybook/pkg/printers"
	"tableflip.dev/daybook/pkg/timeutil"
)

// Complete toggles a task on Day. Recurring tasks are completed for that day
// only.
type Complete struct {
	ID      string
	Day     timeutil.Day
	Service *app.Service
	Printer *printers.PrettyPrint
}

// Do toggles the task, waits for the remote store to confirm, and reprints
// the tasks of the day. A rejected change has already been rolled back when
// the error is returned.
func (n *Complete) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not complete, no service")
	}
	pp := n.Printer
	if pp == nil {
		pp = &printers.PrettyPrint{ShowID: true}
	}
	day := n.Day
	if day.IsZero() {
		day = n.Service.Today()
	}

	done, err := n.Service.ToggleTask(ctx, n.ID, day)
	if err != nil {
		return err
	}
	if err := <-done; err != nil {
		return err
	}

	pp.NewLine()
	pp.Tasks(n.Service.Agenda(day).Tasks)
	return nil
}
