// Package add provides the runner that creates tasks, habits, and reminders.
package add

import (
	"context"
	"errors"
	"fmt"

	"tableflip.dev/daybook/pkg/app"
	"tableflip.dev/daybook/pkg/entity"
	"tableflip.dev/daybook/pkg/printers"
)

// Add creates exactly one of Task, Habit, or Reminder.
type Add struct {
	Task     *entity.Task
	Habit    *entity.Habit
	Reminder *entity.Reminder

	Service *app.Service
	Printer *printers.PrettyPrint
}

// Do creates the item, waits for the remote store to accept it, and prints
// it with its id. The created item, id included, is written back.
func (n *Add) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not add, no service")
	}
	pp := n.Printer
	if pp == nil {
		pp = &printers.PrettyPrint{}
	}
	pp.ShowID = true
	if pp.Location == nil {
		pp.Location = n.Service.Location()
	}

	switch {
	case n.Task != nil:
		t, done, err := n.Service.AddTask(ctx, *n.Task)
		if err := wait(done, err); err != nil {
			return fmt.Errorf("add task: %w", err)
		}
		*n.Task = t
		pp.NewLine()
		pp.Tasks([]app.TaskItem{{Task: t}})
	case n.Habit != nil:
		h, done, err := n.Service.AddHabit(ctx, *n.Habit)
		if err := wait(done, err); err != nil {
			return fmt.Errorf("add habit: %w", err)
		}
		*n.Habit = h
		pp.NewLine()
		pp.Habits([]app.HabitItem{{Habit: h}})
	case n.Reminder != nil:
		r, done, err := n.Service.AddReminder(ctx, *n.Reminder)
		if err := wait(done, err); err != nil {
			return fmt.Errorf("add reminder: %w", err)
		}
		*n.Reminder = r
		pp.NewLine()
		pp.Reminders([]entity.Reminder{r})
	default:
		return errors.New("nothing to add")
	}
	return nil
}

func wait(done <-chan error, err error) error {
	if err != nil {
		return err
	}
	return <-done
}
