package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/daybook/pkg/app"
	"tableflip.dev/daybook/pkg/snake"
	"tableflip.dev/daybook/pkg/timeutil"
)

// pickTask prompts for one of the tasks shown on day.
func pickTask(cmd *cobra.Command, svc *app.Service, day timeutil.Day) (string, error) {
	a := svc.Agenda(day)
	var choices []snake.Choice
	for _, it := range a.Tasks {
		detail := "open"
		if it.Done {
			detail = "done"
		}
		choices = append(choices, snake.Choice{ID: it.Task.ID, Label: it.Task.Title, Detail: detail})
	}
	for _, t := range a.Overdue {
		choices = append(choices, snake.Choice{ID: t.ID, Label: t.Title, Detail: "overdue"})
	}
	c, err := snake.Pick(cmd, "Task", choices)
	return c.ID, err
}

// pickHabit prompts for one of the habits due on day.
func pickHabit(cmd *cobra.Command, svc *app.Service, day timeutil.Day) (string, error) {
	var choices []snake.Choice
	for _, it := range svc.Agenda(day).Habits {
		detail := "not yet"
		if it.Done {
			detail = "checked in"
		}
		choices = append(choices, snake.Choice{ID: it.Habit.ID, Label: it.Habit.Name, Detail: detail})
	}
	c, err := snake.Pick(cmd, "Habit", choices)
	return c.ID, err
}
