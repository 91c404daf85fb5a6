package commands

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/daybook/pkg/apperr"
	"tableflip.dev/daybook/pkg/commands/options"
	"tableflip.dev/daybook/pkg/entity"
	"tableflip.dev/daybook/pkg/printers"
	"tableflip.dev/daybook/pkg/runner/add"
	"tableflip.dev/daybook/pkg/snake"
	"tableflip.dev/daybook/pkg/timeutil"
)

func addAdd(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task, habit or reminder.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addAddTask(cmd)
	addAddHabit(cmd)
	addAddReminder(cmd)

	topLevel.AddCommand(cmd)
}

// title joins args, or prompts for them when interactive.
func title(cmd *cobra.Command, args []string, what string, interactive bool) (string, error) {
	t := strings.TrimSpace(strings.Join(args, " "))
	if t == "" && interactive {
		return snake.PromptString(cmd, strings.ToUpper(what[:1])+what[1:], "")
	}
	if t == "" {
		return "", apperr.NewInvalidInputError(what, t, "required")
	}
	return t, nil
}

// runAdd creates the item without reloading the full dataset first.
func runAdd(ctx context.Context, a *add.Add) error {
	rt, err := openRuntime(ctx, false)
	if err != nil {
		return oo.HandleError(err)
	}
	a.Service = rt.Service
	if !oo.JSON {
		return a.Do(ctx)
	}
	a.Printer = &printers.PrettyPrint{Out: io.Discard}
	if err := a.Do(ctx); err != nil {
		return oo.HandleError(err)
	}
	switch {
	case a.Task != nil:
		return oo.PrintJSON(printers.Present(*a.Task))
	case a.Habit != nil:
		return oo.PrintJSON(printers.Present(*a.Habit))
	default:
		return oo.PrintJSON(printers.Present(*a.Reminder))
	}
}

func addAddTask(topLevel *cobra.Command) {
	ao := &options.AddOptions{}
	i := &options.InteractiveOptions{}

	cmd := &cobra.Command{
		Use:   "task <title>",
		Short: "Add a task, optionally due on a day or recurring.",
		Example: `
daybook add task buy milk --on tomorrow
daybook add task water plants --every weekly --days mon,thu
daybook add task pay rent --every monthly --on 2024-1-1 -u
`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := title(cmd, args, "title", i.Interactive)
			if err != nil {
				return oo.HandleError(err)
			}
			today := timeutil.Today(timeutil.SystemClock{})
			rule, err := ao.Rule(today)
			if err != nil {
				return oo.HandleError(err)
			}
			due, err := ao.DueDate(today)
			if err != nil {
				return oo.HandleError(err)
			}
			at, err := ao.DueTime()
			if err != nil {
				return oo.HandleError(err)
			}
			if rule.Recurring() && due == nil {
				due = &today
			}
			task := &entity.Task{Title: t, DueDate: due, DueTime: at, Rule: rule, Urgent: ao.Urgent}
			return runAdd(cmd.Context(), &add.Add{Task: task})
		},
	}

	options.AddDueArgs(cmd, ao, `Time of day, example: --at=09:30.`)
	options.AddScheduleArgs(cmd, ao)
	options.AddInteractiveArgs(cmd, i)

	topLevel.AddCommand(cmd)
}

func addAddHabit(topLevel *cobra.Command) {
	ao := &options.AddOptions{}
	i := &options.InteractiveOptions{}

	cmd := &cobra.Command{
		Use:   "habit <name>",
		Short: "Add a habit. Habits are daily unless --every says otherwise.",
		Example: `
daybook add habit stretch
daybook add habit run --every weekly --days mon,wed,fri --at 07:00
`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := title(cmd, args, "name", i.Interactive)
			if err != nil {
				return oo.HandleError(err)
			}
			today := timeutil.Today(timeutil.SystemClock{})
			rule, err := ao.Rule(today)
			if err != nil {
				return oo.HandleError(err)
			}
			if !rule.Recurring() {
				rule.Frequency = entity.FrequencyDaily
			}
			start, err := ao.DueDate(today)
			if err != nil {
				return oo.HandleError(err)
			}
			if start == nil {
				start = &today
			}
			at, err := ao.DueTime()
			if err != nil {
				return oo.HandleError(err)
			}
			habit := &entity.Habit{Name: name, Rule: rule, StartDate: start, ReminderTime: at, Urgent: ao.Urgent}
			return runAdd(cmd.Context(), &add.Add{Habit: habit})
		},
	}

	options.AddDueArgs(cmd, ao, `Reminder time, example: --at=07:00.`)
	options.AddScheduleArgs(cmd, ao)
	options.AddInteractiveArgs(cmd, i)

	topLevel.AddCommand(cmd)
}

func addAddReminder(topLevel *cobra.Command) {
	ao := &options.AddOptions{}
	i := &options.InteractiveOptions{}

	cmd := &cobra.Command{
		Use:   "reminder <title>",
		Short: "Add a standalone reminder.",
		Example: `
daybook add reminder call mom --at 18:30
daybook add reminder standup --on tomorrow --at 09:55 --repeat daily
daybook add reminder backup --at 20:00 --repeat 14 --body "rotate the drives"
`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := title(cmd, args, "title", i.Interactive)
			if err != nil {
				return oo.HandleError(err)
			}
			at, err := ao.Trigger(timeutil.Today(timeutil.SystemClock{}), time.Local)
			if err != nil {
				return oo.HandleError(err)
			}
			repeat, err := ao.RepeatRule()
			if err != nil {
				return oo.HandleError(err)
			}
			r := &entity.Reminder{Title: t, Body: ao.Body, At: at, Repeat: repeat, Urgent: ao.Urgent}
			return runAdd(cmd.Context(), &add.Add{Reminder: r})
		},
	}

	options.AddDueArgs(cmd, ao, `Time of day to fire, example: --at=18:30.`)
	options.AddRepeatArgs(cmd, ao)
	options.AddInteractiveArgs(cmd, i)

	topLevel.AddCommand(cmd)
}
