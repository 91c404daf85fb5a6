package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/daybook/pkg/app"
	"tableflip.dev/daybook/pkg/commands/options"
	"tableflip.dev/daybook/pkg/printers"
	"tableflip.dev/daybook/pkg/runner/complete"
)

func addDone(topLevel *cobra.Command) {
	on := &options.OnOptions{}
	i := &options.InteractiveOptions{}

	cmd := &cobra.Command{
		Use:     "done [task-id]",
		Aliases: []string{"complete", "toggle"},
		Short:   "Toggle a task done. Recurring tasks are done for one day.",
		Example: `
daybook done 1f0c2a
daybook done 1f0c2a --on yesterday
daybook done -i
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if i.Interactive {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return taskCompletions(cmd), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, day, err := openRuntimeOn(cmd.Context(), on)
			if err != nil {
				return oo.HandleError(err)
			}
			if i.Interactive {
				id, err := pickTask(cmd, rt.Service, day)
				if err != nil {
					return oo.HandleError(err)
				}
				args = []string{id}
			}
			if oo.JSON {
				res, err := app.NewDispatcher(rt.Service).Dispatch(cmd.Context(), app.ActionToggleTask,
					app.Params{"id": args[0], "date": day.String()})
				if err != nil {
					return oo.HandleError(err)
				}
				return oo.PrintJSON(printers.Present(res))
			}
			c := complete.Complete{
				ID:      args[0],
				Day:     day,
				Service: rt.Service,
			}
			return c.Do(cmd.Context())
		},
	}

	options.AddOnArgs(cmd, on)
	options.AddInteractiveArgs(cmd, i)

	topLevel.AddCommand(cmd)
}
