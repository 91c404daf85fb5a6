package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/daybook/pkg/app"
	"tableflip.dev/daybook/pkg/apperr"
	"tableflip.dev/daybook/pkg/commands/options"
	"tableflip.dev/daybook/pkg/printers"
	"tableflip.dev/daybook/pkg/runner/track"
)

func addCheckIn(topLevel *cobra.Command) {
	on := &options.OnOptions{}
	all := false
	i := &options.InteractiveOptions{}

	cmd := &cobra.Command{
		Use:     "checkin [habit-id]",
		Aliases: []string{"track"},
		Short:   "Toggle the check-in of a habit, or of every habit due with --all.",
		Example: `
daybook checkin 7a9e31
daybook checkin --all --on yesterday
daybook checkin -i
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if all || i.Interactive {
				return cobra.NoArgs(cmd, args)
			}
			if len(args) != 1 {
				return apperr.NewInvalidInputError("habit-id", "", "give a habit id, --all or -i")
			}
			return nil
		},
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return habitCompletions(cmd), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, day, err := openRuntimeOn(cmd.Context(), on)
			if err != nil {
				return oo.HandleError(err)
			}
			if i.Interactive && !all {
				id, err := pickHabit(cmd, rt.Service, day)
				if err != nil {
					return oo.HandleError(err)
				}
				args = []string{id}
			}
			if oo.JSON {
				action, params := app.ActionCheckInAll, app.Params{"date": day.String()}
				if !all {
					action = app.ActionCheckIn
					params["id"] = args[0]
				}
				res, err := app.NewDispatcher(rt.Service).Dispatch(cmd.Context(), action, params)
				if err != nil {
					return oo.HandleError(err)
				}
				return oo.PrintJSON(printers.Present(res))
			}
			t := track.Track{
				All:     all,
				Day:     day,
				Service: rt.Service,
			}
			if !all {
				t.HabitID = args[0]
			}
			return t.Do(cmd.Context())
		},
	}

	options.AddOnArgs(cmd, on)
	options.AddInteractiveArgs(cmd, i)
	cmd.Flags().BoolVar(&all, "all", false,
		"Check in every habit scheduled on the day.")

	topLevel.AddCommand(cmd)
}
