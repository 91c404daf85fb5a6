package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/daybook/pkg/app"
	"tableflip.dev/daybook/pkg/commands/options"
	"tableflip.dev/daybook/pkg/printers"
)

func addStreak(topLevel *cobra.Command) {
	on := &options.OnOptions{}
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:     "streak [habit-id]",
		Aliases: []string{"streaks"},
		Short:   "Show current and longest streaks of habits.",
		Example: `
daybook streak
daybook streak 7a9e31 --on yesterday
`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return habitCompletions(cmd), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, day, err := openRuntimeOn(cmd.Context(), on)
			if err != nil {
				return oo.HandleError(err)
			}
			params := app.Params{"date": day.String()}
			if len(args) == 1 {
				params["id"] = args[0]
			}
			res, err := app.NewDispatcher(rt.Service).Dispatch(cmd.Context(), app.ActionStreaks, params)
			if err != nil {
				return oo.HandleError(err)
			}
			if oo.JSON {
				return oo.PrintJSON(printers.Present(res))
			}
			pp := &printers.PrettyPrint{ShowID: io.ShowID, Location: rt.Service.Location()}
			pp.NewLine()
			pp.Streaks(res.([]app.HabitStreak))
			return nil
		},
	}

	options.AddOnArgs(cmd, on)
	options.AddShowIDArgs(cmd, io)

	topLevel.AddCommand(cmd)
}
