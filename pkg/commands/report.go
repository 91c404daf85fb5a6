package commands

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/daybook/pkg/app"
	"tableflip.dev/daybook/pkg/apperr"
	"tableflip.dev/daybook/pkg/commands/options"
	"tableflip.dev/daybook/pkg/printers"
	"tableflip.dev/daybook/pkg/timeutil"
)

func addReport(topLevel *cobra.Command) {
	on := &options.OnOptions{}
	last := ""
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarise completed tasks and habit check-ins over a window.",
		Example: `
daybook report
daybook report --last 2w
daybook report --last 30d --on 2024-2-29
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			window, err := timeutil.ParseWindow(last, 7*24*time.Hour)
			if err != nil {
				return oo.HandleError(apperr.NewInvalidInputError("last", last, err.Error()))
			}
			rt, until, err := openRuntimeOn(cmd.Context(), on)
			if err != nil {
				return oo.HandleError(err)
			}
			days := int(window / (24 * time.Hour))
			if days < 1 {
				days = 1
			}
			since := until.AddDays(-(days - 1))
			res, err := app.NewDispatcher(rt.Service).Dispatch(cmd.Context(), app.ActionReport,
				app.Params{"since": since.String(), "until": until.String()})
			if err != nil {
				return oo.HandleError(err)
			}
			if oo.JSON {
				return oo.PrintJSON(printers.Present(res))
			}
			pp := &printers.PrettyPrint{ShowID: io.ShowID, Location: rt.Service.Location()}
			pp.NewLine()
			pp.Report(res.(app.ReportResult))
			return nil
		},
	}

	options.AddOnArgs(cmd, on)
	options.AddShowIDArgs(cmd, io)
	cmd.Flags().StringVar(&last, "last", "1w",
		"Window ending on --on, example: 7d, 2w.")

	topLevel.AddCommand(cmd)
}
