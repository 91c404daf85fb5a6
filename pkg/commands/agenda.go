package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/daybook/pkg/commands/options"
	"tableflip.dev/daybook/pkg/glyph"
	"tableflip.dev/daybook/pkg/printers"
	"tableflip.dev/daybook/pkg/runner/get"
)

func addAgenda(topLevel *cobra.Command) {
	on := &options.OnOptions{}
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:     "agenda",
		Aliases: []string{"get", "today"},
		Short:   "Show the tasks, habits, events and reminders of a day.",
		Long:    "Show the tasks, habits, events and reminders of a day.\n\nSymbols:\n" + glyph.Legend(),
		Example: `
daybook agenda
daybook agenda --on tomorrow -k
daybook agenda --on 2024-3-1 --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, day, err := openRuntimeOn(cmd.Context(), on)
			if err != nil {
				return oo.HandleError(err)
			}
			if oo.JSON {
				return oo.PrintJSON(printers.Present(rt.Service.Agenda(day)))
			}
			s := get.Get{
				ShowID:  io.ShowID,
				Day:     day,
				Service: rt.Service,
			}
			return s.Do(cmd.Context())
		},
	}

	options.AddOnArgs(cmd, on)
	options.AddShowIDArgs(cmd, io)

	topLevel.AddCommand(cmd)
}
