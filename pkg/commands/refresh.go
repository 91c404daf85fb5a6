package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/daybook/pkg/printers"
)

func addRefresh(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "refresh",
		Aliases: []string{"sync"},
		Short:   "Reload everything from the remote store and show where each scope came from.",
		Example: `
daybook refresh
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), false)
			if err != nil {
				return oo.HandleError(err)
			}
			results, err := rt.Service.Refresh(cmd.Context())
			if oo.JSON {
				if len(results) == 0 && err != nil {
					return oo.HandleError(err)
				}
				return oo.PrintJSON(printers.Present(results))
			}
			pp := &printers.PrettyPrint{Location: rt.Service.Location()}
			pp.NewLine()
			pp.Loads(results)
			return err
		},
	}

	topLevel.AddCommand(cmd)
}
