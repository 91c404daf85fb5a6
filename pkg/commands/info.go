package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/daybook/pkg/runner/info"
	"tableflip.dev/daybook/pkg/store"
)

func addInfo(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show where settings and the local store live, and the state of the cache.",
		Example: `
daybook info
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			disk, err := store.Open(s)
			if err != nil {
				return err
			}
			i := info.Info{
				Settings: s,
				Store:    disk,
			}
			return i.Do(cmd.Context())
		},
	}

	topLevel.AddCommand(cmd)
}
