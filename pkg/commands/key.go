package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/daybook/pkg/key"
)

func addKey(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Show the meaning of the agenda symbols.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k := key.Key{}
			return k.Do(cmd.Context())
		},
	}

	topLevel.AddCommand(cmd)
}
