package options

import (
	"github.com/spf13/cobra"
)

// IDOptions controls whether listings print entity IDs.
type IDOptions struct {
	ShowID bool
}

// AddShowIDArgs registers -k/--show-id.
func AddShowIDArgs(cmd *cobra.Command, o *IDOptions) {
	cmd.Flags().BoolVarP(&o.ShowID, "show-id", "k", false,
		"Show the ID of each task, habit, event, or reminder.")
}
