package options

import (
	"github.com/spf13/cobra"
)

// RemindOptions control the reminder daemon.
type RemindOptions struct {
	Once     bool
	Interval string
	Refresh  string
	NoWatch  bool
}

func AddRemindArgs(cmd *cobra.Command, o *RemindOptions) {
	cmd.Flags().BoolVar(&o.Once, "once", false,
		"Scan once and exit.")
	cmd.Flags().StringVar(&o.Interval, "interval", "",
		"Polling interval, example: 30s or 1m. At most reminders.tolerance. Overrides reminders.interval.")
	cmd.Flags().StringVar(&o.Refresh, "refresh", "15m",
		"How often to reload entities from the remote store.")
	cmd.Flags().BoolVar(&o.NoWatch, "no-watch", false,
		"Do not reload settings when the settings file changes.")
}
