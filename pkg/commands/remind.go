package commands

import (
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tableflip.dev/daybook/pkg/app"
	"tableflip.dev/daybook/pkg/commands/options"
	"tableflip.dev/daybook/pkg/logging"
	"tableflip.dev/daybook/pkg/runner/remind"
	"tableflip.dev/daybook/pkg/timeutil"
)

func addRemind(topLevel *cobra.Command) {
	ro := &options.RemindOptions{}

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Run the reminder daemon.",
		Long: `Scan reminders, habits and tasks on an interval and notify once per
occurrence. Notifications inside quiet hours are held unless urgent.
Send SIGUSR1 to scan immediately.`,
		Example: `
daybook remind
daybook remind --once
daybook remind --interval 30s --refresh 5m
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			interval, err := timeutil.ParseWindow(ro.Interval, 0)
			if err != nil {
				return err
			}
			refresh := ro.Refresh
			if ro.Once {
				refresh = ""
			}
			refreshEvery, err := timeutil.ParseWindow(refresh, 0)
			if err != nil {
				return err
			}

			rt, err := openRuntime(ctx, true, app.WithBackgroundRefresh())
			if err != nil {
				return err
			}
			notifier, closer, err := remind.NewNotifier(rt.Settings, color.Output)
			if err != nil {
				return err
			}
			defer closer.Close()

			r := remind.Remind{
				Service:       rt.Service,
				Settings:      rt.Settings,
				Markers:       rt.Disk,
				Notifier:      notifier,
				Once:          ro.Once,
				Interval:      interval,
				RefreshEvery:  refreshEvery,
				WatchSettings: !ro.NoWatch && rt.Settings.File != "",
			}
			if !ro.Once {
				changes, err := rt.Disk.Watch(ctx)
				if err != nil {
					logging.Warnf("remind: not watching %s: %v", rt.Disk.BasePath(), err)
				} else {
					r.Changes = changes
				}
				if sigs := wakeSignals(); len(sigs) > 0 {
					wake := make(chan os.Signal, 1)
					signal.Notify(wake, sigs...)
					defer signal.Stop(wake)
					r.Wake = wake
				}
			}
			return r.Do(ctx)
		},
	}

	options.AddRemindArgs(cmd, ro)

	topLevel.AddCommand(cmd)
}

