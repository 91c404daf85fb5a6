package commands

import (
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/daybook/pkg/commands/options"
	"tableflip.dev/daybook/pkg/logging"
)

var (
	oo    = &options.OutputOptions{}
	gopts = &globalOptions{}
)

// globalOptions are the persistent flags of the root command.
type globalOptions struct {
	ConfigPath string
	Verbose    bool
}

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "daybook",
		Short: base.Wrap80("Tasks, habits, streaks and reminders on the command line."),
		Long: base.Wrap80("daybook reads tasks, habits, planner events and reminders from a " +
			"spreadsheet-backed web service, keeps a local copy for when the service " +
			"is unreachable, and runs a reminder daemon that notifies you once per " +
			"occurrence outside your quiet hours."),
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetVerbose(gopts.Verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&gopts.ConfigPath, "config", "",
		"Settings file, defaults to $"+"DAYBOOK_CONFIG or ~/.daybook.toml.")
	cmd.PersistentFlags().BoolVarP(&gopts.Verbose, "verbose", "v", false,
		"Log debug output to stderr.")
	options.AddOutputArg(cmd, oo)

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addAgenda(topLevel)
	addAdd(topLevel)
	addDone(topLevel)
	addCheckIn(topLevel)
	addStreak(topLevel)
	addRemind(topLevel)
	addRefresh(topLevel)
	addReport(topLevel)
	addSettings(topLevel)
	addInfo(topLevel)
	addKey(topLevel)
	addMCP(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
	addUpgrade(topLevel)
}
