package commands

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tableflip.dev/daybook/pkg/settings"
)

func addSettings(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "settings",
		Aliases: []string{"config"},
		Short:   "Create or show the daybook settings file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addSettingsInit(cmd)
	addSettingsShow(cmd)

	topLevel.AddCommand(cmd)
}

func addSettingsInit(topLevel *cobra.Command) {
	force := false

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a settings file with the defaults.",
		Example: `
daybook settings init
daybook settings init --config ./daybook.toml --force
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := gopts.ConfigPath
			if target == "" {
				target = os.Getenv(settings.EnvConfig)
			}
			path, err := settings.Init(target, force)
			if err != nil {
				return oo.HandleError(err)
			}
			if oo.JSON {
				return oo.PrintJSON(map[string]string{"file": path})
			}
			_, _ = fmt.Fprintf(color.Output, "wrote %s\nset remote.endpoint to your web app URL before the first run\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false,
		"Overwrite an existing settings file.")

	topLevel.AddCommand(cmd)
}

func addSettingsShow(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings as TOML.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return oo.HandleError(err)
			}
			b, err := s.TOML()
			if err != nil {
				return oo.HandleError(err)
			}
			if s.File != "" {
				_, _ = color.New(color.Faint).Fprintf(color.Output, "# %s\n", s.File)
			}
			_, _ = fmt.Fprint(color.Output, string(b))
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}
