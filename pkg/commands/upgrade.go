package commands

import (
	"bytes"
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"

	"tableflip.dev/daybook/pkg/logging"
)

const installPath = "tableflip.dev/daybook/cmd/daybook@latest"

func addUpgrade(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Upgrade daybook cli.",
		Example: `
daybook upgrade
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ex := exec.CommandContext(cmd.Context(), "go", "install", installPath)
			var out bytes.Buffer
			ex.Stdout = &out
			ex.Stderr = &out
			if err := ex.Run(); err != nil {
				logging.Debugf("upgrade: %s", out.String())
				return oo.HandleError(fmt.Errorf("upgrade: %s: %w", ex.String(), err))
			}
			fmt.Printf("%s\n", ex.String())
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}
