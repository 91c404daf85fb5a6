package commands

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/daybook/pkg/cache"
	"tableflip.dev/daybook/pkg/entity"
	"tableflip.dev/daybook/pkg/store"
)

func addCompletions(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:       "completion [bash|zsh|fish]",
		Short:     "Generates shell completion scripts",
		ValidArgs: []string{"bash", "zsh", "fish"},
		Args:      cobra.MaximumNArgs(1),
		Long: `To load completion run

. <(daybook completion)

To configure your bash shell to load completions for each session add to your bashrc

# ~/.bashrc or ~/.profile
. <(daybook completion)
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			shell := "bash"
			if len(args) == 1 {
				shell = args[0]
			}
			switch shell {
			case "zsh":
				return topLevel.GenZshCompletion(os.Stdout)
			case "fish":
				return topLevel.GenFishCompletion(os.Stdout, true)
			default:
				return topLevel.GenBashCompletion(os.Stdout)
			}
		},
	}

	topLevel.AddCommand(cmd)
}

// cachedRows reads a kind from the local cache only; completions never wait
// on the network. Expired entries are still good enough here.
func cachedRows(kind entity.Kind) []entity.Row {
	s, err := loadSettings()
	if err != nil {
		return nil
	}
	disk, err := store.Open(s)
	if err != nil {
		return nil
	}
	entry, ok := cache.New(disk, cache.WithTTL(staleOK)).Get(cache.Key(kind, ""))
	if !ok {
		return nil
	}
	return entry.Data
}

const staleOK = 30 * 24 * time.Hour

// Completions are "id<TAB>label" pairs so shells show the label.

func habitCompletions(_ *cobra.Command) []string {
	var out []string
	for _, row := range cachedRows(entity.KindHabits) {
		if h := entity.DecodeHabit(row, time.Local); h.ID != "" {
			out = append(out, h.ID+"\t"+h.Name)
		}
	}
	return out
}

func taskCompletions(_ *cobra.Command) []string {
	var out []string
	for _, row := range cachedRows(entity.KindTasks) {
		if t := entity.DecodeTask(row, time.Local); t.ID != "" {
			out = append(out, t.ID+"\t"+t.Title)
		}
	}
	return out
}

