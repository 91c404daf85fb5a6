// Package snake prompts for the arguments a command was run without.
package snake

import (
	"errors"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

// ErrNoChoices is returned by Pick when there is nothing to choose from.
var ErrNoChoices = errors.New("nothing to choose from")

// Choice is one selectable item.
type Choice struct {
	ID     string
	Label  string
	Detail string
}

// Pick lets the user select one of choices and returns it.
func Pick(cmd *cobra.Command, label string, choices []Choice) (Choice, error) {
	if len(choices) == 0 {
		return Choice{}, ErrNoChoices
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}?",
		Active:   "➜  {{ .Label | bold }} {{ .Detail | green }}",
		Inactive: "   {{ .Label }} {{ .Detail | cyan }}",
		Selected: "{{ .Label | bold }}",
		Details: `
--------- Details ----------
id: {{ .ID }}
`,
	}

	prompt := promptui.Select{
		HideHelp:  true,
		Label:     label,
		Items:     choices,
		Templates: templates,
		Size:      10,
		Searcher:  searcher(choices),
		Stdin:     io.NopCloser(cmd.InOrStdin()),
		Stdout:    NopCloser(cmd.OutOrStdout()),
	}

	i, _, err := prompt.Run()
	if err != nil {
		return Choice{}, err
	}
	return choices[i], nil
}

// searcher matches input against labels ignoring case and spaces.
func searcher(choices []Choice) func(input string, index int) bool {
	return func(input string, index int) bool {
		name := squash(choices[index].Label)
		return strings.Contains(name, squash(input))
	}
}

func squash(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "")
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// NopCloser returns a WriteCloser with a no-op Close method wrapping
// the provided Writer w.
func NopCloser(w io.Writer) io.WriteCloser {
	return nopCloser{w}
}
