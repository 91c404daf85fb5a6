package snake

import (
	"errors"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

// PromptString asks for a line of text. An empty answer is rejected unless
// def is set, in which case def is returned.
func PromptString(cmd *cobra.Command, label, def string) (string, error) {
	validate := func(input string) error {
		if strings.TrimSpace(input) == "" && def == "" {
			return errors.New("empty")
		}
		return nil
	}

	templates := &promptui.PromptTemplates{
		Prompt:  "{{ . }}: ",
		Valid:   "{{ . | green }}: ",
		Invalid: "{{ . | red }}: ",
		Success: "{{ . | bold }}: ",
	}

	prompt := promptui.Prompt{
		Label:     label,
		Default:   def,
		Templates: templates,
		Validate:  validate,
		Stdin:     io.NopCloser(cmd.InOrStdin()),
		Stdout:    NopCloser(cmd.OutOrStdout()),
	}

	result, err := prompt.Run()
	if err != nil {
		return "", err
	}
	if result = strings.TrimSpace(result); result == "" {
		result = def
	}
	return result, nil
}
