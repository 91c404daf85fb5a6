package options

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tableflip.dev/daybook/pkg/printers"
)

// OutputOptions
type OutputOptions struct {
	JSON bool
}

func AddOutputArg(cmd *cobra.Command, po *OutputOptions) {
	cmd.PersistentFlags().BoolVar(&po.JSON, "json", false,
		"Output as JSON.")
}

// HandleError prints err as JSON when --json is set and swallows it, so
// scripted callers get a parseable reply.
func (o *OutputOptions) HandleError(err error) error {
	if o.JSON && err != nil {
		b, err := json.Marshal(map[string]interface{}{"error": printers.PresentError(err)})
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(color.Output, string(b))
		return nil
	}
	return err
}

// PrintJSON writes v as indented JSON.
func (o *OutputOptions) PrintJSON(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(color.Output, string(b))
	return err
}
