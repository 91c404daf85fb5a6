// Package key prints the meaning of the agenda symbols.
package key

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/daybook/pkg/glyph"
)

type Key struct {
	Out io.Writer
}

func (k *Key) Do(ctx context.Context) error {
	out := k.Out
	if out == nil {
		out = color.Output
	}
	b := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(b.Sprint("Symbol"), b.Sprint("Meaning"))
	for _, g := range glyph.DefaultGlyphs() {
		tbl.AddRow(g.Symbol, g.Meaning)
	}
	_, _ = color.New(color.Bold, color.Underline).Fprintln(out, "\nKey")
	_, _ = fmt.Fprintln(out, tbl)
	return nil
}
