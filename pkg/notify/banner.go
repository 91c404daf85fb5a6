package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Banner prints a one-line in-app banner to a terminal stream.
type Banner struct {
	mu    sync.Mutex
	out   io.Writer
	title *color.Color
	body  *color.Color
	tag   *color.Color
}

var _ Channel = (*Banner)(nil)

// NewBanner writes to out. Colour is used only when out is a terminal.
func NewBanner(out io.Writer) *Banner {
	b := &Banner{
		out:   out,
		title: color.New(color.FgHiYellow, color.Bold),
		body:  color.New(color.FgWhite),
		tag:   color.New(color.FgHiBlack),
	}
	if !isTerminal(out) {
		b.title.DisableColor()
		b.body.DisableColor()
		b.tag.DisableColor()
	}
	return b
}

func (b *Banner) Name() string { return "in-app" }

func (b *Banner) Notify(_ context.Context, n Notification) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	marker := "🔔"
	if n.Urgent {
		marker = "❗"
	}
	line := fmt.Sprintf("%s %s", marker, b.title.Sprint(n.Title))
	if body := strings.TrimSpace(n.Body); body != "" {
		line += " " + b.body.Sprint(body)
	}
	if n.Tag != "" {
		line += " " + b.tag.Sprintf("[%s]", n.Tag)
	}
	_, err := fmt.Fprintln(b.out, line)
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
