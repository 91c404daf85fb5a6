// Package info provides the runner that describes the local configuration.
package info

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/daybook/pkg/cache"
	"tableflip.dev/daybook/pkg/reminder"
	"tableflip.dev/daybook/pkg/settings"
	"tableflip.dev/daybook/pkg/store"
	"tableflip.dev/daybook/pkg/timeutil"
)

// Info prints where settings and local state live, the state of every cache
// scope, and how many reminder markers have accumulated.
type Info struct {
	Settings *settings.Settings
	Store    store.KV
	Clock    timeutil.Clock
	Out      io.Writer
}

func (n *Info) Do(ctx context.Context) error {
	if n.Settings == nil {
		return fmt.Errorf("info: no settings")
	}
	out := n.Out
	if out == nil {
		out = color.Output
	}
	clock := n.Clock
	if clock == nil {
		clock = timeutil.SystemClock{}
	}
	faint := color.New(color.Faint)

	if override := os.Getenv(settings.EnvConfig); override != "" {
		_, _ = fmt.Fprintf(out, "%s found on env, using %s\n", settings.EnvConfig, override)
	} else {
		_, _ = fmt.Fprintf(out, "%s env var not set\n", settings.EnvConfig)
	}

	file := n.Settings.File
	if file == "" {
		file = faint.Sprint("(defaults)")
	}
	tbl := uitable.New()
	tbl.AddRow("settings:", file)
	tbl.AddRow("endpoint:", n.Settings.Endpoint)
	tbl.AddRow("store.path:", n.Settings.BasePath())
	tbl.AddRow("cache.ttl:", timeutil.FormatWindow(n.Settings.CacheTTL))
	tbl.AddRow("quiet hours:", n.Settings.Quiet().String())
	tbl.AddRow("notifications:", fmt.Sprintf("%s, sound %s", n.Settings.NotifyMethod(), n.Settings.NotifySound()))
	_, _ = fmt.Fprintln(out, tbl)

	if n.Store == nil {
		return nil
	}

	c := cache.New(n.Store, cache.WithTTL(n.Settings.CacheTTL), cache.WithClock(clock))
	keys, err := n.Store.Keys(ctx, "cache_")
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, "\nCache:")
	if len(keys) == 0 {
		_, _ = fmt.Fprintf(out, "  %s\n", "nothing cached")
	}
	ct := uitable.New()
	for _, k := range keys {
		entry, ok := c.Get(k)
		if !ok {
			ct.AddRow(" ", k, faint.Sprint("expired"))
			continue
		}
		age := clock.Now().Sub(entry.Written()).Truncate(time.Minute)
		ct.AddRow(" ", k, fmt.Sprintf("%d rows", len(entry.Data)), faint.Sprintf("%s old", timeutil.FormatWindow(age)))
	}
	if len(keys) > 0 {
		_, _ = fmt.Fprintln(out, ct)
	}

	markers, err := reminder.NewDedup(n.Store).Count(ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "\nReminder markers: %d\n", markers)
	return nil
}
