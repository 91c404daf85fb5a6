// Package remind provides the reminder daemon runner.
package remind

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"tableflip.dev/daybook/pkg/app"
	"tableflip.dev/daybook/pkg/logging"
	"tableflip.dev/daybook/pkg/notify"
	"tableflip.dev/daybook/pkg/printers"
	"tableflip.dev/daybook/pkg/reminder"
	"tableflip.dev/daybook/pkg/settings"
	"tableflip.dev/daybook/pkg/store"
)

// echoWindow is how long store changes are attributed to our own reload.
const echoWindow = 2 * time.Second

// Remind runs the reminder scheduler against the loaded service.
type Remind struct {
	Service  *app.Service
	Settings *settings.Settings
	// Markers holds the dedup markers.
	Markers  store.KV
	Notifier reminder.Notifier

	// Once scans a single time and returns.
	Once bool
	// Interval overrides the configured polling interval when positive.
	Interval time.Duration
	// RefreshEvery reloads entities from the remote store. Zero disables it.
	RefreshEvery time.Duration
	// WatchSettings applies edits of the settings file without a restart.
	WatchSettings bool
	// Changes, when set, delivers store changes made by other daybook
	// processes, which trigger a reload.
	Changes <-chan store.Event
	// Wake delivers "look now" requests, such as SIGUSR1.
	Wake <-chan os.Signal

	Printer *printers.PrettyPrint
}

func (n *Remind) config(s *settings.Settings) (reminder.Config, error) {
	cfg := s.ReminderConfig()
	if n.Interval > 0 {
		cfg.Interval = n.Interval
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("remind: %w", err)
	}
	return cfg, nil
}

// Do runs until ctx is cancelled, or one scan with Once.
func (n *Remind) Do(ctx context.Context) error {
	if n.Service == nil || n.Settings == nil || n.Markers == nil || n.Notifier == nil {
		return errors.New("remind: service, settings, markers, and notifier are required")
	}
	pp := n.Printer
	if pp == nil {
		pp = &printers.PrettyPrint{}
	}
	if pp.Location == nil {
		pp.Location = n.Service.Location()
	}
	cfg, err := n.config(n.Settings)
	if err != nil {
		return err
	}

	sched := reminder.New(
		n.Service.ReminderSource(),
		n.Notifier,
		reminder.NewDedup(n.Markers),
		reminder.WithClock(n.Service.Clock()),
		reminder.WithLocation(n.Service.Location()),
		reminder.WithConfig(cfg),
		reminder.OnScan(pp.Scan),
	)

	if n.Once {
		sched.Scan(ctx)
		n.Service.Wait()
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Our own reloads rewrite cache keys; changes seen shortly after one are
	// echoes and are ignored.
	var lastReload atomic.Int64
	reload := func(reason string) {
		if _, err := n.Service.Refresh(ctx); err != nil {
			logging.Warnf("remind: reload after %s: %v", reason, err)
		}
		lastReload.Store(time.Now().UnixNano())
		sched.Wake()
	}

	if n.RefreshEvery > 0 {
		go func() {
			t := time.NewTicker(n.RefreshEvery)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-t.C:
					reload("timer")
				}
			}
		}()
	}

	if n.Changes != nil {
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case ev, ok := <-n.Changes:
					if !ok {
						return
					}
					if ev.Type == store.EventKeyChanged && !strings.HasPrefix(ev.Key, "cache_") {
						continue
					}
					if time.Since(time.Unix(0, lastReload.Load())) < echoWindow {
						continue
					}
					logging.Debugf("remind: store changed (%s)", ev.Key)
					reload("store change")
				}
			}
		}()
	}

	if n.WatchSettings && n.Settings.File != "" {
		updates, err := settings.Watch(ctx, n.Settings.File)
		if err != nil {
			logging.Warnf("remind: %v", err)
		} else {
			go func() {
				for s := range updates {
					cfg, err := n.config(s)
					if err != nil {
						logging.Warnf("%v; keeping the previous settings", err)
						continue
					}
					sched.SetConfig(cfg)
					logging.Infof("remind: settings reloaded, quiet hours %s", s.Quiet())
					sched.Wake()
				}
			}()
		}
	}

	if n.Wake != nil {
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-n.Wake:
					sched.Wake()
				}
			}
		}()
	}

	logging.Infof("remind: polling every %s, quiet hours %s", cfg.Interval, cfg.Quiet)
	err = sched.Run(ctx)
	n.Service.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// NewNotifier builds the notification channels described by s. Banners and
// cues go to out. The returned closer releases the bridge file, if any.
func NewNotifier(s *settings.Settings, out io.Writer) (*notify.Dispatcher, io.Closer, error) {
	d := &notify.Dispatcher{
		Platform: notify.NewDesktop("daybook"),
		InApp:    notify.NewBanner(out),
	}

	var closer io.Closer = nopCloser{}
	var bridge *notify.Bridge
	switch path := strings.TrimSpace(s.Bridge); path {
	case "":
	case "-":
		bridge = notify.NewBridge(out)
	default:
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("remind: open bridge %s: %w", path, err)
		}
		bridge = notify.NewBridge(f)
		closer = f
	}
	if bridge != nil {
		bridge.Sound = string(s.NotifySound())
		bridge.Vibrate = s.Vibrate
		d.Bridge = bridge
	}

	if s.NotifySound() != notify.SoundNone || s.Vibrate {
		d.Cue = &notify.Cue{Out: out, Sound: s.NotifySound(), Vibrate: s.Vibrate, Bridge: bridge}
	}
	return d, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
