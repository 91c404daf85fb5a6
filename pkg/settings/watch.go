package settings

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	homedir "github.com/mitchellh/go-homedir"

	"tableflip.dev/daybook/pkg/logging"
)

const reloadDelay = 100 * time.Millisecond

// Watch reloads path whenever it changes and sends the new settings. Files
// that fail to load are logged and skipped. The channel is closed when ctx
// is done.
//
// The parent directory is watched so editors that replace the file on save
// are still seen.
func Watch(ctx context.Context, path string) (<-chan *Settings, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("settings: expand %s: %w", path, err)
	}
	expanded = filepath.Clean(expanded)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("settings: create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(expanded)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("settings: watch %s: %w", expanded, err)
	}

	out := make(chan *Settings, 1)
	reload := func() {
		s, err := LoadFile(expanded)
		if err != nil {
			logging.Warnf("settings: reload %s: %v", expanded, err)
			return
		}
		select {
		case out <- s:
		case <-ctx.Done():
		}
	}

	go func() {
		deb := newDebounce(reloadDelay)
		defer func() {
			deb.Stop()
			if err := watcher.Close(); err != nil {
				logging.Warnf("settings: watcher close: %v", err)
			}
			// Let a reload that already started finish before closing.
			deb.Wait()
			close(out)
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logging.Debugf("settings: watcher: %v", err)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(evt.Name) != expanded {
					continue
				}
				if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				deb.Trigger(reload)
			}
		}
	}()

	return out, nil
}

// debounce runs the last triggered func once activity has been quiet for
// delay.
type debounce struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	stopped bool
	running sync.WaitGroup
}

func newDebounce(delay time.Duration) *debounce {
	return &debounce{delay: delay}
}

func (d *debounce) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.stopped {
			d.mu.Unlock()
			return
		}
		d.running.Add(1)
		d.mu.Unlock()
		defer d.running.Done()
		fn()
	})
}

func (d *debounce) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}

func (d *debounce) Wait() {
	d.running.Wait()
}
