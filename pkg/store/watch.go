package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/peterbourgon/diskv/v3"

	"tableflip.dev/daybook/pkg/logging"
)

// EventType describes the nature of a store change notification.
type EventType int

const (
	// EventKeyChanged indicates a single key was written or erased.
	EventKeyChanged EventType = iota

	// EventInvalidated signals a change that could not be mapped to a key;
	// callers should reload everything they care about.
	EventInvalidated
)

// Event is emitted by Disk.Watch when another process changes the store.
type Event struct {
	Type EventType
	Key  string
}

// Watch streams change events until ctx is cancelled. Callers should drain the
// returned channel. The channel is closed once ctx is done or the watcher
// fails.
func (s *Disk) Watch(ctx context.Context) (<-chan Event, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	w := &diskWatch{
		disk:    s,
		fs:      fw,
		watched: make(map[string]bool),
		out:     make(chan Event, 64),
	}
	w.batch = newCoalescer(watchDelay, w.send)

	dirs, err := collectDirs(s.basePath)
	if err != nil {
		w.close()
		return nil, fmt.Errorf("store: enumerate directories: %w", err)
	}
	for _, dir := range dirs {
		if err := w.add(dir); err != nil {
			w.close()
			return nil, err
		}
	}

	go w.run(ctx)
	return w.out, nil
}

// watchDelay is the window in which filesystem events are merged.
const watchDelay = 100 * time.Millisecond

type diskWatch struct {
	disk      *Disk
	fs        *fsnotify.Watcher
	watched   map[string]bool
	out       chan Event
	batch     *coalescer
	closeOnce sync.Once
}

func (w *diskWatch) add(dir string) error {
	dir = filepath.Clean(dir)
	if w.watched[dir] {
		return nil
	}
	if err := w.fs.Add(dir); err != nil {
		return fmt.Errorf("store: watch %s: %w", dir, err)
	}
	w.watched[dir] = true
	return nil
}

func (w *diskWatch) close() {
	w.closeOnce.Do(func() {
		if err := w.fs.Close(); err != nil {
			logging.Warnf("store: watcher close: %v", err)
		}
	})
}

// send drops events the consumer is not ready for; it reloads on the next
// one anyway.
func (w *diskWatch) send(ev Event) {
	select {
	case w.out <- ev:
	default:
	}
}

func (w *diskWatch) run(ctx context.Context) {
	defer close(w.out)
	defer w.close()
	defer w.batch.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			logging.Debugf("store: watcher: %v", err)
			w.batch.Invalidate()
		case evt, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(evt)
		}
	}
}

func (w *diskWatch) handle(evt fsnotify.Event) {
	if evt.Op == fsnotify.Chmod {
		return
	}
	// diskv creates bucket directories lazily; a new one must be watched
	// and may already hold keys we missed.
	if evt.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
			if err := w.add(evt.Name); err != nil {
				logging.Warnf("%v", err)
			}
			w.batch.Invalidate()
			return
		}
	}
	if key := w.disk.keyForPath(evt.Name); key != "" {
		w.batch.Key(key)
		return
	}
	w.batch.Invalidate()
}

// collectDirs walks base and returns all directories that should be watched.
func collectDirs(base string) ([]string, error) {
	dirs := []string{base}
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() && path != base {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs, err
}

// keyForPath maps a file inside the store back to its key, or "" when the
// path is not a key file (diskv temp files, the base directory).
func (s *Disk) keyForPath(path string) string {
	rel, err := filepath.Rel(s.basePath, path)
	if err != nil || rel == "." {
		return ""
	}
	dir, file := filepath.Split(rel)
	bucket := filepath.Clean(dir)
	key := pathToKeyTransform(&diskv.PathKey{Path: []string{bucket}, FileName: file})
	if key == "" || bucketOf(key) != bucket {
		return ""
	}
	return key
}

// coalescer merges bursts of changes into one delivery per delay window. An
// invalidation in the window replaces its key events. send must not block.
type coalescer struct {
	mu          sync.Mutex
	delay       time.Duration
	send        func(Event)
	timer       *time.Timer
	keys        map[string]bool
	invalidated bool
	stopped     bool
}

func newCoalescer(delay time.Duration, send func(Event)) *coalescer {
	return &coalescer{delay: delay, send: send, keys: make(map[string]bool)}
}

// Key records a change of key.
func (c *coalescer) Key(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys[key] = true
	c.arm()
}

// Invalidate records a change that could not be attributed to a key.
func (c *coalescer) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = true
	c.arm()
}

// arm starts the window timer; callers hold mu.
func (c *coalescer) arm() {
	if c.timer == nil && !c.stopped {
		c.timer = time.AfterFunc(c.delay, c.flush)
	}
}

func (c *coalescer) flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys, invalidated := c.keys, c.invalidated
	c.keys, c.invalidated, c.timer = make(map[string]bool), false, nil
	if c.stopped {
		return
	}
	if invalidated {
		c.send(Event{Type: EventInvalidated})
		return
	}
	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)
	for _, k := range sorted {
		c.send(Event{Type: EventKeyChanged, Key: k})
	}
}

// Stop discards pending changes. Once stopped, nothing is sent.
func (c *coalescer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
