// Package state holds the client's in-memory copy of remote entities and
// applies optimistic edits to it.
//
// A Collection mirrors an informer cache: state lives locally, consumers read
// snapshots, and every change is announced on an event channel. Edits go
// through ApplyAndSync, which writes the new value before the remote call
// starts and restores the prior value if the call fails.
package state

import (
	"context"
	"sort"
	"sync"

	"tableflip.dev/daybook/pkg/entity"
	"tableflip.dev/daybook/pkg/logging"
)

// ChangeType enumerates the actions reported on the event channel.
type ChangeType string

const (
	// ChangeCreate indicates a new entity appeared.
	ChangeCreate ChangeType = "create"
	// ChangeUpdate indicates an existing entity changed.
	ChangeUpdate ChangeType = "update"
	// ChangeDelete indicates an entity was removed.
	ChangeDelete ChangeType = "delete"
	// ChangeReset indicates the whole collection was replaced.
	ChangeReset ChangeType = "reset"
)

// Change announces one mutation of a Collection.
type Change[T any] struct {
	Kind     entity.Kind
	Action   ChangeType
	ID       string
	Current  *T
	Previous *T
	// Rollback is set when the change reverts a failed optimistic edit.
	Rollback bool
}

// MutateFunc computes the next value of an entity from its current value.
// exists is false when the entity is not in the collection; returning
// keep=false removes it. Implementations must not modify current in place.
type MutateFunc[T any] func(current T, exists bool) (next T, keep bool)

// RemoteFunc performs the remote call that confirms an edit.
type RemoteFunc func(ctx context.Context) error

type options struct {
	fencing bool
	refresh func(ctx context.Context) error
	buffer  int
}

// Option configures a Collection.
type Option func(*options)

// WithoutFencing makes every failed edit roll back to the value it replaced,
// even when newer edits of the same entity were applied since. A slow failure
// can then revert a newer value.
func WithoutFencing() Option {
	return func(o *options) {
		o.fencing = false
	}
}

// WithRefresh runs fn in the background after each confirmed edit so server
// side derived fields are picked up. Refresh failures are logged only.
func WithRefresh(fn func(ctx context.Context) error) Option {
	return func(o *options) {
		o.refresh = fn
	}
}

// WithEventBuffer sizes the event channel. Events are dropped when it is full.
func WithEventBuffer(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.buffer = n
		}
	}
}

// intent is the in-memory record of one optimistic edit.
type intent[T any] struct {
	seq         uint64
	prior       T
	priorExists bool
}

// Collection is the in-memory state of one entity kind.
type Collection[T any] struct {
	kind entity.Kind
	idOf func(T) string
	opts options

	mu      sync.Mutex
	items   map[string]T
	seq     uint64
	last    map[string]uint64
	pending map[string][]*intent[T]

	inflight sync.WaitGroup
	eventCh  chan Change[T]
}

// New returns an empty collection of kind. idOf extracts the identifier of an
// item.
func New[T any](kind entity.Kind, idOf func(T) string, opts ...Option) *Collection[T] {
	o := options{fencing: true, buffer: 64}
	for _, opt := range opts {
		opt(&o)
	}
	return &Collection[T]{
		kind:    kind,
		idOf:    idOf,
		opts:    o,
		items:   make(map[string]T),
		last:    make(map[string]uint64),
		pending: make(map[string][]*intent[T]),
		eventCh: make(chan Change[T], o.buffer),
	}
}

// Kind is the entity kind held by the collection.
func (c *Collection[T]) Kind() entity.Kind {
	return c.kind
}

// Events exposes the change channel.
func (c *Collection[T]) Events() <-chan Change[T] {
	return c.eventCh
}

// Replace swaps the whole content for items, typically after a read from the
// remote store. Edits still in flight keep their rollback values.
func (c *Collection[T]) Replace(items []T) {
	c.mu.Lock()
	c.items = make(map[string]T, len(items))
	for _, item := range items {
		id := c.idOf(item)
		if id == "" {
			continue
		}
		c.items[id] = item
	}
	c.mu.Unlock()
	c.emit(Change[T]{Kind: c.kind, Action: ChangeReset})
}

// Get returns the current value of id.
func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[id]
	return v, ok
}

// List returns the current values ordered by id.
func (c *Collection[T]) List() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.items))
	for id := range c.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.items[id])
	}
	return out
}

// Len reports the number of entities held.
func (c *Collection[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Pending reports how many edits of id await confirmation.
func (c *Collection[T]) Pending(id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending[id])
}

// Upsert stores a confirmed value without a remote call.
func (c *Collection[T]) Upsert(item T) {
	id := c.idOf(item)
	if id == "" {
		return
	}
	c.mu.Lock()
	prev, existed := c.items[id]
	c.items[id] = item
	c.mu.Unlock()
	c.emit(changeFor(c.kind, id, &item, existed, prev, false))
}

// Remove deletes a confirmed value without a remote call.
func (c *Collection[T]) Remove(id string) {
	c.mu.Lock()
	prev, existed := c.items[id]
	delete(c.items, id)
	c.mu.Unlock()
	if existed {
		c.emit(Change[T]{Kind: c.kind, Action: ChangeDelete, ID: id, Previous: &prev})
	}
}

// ApplyAndSync applies mutate to id immediately and then runs remote in the
// background. The returned channel yields the outcome of remote exactly once.
//
// On failure the entity is restored to the exact value it held before this
// call, or removed again if it did not exist. With fencing (the default) a
// failure only touches the visible value while this is the newest edit of
// the entity; otherwise the value this edit replaced becomes the rollback
// value of the next newer edit.
func (c *Collection[T]) ApplyAndSync(ctx context.Context, id string, mutate MutateFunc[T], remote RemoteFunc) <-chan error {
	result := make(chan error, 1)

	c.mu.Lock()
	prior, existed := c.items[id]
	next, keep := mutate(prior, existed)
	if keep {
		c.items[id] = next
	} else {
		delete(c.items, id)
	}
	c.seq++
	c.last[id] = c.seq
	in := &intent[T]{seq: c.seq, prior: prior, priorExists: existed}
	c.pending[id] = append(c.pending[id], in)
	c.mu.Unlock()

	if keep {
		c.emit(changeFor(c.kind, id, &next, existed, prior, false))
	} else if existed {
		c.emit(Change[T]{Kind: c.kind, Action: ChangeDelete, ID: id, Previous: &prior})
	}

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		defer close(result)

		err := remote(ctx)
		if err != nil {
			logging.Debugf("state: %s %s: remote failed, rolling back: %v", c.kind, id, err)
			c.rollback(id, in)
			result <- err
			return
		}
		c.confirm(id, in)
		if c.opts.refresh != nil {
			c.inflight.Add(1)
			go func() {
				defer c.inflight.Done()
				if err := c.opts.refresh(context.WithoutCancel(ctx)); err != nil {
					logging.Warnf("state: refresh %s: %v", c.kind, err)
				}
			}()
		}
		result <- nil
	}()

	return result
}

// Op is one edit of a batch.
type Op[T any] struct {
	ID     string
	Mutate MutateFunc[T]
	Remote RemoteFunc
}

// ApplyAll applies every op through ApplyAndSync and waits for all of them.
// Ops are independent: a failure rolls back only its own entity. The returned
// slice holds the outcome of each op in order.
func (c *Collection[T]) ApplyAll(ctx context.Context, ops []Op[T]) []error {
	results := make([]<-chan error, len(ops))
	for i, op := range ops {
		results[i] = c.ApplyAndSync(ctx, op.ID, op.Mutate, op.Remote)
	}
	errs := make([]error, len(ops))
	for i, ch := range results {
		errs[i] = <-ch
	}
	return errs
}

// Wait blocks until every remote call and background refresh started so far
// has finished.
func (c *Collection[T]) Wait() {
	c.inflight.Wait()
}

func (c *Collection[T]) confirm(id string, in *intent[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropIntentLocked(id, in)
}

func (c *Collection[T]) rollback(id string, in *intent[T]) {
	c.mu.Lock()
	queue := c.pending[id]
	idx := -1
	for i, p := range queue {
		if p == in {
			idx = i
			break
		}
	}

	if c.opts.fencing && c.last[id] != in.seq {
		// A newer edit owns the visible value. If it is still pending it was
		// built on a value that never reached the store, so it inherits this
		// edit's rollback value.
		if idx >= 0 && idx+1 < len(queue) {
			newer := queue[idx+1]
			newer.prior = in.prior
			newer.priorExists = in.priorExists
		}
		c.dropIntentLocked(id, in)
		c.mu.Unlock()
		logging.Debugf("state: %s %s: stale rollback #%d skipped", c.kind, id, in.seq)
		return
	}

	current, existed := c.items[id]
	if in.priorExists {
		c.items[id] = in.prior
	} else {
		delete(c.items, id)
	}
	if idx > 0 {
		c.last[id] = queue[idx-1].seq
	} else {
		delete(c.last, id)
	}
	c.dropIntentLocked(id, in)
	c.mu.Unlock()

	if in.priorExists {
		prior := in.prior
		c.emit(changeFor(c.kind, id, &prior, existed, current, true))
	} else if existed {
		c.emit(Change[T]{Kind: c.kind, Action: ChangeDelete, ID: id, Previous: &current, Rollback: true})
	}
}

func (c *Collection[T]) dropIntentLocked(id string, in *intent[T]) {
	queue := c.pending[id]
	for i, p := range queue {
		if p == in {
			queue = append(queue[:i:i], queue[i+1:]...)
			break
		}
	}
	if len(queue) == 0 {
		delete(c.pending, id)
		return
	}
	c.pending[id] = queue
}

func (c *Collection[T]) emit(ch Change[T]) {
	select {
	case c.eventCh <- ch:
	default:
	}
}

func changeFor[T any](kind entity.Kind, id string, current *T, existed bool, prev T, rollback bool) Change[T] {
	if !existed {
		return Change[T]{Kind: kind, Action: ChangeCreate, ID: id, Current: current, Rollback: rollback}
	}
	return Change[T]{Kind: kind, Action: ChangeUpdate, ID: id, Current: current, Previous: &prev, Rollback: rollback}
}
