package remote

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"tableflip.dev/daybook/pkg/apperr"
	"tableflip.dev/daybook/pkg/entity"
)

// Call describes one request made against Memory.
type Call struct {
	Action Action
	Kind   entity.Kind
	ID     string
	Month  string
}

// Memory is an in-process Store. It backs tests and offline demos.
type Memory struct {
	mu    sync.Mutex
	rows  map[entity.Kind][]entity.Row
	calls []Call

	// Hook runs before every call with the lock released. A non-nil error
	// fails the call the same way a success:false reply would. Hooks may
	// block to hold a call in flight.
	Hook func(ctx context.Context, call Call) error
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{rows: make(map[entity.Kind][]entity.Row)}
}

// Seed appends rows to kind without recording a call.
func (m *Memory) Seed(kind entity.Kind, rows ...entity.Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rows {
		m.rows[kind] = append(m.rows[kind], r.Clone())
	}
}

// Rows returns a copy of the rows of kind.
func (m *Memory) Rows(kind entity.Kind) []entity.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.Row, 0, len(m.rows[kind]))
	for _, r := range m.rows[kind] {
		out = append(out, r.Clone())
	}
	return out
}

// Calls returns the calls made so far.
func (m *Memory) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

func (m *Memory) before(ctx context.Context, call Call) error {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	hook := m.Hook
	m.mu.Unlock()

	op := fmt.Sprintf("%s %s", call.Action, call.Kind)
	if err := ctx.Err(); err != nil {
		return apperr.NewRemoteError(op, err)
	}
	if hook != nil {
		if err := hook(ctx, call); err != nil {
			return apperr.NewRemoteError(op, err)
		}
	}
	return nil
}

func (m *Memory) List(ctx context.Context, kind entity.Kind, month string) ([]entity.Row, error) {
	if err := m.before(ctx, Call{Action: ActionGet, Kind: kind, Month: month}); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.Row, 0, len(m.rows[kind]))
	for _, r := range m.rows[kind] {
		if month != "" && !inMonth(r, month) {
			continue
		}
		out = append(out, r.Clone())
	}
	return out, nil
}

func (m *Memory) Create(ctx context.Context, kind entity.Kind, row entity.Row) (entity.Row, error) {
	row = row.Clone()
	if row == nil {
		row = entity.Row{}
	}
	if row.ID() == "" {
		row["id"] = uuid.NewString()
	}
	if err := m.before(ctx, Call{Action: ActionCreate, Kind: kind, ID: row.ID()}); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[kind] = append(m.rows[kind], row.Clone())
	return row, nil
}

func (m *Memory) Update(ctx context.Context, kind entity.Kind, id string, patch entity.Row) error {
	if err := m.before(ctx, Call{Action: ActionUpdate, Kind: kind, ID: id}); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.rows[kind] {
		if r.ID() == id {
			merged := r.Clone()
			for k, v := range patch {
				merged[k] = v
			}
			m.rows[kind][i] = merged
			return nil
		}
	}
	return apperr.NewRemoteError(fmt.Sprintf("update %s", kind), errors.New("row not found")).WithContext("id", id)
}

func (m *Memory) Delete(ctx context.Context, kind entity.Kind, id string) error {
	if err := m.before(ctx, Call{Action: ActionDelete, Kind: kind, ID: id}); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.rows[kind]
	for i, r := range rows {
		if r.ID() == id {
			m.rows[kind] = append(rows[:i:i], rows[i+1:]...)
			return nil
		}
	}
	return apperr.NewRemoteError(fmt.Sprintf("delete %s", kind), errors.New("row not found")).WithContext("id", id)
}

// inMonth keeps rows whose date-like column starts with the month token.
// Rows without one are kept.
func inMonth(r entity.Row, month string) bool {
	for _, k := range []string{"date", "datetime", "due_date", "dueDate"} {
		if v, ok := r[k].(string); ok && v != "" {
			return strings.HasPrefix(v, month)
		}
	}
	return true
}
