package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/daybook/pkg/entity"
	"tableflip.dev/daybook/pkg/store"
	"tableflip.dev/daybook/pkg/timeutil"
)

type brokenKV struct{}

func (brokenKV) Get(string) (string, bool, error) { return "", false, errors.New("boom") }
func (brokenKV) Put(string, string) error         { return errors.New("quota exceeded") }
func (brokenKV) Delete(string) error              { return errors.New("boom") }
func (brokenKV) Keys(context.Context, string) ([]string, error) {
	return nil, errors.New("boom")
}

func TestKey(t *testing.T) {
	assert.Equal(t, "cache_tasks_all", Key(entity.KindTasks, ""))
	assert.Equal(t, "cache_events_2024-06", Key(entity.KindEvents, "2024-06"))
}

func TestTTLBoundary(t *testing.T) {
	t0 := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	clock := timeutil.NewFixedClock(t0)
	c := New(store.NewMemory(), WithClock(clock))
	key := Key(entity.KindTasks, "")
	rows := []entity.Row{{"id": "t1", "title": "water plants"}}

	c.Put(key, rows)

	clock.Set(t0.Add(DefaultTTL - time.Millisecond))
	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "t1", got.Data[0].ID())
	assert.Equal(t, t0, got.Written().UTC())

	clock.Set(t0.Add(DefaultTTL + time.Millisecond))
	_, ok = c.Get(key)
	assert.False(t, ok)

	// A fresh write makes the scope usable again.
	c.Put(key, rows)
	_, ok = c.Get(key)
	assert.True(t, ok)
}

func TestCustomTTL(t *testing.T) {
	t0 := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	clock := timeutil.NewFixedClock(t0)
	c := New(store.NewMemory(), WithClock(clock), WithTTL(time.Minute))
	c.Put("cache_habits_all", nil)
	clock.Advance(59 * time.Second)
	got, ok := c.Get("cache_habits_all")
	require.True(t, ok)
	assert.Empty(t, got.Data)
	clock.Advance(time.Second)
	_, ok = c.Get("cache_habits_all")
	assert.False(t, ok)
}

func TestCorruptEntryIsAbsent(t *testing.T) {
	kv := store.NewMemory()
	require.NoError(t, kv.Put("cache_tasks_all", "{not json"))
	_, ok := New(kv).Get("cache_tasks_all")
	assert.False(t, ok)
}

func TestStorageFailuresAreSwallowed(t *testing.T) {
	c := New(brokenKV{})
	c.Put("cache_tasks_all", []entity.Row{{"id": "x"}})
	_, ok := c.Get("cache_tasks_all")
	assert.False(t, ok)
}

func TestStoredFormat(t *testing.T) {
	t0 := time.UnixMilli(1717232400000)
	kv := store.NewMemory()
	New(kv, WithClock(timeutil.NewFixedClock(t0))).Put("cache_tasks_all", []entity.Row{{"id": "a"}})
	raw, ok, err := kv.Get("cache_tasks_all")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"ts":1717232400000,"data":[{"id":"a"}]}`, raw)
}
