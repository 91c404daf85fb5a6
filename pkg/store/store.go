// Package store is the persistent key/value storage that survives restarts.
// The local cache and the reminder dedup markers both live here.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Config locates the on-disk store.
type Config interface {
	BasePath() string
}

// KV is a flat string key/value store. Keys share a namespace, so callers
// prefix them (cache_..., reminder_triggered_...).
type KV interface {
	Get(key string) (string, bool, error)
	Put(key, value string) error
	Delete(key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Memory is a KV held in a map. It is used by tests and when no base path is
// configured.
type Memory struct {
	mu   sync.Mutex
	data map[string]string
}

var _ KV = (*Memory)(nil)

// NewMemory returns an empty in-memory KV.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Put(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *Memory) Keys(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
