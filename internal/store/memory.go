package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

type Memory struct {
	mu      sync.RWMutex
	entries map[string]map[string]Entry
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]map[string]Entry),
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, namespace, key string) (Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[namespace][key]
	if !ok {
		return Entry{}, fmt.Errorf("%s/%s: %w", namespace, key, ErrNotFound)
	}
	value := make([]byte, len(entry.Value))
	copy(value, entry.Value)
	entry.Value = value
	return entry, nil
}

func (m *Memory) Put(_ context.Context, namespace, key string, value []byte, expectedRevision int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ns, ok := m.entries[namespace]
	if !ok {
		ns = make(map[string]Entry)
		m.entries[namespace] = ns
	}
	current := ns[key].Revision
	if err := checkRevision(current, expectedRevision); err != nil {
		return current, err
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	ns[key] = Entry{Value: stored, Revision: current + 1, UpdatedAt: m.now()}
	return current + 1, nil
}

func (m *Memory) Delete(_ context.Context, namespace, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries[namespace], key)
	return nil
}

func (m *Memory) Keys(_ context.Context, namespace string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.entries[namespace]))
	for k := range m.entries[namespace] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *Memory) Close() error { return nil }
