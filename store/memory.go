package store

import (
	"context"
	"sync"
)

// Memory is a map backed Store. It is safe for concurrent use and supports
// Update transactions.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) GetMany(ctx context.Context, keys []string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	values := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := m.data[k]; ok {
			values[k] = v
		}
	}
	return values, nil
}

func (m *Memory) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) SetMany(ctx context.Context, entries map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range entries {
		m.data[k] = v
	}
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *Memory) DeleteMany(ctx context.Context, keys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

// Len returns the number of keys held
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Update holds the write lock for the duration of fn. Writes are buffered and
// applied only if fn succeeds.
func (m *Memory) Update(ctx context.Context, fn func(tx Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := newOverlay(m.data)
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	tx.apply(m.data)
	return nil
}

// overlay buffers writes over a base map. It is not safe for concurrent use,
// its owner holds the base's lock.
type overlay struct {
	base    map[string]string
	writes  map[string]string
	deletes map[string]struct{}
}

func newOverlay(base map[string]string) *overlay {
	return &overlay{
		base:    base,
		writes:  make(map[string]string),
		deletes: make(map[string]struct{}),
	}
}

func (o *overlay) lookup(key string) (string, bool) {
	if v, ok := o.writes[key]; ok {
		return v, true
	}
	if _, ok := o.deletes[key]; ok {
		return "", false
	}
	v, ok := o.base[key]
	return v, ok
}

func (o *overlay) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok := o.lookup(key)
	return v, ok, nil
}

func (o *overlay) GetMany(ctx context.Context, keys []string) (map[string]string, error) {
	values := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := o.lookup(k); ok {
			values[k] = v
		}
	}
	return values, nil
}

func (o *overlay) Set(ctx context.Context, key, value string) error {
	delete(o.deletes, key)
	o.writes[key] = value
	return nil
}

func (o *overlay) SetMany(ctx context.Context, entries map[string]string) error {
	for k, v := range entries {
		delete(o.deletes, k)
		o.writes[k] = v
	}
	return nil
}

func (o *overlay) Delete(ctx context.Context, key string) error {
	delete(o.writes, key)
	o.deletes[key] = struct{}{}
	return nil
}

func (o *overlay) DeleteMany(ctx context.Context, keys []string) error {
	for _, k := range keys {
		delete(o.writes, k)
		o.deletes[k] = struct{}{}
	}
	return nil
}

func (o *overlay) apply(data map[string]string) {
	for k := range o.deletes {
		delete(data, k)
	}
	for k, v := range o.writes {
		data[k] = v
	}
}
