package store

import (
	"context"
	"strconv"
)

// Table is a hash table of uint64 index to string value, stored as keys
// "<prefix><index>".
type Table struct {
	store  Store
	prefix string
}

func NewTable(s Store, prefix string) *Table {
	return &Table{store: s, prefix: prefix}
}

func (t *Table) WithStore(s Store) *Table {
	return &Table{store: s, prefix: t.prefix}
}

func (t *Table) Key(index uint64) string {
	return t.prefix + strconv.FormatUint(index, 10)
}

func (t *Table) Get(ctx context.Context, index uint64) (string, bool, error) {
	return t.store.Get(ctx, t.Key(index))
}

// GetMany returns the values found, keyed by index
func (t *Table) GetMany(ctx context.Context, indices []uint64) (map[uint64]string, error) {
	keys := make([]string, len(indices))
	byKey := make(map[string]uint64, len(indices))
	for i, index := range indices {
		keys[i] = t.Key(index)
		byKey[keys[i]] = index
	}
	values, err := t.store.GetMany(ctx, keys)
	if err != nil {
		return nil, err
	}
	found := make(map[uint64]string, len(values))
	for k, v := range values {
		found[byKey[k]] = v
	}
	return found, nil
}

func (t *Table) Set(ctx context.Context, index uint64, value string) error {
	return t.store.Set(ctx, t.Key(index), value)
}

func (t *Table) SetMany(ctx context.Context, entries map[uint64]string) error {
	return t.store.SetMany(ctx, t.Entries(entries))
}

// Entries converts index keyed entries to store keys, for callers staging
// writes from several tables into one SetMany.
func (t *Table) Entries(entries map[uint64]string) map[string]string {
	kv := make(map[string]string, len(entries))
	for index, v := range entries {
		kv[t.Key(index)] = v
	}
	return kv
}

func (t *Table) Delete(ctx context.Context, index uint64) error {
	return t.store.Delete(ctx, t.Key(index))
}
