// Package leveldbstore is a store.Store over goleveldb.
//
// leveldb has no read-write transactions. Update serialises callers with a
// mutex and commits everything fn wrote as one batch, so concurrent Update
// calls behave as transactions provided all writers go through this Store.
package leveldbstore

import (
	"context"
	"errors"
	"sync"

	"github.com/forestrie/go-mmrkv/store"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

type Store struct {
	db *leveldb.DB
	mu sync.Mutex
}

var (
	_ store.Store      = (*Store)(nil)
	_ store.Transactor = (*Store)(nil)
)

// Open opens, creating if necessary, the database at path
func Open(path string, o *opt.Options) (*Store, error) {
	db, err := leveldb.OpenFile(path, o)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// OpenMemory returns a store backed by leveldb's in-memory storage
func OpenMemory() (*Store, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	return get(s.db, key)
}

func (s *Store) GetMany(ctx context.Context, keys []string) (map[string]string, error) {
	snap, err := s.db.GetSnapshot()
	if err != nil {
		return nil, err
	}
	defer snap.Release()
	return getMany(snap, keys)
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.db.Put([]byte(key), []byte(value), nil)
}

func (s *Store) SetMany(ctx context.Context, entries map[string]string) error {
	b := new(leveldb.Batch)
	for k, v := range entries {
		b.Put([]byte(k), []byte(v))
	}
	return s.db.Write(b, nil)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.db.Delete([]byte(key), nil)
}

func (s *Store) DeleteMany(ctx context.Context, keys []string) error {
	b := new(leveldb.Batch)
	for _, k := range keys {
		b.Delete([]byte(k))
	}
	return s.db.Write(b, nil)
}

func (s *Store) Update(ctx context.Context, fn func(tx store.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	t := &txn{db: s.db, batch: new(leveldb.Batch), pending: map[string]*string{}}
	if err := fn(t); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Write(t.batch, nil)
}

type getter interface {
	Get(key []byte, ro *opt.ReadOptions) ([]byte, error)
}

func get(g getter, key string) (string, bool, error) {
	v, err := g.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(v), true, nil
}

func getMany(g getter, keys []string) (map[string]string, error) {
	values := make(map[string]string, len(keys))
	for _, k := range keys {
		v, ok, err := get(g, k)
		if err != nil {
			return nil, err
		}
		if ok {
			values[k] = v
		}
	}
	return values, nil
}

// txn accumulates a batch. pending records the writes so reads inside the
// transaction see them, a nil entry is a pending delete.
type txn struct {
	db      *leveldb.DB
	batch   *leveldb.Batch
	pending map[string]*string
}

func (t *txn) Get(ctx context.Context, key string) (string, bool, error) {
	if v, ok := t.pending[key]; ok {
		if v == nil {
			return "", false, nil
		}
		return *v, true, nil
	}
	return get(t.db, key)
}

func (t *txn) GetMany(ctx context.Context, keys []string) (map[string]string, error) {
	values := make(map[string]string, len(keys))
	for _, k := range keys {
		v, ok, err := t.Get(ctx, k)
		if err != nil {
			return nil, err
		}
		if ok {
			values[k] = v
		}
	}
	return values, nil
}

func (t *txn) Set(ctx context.Context, key, value string) error {
	t.batch.Put([]byte(key), []byte(value))
	t.pending[key] = &value
	return nil
}

func (t *txn) SetMany(ctx context.Context, entries map[string]string) error {
	for k, v := range entries {
		t.Set(ctx, k, v)
	}
	return nil
}

func (t *txn) Delete(ctx context.Context, key string) error {
	t.batch.Delete([]byte(key))
	t.pending[key] = nil
	return nil
}

func (t *txn) DeleteMany(ctx context.Context, keys []string) error {
	for _, k := range keys {
		t.Delete(ctx, k)
	}
	return nil
}
