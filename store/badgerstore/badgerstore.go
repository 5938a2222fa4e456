// Package badgerstore is a store.Store over a badger key-value database.
package badgerstore

import (
	"context"
	"errors"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/forestrie/go-mmrkv/store"
)

type Options struct {
	InMemory bool
	// Logger receives badger's internal logging. nil silences it.
	Logger badger.Logger
}

type Option func(*Options)

// WithInMemory keeps all data in memory, the directory is ignored
func WithInMemory() Option {
	return func(o *Options) { o.InMemory = true }
}

func WithLogger(l badger.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

type Store struct {
	db *badger.DB
}

var (
	_ store.Store      = (*Store)(nil)
	_ store.Transactor = (*Store)(nil)
)

// Open opens, creating if necessary, the database in dir.
func Open(dir string, opts ...Option) (*Store, error) {
	o := Options{}
	for _, opt := range opts {
		opt(&o)
	}

	bopts := badger.DefaultOptions(dir).WithLogger(o.Logger)
	if o.InMemory {
		bopts = bopts.WithDir("").WithValueDir("").WithInMemory(true)
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := s.view(ctx, func(t *txn) error {
		var err error
		value, found, err = t.Get(ctx, key)
		return err
	})
	return value, found, err
}

func (s *Store) GetMany(ctx context.Context, keys []string) (map[string]string, error) {
	var values map[string]string
	err := s.view(ctx, func(t *txn) error {
		var err error
		values, err = t.GetMany(ctx, keys)
		return err
	})
	return values, err
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.Update(ctx, func(tx store.Store) error { return tx.Set(ctx, key, value) })
}

func (s *Store) SetMany(ctx context.Context, entries map[string]string) error {
	return s.Update(ctx, func(tx store.Store) error { return tx.SetMany(ctx, entries) })
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.Update(ctx, func(tx store.Store) error { return tx.Delete(ctx, key) })
}

func (s *Store) DeleteMany(ctx context.Context, keys []string) error {
	return s.Update(ctx, func(tx store.Store) error { return tx.DeleteMany(ctx, keys) })
}

// Update runs fn in a single read-write badger transaction.
func (s *Store) Update(ctx context.Context, fn func(tx store.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(bt *badger.Txn) error {
		return fn(&txn{bt: bt})
	})
}

func (s *Store) view(ctx context.Context, fn func(t *txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(bt *badger.Txn) error {
		return fn(&txn{bt: bt})
	})
}

type txn struct {
	bt *badger.Txn
}

func (t *txn) Get(ctx context.Context, key string) (string, bool, error) {
	item, err := t.bt.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	b, err := item.ValueCopy(nil)
	if err != nil {
		return "", false, err
	}
	return string(b), true, nil
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
	return t.bt.Set([]byte(key), []byte(value))
}

func (t *txn) SetMany(ctx context.Context, entries map[string]string) error {
	for k, v := range entries {
		if err := t.bt.Set([]byte(k), []byte(v)); err != nil {
			return err
		}
	}
	return nil
}

func (t *txn) Delete(ctx context.Context, key string) error {
	return t.bt.Delete([]byte(key))
}

func (t *txn) DeleteMany(ctx context.Context, keys []string) error {
	for _, k := range keys {
		if err := t.bt.Delete([]byte(k)); err != nil {
			return err
		}
	}
	return nil
}
