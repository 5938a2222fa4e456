// Package boltstore is a store.Store over a single bbolt bucket.
package boltstore

import (
	"context"
	"time"

	"github.com/forestrie/go-mmrkv/store"
	bolt "go.etcd.io/bbolt"
)

const DefaultBucket = "mmr"

type Options struct {
	Bucket  string
	Timeout time.Duration
}

type Option func(*Options)

func WithBucket(name string) Option {
	return func(o *Options) { o.Bucket = name }
}

// WithTimeout bounds how long Open waits for the file lock
func WithTimeout(d time.Duration) Option {
	return func(o *Options) { o.Timeout = d }
}

type Store struct {
	db     *bolt.DB
	bucket []byte
}

var (
	_ store.Store      = (*Store)(nil)
	_ store.Transactor = (*Store)(nil)
)

func Open(path string, opts ...Option) (*Store, error) {
	o := Options{Bucket: DefaultBucket, Timeout: time.Second}
	for _, opt := range opts {
		opt(&o)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: o.Timeout})
	if err != nil {
		return nil, err
	}
	s := &Store{db: db, bucket: []byte(o.Bucket)}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(s.bucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
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
		value, found, _ = t.Get(ctx, key)
		return nil
	})
	return value, found, err
}

func (s *Store) GetMany(ctx context.Context, keys []string) (map[string]string, error) {
	var values map[string]string
	err := s.view(ctx, func(t *txn) error {
		values, _ = t.GetMany(ctx, keys)
		return nil
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

// Update runs fn in one bolt read-write transaction. bolt serialises
// writers, so concurrent appends through Update are safe.
func (s *Store) Update(ctx context.Context, fn func(tx store.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return fn(&txn{b: tx.Bucket(s.bucket)})
	})
}

func (s *Store) view(ctx context.Context, fn func(t *txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(tx *bolt.Tx) error {
		return fn(&txn{b: tx.Bucket(s.bucket)})
	})
}

type txn struct {
	b *bolt.Bucket
}

// Get copies the value, bolt's slice is only valid for the transaction
func (t *txn) Get(ctx context.Context, key string) (string, bool, error) {
	v := t.b.Get([]byte(key))
	if v == nil {
		return "", false, nil
	}
	return string(v), true, nil
}

func (t *txn) GetMany(ctx context.Context, keys []string) (map[string]string, error) {
	values := make(map[string]string, len(keys))
	for _, k := range keys {
		if v := t.b.Get([]byte(k)); v != nil {
			values[k] = string(v)
		}
	}
	return values, nil
}

func (t *txn) Set(ctx context.Context, key, value string) error {
	// bolt treats a nil value as absent, so store empty strings as empty
	// non-nil slices
	return t.b.Put([]byte(key), append([]byte{}, value...))
}

func (t *txn) SetMany(ctx context.Context, entries map[string]string) error {
	for k, v := range entries {
		if err := t.Set(ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}

func (t *txn) Delete(ctx context.Context, key string) error {
	return t.b.Delete([]byte(key))
}

func (t *txn) DeleteMany(ctx context.Context, keys []string) error {
	for _, k := range keys {
		if err := t.b.Delete([]byte(k)); err != nil {
			return err
		}
	}
	return nil
}
