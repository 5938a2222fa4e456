// Package store defines the key-value capability the accumulator persists
// through, and provides an in-memory implementation plus small typed helpers.
//
// Keys and values are strings. Reads of a key that was never written are
// not errors: Get reports found == false and GetMany omits the key.
package store

import (
	"context"
	"errors"
)

var (
	ErrClosed       = errors.New("store is closed")
	ErrInvalidValue = errors.New("stored value is not valid for the requested type")
)

type Reader interface {
	Get(ctx context.Context, key string) (string, bool, error)
	// GetMany returns the values of the keys that exist, keyed by key
	GetMany(ctx context.Context, keys []string) (map[string]string, error)
}

type Writer interface {
	Set(ctx context.Context, key, value string) error
	// SetMany writes all entries. Backends that can, do so atomically.
	SetMany(ctx context.Context, entries map[string]string) error
	Delete(ctx context.Context, key string) error
	DeleteMany(ctx context.Context, keys []string) error
}

type Store interface {
	Reader
	Writer
}

// Transactor is implemented by stores that can run a sequence of reads and
// writes as one atomic unit. If fn returns an error nothing it wrote is
// applied.
type Transactor interface {
	Update(ctx context.Context, fn func(tx Store) error) error
}

// Update runs fn in a transaction if s supports them, otherwise it runs fn
// directly against s.
func Update(ctx context.Context, s Store, fn func(tx Store) error) error {
	if t, ok := s.(Transactor); ok {
		return t.Update(ctx, fn)
	}
	return fn(s)
}
