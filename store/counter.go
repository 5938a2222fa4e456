package store

import (
	"context"
	"fmt"
	"strconv"
)

// Counter is a uint64 persisted as a decimal string at a single key. A
// missing key reads as zero.
type Counter struct {
	store Store
	key   string
}

func NewCounter(s Store, key string) *Counter {
	return &Counter{store: s, key: key}
}

func (c *Counter) Key() string { return c.key }

// WithStore returns the same counter bound to a different store, typically a
// transaction.
func (c *Counter) WithStore(s Store) *Counter {
	return &Counter{store: s, key: c.key}
}

func (c *Counter) Get(ctx context.Context) (uint64, error) {
	v, ok, err := c.store.Get(ctx, c.key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return ParseCount(c.key, v)
}

func (c *Counter) Set(ctx context.Context, value uint64) error {
	return c.store.Set(ctx, c.key, FormatCount(value))
}

// Increment adds one and returns the new value. It is a read followed by a
// write, so callers needing atomicity run it inside Update.
func (c *Counter) Increment(ctx context.Context) (uint64, error) {
	v, err := c.Get(ctx)
	if err != nil {
		return 0, err
	}
	v++
	if err := c.Set(ctx, v); err != nil {
		return 0, err
	}
	return v, nil
}

func FormatCount(value uint64) string {
	return strconv.FormatUint(value, 10)
}

// ParseCount parses a value written by FormatCount. key is used for error
// context only.
func ParseCount(key, value string) (uint64, error) {
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, value)
	}
	return n, nil
}
