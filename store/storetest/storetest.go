// Package storetest is a conformance suite every store.Store implementation
// is expected to pass.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/forestrie/go-mmrkv/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty store. Any cleanup should be registered with
// t.Cleanup.
type Factory func(t *testing.T) store.Store

var errAbort = errors.New("abort")

// Run exercises a store produced by newStore. Transaction behaviour is only
// checked if the store implements store.Transactor.
func Run(t *testing.T, newStore Factory) {
	t.Run("GetMissing", func(t *testing.T) { testGetMissing(t, newStore(t)) })
	t.Run("SetGet", func(t *testing.T) { testSetGet(t, newStore(t)) })
	t.Run("Overwrite", func(t *testing.T) { testOverwrite(t, newStore(t)) })
	t.Run("GetManyPartial", func(t *testing.T) { testGetManyPartial(t, newStore(t)) })
	t.Run("SetMany", func(t *testing.T) { testSetMany(t, newStore(t)) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, newStore(t)) })
	t.Run("DeleteMany", func(t *testing.T) { testDeleteMany(t, newStore(t)) })
	t.Run("EmptyValue", func(t *testing.T) { testEmptyValue(t, newStore(t)) })
	t.Run("Concurrent", func(t *testing.T) { testConcurrent(t, newStore(t)) })

	s := newStore(t)
	if _, ok := s.(store.Transactor); !ok {
		return
	}
	t.Run("UpdateCommit", func(t *testing.T) { testUpdateCommit(t, newStore(t)) })
	t.Run("UpdateRollback", func(t *testing.T) { testUpdateRollback(t, newStore(t)) })
}

func testGetMissing(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	values, err := s.GetMany(ctx, []string{"missing", "also-missing"})
	require.NoError(t, err)
	assert.Empty(t, values)
}

func testSetGet(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "id:hashes:1", "0xabc"))
	v, ok, err := s.Get(ctx, "id:hashes:1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "0xabc", v)
}

func testOverwrite(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "k", "1"))
	require.NoError(t, s.Set(ctx, "k", "2"))
	v, _, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "2", v)
}

func testGetManyPartial(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "a", "1"))
	require.NoError(t, s.Set(ctx, "c", "3"))
	values, err := s.GetMany(ctx, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "c": "3"}, values)

	values, err = s.GetMany(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, values)
}

func testSetMany(t *testing.T, s store.Store) {
	ctx := context.Background()
	entries := map[string]string{}
	for i := range 50 {
		entries[fmt.Sprintf("id:hashes:%d", i+1)] = fmt.Sprintf("v%d", i)
	}
	require.NoError(t, s.SetMany(ctx, entries))

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	values, err := s.GetMany(ctx, keys)
	require.NoError(t, err)
	assert.Equal(t, entries, values)

	require.NoError(t, s.SetMany(ctx, map[string]string{}))
}

func testDelete(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "k", "v"))
	require.NoError(t, s.Delete(ctx, "k"))
	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	// deleting a missing key is not an error
	require.NoError(t, s.Delete(ctx, "k"))
}

func testDeleteMany(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.SetMany(ctx, map[string]string{"a": "1", "b": "2", "c": "3"}))
	require.NoError(t, s.DeleteMany(ctx, []string{"a", "b", "missing"}))
	values, err := s.GetMany(ctx, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"c": "3"}, values)
}

func testEmptyValue(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "empty", ""))
	v, ok, err := s.Get(ctx, "empty")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "", v)
}

func testConcurrent(t *testing.T, s store.Store) {
	ctx := context.Background()
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 20 {
				key := fmt.Sprintf("w%d:%d", w, i)
				if err := s.Set(ctx, key, key); err != nil {
					errs <- err
					return
				}
				if _, _, err := s.Get(ctx, key); err != nil {
					errs <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	v, ok, err := s.Get(ctx, "w7:19")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "w7:19", v)
}

func testUpdateCommit(t *testing.T, s store.Store) {
	ctx := context.Background()
	tr := s.(store.Transactor)
	require.NoError(t, s.Set(ctx, "gone", "x"))

	err := tr.Update(ctx, func(tx store.Store) error {
		if err := tx.SetMany(ctx, map[string]string{"a": "1", "b": "2"}); err != nil {
			return err
		}
		// writes are visible inside the transaction
		v, ok, err := tx.Get(ctx, "a")
		if err != nil {
			return err
		}
		if !ok || v != "1" {
			return fmt.Errorf("read own write: got %q %v", v, ok)
		}
		return tx.Delete(ctx, "gone")
	})
	require.NoError(t, err)

	values, err := s.GetMany(ctx, []string{"a", "b", "gone"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, values)
}

func testUpdateRollback(t *testing.T, s store.Store) {
	ctx := context.Background()
	tr := s.(store.Transactor)
	require.NoError(t, s.Set(ctx, "kept", "x"))

	err := tr.Update(ctx, func(tx store.Store) error {
		if err := tx.Set(ctx, "a", "1"); err != nil {
			return err
		}
		if err := tx.Delete(ctx, "kept"); err != nil {
			return err
		}
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	values, err := s.GetMany(ctx, []string{"a", "kept"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"kept": "x"}, values)
}
