package azblobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/datatrails/go-datatrails-common/azblob"
	"github.com/forestrie/go-mmrkv/store"
	"github.com/forestrie/go-mmrkv/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBlobs is an in memory blob container
type fakeBlobs struct {
	mu    sync.Mutex
	blobs map[string][]byte
	fail  error
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{blobs: map[string][]byte{}}
}

func (f *fakeBlobs) Reader(ctx context.Context, identity string, opts ...azblob.Option) (*azblob.ReaderResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	data, ok := f.blobs[identity]
	if !ok {
		return nil, fmt.Errorf("%s: %w", identity, ErrBlobNotFound)
	}
	return &azblob.ReaderResponse{
		Reader:        io.NopCloser(bytes.NewReader(data)),
		ContentLength: int64(len(data)),
	}, nil
}

func (f *fakeBlobs) Put(ctx context.Context, identity string, source io.ReadSeekCloser, opts ...azblob.Option) (*azblob.WriteResponse, error) {
	data, err := io.ReadAll(source)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	f.blobs[identity] = data
	return &azblob.WriteResponse{}, nil
}

func (f *fakeBlobs) Delete(ctx context.Context, identity string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.blobs[identity]; !ok {
		return ErrBlobNotFound
	}
	delete(f.blobs, identity)
	return nil
}

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return New(newFakeBlobs())
	})
}

func TestBlobPath(t *testing.T) {
	f := newFakeBlobs()
	s := New(f, WithPrefix("tenant/abc"))
	assert.Equal(t, "tenant/abc/id:hashes:3", s.BlobPath("id:hashes:3"))

	require.NoError(t, s.Set(context.Background(), "id:root_hash", "0x00"))
	assert.Equal(t, []byte("0x00"), f.blobs["tenant/abc/id:root_hash"])
}

func TestBackendErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	f := newFakeBlobs()
	boom := errors.New("service unavailable")
	f.fail = boom
	s := New(f, WithConcurrency(2))

	_, _, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, boom)
	_, err = s.GetMany(ctx, []string{"a", "b", "c"})
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, s.SetMany(ctx, map[string]string{"a": "1"}), boom)
}

func TestWrapBlobNotFound(t *testing.T) {
	assert.Nil(t, WrapBlobNotFound(nil))

	other := errors.New("other")
	assert.Equal(t, other, WrapBlobNotFound(other))
	assert.False(t, IsBlobNotFound(other))
	assert.False(t, IsBlobNotFound(nil))

	wrapped := fmt.Errorf("reading: %w", ErrBlobNotFound)
	assert.True(t, IsBlobNotFound(wrapped))
	assert.Equal(t, wrapped, WrapBlobNotFound(wrapped))
}
