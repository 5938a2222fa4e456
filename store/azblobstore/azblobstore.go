// Package azblobstore is a store.Store over Azure blob storage. Each key is a
// blob under a common prefix and the blob content is the value.
//
// Blob storage has no multi-blob transactions, so Store does not implement
// store.Transactor and SetMany is not atomic. An interrupted append can leave
// node hashes written without the counts that reference them. They are
// overwritten by the next append at the same position.
package azblobstore

import (
	"context"
	"io"
	"strings"

	"github.com/datatrails/go-datatrails-common/azblob"
	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/forestrie/go-mmrkv/store"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPrefix      = "v1/mmrkv/"
	defaultConcurrency = 8
)

// blobClient is the subset of *azblob.Storer used here
type blobClient interface {
	Reader(ctx context.Context, identity string, opts ...azblob.Option) (*azblob.ReaderResponse, error)
	Put(ctx context.Context, identity string, source io.ReadSeekCloser, opts ...azblob.Option) (*azblob.WriteResponse, error)
	Delete(ctx context.Context, identity string) error
}

var _ blobClient = (*azblob.Storer)(nil)

type Options struct {
	Prefix      string
	Concurrency int
	Log         logger.Logger
}

type Option func(*Options)

func WithPrefix(prefix string) Option {
	return func(o *Options) { o.Prefix = prefix }
}

// WithConcurrency bounds the parallel blob requests made by the Many methods
func WithConcurrency(n int) Option {
	return func(o *Options) { o.Concurrency = n }
}

func WithLogger(log logger.Logger) Option {
	return func(o *Options) { o.Log = log }
}

type Store struct {
	Options
	client blobClient
}

var _ store.Store = (*Store)(nil)

func New(client blobClient, opts ...Option) *Store {
	s := &Store{
		Options: Options{Prefix: DefaultPrefix, Concurrency: defaultConcurrency},
		client:  client,
	}
	for _, opt := range opts {
		opt(&s.Options)
	}
	if s.Concurrency < 1 {
		s.Concurrency = 1
	}
	if s.Prefix != "" && !strings.HasSuffix(s.Prefix, "/") {
		s.Prefix += "/"
	}
	return s
}

// BlobPath returns the blob that holds key
func (s *Store) BlobPath(key string) string {
	return s.Prefix + key
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	rr, err := s.client.Reader(ctx, s.BlobPath(key))
	if err != nil {
		if IsBlobNotFound(err) {
			return "", false, nil
		}
		return "", false, err
	}
	defer rr.Reader.Close()
	data, err := io.ReadAll(rr.Reader)
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

func (s *Store) GetMany(ctx context.Context, keys []string) (map[string]string, error) {
	type result struct {
		value string
		found bool
	}
	results := make([]result, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Concurrency)
	for i, key := range keys {
		g.Go(func() error {
			v, ok, err := s.Get(gctx, key)
			if err != nil {
				return err
			}
			results[i] = result{v, ok}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	values := make(map[string]string, len(keys))
	for i, r := range results {
		if r.found {
			values[keys[i]] = r.value
		}
	}
	return values, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.client.Put(ctx, s.BlobPath(key), azblob.NewBytesReaderCloser([]byte(value)))
	return err
}

func (s *Store) SetMany(ctx context.Context, entries map[string]string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Concurrency)
	for k, v := range entries {
		g.Go(func() error { return s.Set(gctx, k, v) })
	}
	err := g.Wait()
	if err != nil && s.Log != nil {
		s.Log.Infof("partial write of %d blobs under %s: %v", len(entries), s.Prefix, err)
	}
	return err
}

func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.client.Delete(ctx, s.BlobPath(key))
	if IsBlobNotFound(err) {
		return nil
	}
	return err
}

func (s *Store) DeleteMany(ctx context.Context, keys []string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Concurrency)
	for _, k := range keys {
		g.Go(func() error { return s.Delete(gctx, k) })
	}
	return g.Wait()
}
