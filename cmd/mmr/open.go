package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/datatrails/go-datatrails-common/azblob"
	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/forestrie/go-mmrkv/accumulator"
	"github.com/forestrie/go-mmrkv/hashing"
	"github.com/forestrie/go-mmrkv/store"
	"github.com/forestrie/go-mmrkv/store/azblobstore"
	"github.com/forestrie/go-mmrkv/store/badgerstore"
	"github.com/forestrie/go-mmrkv/store/boltstore"
	"github.com/forestrie/go-mmrkv/store/leveldbstore"
	"github.com/forestrie/go-mmrkv/store/sqlstore"
)

const (
	storeMemory   = "memory"
	storeLevelDB  = "leveldb"
	storeBolt     = "bolt"
	storeBadger   = "badger"
	storePostgres = "postgres"
	storeAzBlob   = "azblob"
)

var (
	ErrUnknownStore = errors.New("unknown store")
	ErrMissingDSN   = errors.New("the postgres store needs a dsn")
)

func nopClose() error { return nil }

// openStore returns the configured backend and a func that releases it
func openStore(ctx context.Context, cfg Config, log logger.Logger) (store.Store, func() error, error) {
	switch cfg.Store {
	case storeMemory:
		return store.NewMemory(), nopClose, nil
	case storeLevelDB:
		s, err := leveldbstore.Open(cfg.Path, nil)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case storeBolt:
		s, err := boltstore.Open(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case storeBadger:
		s, err := badgerstore.Open(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case storePostgres:
		if cfg.DSN == "" {
			return nil, nil, ErrMissingDSN
		}
		var opts []sqlstore.Option
		if cfg.Table != "" {
			opts = append(opts, sqlstore.WithTable(cfg.Table))
		}
		s, err := sqlstore.Open(ctx, cfg.DSN, opts...)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case storeAzBlob:
		storer, err := azblob.NewDev(azblob.NewDevConfigFromEnv(), cfg.Container)
		if err != nil {
			return nil, nil, err
		}
		s := azblobstore.New(storer, azblobstore.WithPrefix(cfg.Prefix), azblobstore.WithLogger(log))
		return s, nopClose, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", ErrUnknownStore, cfg.Store)
}

func newHasher(cfg Config) (hashing.Hasher, error) {
	var opts []hashing.Option
	switch cfg.Encoding {
	case "", hashing.EncodingString.String():
	case hashing.EncodingFieldElement.String():
		opts = append(opts, hashing.WithFieldElements())
	default:
		return nil, fmt.Errorf("unknown encoding %q", cfg.Encoding)
	}
	return hashing.New(cfg.Hasher, opts...)
}

func openMMR(s store.Store, cfg Config, log logger.Logger) (*accumulator.MMR, error) {
	h, err := newHasher(cfg)
	if err != nil {
		return nil, err
	}
	opts := []accumulator.Option{accumulator.WithLogger(log)}
	if cfg.ID != "" {
		opts = append(opts, accumulator.WithID(cfg.ID))
	}
	return accumulator.New(s, h, opts...)
}
