package mmrtesting

import (
	"path/filepath"
	"testing"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/forestrie/go-mmrkv/store"
	"github.com/forestrie/go-mmrkv/store/badgerstore"
	"github.com/forestrie/go-mmrkv/store/boltstore"
	"github.com/forestrie/go-mmrkv/store/leveldbstore"
	"github.com/stretchr/testify/require"
)

type TestContext struct {
	Log logger.Logger
	T   *testing.T
}

const (
	StoreMemory  = "memory"
	StoreLevelDB = "leveldb"
	StoreBolt    = "bolt"
	StoreBadger  = "badger"
)

// StoreKinds lists the backends NewStore can create without external services
var StoreKinds = []string{StoreMemory, StoreLevelDB, StoreBolt, StoreBadger}

type TestConfig struct {
	TestLabelPrefix string
	// Container is only used for blob store tests. It defaults to
	// TestLabelPrefix
	Container string
}

func NewTestContext(t *testing.T, cfg TestConfig) TestContext {
	c := TestContext{
		T: t,
	}
	logger.New("INFO")
	c.Log = logger.Sugar.WithServiceName(cfg.TestLabelPrefix)
	return c
}

func (c *TestContext) GetLog() logger.Logger { return c.Log }

// NewStore returns an empty store of the given kind. Any files are created
// under the test's temp dir and the store is closed when the test ends.
func (c *TestContext) NewStore(kind string) store.Store {
	t := c.T
	switch kind {
	case StoreMemory:
		return store.NewMemory()
	case StoreLevelDB:
		s, err := leveldbstore.Open(filepath.Join(t.TempDir(), "leveldb"), nil)
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	case StoreBolt:
		s, err := boltstore.Open(filepath.Join(t.TempDir(), "mmr.db"))
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	case StoreBadger:
		s, err := badgerstore.Open("", badgerstore.WithInMemory())
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	}
	t.Fatalf("unknown store kind %q", kind)
	return nil
}
