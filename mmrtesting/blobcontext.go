package mmrtesting

import (
	"context"
	"strings"
	"testing"

	"github.com/datatrails/go-datatrails-common/azblob"
	"github.com/stretchr/testify/require"
)

// BlobTestContext connects to the azurite blob emulator
type BlobTestContext struct {
	TestContext
	Storer *azblob.Storer
}

func NewBlobTestContext(t *testing.T, cfg TestConfig) BlobTestContext {
	c := BlobTestContext{
		TestContext: NewTestContext(t, cfg),
	}

	container := cfg.Container
	if container == "" {
		container = strings.ReplaceAll(strings.ToLower(cfg.TestLabelPrefix), "_", "")
	}

	var err error
	c.Storer, err = azblob.NewDev(azblob.NewDevConfigFromEnv(), container)
	if err != nil {
		t.Fatalf("failed to connect to blob store emulator: %v", err)
	}
	client := c.Storer.GetServiceClient()
	// Note: we expect a 'already exists' error here and  ignore it.
	_, _ = client.CreateContainer(context.Background(), container, nil)

	return c
}

func (c *BlobTestContext) GetStorer() *azblob.Storer {
	return c.Storer
}

func (c *BlobTestContext) DeleteBlobsByPrefix(blobPrefixPath string) {
	var err error
	var r *azblob.ListerResponse
	var blobs []string

	var marker azblob.ListMarker
	for {
		r, err = c.Storer.List(
			context.Background(),
			azblob.WithListPrefix(blobPrefixPath), azblob.WithListMarker(marker))

		require.NoError(c.T, err)

		for _, i := range r.Items {
			blobs = append(blobs, *i.Name)
		}
		if len(r.Items) == 0 || r.Marker == nil {
			break
		}
		marker = r.Marker
	}
	for _, blobPath := range blobs {
		err = c.Storer.Delete(context.Background(), blobPath)
		require.NoError(c.T, err)
	}
}
