package blobstore

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAllWriteAllRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	blobs := make(map[string][]byte, 20)
	for i := 0; i < 20; i++ {
		blobs[fmt.Sprintf("chunk_%d", i)] = []byte(fmt.Sprintf("payload-%d", i))
	}

	shaper := NewRequestShaper(4, 0)
	require.NoError(t, WriteAll(ctx, s, blobs, shaper))

	paths := make([]string, 0, len(blobs))
	for p := range blobs {
		paths = append(paths, p)
	}
	got, err := ReadAll(ctx, s, paths, shaper)
	require.NoError(t, err)
	assert.Equal(t, blobs, got)
}

func TestReadAllPropagatesError(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_, err := ReadAll(ctx, s, []string{"missing"}, nil)
	assert.Error(t, err)
}
