package fielddata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	files map[string][]byte
}

func (f *fakeStore) Read(_ context.Context, path string) ([]byte, error) {
	return f.files[path], nil
}

func TestLoadDecodesRowsInOrder(t *testing.T) {
	values := [][]byte{[]byte("point-a"), nil, []byte("point-c")}
	validMask := []bool{true, false, true}
	encoded, err := EncodeBatch(values, validMask)
	require.NoError(t, err)

	store := &fakeStore{files: map[string][]byte{"insert_0": encoded}}
	l := New(store)

	batches, err := l.Load(context.Background(), []string{"insert_0"})
	require.NoError(t, err)
	require.Len(t, batches, 1)

	assert.Equal(t, validMask, batches[0].ValidMask)
	assert.Equal(t, []byte("point-a"), batches[0].Values[0])
	assert.Equal(t, []byte("point-c"), batches[0].Values[2])
}

func TestLoadMultipleFilesPreservesOrder(t *testing.T) {
	b0, _ := EncodeBatch([][]byte{[]byte("a")}, []bool{true})
	b1, _ := EncodeBatch([][]byte{[]byte("b")}, []bool{true})
	store := &fakeStore{files: map[string][]byte{"f0": b0, "f1": b1}}

	batches, err := New(store).Load(context.Background(), []string{"f0", "f1"})
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, []byte("a"), batches[0].Values[0])
	assert.Equal(t, []byte("b"), batches[1].Values[0])
}
