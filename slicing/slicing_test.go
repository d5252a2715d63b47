package slicing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/geoh3index"
)

func TestRoundTripNoCompression(t *testing.T) {
	l := New(16, CompressionNone)
	recordSet := map[string][]byte{
		"index_data":   []byte("0123456789abcdefghijklmnopqrstuvwxyz"),
		"null_offsets": []byte{1, 0, 0, 0, 0, 0, 0, 0},
		"num_rows":     []byte{5, 0, 0, 0, 0, 0, 0, 0},
	}

	chunks, err := l.Disassemble(recordSet)
	require.NoError(t, err)
	assert.Greater(t, len(chunks), len(recordSet)) // multiple data chunks + one manifest per key

	got, err := l.Assemble(chunks)
	require.NoError(t, err)
	assert.Equal(t, recordSet, got)
}

func TestRoundTripLZ4(t *testing.T) {
	l := New(8, CompressionLZ4)
	recordSet := map[string][]byte{
		"index_data": bytesRepeat("ab", 200),
	}
	chunks, err := l.Disassemble(recordSet)
	require.NoError(t, err)

	got, err := l.Assemble(chunks)
	require.NoError(t, err)
	assert.Equal(t, recordSet, got)
}

func TestAssembleRejectsMissingManifest(t *testing.T) {
	l := New(16, CompressionNone)
	_, err := l.Assemble([]geoh3index.Chunk{
		{Key: "index_data", Seq: 0, Total: 1, Data: []byte("x")},
	})
	assert.Error(t, err)
}

func TestEmptyBlobRoundTrips(t *testing.T) {
	l := New(16, CompressionZstd)
	recordSet := map[string][]byte{"null_offsets": {}}
	chunks, err := l.Disassemble(recordSet)
	require.NoError(t, err)

	got, err := l.Assemble(chunks)
	require.NoError(t, err)
	assert.Equal(t, []byte{}, got["null_offsets"])
}

func bytesRepeat(s string, n int) []byte {
	out := make([]byte, 0, len(s)*n)
	for i := 0; i < n; i++ {
		out = append(out, s...)
	}
	return out
}
