package geoh3index_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/hupe1980/geoh3index"
	"github.com/hupe1980/geoh3index/blobstore"
	"github.com/hupe1980/geoh3index/fielddata"
	"github.com/hupe1980/geoh3index/slicing"
)

// Hand-rolled little-endian WKB encoders, matching wkb package's own test
// helpers, so this fixture pins down exact on-wire bytes independent of
// whichever orb marshaler is vendored.

func scenarioWkbPoint(x, y float64) []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(1)
	binary.Write(buf, binary.LittleEndian, uint32(1))
	binary.Write(buf, binary.LittleEndian, x)
	binary.Write(buf, binary.LittleEndian, y)
	return buf.Bytes()
}

func scenarioWkbLineString(pts [][2]float64) []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(1)
	binary.Write(buf, binary.LittleEndian, uint32(2))
	binary.Write(buf, binary.LittleEndian, uint32(len(pts)))
	for _, p := range pts {
		binary.Write(buf, binary.LittleEndian, p[0])
		binary.Write(buf, binary.LittleEndian, p[1])
	}
	return buf.Bytes()
}

func scenarioWkbPolygon(rings [][][2]float64) []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(1)
	binary.Write(buf, binary.LittleEndian, uint32(3))
	binary.Write(buf, binary.LittleEndian, uint32(len(rings)))
	for _, ring := range rings {
		binary.Write(buf, binary.LittleEndian, uint32(len(ring)))
		for _, p := range ring {
			binary.Write(buf, binary.LittleEndian, p[0])
			binary.Write(buf, binary.LittleEndian, p[1])
		}
	}
	return buf.Bytes()
}

// scenarioRows is the five-row fixture of spec §8.
func scenarioRows() [][]byte {
	return [][]byte{
		scenarioWkbPoint(3.0, 4.0),
		scenarioWkbLineString([][2]float64{{3, 4}, {4, 4}, {4, 5}, {3, 5}}),
		scenarioWkbPolygon([][][2]float64{{{3, 4}, {4, 4}, {4, 5}, {3, 5}, {3, 4}}}),
		scenarioWkbPoint(60.10, 40.10),
		scenarioWkbPoint(-40.00, -30.20),
	}
}

func scenarioQueries() (qa, qb []byte) {
	qa = scenarioWkbPoint(3.25, 3.75)
	qb = scenarioWkbPolygon([][][2]float64{{{3.25, 3.75}, {3.75, 3.75}, {3.75, 4.25}, {3.25, 4.25}, {3.25, 3.75}}})
	return qa, qb
}

// buildScenarioIndex builds an index over scenarioRows, wired with every
// collaborator so S6 can exercise Upload/Load on the same instance.
func buildScenarioIndex(t *testing.T, store *blobstore.MemoryStore) *Index {
	t.Helper()
	rows := scenarioRows()
	validMask := make([]bool, len(rows))
	for i := range validMask {
		validMask[i] = true
	}
	encoded, err := fielddata.EncodeBatch(rows, validMask)
	require.NoError(t, err)
	require.NoError(t, store.Write(context.Background(), "insert_0", encoded))

	idx := New(
		WithFieldDataLoader(fielddata.New(store)),
		WithObjectStore(store),
		WithSlicingLayer(slicing.New(0, slicing.CompressionLZ4)),
	)
	require.NoError(t, idx.Build(context.Background(), BuildConfig{
		Resolution:  9,
		InsertFiles: []string{"insert_0"},
	}))
	return idx
}

func assertBitsSet(t *testing.T, b *Bitmap, set, clear []RowOffset) {
	t.Helper()
	for _, o := range set {
		assert.True(t, b.Contains(o), "expected offset %d set", o)
	}
	for _, o := range clear {
		assert.False(t, b.Contains(o), "expected offset %d clear", o)
	}
}

// S1
func TestScenarioIn(t *testing.T) {
	idx := buildScenarioIndex(t, blobstore.NewMemoryStore())
	qa, qb := scenarioQueries()

	in, err := idx.In(context.Background(), [][]byte{qa, qb})
	require.NoError(t, err)
	assertBitsSet(t, in, []RowOffset{0, 1, 2}, []RowOffset{3, 4})
}

// S2
func TestScenarioNotIn(t *testing.T) {
	idx := buildScenarioIndex(t, blobstore.NewMemoryStore())
	qa, qb := scenarioQueries()

	notIn, err := idx.NotIn(context.Background(), [][]byte{qa, qb})
	require.NoError(t, err)
	assertBitsSet(t, notIn, []RowOffset{3, 4}, []RowOffset{0, 1, 2})
}

// S3
func TestScenarioExecGeoRelationsEquals(t *testing.T) {
	idx := buildScenarioIndex(t, blobstore.NewMemoryStore())
	q := scenarioWkbPoint(3.0, 4.0)

	res, err := idx.ExecGeoRelations(context.Background(), [][]byte{q}, RelationEquals)
	require.NoError(t, err)
	assertBitsSet(t, res, []RowOffset{0}, []RowOffset{1, 2, 3, 4})
}

// S4
func TestScenarioIsNull(t *testing.T) {
	idx := buildScenarioIndex(t, blobstore.NewMemoryStore())
	isNull, err := idx.IsNull()
	require.NoError(t, err)
	assert.Zero(t, isNull.Cardinality())

	point := scenarioWkbPoint(3.0, 4.0)
	values := [][]byte{point, nil, point, nil, point}
	mask := []bool{true, false, true, false, true}
	encoded, err := fielddata.EncodeBatch(values, mask)
	require.NoError(t, err)

	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Write(context.Background(), "insert_0", encoded))
	idx2 := New(WithFieldDataLoader(fielddata.New(store)))
	require.NoError(t, idx2.Build(context.Background(), BuildConfig{Resolution: 9, InsertFiles: []string{"insert_0"}}))

	isNull2, err := idx2.IsNull()
	require.NoError(t, err)
	for i, want := range []bool{false, true, false, true, false} {
		assert.Equal(t, want, isNull2.Contains(RowOffset(i)), "offset %d", i)
	}
}

// S5
func TestScenarioReverseLookup(t *testing.T) {
	idx := buildScenarioIndex(t, blobstore.NewMemoryStore())
	got, err := idx.ReverseLookup(2)
	require.NoError(t, err)
	assert.Equal(t, scenarioRows()[2], got)
}

// S6
func TestScenarioUploadLoadRoundTrip(t *testing.T) {
	store := blobstore.NewMemoryStore()
	idx := buildScenarioIndex(t, store)

	pathsToSize, err := idx.Upload(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, pathsToSize)

	paths := make([]string, 0, len(pathsToSize))
	for p := range pathsToSize {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	loaded := New(
		WithObjectStore(store),
		WithSlicingLayer(slicing.New(0, slicing.CompressionLZ4)),
	)
	require.NoError(t, loaded.Load(context.Background(), LoadConfig{
		Resolution: 9,
		IndexFiles: paths,
	}))

	qa, qb := scenarioQueries()

	wantIn, err := idx.In(context.Background(), [][]byte{qa, qb})
	require.NoError(t, err)
	gotIn, err := loaded.In(context.Background(), [][]byte{qa, qb})
	require.NoError(t, err)
	assert.Equal(t, wantIn.ToSlice(), gotIn.ToSlice())

	wantNotIn, err := idx.NotIn(context.Background(), [][]byte{qa, qb})
	require.NoError(t, err)
	gotNotIn, err := loaded.NotIn(context.Background(), [][]byte{qa, qb})
	require.NoError(t, err)
	assert.Equal(t, wantNotIn.ToSlice(), gotNotIn.ToSlice())

	wantRelations, err := idx.ExecGeoRelations(context.Background(), [][]byte{scenarioWkbPoint(3.0, 4.0)}, RelationEquals)
	require.NoError(t, err)
	gotRelations, err := loaded.ExecGeoRelations(context.Background(), [][]byte{scenarioWkbPoint(3.0, 4.0)}, RelationEquals)
	require.NoError(t, err)
	assert.Equal(t, wantRelations.ToSlice(), gotRelations.ToSlice())

	wantNull, err := idx.IsNull()
	require.NoError(t, err)
	gotNull, err := loaded.IsNull()
	require.NoError(t, err)
	assert.Equal(t, wantNull.ToSlice(), gotNull.ToSlice())

	wantRow, err := idx.ReverseLookup(2)
	require.NoError(t, err)
	gotRow, err := loaded.ReverseLookup(2)
	require.NoError(t, err)
	assert.Equal(t, wantRow, gotRow)

	assert.Equal(t, idx.Count(), loaded.Count())
	assert.Equal(t, idx.Cardinality(), loaded.Cardinality())
}
