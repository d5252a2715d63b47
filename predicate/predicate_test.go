package predicate

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Hand-rolled little-endian WKB encoders, matching the wkb package's own
// test helpers, so these fixtures pin down exact on-wire bytes independent
// of whichever orb marshaler is vendored.

func wkbPoint(x, y float64) []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(1)
	binary.Write(buf, binary.LittleEndian, uint32(1))
	binary.Write(buf, binary.LittleEndian, x)
	binary.Write(buf, binary.LittleEndian, y)
	return buf.Bytes()
}

func wkbLineString(pts [][2]float64) []byte {
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

func wkbPolygon(rings [][][2]float64) []byte {
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

// Shared fixtures.
var (
	squareA = [][2]float64{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}
	// squareB overlaps squareA: shares the (5,5)-(10,10) corner region.
	squareB = [][2]float64{{5, 5}, {15, 5}, {15, 15}, {5, 15}, {5, 5}}
	// squareC sits fully inside squareA.
	squareC = [][2]float64{{2, 2}, {8, 2}, {8, 8}, {2, 8}, {2, 2}}
	// squareD is adjacent to squareA, sharing only the x=10 edge.
	squareD = [][2]float64{{10, 0}, {20, 0}, {20, 10}, {10, 10}, {10, 0}}
	// squareE is disjoint from squareA.
	squareE = [][2]float64{{20, 20}, {30, 20}, {30, 30}, {20, 30}, {20, 20}}
)

func TestEquals(t *testing.T) {
	p := New()

	ok, err := p.Equals(wkbPoint(3, 4), wkbPoint(3, 4))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Equals(wkbPoint(3, 4), wkbPoint(5, 5))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTouches(t *testing.T) {
	p := New()

	// squareA and squareD share only the x=10 edge: boundary contact, no
	// shared interior.
	ok, err := p.Touches(wkbPolygon([][][2]float64{squareA}), wkbPolygon([][][2]float64{squareD}))
	require.NoError(t, err)
	assert.True(t, ok)

	// squareA and squareB share interior points, not just a boundary.
	ok, err = p.Touches(wkbPolygon([][][2]float64{squareA}), wkbPolygon([][][2]float64{squareB}))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOverlaps(t *testing.T) {
	p := New()

	// squareA and squareB partially overlap: neither contains the other.
	ok, err := p.Overlaps(wkbPolygon([][][2]float64{squareA}), wkbPolygon([][][2]float64{squareB}))
	require.NoError(t, err)
	assert.True(t, ok)

	// squareC is fully inside squareA: containment, not overlap.
	ok, err = p.Overlaps(wkbPolygon([][][2]float64{squareA}), wkbPolygon([][][2]float64{squareC}))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCrosses(t *testing.T) {
	p := New()

	// A line from inside squareA to outside it crosses the boundary once.
	line := wkbLineString([][2]float64{{5, 5}, {15, 5}})
	ok, err := p.Crosses(line, wkbPolygon([][][2]float64{squareA}))
	require.NoError(t, err)
	assert.True(t, ok)

	// Two polygons never cross by definition, whatever their geometry.
	ok, err = p.Crosses(wkbPolygon([][][2]float64{squareA}), wkbPolygon([][][2]float64{squareB}))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestContains(t *testing.T) {
	p := New()

	ok, err := p.Contains(wkbPolygon([][][2]float64{squareA}), wkbPolygon([][][2]float64{squareC}))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Contains(wkbPolygon([][][2]float64{squareA}), wkbPolygon([][][2]float64{squareE}))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWithin(t *testing.T) {
	p := New()

	// squareC is within squareA, the mirror of Contains above.
	ok, err := p.Within(wkbPolygon([][][2]float64{squareC}), wkbPolygon([][][2]float64{squareA}))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Within(wkbPolygon([][][2]float64{squareE}), wkbPolygon([][][2]float64{squareA}))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIntersects(t *testing.T) {
	p := New()

	ok, err := p.Intersects(wkbPolygon([][][2]float64{squareA}), wkbPolygon([][][2]float64{squareB}))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Intersects(wkbPolygon([][][2]float64{squareA}), wkbPolygon([][][2]float64{squareE}))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRelateTreatsNullGeometryAsNoMatch(t *testing.T) {
	p := New()

	ok, err := p.Equals(nil, wkbPoint(0, 0))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = p.Intersects(wkbPoint(0, 0), nil)
	require.NoError(t, err)
	assert.False(t, ok)
}
