package geoh3index

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
)

// Bitmap is the result type of every probe: a set of RowOffsets compacted
// with a Roaring Bitmap. It wraps the official roaring implementation the
// way metadata.LocalBitmap does in the teacher codebase.
type Bitmap struct {
	rb *roaring.Bitmap
}

// NewBitmap creates a new empty bitmap.
func NewBitmap() *Bitmap {
	return &Bitmap{rb: roaring.New()}
}

// newBitmapOfSize creates a bitmap with every offset in [0,n) either all
// set or all clear.
func newBitmapOfSize(n uint32, allSet bool) *Bitmap {
	b := NewBitmap()
	if allSet && n > 0 {
		b.rb.AddRange(0, uint64(n))
	}
	return b
}

// Set marks offset as present in the result.
func (b *Bitmap) Set(offset RowOffset) {
	b.rb.Add(uint32(offset))
}

// Clear removes offset from the result.
func (b *Bitmap) Clear(offset RowOffset) {
	b.rb.Remove(uint32(offset))
}

// Contains reports whether offset is set.
func (b *Bitmap) Contains(offset RowOffset) bool {
	return b.rb.Contains(uint32(offset))
}

// Cardinality returns the number of set offsets.
func (b *Bitmap) Cardinality() uint64 {
	return b.rb.GetCardinality()
}

// Iterator yields every set RowOffset in ascending order.
func (b *Bitmap) Iterator() iter.Seq[RowOffset] {
	return func(yield func(RowOffset) bool) {
		it := b.rb.Iterator()
		for it.HasNext() {
			if !yield(RowOffset(it.Next())) {
				return
			}
		}
	}
}

// Or unions other into b in place.
func (b *Bitmap) Or(other *Bitmap) {
	b.rb.Or(other.rb)
}

// Flip complements b over [0,n) in place, matching NotIn's
// "bitwise complement over [0, total_num_rows)" semantics.
func (b *Bitmap) Flip(n uint32) {
	b.rb.Flip(0, uint64(n))
}

// AndNot clears every offset in other from b, used to enforce null
// isolation (P6): null rows must never be set by In/NotIn/ExecGeoRelations.
func (b *Bitmap) AndNot(other *Bitmap) {
	b.rb.AndNot(other.rb)
}

// Clone returns an independent copy of b.
func (b *Bitmap) Clone() *Bitmap {
	return &Bitmap{rb: b.rb.Clone()}
}

// ToSlice returns every set offset as a sorted slice.
func (b *Bitmap) ToSlice() []RowOffset {
	raw := b.rb.ToArray()
	out := make([]RowOffset, len(raw))
	for i, v := range raw {
		out[i] = RowOffset(v)
	}
	return out
}
