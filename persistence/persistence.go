// Package persistence implements the bit-exact codec for the index
// artifact's three named blobs, following the buffered little-endian
// binary style of github.com/hupe1980/vecgo/persistence/binary.go
// (BinaryIndexWriter/BinaryIndexReader) — without that package's file
// header, since this artifact's three blobs carry no magic/version.
package persistence

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// IndexDataKey, NullOffsetsKey, NumRowsKey are the three stable blob names
// of the artifact's logical record set.
const (
	IndexDataKey   = "index_data"
	NullOffsetsKey = "null_offsets"
	NumRowsKey     = "num_rows"
)

// CellBucket is one cell's row-offset bucket plus the raw WKB payload of
// every offset in it, in insertion order (I4).
type CellBucket struct {
	CellID uint64
	Rows   []RowEntry
}

// RowEntry is one row-offset/WKB pair within a cell bucket.
type RowEntry struct {
	RowOffset uint32
	WKB       []byte
}

// EncodeIndexData serializes buckets into the "index_data" blob layout of
// spec §6.1: a flat concatenation of cell records, each holding its row
// count and inline row entries. No terminator; length is implicit in the
// blob's own byte count.
func EncodeIndexData(buckets []CellBucket) ([]byte, error) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	for _, b := range buckets {
		if err := binary.Write(w, binary.LittleEndian, b.CellID); err != nil {
			return nil, err
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(len(b.Rows))); err != nil {
			return nil, err
		}
		for _, row := range b.Rows {
			if err := binary.Write(w, binary.LittleEndian, row.RowOffset); err != nil {
				return nil, err
			}
			if err := binary.Write(w, binary.LittleEndian, uint32(len(row.WKB))); err != nil {
				return nil, err
			}
			if _, err := w.Write(row.WKB); err != nil {
				return nil, err
			}
		}
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeIndexData reconstructs both index_data (cell → ordered offsets)
// and raw_data (offset → WKB, dense over [0,numRows)) from the
// "index_data" blob. Offsets absent from every bucket are left as nil in
// rawData, which is how null rows are represented.
func DecodeIndexData(blob []byte, numRows uint64) (indexData map[uint64][]uint32, rawData [][]byte, err error) {
	indexData = make(map[uint64][]uint32)
	rawData = make([][]byte, numRows)

	r := bytes.NewReader(blob)
	for r.Len() > 0 {
		var cellID uint64
		if err := binary.Read(r, binary.LittleEndian, &cellID); err != nil {
			return nil, nil, fmt.Errorf("persistence: truncated cell_id: %w", err)
		}
		var count uint32
		if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
			return nil, nil, fmt.Errorf("persistence: truncated row_count: %w", err)
		}
		offsets := make([]uint32, 0, count)
		for i := uint32(0); i < count; i++ {
			var offset uint32
			if err := binary.Read(r, binary.LittleEndian, &offset); err != nil {
				return nil, nil, fmt.Errorf("persistence: truncated row_offset: %w", err)
			}
			var wkbLen uint32
			if err := binary.Read(r, binary.LittleEndian, &wkbLen); err != nil {
				return nil, nil, fmt.Errorf("persistence: truncated wkb_len: %w", err)
			}
			wkb := make([]byte, wkbLen)
			if _, err := io.ReadFull(r, wkb); err != nil {
				return nil, nil, fmt.Errorf("persistence: truncated wkb payload: %w", err)
			}
			if uint64(offset) >= numRows {
				return nil, nil, fmt.Errorf("persistence: row_offset %d out of range [0,%d)", offset, numRows)
			}
			rawData[offset] = wkb
			offsets = append(offsets, offset)
		}
		indexData[cellID] = offsets
	}
	return indexData, rawData, nil
}

// EncodeNullOffsets serializes a sorted slice of null row offsets as the
// "null_offsets" blob: |offsets| consecutive 8-byte little-endian values.
func EncodeNullOffsets(offsets []uint32) ([]byte, error) {
	var buf bytes.Buffer
	for _, o := range offsets {
		if err := binary.Write(&buf, binary.LittleEndian, uint64(o)); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// DecodeNullOffsets parses the "null_offsets" blob back into offsets.
func DecodeNullOffsets(blob []byte) ([]uint32, error) {
	if len(blob)%8 != 0 {
		return nil, fmt.Errorf("persistence: null_offsets blob length %d not a multiple of 8", len(blob))
	}
	r := bytes.NewReader(blob)
	out := make([]uint32, 0, len(blob)/8)
	for r.Len() > 0 {
		var v uint64
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return nil, err
		}
		out = append(out, uint32(v))
	}
	return out, nil
}

// EncodeNumRows serializes n as the "num_rows" blob: a single 8-byte
// little-endian value.
func EncodeNumRows(n uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, n)
	return buf
}

// DecodeNumRows parses the "num_rows" blob.
func DecodeNumRows(blob []byte) (uint64, error) {
	if len(blob) != 8 {
		return 0, fmt.Errorf("persistence: num_rows blob length %d, want 8", len(blob))
	}
	return binary.LittleEndian.Uint64(blob), nil
}
