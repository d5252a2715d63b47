// Package fielddata provides a default FieldDataLoader implementation
// sufficient to exercise the build pipeline end to end (spec §6.4). It
// reads a simple length-prefixed row format from an ObjectStore; the real
// columnar insert-log format a production deployment would use is
// explicitly out of scope.
//
// Wire format per insert file: a sequence of rows, each:
//
//	valid byte (0 = null, 1 = present)
//	value_len uint32 little-endian (0 if null)
//	value_len bytes of WKB
//
// Grounded on persistence/binary.go's little-endian slice-reading style.
package fielddata

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hupe1980/geoh3index"
)

// ObjectStore is the read-only subset of geoh3index.ObjectStore this
// loader needs.
type ObjectStore interface {
	Read(ctx context.Context, path string) ([]byte, error)
}

// Loader reads insert files from an ObjectStore and decodes them into row
// batches, one batch per file.
type Loader struct {
	store ObjectStore
}

// New returns a Loader backed by store.
func New(store ObjectStore) *Loader {
	return &Loader{store: store}
}

// Load decodes each insert file into its own RowBatch, preserving file
// order and within-file row order.
func (l *Loader) Load(ctx context.Context, insertFiles []string) ([]geoh3index.RowBatch, error) {
	batches := make([]geoh3index.RowBatch, 0, len(insertFiles))
	for _, path := range insertFiles {
		data, err := l.store.Read(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("fielddata: read %q: %w", path, err)
		}
		batch, err := decodeBatch(data)
		if err != nil {
			return nil, fmt.Errorf("fielddata: decode %q: %w", path, err)
		}
		batches = append(batches, batch)
	}
	return batches, nil
}

func decodeBatch(data []byte) (geoh3index.RowBatch, error) {
	r := bytes.NewReader(data)
	var batch geoh3index.RowBatch
	for r.Len() > 0 {
		valid, err := r.ReadByte()
		if err != nil {
			return geoh3index.RowBatch{}, err
		}
		var length uint32
		if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
			return geoh3index.RowBatch{}, fmt.Errorf("truncated value_len: %w", err)
		}
		value := make([]byte, length)
		if _, err := io.ReadFull(r, value); err != nil {
			return geoh3index.RowBatch{}, fmt.Errorf("truncated value: %w", err)
		}
		batch.Values = append(batch.Values, value)
		batch.ValidMask = append(batch.ValidMask, valid != 0)
	}
	return batch, nil
}

// EncodeBatch is the inverse of decodeBatch, exported for tests and for
// callers building fixtures to write through an ObjectStore.
func EncodeBatch(values [][]byte, validMask []bool) ([]byte, error) {
	if len(values) != len(validMask) {
		return nil, fmt.Errorf("fielddata: values/validMask length mismatch")
	}
	var buf bytes.Buffer
	for i, v := range values {
		valid := byte(0)
		if validMask[i] {
			valid = 1
		}
		buf.WriteByte(valid)
		if err := binary.Write(&buf, binary.LittleEndian, uint32(len(v))); err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	return buf.Bytes(), nil
}
