// Package slicing implements the shared slicing layer the Persistence
// Codec calls via Disassemble on serialize and Assemble on load (spec
// §4.5, §6.4). It performs no I/O; it only turns a logical record set
// into fixed-size, independently compressed chunks and back.
//
// Per-chunk compression is grounded on
// github.com/hupe1980/vecgo/internal/segment/diskann/compression.go's
// CompressionType/BlockHeader pair, adapted from a streaming block codec
// to a whole-blob-at-a-time one since every named blob here is already
// fully materialized in memory by the time Disassemble sees it.
package slicing

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/geoh3index"
)

// CompressionType selects the per-blob compression algorithm.
type CompressionType uint8

const (
	CompressionNone CompressionType = 0
	CompressionLZ4  CompressionType = 1
	CompressionZstd CompressionType = 2
)

const defaultChunkSize = 256 * 1024

const manifestSuffix = "_manifest"

// Layer is the default SlicingLayer implementation.
type Layer struct {
	chunkSize   int
	compression CompressionType
}

// New returns a Layer using chunkSize-byte chunks (0 selects the 256KiB
// default) and the given compression algorithm for every blob.
func New(chunkSize int, compression CompressionType) *Layer {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &Layer{chunkSize: chunkSize, compression: compression}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) { zstdEncoderPool.Put(enc) }

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) { zstdDecoderPool.Put(dec) }

// compress prefixes data with a BlockHeader{UncompressedSize,CompressedSize}
// and the compressed payload. CompressedSize == 0 marks an uncompressed
// block (used when compression doesn't help or data is empty).
func compress(data []byte, ct CompressionType) ([]byte, error) {
	header := make([]byte, 8)
	binary.LittleEndian.PutUint32(header[0:], uint32(len(data)))

	if ct == CompressionNone || len(data) == 0 {
		binary.LittleEndian.PutUint32(header[4:], 0)
		return append(header, data...), nil
	}

	var compressed []byte
	var err error
	switch ct {
	case CompressionLZ4:
		bound := lz4.CompressBlockBound(len(data))
		compressed = make([]byte, bound)
		n, cerr := lz4.CompressBlock(data, compressed, nil)
		if cerr != nil {
			return nil, cerr
		}
		compressed = compressed[:n]
	case CompressionZstd:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		putZstdEncoder(enc)
	default:
		return nil, fmt.Errorf("slicing: unknown compression type %d", ct)
	}
	if err != nil {
		return nil, err
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		binary.LittleEndian.PutUint32(header[4:], 0)
		return append(header, data...), nil
	}
	binary.LittleEndian.PutUint32(header[4:], uint32(len(compressed)))
	return append(header, compressed...), nil
}

func decompress(block []byte, ct CompressionType) ([]byte, error) {
	if len(block) < 8 {
		return nil, fmt.Errorf("slicing: block too small for header")
	}
	uncompressedSize := binary.LittleEndian.Uint32(block[0:])
	compressedSize := binary.LittleEndian.Uint32(block[4:])
	payload := block[8:]

	if compressedSize == 0 {
		if uint32(len(payload)) < uncompressedSize {
			return nil, fmt.Errorf("slicing: truncated uncompressed block")
		}
		return payload[:uncompressedSize], nil
	}
	if uint32(len(payload)) < compressedSize {
		return nil, fmt.Errorf("slicing: truncated compressed block")
	}
	compressed := payload[:compressedSize]
	result := make([]byte, uncompressedSize)

	switch ct {
	case CompressionLZ4:
		n, err := lz4.UncompressBlock(compressed, result)
		if err != nil {
			return nil, err
		}
		if uint32(n) != uncompressedSize {
			return nil, fmt.Errorf("slicing: decompressed size mismatch")
		}
		return result, nil
	case CompressionZstd:
		dec := getZstdDecoder()
		decoded, err := dec.DecodeAll(compressed, result[:0])
		putZstdDecoder(dec)
		if err != nil {
			return nil, err
		}
		if uint32(len(decoded)) != uncompressedSize {
			return nil, fmt.Errorf("slicing: decompressed size mismatch")
		}
		return decoded, nil
	default:
		return nil, fmt.Errorf("slicing: unknown compression type %d", ct)
	}
}

// manifest is the small per-key header chunk that lets Assemble
// reconstruct the original blob: total chunk count and the compression
// type every data chunk of this key was compressed with.
type manifest struct {
	Total       int
	Compression CompressionType
}

func encodeManifest(m manifest) []byte {
	buf := make([]byte, 5)
	binary.LittleEndian.PutUint32(buf[0:], uint32(m.Total))
	buf[4] = byte(m.Compression)
	return buf
}

func decodeManifest(data []byte) (manifest, error) {
	if len(data) != 5 {
		return manifest{}, fmt.Errorf("slicing: malformed manifest chunk")
	}
	return manifest{
		Total:       int(binary.LittleEndian.Uint32(data[0:])),
		Compression: CompressionType(data[4]),
	}, nil
}

// Disassemble compresses each named blob independently and splits it into
// fixed-size chunks, preserving the logical key across chunk boundaries
// via chunk.Key, plus a manifest chunk carrying total count and
// compression type for Assemble to reverse the split.
func (l *Layer) Disassemble(recordSet map[string][]byte) ([]geoh3index.Chunk, error) {
	keys := make([]string, 0, len(recordSet))
	for k := range recordSet {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var chunks []geoh3index.Chunk
	for _, key := range keys {
		compressed, err := compress(recordSet[key], l.compression)
		if err != nil {
			return nil, fmt.Errorf("slicing: compress %q: %w", key, err)
		}

		total := (len(compressed) + l.chunkSize - 1) / l.chunkSize
		if total == 0 {
			total = 1 // a manifest still needs at least one (empty) data chunk
		}
		for seq := 0; seq < total; seq++ {
			start := seq * l.chunkSize
			end := start + l.chunkSize
			if end > len(compressed) {
				end = len(compressed)
			}
			chunks = append(chunks, geoh3index.Chunk{
				Key:   key,
				Seq:   seq,
				Total: total,
				Data:  compressed[start:end],
			})
		}
		chunks = append(chunks, geoh3index.Chunk{
			Key:   key + manifestSuffix,
			Seq:   0,
			Total: 1,
			Data:  encodeManifest(manifest{Total: total, Compression: l.compression}),
		})
	}
	return chunks, nil
}

// Assemble reverses Disassemble: it groups chunks by key, reads each
// key's manifest to learn its compression type, concatenates that key's
// data chunks in Seq order, and decompresses the result.
func (l *Layer) Assemble(chunks []geoh3index.Chunk) (map[string][]byte, error) {
	manifests := make(map[string]manifest)
	byKey := make(map[string][]geoh3index.Chunk)

	for _, c := range chunks {
		if len(c.Key) > len(manifestSuffix) && c.Key[len(c.Key)-len(manifestSuffix):] == manifestSuffix {
			key := c.Key[:len(c.Key)-len(manifestSuffix)]
			m, err := decodeManifest(c.Data)
			if err != nil {
				return nil, fmt.Errorf("slicing: manifest for %q: %w", key, err)
			}
			manifests[key] = m
			continue
		}
		byKey[c.Key] = append(byKey[c.Key], c)
	}

	out := make(map[string][]byte, len(byKey))
	for key, group := range byKey {
		m, ok := manifests[key]
		if !ok {
			return nil, fmt.Errorf("slicing: missing manifest for key %q", key)
		}
		if len(group) != m.Total {
			return nil, fmt.Errorf("slicing: key %q has %d chunks, manifest declares %d", key, len(group), m.Total)
		}
		sort.Slice(group, func(i, j int) bool { return group[i].Seq < group[j].Seq })

		var compressed bytes.Buffer
		for _, c := range group {
			compressed.Write(c.Data)
		}
		decoded, err := decompress(compressed.Bytes(), m.Compression)
		if err != nil {
			return nil, fmt.Errorf("slicing: decompress %q: %w", key, err)
		}
		out[key] = decoded
	}
	return out, nil
}
