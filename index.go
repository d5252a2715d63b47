// Package geoh3index implements a geospatial scalar index for a vector
// database: a secondary index that accelerates spatial-predicate
// filtering over a column of well-known-binary geometry values, using a
// hierarchical hexagonal discrete global grid as a coarse spatial key to
// prune candidates before exact geometric evaluation.
package geoh3index

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hupe1980/geoh3index/blobstore"
	"github.com/hupe1980/geoh3index/h3calc"
	"github.com/hupe1980/geoh3index/persistence"
	"github.com/hupe1980/geoh3index/predicate"
	"github.com/hupe1980/geoh3index/repcell"
	"github.com/hupe1980/geoh3index/wkb"
)

// Index is the geospatial scalar index core. It is populated exactly
// once by Build or Load and probed any number of times thereafter; it
// never supports incremental insertion or mutation after build (spec
// §1, "Lifecycle").
type Index struct {
	resolution h3calc.Resolution

	indexData map[h3calc.CellID][]RowOffset
	rawData   [][]byte
	nullSet   *Bitmap

	totalNumRows uint32
	isBuilt      bool

	logger     *Logger
	predicates GeometryPredicates
	loader     FieldDataLoader
	slicer     SlicingLayer
	store      ObjectStore
	shaper     *blobstore.RequestShaper
}

// New creates an unbuilt Index. Collaborators not supplied via Option
// fall back to safe or deliberately absent defaults: logging is a no-op,
// predicate evaluation uses the bundled ring/segment implementation, and
// the field-data loader / slicing layer / object store are nil until
// Build/Upload/Load need them.
func New(opts ...Option) *Index {
	o := &options{
		logger:     NoopLogger(),
		predicates: predicate.New(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return &Index{
		logger:     o.logger,
		predicates: o.predicates,
		loader:     o.loader,
		slicer:     o.slicer,
		store:      o.store,
		shaper:     o.shaper,
	}
}

func (idx *Index) reset() {
	idx.resolution = 0
	idx.indexData = nil
	idx.rawData = nil
	idx.nullSet = nil
	idx.totalNumRows = 0
	idx.isBuilt = false
}

// Build populates the index from field data decoded by the configured
// FieldDataLoader (spec §4.4.1). It is a no-op if the index is already
// built (I5). On context cancellation the index is left unbuilt with
// empty internal structures (spec §5, "Cancellation").
func (idx *Index) Build(ctx context.Context, cfg BuildConfig) error {
	if idx.isBuilt {
		return nil
	}
	if !h3calc.ValidateResolution(cfg.Resolution) {
		return &ErrInvalidResolution{Resolution: cfg.Resolution}
	}
	if idx.loader == nil {
		return fmt.Errorf("geoh3index: Build requires a FieldDataLoader (see WithFieldDataLoader)")
	}
	resolution := h3calc.Resolution(cfg.Resolution)

	batches, err := idx.loader.Load(ctx, cfg.InsertFiles)
	if err != nil {
		return fmt.Errorf("geoh3index: field data load: %w", err)
	}

	indexData := make(map[h3calc.CellID][]RowOffset)
	var rawData [][]byte
	nullSet := NewBitmap()

	o := uint32(0)
	for _, batch := range batches {
		for i, raw := range batch.Values {
			if err := ctx.Err(); err != nil {
				idx.reset()
				return err
			}

			valid := i >= len(batch.ValidMask) || batch.ValidMask[i]
			if !valid || len(raw) == 0 {
				nullSet.Set(RowOffset(o))
				rawData = append(rawData, nil)
				o++
				continue
			}

			g, perr := wkb.Parse(raw)
			if perr != nil {
				var unsupported *wkb.ErrUnsupportedGeometry
				if errors.As(perr, &unsupported) {
					idx.reset()
					return &ErrUnsupportedGeometry{Kind: unsupported.Kind}
				}
				idx.logger.LogBuildSkip(ctx, o, perr)
				nullSet.Set(RowOffset(o))
				rawData = append(rawData, nil)
				o++
				continue
			}

			cell, rerr := repcell.Resolve(g, resolution)
			if rerr != nil {
				idx.reset()
				return fmt.Errorf("geoh3index: build row %d: %w", o, rerr)
			}

			indexData[cell] = append(indexData[cell], RowOffset(o))
			rawData = append(rawData, raw)
			o++
		}
	}

	idx.resolution = resolution
	idx.indexData = indexData
	idx.rawData = rawData
	idx.nullSet = nullSet
	idx.totalNumRows = o
	idx.isBuilt = true

	idx.logger.LogBuildCompleted(ctx, int(idx.totalNumRows), len(idx.indexData), int(idx.nullSet.Cardinality()))
	return nil
}

// In returns the conservative candidate superset for queries: a row is
// set iff its representative cell lies on the ancestor/descendant path
// of some query's representative cell (spec §4.4.2).
func (idx *Index) In(ctx context.Context, queries [][]byte) (*Bitmap, error) {
	if !idx.isBuilt {
		return nil, ErrStateError
	}
	result := NewBitmap()

	for qi, q := range queries {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		cq, rq, err := idx.queryCell(q)
		if err != nil {
			idx.logger.LogProbeSkip(ctx, qi, err)
			continue
		}

		for r := rq; ; r-- {
			ancestor, aerr := h3calc.CellToParent(cq, r)
			if aerr == nil {
				idx.unionBucket(result, ancestor)
			}
			if r == h3calc.MinResolution {
				break
			}
		}

		for r := rq + 1; r <= idx.resolution; r++ {
			children, cerr := h3calc.CellToChildren(cq, r)
			if cerr != nil {
				continue
			}
			for _, child := range children {
				idx.unionBucket(result, child)
			}
		}
	}
	return result, nil
}

// queryCell parses q and resolves its representative cell along with its
// own resolution.
func (idx *Index) queryCell(q []byte) (h3calc.CellID, h3calc.Resolution, error) {
	g, err := wkb.Parse(q)
	if err != nil {
		return 0, 0, err
	}
	if g.Kind == wkb.KindNull {
		return 0, 0, fmt.Errorf("geoh3index: empty query geometry")
	}
	cq, err := repcell.Resolve(g, idx.resolution)
	if err != nil {
		return 0, 0, err
	}
	return cq, h3calc.CellResolution(cq), nil
}

func (idx *Index) unionBucket(dst *Bitmap, cell h3calc.CellID) {
	for _, o := range idx.indexData[cell] {
		dst.Set(o)
	}
}

// NotIn returns the bitwise complement of In over [0,total_num_rows),
// with null offsets explicitly cleared (P6) since In never sets them.
func (idx *Index) NotIn(ctx context.Context, queries [][]byte) (*Bitmap, error) {
	in, err := idx.In(ctx, queries)
	if err != nil {
		return nil, err
	}
	in.Flip(idx.totalNumRows)
	in.AndNot(idx.nullSet)
	return in, nil
}

// IsNull returns a bitmap set for exactly the null rows (spec §4.4.3).
func (idx *Index) IsNull() (*Bitmap, error) {
	if !idx.isBuilt {
		return nil, ErrStateError
	}
	out := NewBitmap()
	out.Or(idx.nullSet)
	return out, nil
}

// IsNotNull returns the complement of IsNull.
func (idx *Index) IsNotNull() (*Bitmap, error) {
	if !idx.isBuilt {
		return nil, ErrStateError
	}
	out := NewBitmap()
	out.Or(idx.nullSet)
	out.Flip(idx.totalNumRows)
	return out, nil
}

// ExecGeoRelations evaluates op between each candidate row (from In) and
// every query, setting the result bit on first match (spec §4.4.4). Null
// rows are never set because In never sets them.
func (idx *Index) ExecGeoRelations(ctx context.Context, queries [][]byte, op RelationOp) (*Bitmap, error) {
	if !idx.isBuilt {
		return nil, ErrStateError
	}
	candidates, err := idx.In(ctx, queries)
	if err != nil {
		return nil, err
	}

	result := NewBitmap()
	for o := range candidates.Iterator() {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		row := idx.rawData[o]
		for qi, q := range queries {
			ok, perr := evalRelation(idx.predicates, op, row, q)
			if perr != nil {
				idx.logger.LogProbeSkip(ctx, qi, perr)
				continue
			}
			if ok {
				result.Set(o)
				break
			}
		}
	}
	return result, nil
}

// ReverseLookup returns raw_data[o] verbatim (spec §4.4.5).
func (idx *Index) ReverseLookup(o RowOffset) ([]byte, error) {
	if !idx.isBuilt {
		return nil, ErrStateError
	}
	if uint32(o) >= idx.totalNumRows {
		return nil, &ErrOutOfRange{Offset: uint32(o), NumRows: idx.totalNumRows}
	}
	return idx.rawData[o], nil
}

// Cardinality returns the number of distinct cells in index_data.
func (idx *Index) Cardinality() int {
	return len(idx.indexData)
}

// Count returns total_num_rows.
func (idx *Index) Count() uint32 {
	return idx.totalNumRows
}

// Size is a public alias for Count, matching the original
// GetIndexType()-adjacent registry convention where a generic caller asks
// for "size" without knowing whether that means row count or cardinality.
func (idx *Index) Size() uint32 {
	return idx.Count()
}

// HasRawData always returns true: raw_data is unconditionally retained
// for every row (spec §9, "Ownership of raw payloads").
func (idx *Index) HasRawData() bool {
	return true
}

// Range is not supported: geospatial data has no natural ordering.
func (idx *Index) Range(context.Context, []byte, []byte) (*Bitmap, error) {
	return nil, ErrNotImplemented
}

// IsBuilt reports whether Build or Load has completed successfully.
func (idx *Index) IsBuilt() bool {
	return idx.isBuilt
}

// Upload serializes the built index into its three named blobs (spec
// §6.1), disassembles them into chunks via the configured SlicingLayer,
// and writes every chunk to the configured ObjectStore concurrently
// (bounded by the configured RequestShaper, if any). It returns the
// path written to and the number of bytes written, for the caller to
// persist as the index_files list handed to a future Load.
func (idx *Index) Upload(ctx context.Context) (map[string]int64, error) {
	if !idx.isBuilt {
		return nil, ErrStateError
	}
	if idx.store == nil {
		return nil, fmt.Errorf("geoh3index: Upload requires an ObjectStore (see WithObjectStore)")
	}
	if idx.slicer == nil {
		return nil, fmt.Errorf("geoh3index: Upload requires a SlicingLayer (see WithSlicingLayer)")
	}

	recordSet, err := idx.encodeRecordSet()
	if err != nil {
		return nil, fmt.Errorf("geoh3index: encode artifact: %w", err)
	}

	chunks, err := idx.slicer.Disassemble(recordSet)
	if err != nil {
		return nil, fmt.Errorf("geoh3index: disassemble artifact: %w", err)
	}

	blobs := make(map[string][]byte, len(chunks))
	for _, c := range chunks {
		blobs[chunkPath(c.Key, c.Seq)] = c.Data
	}

	if err := blobstore.WriteAll(ctx, idx.store, blobs, idx.shaper); err != nil {
		uploadErr := wrapIoError("Upload", err)
		idx.logger.LogUpload(ctx, nil, uploadErr)
		return nil, uploadErr
	}

	pathsToSize := make(map[string]int64, len(blobs))
	for path, data := range blobs {
		pathsToSize[path] = int64(len(data))
	}

	idx.logger.LogUpload(ctx, pathsToSize, nil)
	return pathsToSize, nil
}

// encodeRecordSet serializes the index's in-memory state into the three
// named blobs Upload writes and Load reads back.
func (idx *Index) encodeRecordSet() (map[string][]byte, error) {
	buckets := make([]persistence.CellBucket, 0, len(idx.indexData))
	for cell, offsets := range idx.indexData {
		rows := make([]persistence.RowEntry, len(offsets))
		for i, o := range offsets {
			rows[i] = persistence.RowEntry{RowOffset: uint32(o), WKB: idx.rawData[o]}
		}
		buckets = append(buckets, persistence.CellBucket{CellID: uint64(cell), Rows: rows})
	}

	indexDataBlob, err := persistence.EncodeIndexData(buckets)
	if err != nil {
		return nil, err
	}

	nullOffsets := make([]uint32, 0, idx.nullSet.Cardinality())
	for o := range idx.nullSet.Iterator() {
		nullOffsets = append(nullOffsets, uint32(o))
	}
	nullOffsetsBlob, err := persistence.EncodeNullOffsets(nullOffsets)
	if err != nil {
		return nil, err
	}

	return map[string][]byte{
		persistence.IndexDataKey:   indexDataBlob,
		persistence.NullOffsetsKey: nullOffsetsBlob,
		persistence.NumRowsKey:     persistence.EncodeNumRows(uint64(idx.totalNumRows)),
	}, nil
}

// Load reconstructs a previously uploaded index from its chunked
// artifact (spec §4.5). is_built is set true iff all three required
// blobs were present and decoded successfully; any error leaves the
// index in its prior, unbuilt state since fields are only assigned once
// every decode step has succeeded.
func (idx *Index) Load(ctx context.Context, cfg LoadConfig) error {
	if idx.isBuilt {
		return nil
	}
	if !h3calc.ValidateResolution(cfg.Resolution) {
		return &ErrInvalidResolution{Resolution: cfg.Resolution}
	}
	if idx.store == nil {
		return fmt.Errorf("geoh3index: Load requires an ObjectStore (see WithObjectStore)")
	}
	if idx.slicer == nil {
		return fmt.Errorf("geoh3index: Load requires a SlicingLayer (see WithSlicingLayer)")
	}

	blobsByPath, err := blobstore.ReadAll(ctx, idx.store, cfg.IndexFiles, idx.shaper)
	if err != nil {
		loadErr := wrapIoError("Load", err)
		idx.logger.LogLoad(ctx, 0, 0, loadErr)
		return loadErr
	}

	chunks := make([]Chunk, 0, len(cfg.IndexFiles))
	for _, path := range cfg.IndexFiles {
		key, seq, err := parseChunkPath(path)
		if err != nil {
			loadErr := fmt.Errorf("geoh3index: load: %w", err)
			idx.logger.LogLoad(ctx, 0, 0, loadErr)
			return loadErr
		}
		chunks = append(chunks, Chunk{Key: key, Seq: seq, Data: blobsByPath[path]})
	}

	blobs, err := idx.slicer.Assemble(chunks)
	if err != nil {
		loadErr := fmt.Errorf("geoh3index: assemble artifact: %w", err)
		idx.logger.LogLoad(ctx, 0, 0, loadErr)
		return loadErr
	}

	numRowsBlob, ok := blobs[persistence.NumRowsKey]
	if !ok {
		return idx.loadFailed(ctx, fmt.Errorf("geoh3index: load: missing %q blob", persistence.NumRowsKey))
	}
	numRows, err := persistence.DecodeNumRows(numRowsBlob)
	if err != nil {
		return idx.loadFailed(ctx, err)
	}

	indexDataBlob, ok := blobs[persistence.IndexDataKey]
	if !ok {
		return idx.loadFailed(ctx, fmt.Errorf("geoh3index: load: missing %q blob", persistence.IndexDataKey))
	}
	rawIndexData, rawData, err := persistence.DecodeIndexData(indexDataBlob, numRows)
	if err != nil {
		return idx.loadFailed(ctx, err)
	}

	nullOffsetsBlob, ok := blobs[persistence.NullOffsetsKey]
	if !ok {
		return idx.loadFailed(ctx, fmt.Errorf("geoh3index: load: missing %q blob", persistence.NullOffsetsKey))
	}
	nullOffsets, err := persistence.DecodeNullOffsets(nullOffsetsBlob)
	if err != nil {
		return idx.loadFailed(ctx, err)
	}

	indexData := make(map[h3calc.CellID][]RowOffset, len(rawIndexData))
	for cell, offsets := range rawIndexData {
		converted := make([]RowOffset, len(offsets))
		for i, o := range offsets {
			converted[i] = RowOffset(o)
		}
		indexData[h3calc.CellID(cell)] = converted
	}

	nullSet := NewBitmap()
	for _, o := range nullOffsets {
		nullSet.Set(RowOffset(o))
	}

	idx.resolution = h3calc.Resolution(cfg.Resolution)
	idx.indexData = indexData
	idx.rawData = rawData
	idx.nullSet = nullSet
	idx.totalNumRows = uint32(numRows)
	idx.isBuilt = true

	idx.logger.LogLoad(ctx, int(idx.totalNumRows), len(idx.indexData), nil)
	return nil
}

func (idx *Index) loadFailed(ctx context.Context, err error) error {
	idx.logger.LogLoad(ctx, 0, 0, err)
	return fmt.Errorf("geoh3index: load: %w", err)
}

// chunkPath and parseChunkPath convert between a slicing.Chunk's logical
// (key, seq) pair and the flat object-store path Upload writes it under.
func chunkPath(key string, seq int) string {
	return fmt.Sprintf("%s/%05d", key, seq)
}

func parseChunkPath(path string) (key string, seq int, err error) {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return "", 0, fmt.Errorf("malformed chunk path %q", path)
	}
	key = path[:i]
	seq, err = strconv.Atoi(path[i+1:])
	if err != nil {
		return "", 0, fmt.Errorf("malformed chunk path %q: %w", path, err)
	}
	return key, seq, nil
}
