package geoh3index

import "github.com/hupe1980/geoh3index/blobstore"

// BuildConfig is the closed set of build-time parameters (spec §6.2). No
// open-ended dictionary.
type BuildConfig struct {
	// Resolution is max_resolution for the whole index, in [0,15].
	Resolution int
	// InsertFiles is the source of field data for the build pipeline,
	// handed verbatim to the configured FieldDataLoader.
	InsertFiles []string
}

// LoadConfig is the closed set of load-time parameters (spec §6.3).
type LoadConfig struct {
	// Resolution is max_resolution for the index being loaded. The
	// persisted artifact carries index_data, null_offsets, and num_rows
	// only (spec §6.1) — max_resolution is not one of those three blobs,
	// so a caller loading a previously built index must re-supply it
	// (spec §8, P3).
	Resolution int
	// IndexFiles is the chunked artifact produced by Upload.
	IndexFiles []string
}

type options struct {
	logger     *Logger
	predicates GeometryPredicates
	loader     FieldDataLoader
	slicer     SlicingLayer
	store      ObjectStore
	shaper     *blobstore.RequestShaper
}

// Option configures New's optional collaborators.
type Option func(*options)

// WithLogger overrides the default no-op logger.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithPredicates overrides the default GeometryPredicates implementation
// used by ExecGeoRelations.
func WithPredicates(p GeometryPredicates) Option {
	return func(o *options) {
		if p != nil {
			o.predicates = p
		}
	}
}

// WithFieldDataLoader supplies the collaborator Build uses to decode
// insert files into row batches.
func WithFieldDataLoader(l FieldDataLoader) Option {
	return func(o *options) {
		if l != nil {
			o.loader = l
		}
	}
}

// WithSlicingLayer supplies the chunking implementation Upload and Load
// require. There is no default: without it both return an error.
func WithSlicingLayer(s SlicingLayer) Option {
	return func(o *options) {
		if s != nil {
			o.slicer = s
		}
	}
}

// WithObjectStore supplies the collaborator Upload and Load borrow for
// blob I/O.
func WithObjectStore(store ObjectStore) Option {
	return func(o *options) {
		if store != nil {
			o.store = store
		}
	}
}

// WithRequestShaper bounds the concurrency and rate of the chunk-level
// object-store requests Upload and Load issue. Without it, Upload and
// Load still fetch/write every chunk concurrently, just unbounded.
func WithRequestShaper(shaper *blobstore.RequestShaper) Option {
	return func(o *options) {
		if shaper != nil {
			o.shaper = shaper
		}
	}
}
