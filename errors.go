package geoh3index

import (
	"errors"
	"fmt"
)

// Sentinel errors for stateless failure conditions.
var (
	// ErrStateError is returned by any probe issued before Build or Load
	// has completed.
	ErrStateError = errors.New("geoh3index: index has not been built")

	// ErrNotImplemented is returned for operations geospatial data has no
	// natural ordering for.
	ErrNotImplemented = errors.New("geoh3index: range queries are not supported on geospatial data")

	// ErrIoError wraps a collaborator (object store) failure. The original
	// error is always reachable via errors.Is/errors.As.
	ErrIoError = errors.New("geoh3index: object store I/O failed")
)

// ErrParse indicates malformed WKB input. Phase distinguishes a row
// encountered during Build from a query encountered during a probe; Index
// is the row offset or query index, respectively.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrParse struct {
	Phase string
	Index int
	cause error
}

func (e *ErrParse) Error() string {
	return fmt.Sprintf("geoh3index: parse error (%s, index %d): %v", e.Phase, e.Index, e.cause)
}

func (e *ErrParse) Unwrap() error { return e.cause }

// ErrUnsupportedGeometry indicates a geometry type outside
// point/line-string/polygon. Fatal during Build; skipped during a probe.
type ErrUnsupportedGeometry struct {
	Kind string
}

func (e *ErrUnsupportedGeometry) Error() string {
	return fmt.Sprintf("geoh3index: unsupported geometry type %q", e.Kind)
}

// ErrInvalidResolution indicates a construction-time resolution outside
// [0,15].
type ErrInvalidResolution struct {
	Resolution int
}

func (e *ErrInvalidResolution) Error() string {
	return fmt.Sprintf("geoh3index: invalid resolution %d, must be in [0,15]", e.Resolution)
}

// ErrOutOfRange indicates ReverseLookup was called with an offset outside
// [0, total_num_rows).
type ErrOutOfRange struct {
	Offset  uint32
	NumRows uint32
}

func (e *ErrOutOfRange) Error() string {
	return fmt.Sprintf("geoh3index: offset %d out of range [0,%d)", e.Offset, e.NumRows)
}

// wrapIoError normalizes a collaborator error onto ErrIoError while
// preserving the original cause for errors.Is/As inspection.
func wrapIoError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrIoError, op, err)
}
