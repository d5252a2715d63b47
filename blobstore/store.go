// Package blobstore provides ObjectStore implementations backing the
// index's Upload/Load collaborator (spec §6.4). Every store here does
// whole-blob reads and writes only — this index always writes a full
// artifact chunk in one call and never needs partial/range access, so the
// streaming Open/Create/WritableBlob surface the teacher's vector engine
// needed for mmap'd random-access segments does not apply here.
package blobstore

import "os"

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// errors.Is(err, ErrNotFound). The default maps to os.ErrNotExist.
var ErrNotFound = os.ErrNotExist
