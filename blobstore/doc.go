// Package blobstore provides object-store backends for the index's
// Upload/Load artifact.
//
// # Interface
//
//	type ObjectStore interface {
//	    Read(ctx, path) ([]byte, error)
//	    Write(ctx, path, data) error
//	    ListWithSizes(ctx, prefix) (map[string]int64, error)
//	}
//
// # Built-in implementations
//
//   - LocalStore: local filesystem
//   - MemoryStore: in-memory, for tests
//   - s3.Store: Amazon S3
//   - minio.Store: MinIO and other S3-compatible storage
//
// ReadAll and WriteAll fan chunk-level requests out across an
// ObjectStore concurrently, optionally bounded by a RequestShaper.
package blobstore
