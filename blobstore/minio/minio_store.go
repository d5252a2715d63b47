// Package minio adapts the MinIO Go SDK to the blobstore.ObjectStore
// shape for MinIO and other S3-compatible storage.
package minio

import (
	"bytes"
	"context"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/hupe1980/geoh3index/blobstore"
)

// Store implements blobstore's ObjectStore shape for MinIO.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewStore creates a new MinIO-backed object store. rootPrefix is
// prepended to every key (e.g. "vectors/").
func NewStore(client *minio.Client, bucket, rootPrefix string) *Store {
	return &Store{client: client, bucket: bucket, prefix: rootPrefix}
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Read fetches the object named by path in full.
func (s *Store) Read(ctx context.Context, p string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key(p), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
			return nil, blobstore.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Write uploads data as the object named by path.
func (s *Store) Write(ctx context.Context, p string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.key(p), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	return err
}

// ListWithSizes returns every object under prefix, relative to the
// store's own root prefix, with its size in bytes.
func (s *Store) ListWithSizes(ctx context.Context, prefix string) (map[string]int64, error) {
	fullPrefix := s.key(prefix)
	out := make(map[string]int64)

	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    fullPrefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		name := strings.TrimPrefix(obj.Key, s.prefix)
		name = strings.TrimPrefix(name, "/")
		if name != "" {
			out[name] = obj.Size
		}
	}
	return out, nil
}
