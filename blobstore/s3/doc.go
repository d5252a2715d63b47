// Package s3 adapts the AWS SDK for Go v2 to blobstore's three-method
// ObjectStore shape.
//
//	client := s3.NewFromConfig(cfg)
//	store := s3blob.NewStore(client, "my-bucket", "geoh3index/")
package s3
