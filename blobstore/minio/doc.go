// Package minio adapts the MinIO Go client to blobstore's three-method
// ObjectStore shape, for MinIO and other S3-compatible storage (Ceph,
// SeaweedFS, Garage).
//
//	client, _ := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	store := minioblob.NewStore(client, "my-bucket", "geoh3index/")
package minio
