// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client, which speaks to both AWS S3 and self-hosted MinIO.
// dataharvester only writes to it: each sync run can archive the raw Cobalto payload
// it processed, so a run can be audited or replayed later.
//
// # Client Interface
//
// The Client interface exposes the operations the archive needs and makes it easy
// to mock storage interactions in unit tests (see core/storage/mocks).
//
//   - BucketExists: Verifies access to the target bucket.
//   - MakeBucket: Creates the bucket on first use.
//   - PutObject: Uploads content (with size and options).
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	exists, err := client.BucketExists(ctx, cfg.Storage.Bucket)
package storage
