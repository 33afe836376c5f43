package compartimento

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"dataharvester/core/storage"

	"github.com/minio/minio-go/v7"
)

// Archiver stores raw source payloads in object storage, one object per run.
type Archiver struct {
	client storage.Client
	bucket string
	prefix string
}

// NewArchiver creates an archiver writing to bucket under prefix.
func NewArchiver(client storage.Client, bucket, prefix string) *Archiver {
	return &Archiver{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

// ObjectName returns the object name used for a run.
func (a *Archiver) ObjectName(runID string) string {
	return path.Join(a.prefix, runID+".json")
}

// Archive uploads raw and returns the object name. The bucket is created when missing.
func (a *Archiver) Archive(ctx context.Context, runID string, raw []byte) (string, error) {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return "", fmt.Errorf("failed to check bucket %s: %w", a.bucket, err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return "", fmt.Errorf("failed to create bucket %s: %w", a.bucket, err)
		}
	}

	name := a.ObjectName(runID)
	_, err = a.client.PutObject(ctx, a.bucket, name, bytes.NewReader(raw), int64(len(raw)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", name, err)
	}

	return name, nil
}
