package snapshot

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/storage"

	"github.com/CBIIT/ccdi-cpi-etl/internal/linkage/models"
)

// GCSUploader writes snapshots to a Cloud Storage bucket.
type GCSUploader struct {
	client *storage.Client
	bucket string
	prefix string
}

func NewGCSUploader(client *storage.Client, bucket, prefix string) *GCSUploader {
	return &GCSUploader{client: client, bucket: bucket, prefix: prefix}
}

// Upload stores the snapshot for day at and returns its gs:// location. A
// second upload on the same day replaces the object.
func (u *GCSUploader) Upload(ctx context.Context, sets []models.LinkedSet, at time.Time) (string, error) {
	name := ObjectName(u.prefix, at)
	w := u.client.Bucket(u.bucket).Object(name).NewWriter(ctx)
	w.ContentType = "application/json"
	w.CacheControl = "no-cache, no-store, must-revalidate"

	if err := Encode(w, sets); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close snapshot object %s: %w", name, err)
	}
	return fmt.Sprintf("gs://%s/%s", u.bucket, name), nil
}
