package config

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/canzero/sigdag/mapping"
)

// S3Loader fetches a signal mapping document from an S3/minio-compatible
// object store. Adapted from the teacher's stores/s3 backend: the same
// minio.Client setup, repurposed here as a one-shot config fetch instead
// of a key/value store backend.
type S3Loader struct {
	client *minio.Client
	bucket string
}

// NewS3Loader connects to the given endpoint with static credentials.
// TLS is controlled by secure; pass false for local minio test instances.
func NewS3Loader(endpoint, accessKey, secretKey, bucket string, secure bool) (*S3Loader, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("config: connect to %s: %w", endpoint, err)
	}
	return &S3Loader{client: client, bucket: bucket}, nil
}

// LoadMapping fetches objectName from the configured bucket and parses it
// as a mapping document.
func (l *S3Loader) LoadMapping(ctx context.Context, objectName string) ([]mapping.Mapping, error) {
	obj, err := l.client.GetObject(ctx, l.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("config: get %s/%s: %w", l.bucket, objectName, err)
	}
	defer obj.Close()

	return ParseMappingDocument(obj)
}
