package storage

import (
	"context"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const presignExpiry = 15 * time.Minute

// ObjectStore hands out presigned URLs against the documents bucket so
// the browser uploads and downloads bytes directly; only metadata flows
// through this service.
type ObjectStore struct {
	bucket  string
	presign *s3.PresignClient
}

func NewObjectStore(ctx context.Context, bucket, region string) (*ObjectStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("DOCUMENTS_BUCKET is required")
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return &ObjectStore{
		bucket:  bucket,
		presign: s3.NewPresignClient(client),
	}, nil
}

// UploadURL returns a presigned PUT for the given object key.
func (s *ObjectStore) UploadURL(ctx context.Context, key, contentType string) (string, error) {
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		ContentType: &contentType,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", fmt.Errorf("presign upload: %w", err)
	}
	return req.URL, nil
}

// DownloadURL returns a presigned GET for the given object key.
func (s *ObjectStore) DownloadURL(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", fmt.Errorf("presign download: %w", err)
	}
	return req.URL, nil
}
