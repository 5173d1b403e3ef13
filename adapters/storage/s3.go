package storage

import (
	"context"
	"fmt"
	"io"

	apperrors "github.com/prepress/cmyk2srgb/errors"
)

// S3Client defines the minimal object-store interface used by the adapter.
// This allows injection of real aws-sdk-go-v2 clients or test doubles.
type S3Client interface {
	PutObject(ctx context.Context, bucket, key string, body io.Reader) error
	HeadObject(ctx context.Context, bucket, key string) (bool, error)
}

// S3 is the Sink backed by AWS S3 (or S3-compatible stores).  The converter's
// output path becomes the object key.  Inject a real S3Client built with
// aws-sdk-go-v2 in production.
type S3 struct {
	client S3Client
	bucket string
}

// NewS3 creates an S3 sink.  client must not be nil.
func NewS3(client S3Client, bucket string) (*S3, error) {
	if client == nil {
		return nil, fmt.Errorf("s3 sink: client must not be nil")
	}
	if bucket == "" {
		return nil, fmt.Errorf("s3 sink: bucket must not be empty")
	}
	return &S3{client: client, bucket: bucket}, nil
}

func (s *S3) Write(ctx context.Context, path string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(apperrors.CategoryStorage, "s3.write", err)
	}
	if err := s.client.PutObject(ctx, s.bucket, path, r); err != nil {
		return apperrors.Wrap(apperrors.CategoryStorage, "s3.write", err)
	}
	return nil
}

func (s *S3) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, apperrors.Wrap(apperrors.CategoryStorage, "s3.exists", err)
	}
	ok, err := s.client.HeadObject(ctx, s.bucket, path)
	if err != nil {
		return false, apperrors.Wrap(apperrors.CategoryStorage, "s3.exists", err)
	}
	return ok, nil
}

// Integration guide: wiring aws-sdk-go-v2
//
//  import (
//      "github.com/aws/aws-sdk-go-v2/config"
//      "github.com/aws/aws-sdk-go-v2/service/s3"
//  )
//
//  awsCfg, _ := config.LoadDefaultConfig(ctx, config.WithRegion(region))
//  client := s3.NewFromConfig(awsCfg)
//  sink, _ := storage.NewS3(&awsS3Wrapper{client: client}, bucket)
//
// where awsS3Wrapper maps PutObject/HeadObject onto the SDK calls.
