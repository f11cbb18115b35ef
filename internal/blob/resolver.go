package blob

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// URLResolver produces download URLs for source documents referenced in
// answer sources. Implementations may return an empty URL when no download
// location exists for a document.
type URLResolver interface {
	ResolveURL(ctx context.Context, filename string) (string, error)
}

// S3Resolver presigns time-limited GetObject URLs against the document bucket.
type S3Resolver struct {
	presigner *s3.PresignClient
	bucket    string
	expiry    time.Duration
}

// NewS3Resolver creates an S3Resolver from a loaded AWS config.
func NewS3Resolver(cfg aws.Config, bucket string, expiry time.Duration) *S3Resolver {
	client := s3.NewFromConfig(cfg)
	return &S3Resolver{
		presigner: s3.NewPresignClient(client),
		bucket:    bucket,
		expiry:    expiry,
	}
}

// ResolveURL returns a presigned download URL for the document.
func (r *S3Resolver) ResolveURL(ctx context.Context, filename string) (string, error) {
	req, err := r.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(filename),
	}, s3.WithPresignExpires(r.expiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign download URL for %q: %w", filename, err)
	}
	return req.URL, nil
}

// Disabled is the resolver used when no document bucket is configured.
// Sources are still returned, just without download links.
type Disabled struct{}

// ResolveURL always returns an empty URL.
func (Disabled) ResolveURL(ctx context.Context, filename string) (string, error) {
	return "", nil
}
