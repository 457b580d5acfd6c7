package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"venueadmin/internal/domain"
)

// S3Options configures the object-store client. Endpoint may point at any
// S3-compatible service; PublicBaseURL is the prefix public object URLs are
// built from (including the bucket path segment if the service needs one).
type S3Options struct {
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

// S3Store uploads assets to an S3-compatible bucket.
type S3Store struct {
	client        *s3.S3
	bucket        string
	publicBaseURL string
}

// NewS3Store validates the administrative credential and builds the client.
// A missing credential is a hard failure: uploads are never silently skipped
// or replaced with inline storage.
func NewS3Store(opts S3Options) (*S3Store, error) {
	if opts.AccessKey == "" || opts.SecretKey == "" {
		return nil, errors.New("storage: admin credential not configured")
	}
	if opts.Bucket == "" {
		return nil, errors.New("storage: bucket is required")
	}
	region := opts.Region
	if region == "" {
		region = "us-east-1"
	}
	cfg := aws.NewConfig().
		WithRegion(region).
		WithCredentials(credentials.NewStaticCredentials(opts.AccessKey, opts.SecretKey, "")).
		WithS3ForcePathStyle(true)
	if opts.Endpoint != "" {
		cfg = cfg.WithEndpoint(opts.Endpoint)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("storage: create session: %w", err)
	}
	publicBase := strings.TrimRight(opts.PublicBaseURL, "/")
	if publicBase == "" {
		publicBase = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, region)
	}
	return &S3Store{
		client:        s3.New(sess),
		bucket:        opts.Bucket,
		publicBaseURL: publicBase,
	}, nil
}

// Upload writes the asset and returns its public URL.
func (s *S3Store) Upload(ctx context.Context, data []byte, category string) (string, error) {
	key := ObjectKey(category)
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String("image/jpeg"),
		CacheControl: aws.String(CacheControl),
		ACL:          aws.String("public-read"),
	})
	if err != nil {
		return "", &domain.StorageError{Op: "put " + key, Err: err}
	}
	return s.publicBaseURL + "/" + key, nil
}

var _ Store = (*S3Store)(nil)
