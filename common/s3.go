package common

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// S3Config contains minimal configuration for creating an S3 client.
// Values are optional and will fall back to the standard AWS config/credential chain.
type S3Config struct {
	// Region to use for requests, e.g. "us-east-1". If empty, AWS defaults apply.
	Region string
	// Profile selects a named shared config/credentials profile. If empty, default chain applies.
	Profile string
	// Endpoint overrides the service endpoint (LocalStack, MinIO).
	Endpoint string
	// UsePathStyle forces path-style addressing (useful for some S3-compatible providers).
	UsePathStyle bool
}

// S3 wraps the AWS SDK for Go v2 S3 client with the narrow surface archival needs.
type S3 struct {
	client *s3.Client
}

// NewS3 creates a new S3 wrapper using the default AWS configuration chain,
// with optional overrides from S3Config.
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	c := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &S3{client: c}, nil
}

// Put uploads body to bucket/key. size may be -1 when unknown.
func (s *S3) Put(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error {
	in := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if size >= 0 {
		in.ContentLength = aws.Int64(size)
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	_, err := s.client.PutObject(ctx, in)
	return err
}

// ErrBucketNotFound is returned by CheckBucket when the bucket does not exist.
var ErrBucketNotFound = errors.New("bucket not found")

// CheckBucket verifies that bucket exists and is reachable with the loaded credentials.
func (s *S3) CheckBucket(ctx context.Context, bucket string) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err == nil {
		return nil
	}

	var respErr *http.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == 404 {
		return fmt.Errorf("%w: %s", ErrBucketNotFound, bucket)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
		return fmt.Errorf("%w: %s", ErrBucketNotFound, bucket)
	}
	return fmt.Errorf("failed to reach bucket %s: %w", bucket, err)
}

// ListKeys returns every key under prefix, following continuation tokens.
func (s *S3) ListKeys(ctx context.Context, bucket, prefix string) ([]string, error) {
	var keys []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}
