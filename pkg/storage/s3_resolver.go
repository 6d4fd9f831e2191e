// Package storage turns object storage identifiers into fetchable URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/listingdeck/listingdeck/config"
)

var (
	ErrEmptyIdentifier = errors.New("empty storage identifier")
	ErrMissingBucket   = errors.New("storage bucket is not configured")
)

// ObjectRequester is the part of the S3 client used for presigning
type ObjectRequester interface {
	GetObjectRequest(input *s3.GetObjectInput) (*request.Request, *s3.GetObjectOutput)
}

// S3URLResolver presigns GET URLs for stored images
type S3URLResolver struct {
	client ObjectRequester
	bucket string
	ttl    time.Duration
}

// NewS3URLResolver builds a resolver from the storage configuration
func NewS3URLResolver(cfg config.StorageConfig) (*S3URLResolver, error) {
	if cfg.Bucket == "" {
		return nil, ErrMissingBucket
	}

	awsConfig := &aws.Config{
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(cfg.ForcePathStyle),
	}
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return NewS3URLResolverWithClient(s3.New(sess), cfg.Bucket, cfg.PresignTTL), nil
}

// NewS3URLResolverWithClient is used by tests and by callers that share an S3 client
func NewS3URLResolverWithClient(client ObjectRequester, bucket string, ttl time.Duration) *S3URLResolver {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &S3URLResolver{client: client, bucket: bucket, ttl: ttl}
}

// TTL is how long a presigned URL stays valid
func (r *S3URLResolver) TTL() time.Duration {
	return r.ttl
}

// ResolveURL presigns a GET for identifier. Identifiers are object keys,
// optionally written as s3://bucket/key to address another bucket.
func (r *S3URLResolver) ResolveURL(ctx context.Context, identifier string) (string, error) {
	bucket, key, err := r.parseIdentifier(identifier)
	if err != nil {
		return "", err
	}

	req, _ := r.client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	req.SetContext(ctx)

	url, err := req.Presign(r.ttl)
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", identifier, err)
	}
	return url, nil
}

func (r *S3URLResolver) parseIdentifier(identifier string) (bucket, key string, err error) {
	identifier = strings.TrimSpace(identifier)

	bucket = r.bucket
	if rest, ok := strings.CutPrefix(identifier, "s3://"); ok {
		var found bool
		bucket, identifier, found = strings.Cut(rest, "/")
		if !found || bucket == "" {
			return "", "", fmt.Errorf("invalid storage identifier %q", "s3://"+rest)
		}
	}

	key = strings.TrimLeft(identifier, "/")
	if key == "" {
		return "", "", ErrEmptyIdentifier
	}
	return bucket, key, nil
}
