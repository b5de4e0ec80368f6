package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const s3KeyPrefix = "uploads/"

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store uploads images to a bucket. Objects are addressed through
// publicURL when set (a CDN or custom domain), otherwise through the
// bucket's virtual-hosted endpoint.
type S3Store struct {
	client    putObjectAPI
	bucket    string
	publicURL string
}

// NewS3Store loads credentials and region from the default AWS chain.
func NewS3Store(ctx context.Context, bucket, publicURL string) (*S3Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is required for the s3 upload backend")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	if publicURL == "" {
		if cfg.Region != "" {
			publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, cfg.Region)
		} else {
			publicURL = fmt.Sprintf("https://%s.s3.amazonaws.com", bucket)
		}
	}
	return newS3Store(s3.NewFromConfig(cfg), bucket, publicURL), nil
}

func newS3Store(client putObjectAPI, bucket, publicURL string) *S3Store {
	return &S3Store{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

func (s *S3Store) Save(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	key := s3KeyPrefix + name
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s.publicURL + "/" + key, nil
}
