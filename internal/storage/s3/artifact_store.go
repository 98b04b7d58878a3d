// Package s3 publishes run artifacts to an S3-compatible bucket.
package s3

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"medchron/internal/config"
	"medchron/internal/domain"
	"medchron/internal/port"
)

// ArtifactStore uploads chronology artifacts and signs download links for them.
type ArtifactStore struct {
	presigner *s3.PresignClient
	uploader  *manager.Uploader
}

var _ port.ObjectStorage = (*ArtifactStore)(nil)

// NewArtifactStore builds an ArtifactStore from the S3 settings. A custom
// endpoint (MinIO, LocalStack) switches to path-style addressing.
func NewArtifactStore(ctx context.Context, cfg *config.S3Config) (*ArtifactStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &ArtifactStore{
		presigner: s3.NewPresignClient(client),
		uploader: manager.NewUploader(client, func(u *manager.Uploader) {
			// Artifacts are small text files; one part per upload.
			u.Concurrency = 1
		}),
	}, nil
}

// Upload stores one artifact. The object is served as a download named after
// the last key segment and carries input.Metadata as user metadata.
func (s *ArtifactStore) Upload(ctx context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	if input.Bucket == "" || input.Key == "" {
		return nil, fmt.Errorf("bucket and key are required: %w", domain.ErrInvalidInput)
	}

	result, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(input.Bucket),
		Key:                aws.String(input.Key),
		Body:               input.Body,
		ContentType:        aws.String(input.ContentType),
		ContentDisposition: aws.String(disposition("attachment", input.Key)),
		Metadata:           input.Metadata,
	})
	if err != nil {
		return nil, wrapError(input.Bucket, "uploading "+input.Key, err)
	}

	return &port.UploadOutput{
		Location: result.Location,
		ETag:     aws.ToString(result.ETag),
	}, nil
}

// GetPresignedURL signs a GET for key that browsers display inline.
func (s *ArtifactStore) GetPresignedURL(ctx context.Context, bucket, key string, expirySeconds int64) (string, error) {
	if expirySeconds <= 0 {
		return "", fmt.Errorf("presign expiry must be positive: %w", domain.ErrInvalidInput)
	}
	result, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(bucket),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String(disposition("inline", key)),
	}, s3.WithPresignExpires(time.Duration(expirySeconds)*time.Second))
	if err != nil {
		return "", fmt.Errorf("presigning %s: %w", key, err)
	}
	return result.URL, nil
}

func disposition(kind, key string) string {
	return mime.FormatMediaType(kind, map[string]string{"filename": path.Base(key)})
}

func wrapError(bucket, op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchBucket" {
		return fmt.Errorf("%s: bucket %q: %w", op, bucket, domain.ErrBucketNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
