package objstore

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	coreconfig "github.com/dipanalytics/contentbot/core/config"
	"github.com/dipanalytics/contentbot/core/logger"
	"log/slog"
)

// Uploader stores raw payload bytes and returns a public locator URL.
type Uploader interface {
	Upload(ctx context.Context, data []byte, objectName, contentType string) (string, error)
}

// Storage adds removal and URL-to-key mapping on top of Uploader; the admin
// surface uses it to clean up objects behind deleted content rows.
type Storage interface {
	Uploader
	Delete(ctx context.Context, objectName string) error
	// ObjectKey maps a payload URL back to the stored object key. It reports
	// false for payloads that do not live in this storage.
	ObjectKey(rawURL string) (string, bool)
}

// S3 implements Uploader on top of an S3-compatible endpoint.
type S3 struct {
	endpoint      string
	region        string
	bucket        string
	publicBaseURL string
	cli           *s3.Client
	uploader      *manager.Uploader
}

// NewS3 builds an S3 client with static credentials and a custom endpoint.
func NewS3(cfg coreconfig.StorageConfig) (*S3, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(
		context.Background(),
		awsconfig.WithCredentialsProvider(credentials.StaticCredentialsProvider{
			Value: aws.Credentials{
				AccessKeyID:     cfg.AccessKey,
				SecretAccessKey: cfg.SecretKey,
			},
		}),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("objstore: load aws config: %w", err)
	}

	cli := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		// MinIO-style deployments address objects as endpoint/bucket/key.
		o.UsePathStyle = true
	})

	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	if base == "" {
		base = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}

	return &S3{
		endpoint:      cfg.Endpoint,
		region:        cfg.Region,
		bucket:        cfg.Bucket,
		publicBaseURL: base,
		cli:           cli,
		uploader:      manager.NewUploader(cli),
	}, nil
}

// Upload puts the object and returns its public URL.
func (s *S3) Upload(ctx context.Context, data []byte, objectName, contentType string) (string, error) {
	key := strings.TrimPrefix(objectName, "/")

	start := time.Now()
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		logger.Obj.Error("upload failed",
			slog.String("event", "objstore.upload"),
			slog.String("bucket", s.bucket),
			slog.String("key", key),
			slog.String("err", err.Error()),
		)
		return "", fmt.Errorf("objstore: upload %s: %w", key, err)
	}

	logger.Obj.Debug("object uploaded",
		slog.String("event", "objstore.upload"),
		slog.String("bucket", s.bucket),
		slog.String("key", key),
		slog.Int("size", len(data)),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return s.publicBaseURL + "/" + key, nil
}

// ObjectKey strips the public base URL prefix, recovering the object key.
func (s *S3) ObjectKey(rawURL string) (string, bool) {
	prefix := s.publicBaseURL + "/"
	if s.publicBaseURL == "" || !strings.HasPrefix(rawURL, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(rawURL, prefix)
	if key == "" {
		return "", false
	}
	return key, true
}

// Delete removes the object; missing objects are not an error.
func (s *S3) Delete(ctx context.Context, objectName string) error {
	key := strings.TrimPrefix(objectName, "/")
	_, err := s.cli.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("objstore: delete %s: %w", key, err)
	}
	return nil
}
