// Package storage keeps uploaded images and archived PDFs in S3-compatible
// object storage.
package storage

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	contentapp "github.com/webstudio/backend/internal/application/content"
	invoiceapp "github.com/webstudio/backend/internal/application/invoice"
	infraconfig "github.com/webstudio/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	defaultRegion     = "eu-central-1"
	defaultPresignTTL = 15 * time.Minute
)

var (
	_ contentapp.ObjectStorage   = (*S3Store)(nil)
	_ invoiceapp.DocumentArchive = (*S3Store)(nil)
)

// ErrNoKey is returned for operations on an empty object key
var ErrNoKey = errors.New("object key is empty")

// S3Store works against AWS S3 and S3-compatible servers such as MinIO or R2
type S3Store struct {
	client     *s3.Client
	presigner  *s3.PresignClient
	bucket     string
	cdn        string
	presignTTL time.Duration
	logger     *zap.Logger
}

// S3Option customizes an S3Store
type S3Option func(*S3Store)

// WithLogger logs uploads and bucket creation
func WithLogger(logger *zap.Logger) S3Option {
	return func(s *S3Store) { s.logger = logger }
}

// WithPresignTTL sets how long presigned URLs stay valid when callers pass 0
func WithPresignTTL(ttl time.Duration) S3Option {
	return func(s *S3Store) { s.presignTTL = ttl }
}

// NewS3Store builds a client for cfg. No request is made until first use.
func NewS3Store(cfg *infraconfig.StorageConfig, opts ...S3Option) (*S3Store, error) {
	if cfg == nil {
		return nil, errors.New("storage: no configuration")
	}
	var missing []string
	for _, f := range [...]struct{ name, value string }{
		{"bucket", cfg.Bucket},
		{"access_key", cfg.AccessKey},
		{"secret_key", cfg.SecretKey},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("storage: missing %s", strings.Join(missing, ", "))
	}
	endpoint, err := endpointURL(cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(cmp.Or(cfg.Region, defaultRegion)),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	s := &S3Store{
		client:     client,
		presigner:  s3.NewPresignClient(client),
		bucket:     cfg.Bucket,
		cdn:        strings.TrimRight(cfg.PublicURL, "/"),
		presignTTL: cfg.PresignExpiry,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.presignTTL <= 0 {
		s.presignTTL = defaultPresignTTL
	}
	return s, nil
}

// endpointURL accepts "host[:port]" or a full URL. Empty means AWS.
func endpointURL(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("storage: bad endpoint %q", raw)
	}
	return strings.TrimRight(raw, "/"), nil
}

// Bucket names the bucket this store writes to
func (s *S3Store) Bucket() string { return s.bucket }

// EnsureBucket creates the bucket on first start against a fresh server
func (s *S3Store) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: &s.bucket})
	if err == nil {
		return nil
	}
	if !isMissing(err) {
		return fmt.Errorf("storage: head bucket %s: %w", s.bucket, err)
	}

	s.logger.Info("Creating bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: &s.bucket})
	var owned *types.BucketAlreadyOwnedByYou
	if err != nil && !errors.As(err, &owned) {
		return fmt.Errorf("storage: create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// GenerateUploadURL presigns a PUT for key. The browser must send the same
// Content-Type.
func (s *S3Store) GenerateUploadURL(ctx context.Context, key, contentType string, ttl time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, ErrNoKey
	}
	ttl = s.ttl(ttl)
	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		ContentType: &contentType,
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("storage: presign put %s: %w", key, err)
	}
	return req.URL, time.Now().Add(ttl), nil
}

// GenerateDownloadURL presigns a GET for key
func (s *S3Store) GenerateDownloadURL(ctx context.Context, key string, ttl time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, ErrNoKey
	}
	ttl = s.ttl(ttl)
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("storage: presign get %s: %w", key, err)
	}
	return req.URL, time.Now().Add(ttl), nil
}

func (s *S3Store) ttl(requested time.Duration) time.Duration {
	if requested > 0 {
		return requested
	}
	return s.presignTTL
}

// PublicURL is the CDN address of key, or "" when no CDN is configured
func (s *S3Store) PublicURL(key string) string {
	key = strings.TrimLeft(key, "/")
	if s.cdn == "" || key == "" {
		return ""
	}
	return s.cdn + "/" + key
}

// DeleteObject removes key. Deleting a missing key succeeds.
func (s *S3Store) DeleteObject(ctx context.Context, key string) error {
	if key == "" {
		return ErrNoKey
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: &s.bucket, Key: &key}); err != nil {
		return fmt.Errorf("storage: delete %s: %w", key, err)
	}
	return nil
}

// ObjectExists reports whether key is stored
func (s *S3Store) ObjectExists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrNoKey
	}
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &key})
	switch {
	case err == nil:
		return true, nil
	case isMissing(err):
		return false, nil
	default:
		return false, fmt.Errorf("storage: head %s: %w", key, err)
	}
}

// Upload writes server-generated data such as issued invoice PDFs
func (s *S3Store) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return ErrNoKey
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        &s.bucket,
		Key:           &key,
		Body:          bytes.NewReader(data),
		ContentType:   &contentType,
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("storage: put %s: %w", key, err)
	}
	s.logger.Debug("Object stored", zap.String("key", key), zap.Int("bytes", len(data)))
	return nil
}

// isMissing matches the not-found errors of S3 and of servers that only
// report the code in the message
func isMissing(err error) bool {
	var (
		notFound *types.NotFound
		noKey    *types.NoSuchKey
		noBucket *types.NoSuchBucket
	)
	if errors.As(err, &notFound) || errors.As(err, &noKey) || errors.As(err, &noBucket) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "NotFound") || strings.Contains(msg, "NoSuchKey") || strings.Contains(msg, "NoSuchBucket")
}
