package share

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/yigit/maayosgrader/internal/pkg/validation"
)

// S3Config configures S3Sharer
type S3Config struct {
	Bucket        string
	Region        string
	AccessKey     string
	SecretKey     string
	Prefix        string
	PresignExpiry time.Duration
}

// ObjectPutter is the subset of the S3 client used for uploads
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ObjectPresigner is the subset of the S3 presign client used for download links
type ObjectPresigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Sharer uploads exports to an S3 bucket and hands out presigned links
type S3Sharer struct {
	cfg       S3Config
	client    ObjectPutter
	presigner ObjectPresigner
	logger    zerolog.Logger
}

var _ Sharer = (*S3Sharer)(nil)

// NewS3Sharer builds an S3 client from cfg. Static credentials are used when
// both keys are set, otherwise the default AWS credential chain applies.
func NewS3Sharer(ctx context.Context, cfg S3Config, lgr zerolog.Logger) (*S3Sharer, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return NewS3SharerWithClient(cfg, client, s3.NewPresignClient(client), lgr), nil
}

// NewS3SharerWithClient creates an S3Sharer over existing clients
func NewS3SharerWithClient(cfg S3Config, client ObjectPutter, presigner ObjectPresigner, lgr zerolog.Logger) *S3Sharer {
	if cfg.PresignExpiry <= 0 {
		cfg.PresignExpiry = 15 * time.Minute
	}
	return &S3Sharer{
		cfg:       cfg,
		client:    client,
		presigner: presigner,
		logger:    lgr.With().Str("component", "s3_sharer").Str("bucket", cfg.Bucket).Logger(),
	}
}

// ObjectKey returns the object key an export named name is stored under
func (s *S3Sharer) ObjectKey(name string) string {
	prefix := strings.Trim(s.cfg.Prefix, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// Share uploads body and returns a presigned download URL
func (s *S3Sharer) Share(ctx context.Context, name, contentType string, body []byte) (string, error) {
	if !validation.IsSafePathSegment(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	key := s.ObjectKey(name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("Failed to upload export")
		return "", fmt.Errorf("failed to upload export: %w", err)
	}

	location := fmt.Sprintf("s3://%s/%s", s.cfg.Bucket, key)
	if s.presigner == nil {
		return location, nil
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.cfg.PresignExpiry))
	if err != nil {
		// The upload succeeded; fall back to the bucket location
		s.logger.Warn().Err(err).Str("key", key).Msg("Failed to presign export link")
		return location, nil
	}

	s.logger.Info().Str("key", key).Msg("Export uploaded")
	return req.URL, nil
}
