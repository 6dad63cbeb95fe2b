package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
	"github.com/lumiforge/mediavault-backend/internal/config"
	app_errors "github.com/lumiforge/mediavault-backend/internal/errors"
	"github.com/lumiforge/mediavault-backend/internal/validation"
)

// objectAPI is the subset of the S3 client used here.
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// S3Client stores media as-is in an S3-compatible bucket. It does not transcode:
// the compressed size is the stored object size and duration is reported as 0.
type S3Client struct {
	s3Client objectAPI
	bucket   string
	endpoint string
	region   string
}

var _ Uploader = (*S3Client)(nil)

// NewS3Client создает новый S3 клиент
func NewS3Client(ctx context.Context, cfg *config.Config) (*S3Client, error) {
	if !cfg.HasS3Credentials() {
		return nil, app_errors.ErrMediaServiceNotConfigured
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
	})

	return newS3Client(client, cfg.S3Bucket, cfg.S3Endpoint, cfg.S3Region), nil
}

func newS3Client(api objectAPI, bucket, endpoint, region string) *S3Client {
	return &S3Client{
		s3Client: api,
		bucket:   bucket,
		endpoint: endpoint,
		region:   region,
	}
}

// Upload кладет объект в bucket и читает его фактический размер обратно
func (c *S3Client) Upload(ctx context.Context, data []byte, contentType string, hints Hints) (*Result, error) {
	kind, err := checkPayload(data, contentType)
	if err != nil {
		return nil, err
	}

	filename := validation.SanitizeFilename(hints.Filename)
	if filename == "" {
		filename = "source"
	}
	key := path.Join(string(kind)+"s", uuid.New().String(), filename)

	input := &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(validation.NormalizeContentType(contentType)),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if hints.OwnerID != "" {
		input.Metadata = map[string]string{"owner-id": hints.OwnerID}
	}

	if _, err := c.s3Client.PutObject(ctx, input); err != nil {
		return nil, classifyS3Error(err)
	}

	head, err := c.s3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, classifyS3Error(err)
	}
	if head.ContentLength == nil {
		return nil, app_errors.NewMediaUploadError(app_errors.ReasonMalformedResponse, errors.New("head response has no content length"))
	}

	publicURL, err := c.PublicURL(key)
	if err != nil {
		return nil, app_errors.NewMediaUploadError(app_errors.ReasonMalformedResponse, err)
	}

	result := &Result{
		ContentID:           key,
		PlaybackURL:         publicURL,
		CompressedSizeBytes: *head.ContentLength,
	}
	if kind == KindImage {
		result.ThumbnailURL = publicURL
	}
	return result, nil
}

// PublicURL формирует Virtual-Hosted Style URL: https://bucket.endpoint/key
func (c *S3Client) PublicURL(key string) (string, error) {
	endpoint := c.endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://s3.%s.amazonaws.com", c.region)
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("failed to parse endpoint url: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("endpoint %q has no host", endpoint)
	}

	// Принудительно ставим HTTPS для публичных ссылок
	u.Scheme = "https"
	u.Host = fmt.Sprintf("%s.%s", c.bucket, u.Host)
	u.Path = "/" + strings.TrimPrefix(key, "/")

	return u.String(), nil
}

func classifyS3Error(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return app_errors.NewMediaUploadError(app_errors.ReasonRejected, err)
	}
	return app_errors.NewMediaUploadError(app_errors.ReasonNetwork, err)
}
