package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/lumiforge/mediavault-backend/internal/config"
	app_errors "github.com/lumiforge/mediavault-backend/internal/errors"
)

const deliveryHost = "https://res.cloudinary.com"

// uploadAPI is the part of the Cloudinary SDK the client needs.
type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, uploadParams uploader.UploadParams) (*uploader.UploadResult, error)
}

// CloudinaryClient uploads to Cloudinary, which stores and transcodes the asset.
type CloudinaryClient struct {
	api         uploadAPI
	cloudName   string
	videoFolder string
	imageFolder string
}

var _ Uploader = (*CloudinaryClient)(nil)

// NewCloudinaryClient создает клиент Cloudinary из конфигурации
func NewCloudinaryClient(cfg *config.Config) (*CloudinaryClient, error) {
	if !cfg.HasCloudinaryCredentials() {
		return nil, app_errors.ErrMediaServiceNotConfigured
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}

	return newCloudinaryClient(&cld.Upload, cfg.CloudinaryCloudName, cfg.CloudinaryVideoFolder, cfg.CloudinaryImageFolder), nil
}

func newCloudinaryClient(api uploadAPI, cloudName, videoFolder, imageFolder string) *CloudinaryClient {
	return &CloudinaryClient{
		api:         api,
		cloudName:   cloudName,
		videoFolder: videoFolder,
		imageFolder: imageFolder,
	}
}

// Upload отправляет файл одним блокирующим вызовом и ждет ответа сервиса
func (c *CloudinaryClient) Upload(ctx context.Context, data []byte, contentType string, hints Hints) (*Result, error) {
	kind, err := checkPayload(data, contentType)
	if err != nil {
		return nil, err
	}

	params := uploader.UploadParams{
		ResourceType: string(kind),
		Folder:       c.videoFolder,
	}
	if kind == KindImage {
		params.Folder = c.imageFolder
	}

	res, err := c.api.Upload(ctx, bytes.NewReader(data), params)
	if err != nil {
		return nil, classifyCloudinaryError(err)
	}
	if res == nil {
		return nil, app_errors.NewMediaUploadError(app_errors.ReasonMalformedResponse, errors.New("empty response"))
	}
	if res.Error.Message != "" {
		return nil, app_errors.NewMediaUploadError(app_errors.ReasonRejected, errors.New(res.Error.Message))
	}
	if res.PublicID == "" {
		return nil, app_errors.NewMediaUploadError(app_errors.ReasonMalformedResponse, errors.New("response has no public_id"))
	}

	result := &Result{
		ContentID:           res.PublicID,
		CompressedSizeBytes: int64(res.Bytes),
		DurationSeconds:     durationFromRaw(res.Response),
	}
	if kind == KindVideo {
		result.PlaybackURL = c.PlaybackURL(res.PublicID)
		result.ThumbnailURL = c.ThumbnailURL(res.PublicID)
	} else {
		result.PlaybackURL = res.SecureURL
		result.ThumbnailURL = res.SecureURL
	}
	return result, nil
}

// PlaybackURL is the stable mp4 delivery URL for a video public id.
func (c *CloudinaryClient) PlaybackURL(publicID string) string {
	return fmt.Sprintf("%s/%s/video/upload/%s.mp4", deliveryHost, c.cloudName, publicID)
}

// ThumbnailURL is the first-frame still for a video public id.
func (c *CloudinaryClient) ThumbnailURL(publicID string) string {
	return fmt.Sprintf("%s/%s/video/upload/so_0/%s.jpg", deliveryHost, c.cloudName, publicID)
}

func classifyCloudinaryError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return app_errors.NewMediaUploadError(app_errors.ReasonNetwork, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return app_errors.NewMediaUploadError(app_errors.ReasonNetwork, err)
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || strings.Contains(err.Error(), "unexpected end of JSON") {
		return app_errors.NewMediaUploadError(app_errors.ReasonMalformedResponse, err)
	}
	return app_errors.NewMediaUploadError(app_errors.ReasonRejected, err)
}

// durationFromRaw достает duration из сырого ответа: в типизированном результате его нет
func durationFromRaw(raw interface{}) float64 {
	if raw == nil {
		return 0
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return 0
	}
	var payload struct {
		Duration float64 `json:"duration"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.Duration < 0 {
		return 0
	}
	return payload.Duration
}
