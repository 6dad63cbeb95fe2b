package video

import (
	"context"
	"errors"
	"time"

	"github.com/lumiforge/mediavault-backend/internal/auth"
	"github.com/lumiforge/mediavault-backend/internal/catalog"
	app_errors "github.com/lumiforge/mediavault-backend/internal/errors"
	"github.com/lumiforge/mediavault-backend/internal/logger"
	"github.com/lumiforge/mediavault-backend/internal/media"
	"github.com/lumiforge/mediavault-backend/internal/metrics"
	"github.com/lumiforge/mediavault-backend/internal/validation"
)

// MaxListLimit caps a single page of the catalog.
const MaxListLimit = 100

const sniffLen = 512

// Options задает лимиты и таймауты сервиса
type Options struct {
	MaxVideoBytes int64
	MaxImageBytes int64
	MediaTimeout  time.Duration
	DBTimeout     time.Duration
}

type Service struct {
	store    catalog.Store
	uploader media.Uploader
	opts     Options
}

func NewService(store catalog.Store, uploader media.Uploader, opts Options) *Service {
	return &Service{
		store:    store,
		uploader: uploader,
		opts:     opts,
	}
}

// UploadRequest is a video upload as received from the client.
// Data == nil means no file part was sent at all.
type UploadRequest struct {
	Title               string
	Description         string
	Filename            string
	DeclaredContentType string
	Data                []byte
}

// ImageUploadRequest is an image upload as received from the client.
type ImageUploadRequest struct {
	Filename            string
	DeclaredContentType string
	Data                []byte
}

// ImageUploadResult mirrors the media service answer for an image.
type ImageUploadResult struct {
	PublicID string `json:"publicId"`
	URL      string `json:"url"`
}

// Upload validates the request, stores the bytes with the media service and records the result.
// A persistence failure after a successful remote upload leaves the remote asset in place.
func (s *Service) Upload(ctx context.Context, identity *auth.Identity, req UploadRequest) (*catalog.VideoRecord, error) {
	log := logger.FromContext(ctx)

	title, description, contentType, err := s.validateVideo(req)
	if err != nil {
		metrics.RecordUpload(string(media.KindVideo), metrics.OutcomeInvalid)
		return nil, err
	}

	if identity == nil || identity.UserID == "" {
		metrics.RecordUpload(string(media.KindVideo), metrics.OutcomeUnauthorized)
		return nil, app_errors.ErrUnauthorized
	}

	mediaCtx, cancel := context.WithTimeout(ctx, s.opts.MediaTimeout)
	defer cancel()

	started := time.Now()
	result, err := s.uploader.Upload(mediaCtx, req.Data, contentType, media.Hints{
		Filename: req.Filename,
		Title:    title,
		OwnerID:  identity.UserID,
	})
	metrics.ObserveMediaUpload(string(media.KindVideo), time.Since(started))
	if err != nil {
		metrics.RecordUpload(string(media.KindVideo), metrics.OutcomeMediaFailed)
		log.Warn("media upload failed", "owner_id", identity.UserID, "size", len(req.Data), "error", err)
		return nil, asMediaError(err)
	}

	// Ассет уже создан: запись в каталог не должна зависеть от отключения клиента
	dbCtx, dbCancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.DBTimeout)
	defer dbCancel()

	record, err := s.store.Create(dbCtx, catalog.VideoRecordInput{
		Title:               title,
		Description:         description,
		ContentID:           result.ContentID,
		PlaybackURL:         result.PlaybackURL,
		ThumbnailURL:        result.ThumbnailURL,
		OriginalSizeBytes:   int64(len(req.Data)),
		CompressedSizeBytes: result.CompressedSizeBytes,
		DurationSeconds:     result.DurationSeconds,
		OwnerID:             identity.UserID,
	})
	if err != nil {
		metrics.RecordUpload(string(media.KindVideo), metrics.OutcomePersistFailed)
		metrics.RecordOrphanedAsset()
		log.Error("catalog write failed, remote asset orphaned",
			"content_id", result.ContentID,
			"playback_url", result.PlaybackURL,
			"owner_id", identity.UserID,
			"error", err,
		)
		if !app_errors.IsPersistence(err) {
			err = app_errors.NewPersistenceError("create", err)
		}
		return nil, err
	}

	metrics.RecordUpload(string(media.KindVideo), metrics.OutcomeSuccess)
	metrics.RecordUploadBytes(record.OriginalSizeBytes, record.CompressedSizeBytes)
	log.Info("video uploaded", "id", record.ID, "content_id", record.ContentID, "owner_id", record.OwnerID)

	return record, nil
}

// List returns the public catalog, newest first.
func (s *Service) List(ctx context.Context, opts catalog.ListOptions) (*catalog.Page, error) {
	if opts.Limit > MaxListLimit {
		opts.Limit = MaxListLimit
	}

	dbCtx, cancel := context.WithTimeout(ctx, s.opts.DBTimeout)
	defer cancel()

	page, err := s.store.ListRecent(dbCtx, opts)
	if err != nil {
		metrics.RecordCatalogList(false)
		if errors.Is(err, app_errors.ErrInvalidCursor) {
			return nil, app_errors.NewValidationError("cursor", "is invalid")
		}
		if !app_errors.IsPersistence(err) {
			err = app_errors.NewPersistenceError("list", err)
		}
		logger.FromContext(ctx).Error("catalog list failed", "error", err)
		return nil, err
	}

	metrics.RecordCatalogList(true)
	return page, nil
}

// UploadImage stores an image with the media service. No catalog record is written.
func (s *Service) UploadImage(ctx context.Context, identity *auth.Identity, req ImageUploadRequest) (*ImageUploadResult, error) {
	if req.Data == nil {
		metrics.RecordUpload(string(media.KindImage), metrics.OutcomeInvalid)
		return nil, app_errors.NewValidationError("file", "is required")
	}
	if err := validation.ValidateFileSize(int64(len(req.Data)), s.opts.MaxImageBytes, "file"); err != nil {
		metrics.RecordUpload(string(media.KindImage), metrics.OutcomeInvalid)
		return nil, err
	}
	contentType := validation.ResolveContentType(head(req.Data), req.DeclaredContentType, req.Filename)
	if err := validation.ValidateImageContentType(contentType, "file"); err != nil {
		metrics.RecordUpload(string(media.KindImage), metrics.OutcomeInvalid)
		return nil, err
	}

	if identity == nil || identity.UserID == "" {
		metrics.RecordUpload(string(media.KindImage), metrics.OutcomeUnauthorized)
		return nil, app_errors.ErrUnauthorized
	}

	mediaCtx, cancel := context.WithTimeout(ctx, s.opts.MediaTimeout)
	defer cancel()

	started := time.Now()
	result, err := s.uploader.Upload(mediaCtx, req.Data, contentType, media.Hints{
		Filename: req.Filename,
		OwnerID:  identity.UserID,
	})
	metrics.ObserveMediaUpload(string(media.KindImage), time.Since(started))
	if err != nil {
		metrics.RecordUpload(string(media.KindImage), metrics.OutcomeMediaFailed)
		logger.FromContext(ctx).Warn("image upload failed", "owner_id", identity.UserID, "error", err)
		return nil, asMediaError(err)
	}

	metrics.RecordUpload(string(media.KindImage), metrics.OutcomeSuccess)
	return &ImageUploadResult{PublicID: result.ContentID, URL: result.PlaybackURL}, nil
}

func (s *Service) validateVideo(req UploadRequest) (title, description, contentType string, err error) {
	if req.Data == nil {
		return "", "", "", app_errors.NewValidationError("file", "is required")
	}
	if err := validation.ValidateFileSize(int64(len(req.Data)), s.opts.MaxVideoBytes, "file"); err != nil {
		return "", "", "", err
	}
	if title, err = validation.SanitizeTitle(req.Title); err != nil {
		return "", "", "", err
	}
	if description, err = validation.SanitizeDescription(req.Description); err != nil {
		return "", "", "", err
	}
	contentType = validation.ResolveContentType(head(req.Data), req.DeclaredContentType, req.Filename)
	if err := validation.ValidateVideoContentType(contentType, "file"); err != nil {
		return "", "", "", err
	}
	return title, description, contentType, nil
}

func head(data []byte) []byte {
	if len(data) > sniffLen {
		return data[:sniffLen]
	}
	return data
}

// asMediaError гарантирует, что наружу уходит MediaUploadError
func asMediaError(err error) error {
	if _, ok := app_errors.IsMediaUpload(err); ok {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return app_errors.NewMediaUploadError(app_errors.ReasonNetwork, err)
	}
	return app_errors.NewMediaUploadError(app_errors.ReasonRejected, err)
}
