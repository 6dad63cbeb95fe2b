package media

import (
	"context"

	app_errors "github.com/lumiforge/mediavault-backend/internal/errors"
	"github.com/lumiforge/mediavault-backend/internal/validation"
)

// Kind is the resource family of an upload.
type Kind string

const (
	KindVideo Kind = "video"
	KindImage Kind = "image"
)

// Hints carry optional metadata for the remote service. None of it is required.
type Hints struct {
	Filename string
	Title    string
	OwnerID  string
}

// Result describes an asset stored by the media service.
type Result struct {
	ContentID           string
	PlaybackURL         string
	ThumbnailURL        string
	CompressedSizeBytes int64
	DurationSeconds     float64
}

// Uploader sends raw bytes to the external media service.
// Every call creates a new remote asset; nothing is cached or deduplicated.
type Uploader interface {
	Upload(ctx context.Context, data []byte, contentType string, hints Hints) (*Result, error)
}

// KindOf maps a content type onto a resource family.
func KindOf(contentType string) (Kind, bool) {
	switch {
	case validation.IsVideoContentType(contentType):
		return KindVideo, true
	case validation.IsImageContentType(contentType):
		return KindImage, true
	default:
		return "", false
	}
}

// checkPayload enforces the input contract shared by every backend.
func checkPayload(data []byte, contentType string) (Kind, error) {
	if len(data) == 0 {
		return "", app_errors.NewMediaUploadError(app_errors.ReasonEmptyPayload, nil)
	}
	kind, ok := KindOf(contentType)
	if !ok {
		return "", app_errors.NewMediaUploadError(app_errors.ReasonUnsupportedType, nil)
	}
	return kind, nil
}

// Unconfigured fails every call without touching the network. It is installed when
// the media credentials are missing so uploads fail fast instead of at start-up.
type Unconfigured struct{}

func (Unconfigured) Upload(ctx context.Context, data []byte, contentType string, hints Hints) (*Result, error) {
	return nil, app_errors.NewMediaUploadError(app_errors.ReasonNotConfigured, app_errors.ErrMediaServiceNotConfigured)
}
