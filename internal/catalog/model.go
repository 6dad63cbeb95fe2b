package catalog

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	app_errors "github.com/lumiforge/mediavault-backend/internal/errors"
)

// VideoRecord is one catalog entry. It is created once and never changed afterwards.
type VideoRecord struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	Description         string    `json:"description,omitempty"`
	ContentID           string    `json:"contentId"`
	PlaybackURL         string    `json:"playbackUrl"`
	ThumbnailURL        string    `json:"thumbnailUrl,omitempty"`
	OriginalSizeBytes   int64     `json:"originalSizeBytes"`
	CompressedSizeBytes int64     `json:"compressedSizeBytes"`
	DurationSeconds     float64   `json:"durationSeconds"`
	OwnerID             string    `json:"ownerId"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// VideoRecordInput is everything the caller supplies; the store assigns the rest.
type VideoRecordInput struct {
	Title               string
	Description         string
	ContentID           string
	PlaybackURL         string
	ThumbnailURL        string
	OriginalSizeBytes   int64
	CompressedSizeBytes int64
	DurationSeconds     float64
	OwnerID             string
}

// ListOptions controls ListRecent. Limit <= 0 returns the whole catalog.
type ListOptions struct {
	Limit  int
	Cursor string
}

// Page is one slice of the catalog, newest first.
type Page struct {
	Records    []*VideoRecord
	NextCursor string
}

// Cursor is the position of the last record of a page.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// EncodeCursor makes an opaque token from a record position.
func EncodeCursor(createdAt time.Time, id string) string {
	raw := strconv.FormatInt(createdAt.UnixNano(), 10) + ":" + id
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a token produced by EncodeCursor.
func DecodeCursor(token string) (*Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", app_errors.ErrInvalidCursor, err)
	}
	nanos, id, ok := strings.Cut(string(raw), ":")
	if !ok || id == "" {
		return nil, app_errors.ErrInvalidCursor
	}
	n, err := strconv.ParseInt(nanos, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", app_errors.ErrInvalidCursor, err)
	}
	return &Cursor{CreatedAt: time.Unix(0, n).UTC(), ID: id}, nil
}

func validateInput(in VideoRecordInput) error {
	if strings.TrimSpace(in.ContentID) == "" {
		return app_errors.NewPersistenceError("create", ErrEmptyContentID)
	}
	if strings.TrimSpace(in.Title) == "" {
		return app_errors.NewPersistenceError("create", ErrEmptyTitle)
	}
	return nil
}

// pageOf trims one extra row fetched to detect the next page.
func pageOf(records []*VideoRecord, limit int) *Page {
	page := &Page{Records: records}
	if page.Records == nil {
		page.Records = []*VideoRecord{}
	}
	if limit > 0 && len(records) > limit {
		page.Records = records[:limit]
		last := page.Records[limit-1]
		page.NextCursor = EncodeCursor(last.CreatedAt, last.ID)
	}
	return page
}
