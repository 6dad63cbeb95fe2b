package http

import (
	"time"
)

// ErrorResponse represents an error response
// @Description	Error response with optional details
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// VideoResponse represents a catalog record
// @Description	Catalog entry of an uploaded video
type VideoResponse struct {
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

// ImageUploadResponse represents an uploaded image
// @Description	Media service id and delivery URL of an uploaded image
type ImageUploadResponse struct {
	PublicID string `json:"publicId"`
	URL      string `json:"url"`
}

// HealthResponse represents health check response
// @Description	Health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
