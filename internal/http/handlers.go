package http

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/lumiforge/mediavault-backend/internal/auth"
	"github.com/lumiforge/mediavault-backend/internal/catalog"
	app_errors "github.com/lumiforge/mediavault-backend/internal/errors"
	"github.com/lumiforge/mediavault-backend/internal/logger"
	"github.com/lumiforge/mediavault-backend/internal/validation"
	"github.com/lumiforge/mediavault-backend/internal/video"
)

// multipartSlack покрывает заголовки частей и текстовые поля формы
const multipartSlack = 1 << 20

// Server represents HTTP server
type Server struct {
	videoService  *video.Service
	maxVideoBytes int64
	maxImageBytes int64
}

// NewServer creates a new HTTP server
func NewServer(videoService *video.Service, maxVideoBytes, maxImageBytes int64) *Server {
	return &Server{
		videoService:  videoService,
		maxVideoBytes: maxVideoBytes,
		maxImageBytes: maxImageBytes,
	}
}

// UploadVideo handles video upload
// @Summary		Upload a video
// @Description	Uploads a video to the media service and records it in the catalog
// @Tags		video
// @Accept		multipart/form-data
// @Produce	json
// @Param		title		formData	string	true	"Video title"
// @Param		description	formData	string	false	"Video description"
// @Param		file		formData	file	true	"Video file"
// @Security		BearerAuth
// @Success	201	{object}	VideoResponse
// @Failure	400	{object}	ErrorResponse
// @Failure	401	{object}	ErrorResponse
// @Failure	429	{object}	ErrorResponse
// @Failure	500	{object}	ErrorResponse
// @Router		/video-upload [post]
func (s *Server) UploadVideo(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, s.maxVideoBytes+multipartSlack)
	data, header, err := readFormFile(r, "file", s.maxVideoBytes)
	if err != nil {
		s.writeServiceError(w, r, err, "Error uploading video")
		return
	}

	req := video.UploadRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Data:        data,
	}
	if header != nil {
		req.Filename = header.Filename
		req.DeclaredContentType = header.Header.Get("Content-Type")
	}

	record, err := s.videoService.Upload(r.Context(), identity, req)
	if err != nil {
		s.writeServiceError(w, r, err, "Error uploading video")
		return
	}

	writeJSON(w, http.StatusCreated, toVideoResponse(record))
}

// UploadImage handles image upload
// @Summary		Upload an image
// @Description	Uploads an image to the media service. Nothing is written to the catalog.
// @Tags		image
// @Accept		multipart/form-data
// @Produce	json
// @Param		file	formData	file	true	"Image file"
// @Security		BearerAuth
// @Success	200	{object}	ImageUploadResponse
// @Failure	400	{object}	ErrorResponse
// @Failure	401	{object}	ErrorResponse
// @Failure	500	{object}	ErrorResponse
// @Router		/image-upload [post]
func (s *Server) UploadImage(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, s.maxImageBytes+multipartSlack)
	data, header, err := readFormFile(r, "file", s.maxImageBytes)
	if err != nil {
		s.writeServiceError(w, r, err, "Upload image failed")
		return
	}

	req := video.ImageUploadRequest{Data: data}
	if header != nil {
		req.Filename = header.Filename
		req.DeclaredContentType = header.Header.Get("Content-Type")
	}

	result, err := s.videoService.UploadImage(r.Context(), identity, req)
	if err != nil {
		s.writeServiceError(w, r, err, "Upload image failed")
		return
	}

	writeJSON(w, http.StatusOK, ImageUploadResponse{PublicID: result.PublicID, URL: result.URL})
}

// ListVideos handles catalog listing
// @Summary		List videos
// @Description	Returns catalog records, newest first. X-Next-Cursor is set when more records exist.
// @Tags		video
// @Produce	json
// @Param		limit	query		int		false	"Page size, all records when omitted"
// @Param		cursor	query		string	false	"Cursor from X-Next-Cursor"
// @Success	200		{array}		VideoResponse
// @Failure	400		{object}	ErrorResponse
// @Failure	500		{object}	ErrorResponse
// @Router		/videos [get]
func (s *Server) ListVideos(w http.ResponseWriter, r *http.Request) {
	opts := catalog.ListOptions{Cursor: r.URL.Query().Get("cursor")}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			s.writeServiceError(w, r, app_errors.NewValidationError("limit", "must be a non-negative integer"), "Error fetching videos")
			return
		}
		opts.Limit = limit
	}

	page, err := s.videoService.List(r.Context(), opts)
	if err != nil {
		s.writeServiceError(w, r, err, "Error fetching videos")
		return
	}

	resp := make([]VideoResponse, 0, len(page.Records))
	for _, rec := range page.Records {
		resp = append(resp, toVideoResponse(rec))
	}
	if page.NextCursor != "" {
		w.Header().Set("X-Next-Cursor", page.NextCursor)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Health handles health check
// @Summary		Health check
// @Description	Check API health status
// @Tags		health
// @Produce	json
// @Success	200	{object}	HealthResponse
// @Router		/healthz [get]
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// readFormFile reads one file part. A missing part yields nil data, not an error.
func readFormFile(r *http.Request, field string, maxBytes int64) ([]byte, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, nil, formError(err, maxBytes)
	}

	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, formError(err, maxBytes)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, formError(err, maxBytes)
	}
	if data == nil {
		data = []byte{}
	}
	return data, header, nil
}

// formError переводит ошибку разбора формы в ValidationError.
// Переполнение тела дает то же сообщение, что и ValidateFileSize.
func formError(err error, maxBytes int64) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large") {
		return validation.ValidateFileSize(maxBytes+1, maxBytes, "file")
	}
	return app_errors.NewValidationError("form", "must be multipart/form-data")
}

// writeServiceError maps domain errors onto HTTP statuses
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error, failure string) {
	log := logger.FromContext(r.Context())

	var vErr *app_errors.ValidationError
	var nfErr *app_errors.NotFoundError
	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: vErr.Error()})
	case errors.Is(err, app_errors.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
	case errors.As(err, &nfErr):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: nfErr.Error()})
	default:
		details := "internal error"
		if mErr, ok := app_errors.IsMediaUpload(err); ok {
			details = "media service: " + mErr.Reason
		} else if app_errors.IsPersistence(err) {
			details = "catalog unavailable"
		}
		// Ошибки каталога сервис уже залогировал на ERROR (алерт в Telegram)
		if app_errors.IsPersistence(err) {
			log.Warn(failure, "error", err)
		} else {
			log.Error(failure, "error", err)
		}
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: failure, Details: details})
	}
}

func toVideoResponse(rec *catalog.VideoRecord) VideoResponse {
	return VideoResponse{
		ID:                  rec.ID,
		Title:               rec.Title,
		Description:         rec.Description,
		ContentID:           rec.ContentID,
		PlaybackURL:         rec.PlaybackURL,
		ThumbnailURL:        rec.ThumbnailURL,
		OriginalSizeBytes:   rec.OriginalSizeBytes,
		CompressedSizeBytes: rec.CompressedSizeBytes,
		DurationSeconds:     rec.DurationSeconds,
		OwnerID:             rec.OwnerID,
		CreatedAt:           rec.CreatedAt,
		UpdatedAt:           rec.UpdatedAt,
	}
}
