package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lumiforge/mediavault-backend/internal/auth"
	"github.com/lumiforge/mediavault-backend/internal/catalog"
	catalogmocks "github.com/lumiforge/mediavault-backend/internal/catalog/mocks"
	"github.com/lumiforge/mediavault-backend/internal/config"
	app_errors "github.com/lumiforge/mediavault-backend/internal/errors"
	"github.com/lumiforge/mediavault-backend/internal/jwt"
	"github.com/lumiforge/mediavault-backend/internal/logger"
	"github.com/lumiforge/mediavault-backend/internal/media"
	mediamocks "github.com/lumiforge/mediavault-backend/internal/media/mocks"
	"github.com/lumiforge/mediavault-backend/internal/video"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testMaxVideo = 4096
	testMaxImage = 2048
)

type testEnv struct {
	router   http.Handler
	store    *catalogmocks.Store
	uploader *mediamocks.Uploader
	token    string
}

func setupTestRouterWith(t *testing.T, uploader media.Uploader, rateLimit int) (http.Handler, *catalogmocks.Store, string) {
	t.Helper()
	mockStore := catalogmocks.NewStore(t)

	jwtManager := jwt.NewManager(&config.Config{JWTSecretKey: "secret"})
	token, err := jwtManager.GenerateToken("user_1", "u@example.com", time.Hour)
	require.NoError(t, err)

	videoService := video.NewService(mockStore, uploader, video.Options{
		MaxVideoBytes: testMaxVideo,
		MaxImageBytes: testMaxImage,
		MediaTimeout:  time.Minute,
		DBTimeout:     time.Second,
	})
	server := NewServer(videoService, testMaxVideo, testMaxImage)
	router := SetupRouter(server, auth.NewGuard(jwtManager), RouterOptions{UploadRateLimitPerMinute: rateLimit})

	return router, mockStore, token
}

func setupTestRouter(t *testing.T) *testEnv {
	t.Helper()
	mockUploader := mediamocks.NewUploader(t)
	router, mockStore, token := setupTestRouterWith(t, mockUploader, 0)
	return &testEnv{router: router, store: mockStore, uploader: mockUploader, token: token}
}

func mp4Bytes(size int) []byte {
	data := make([]byte, size)
	copy(data, []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm'})
	return data
}

func multipartBody(t *testing.T, fields map[string]string, filename string, file []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func newUploadRequest(t *testing.T, path, token string, fields map[string]string, filename string, file []byte) *http.Request {
	body, contentType := multipartBody(t, fields, filename, file)
	req := httptest.NewRequest("POST", path, body)
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestHandler_UploadVideo_Success(t *testing.T) {
	env := setupTestRouter(t)
	data := mp4Bytes(1024)
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	env.uploader.On("Upload", mock.Anything, data, "video/mp4", mock.Anything).
		Return(&media.Result{ContentID: "abc123", PlaybackURL: "https://res.cloudinary.com/demo/video/upload/abc123.mp4", CompressedSizeBytes: 512, DurationSeconds: 3}, nil).Once()
	env.store.On("Create", mock.Anything, mock.MatchedBy(func(in catalog.VideoRecordInput) bool {
		return in.Title == "Demo" && in.Description == "desc" && in.OriginalSizeBytes == 1024 && in.OwnerID == "user_1"
	})).Return(&catalog.VideoRecord{
		ID: "rec-1", Title: "Demo", Description: "desc", ContentID: "abc123",
		PlaybackURL: "https://res.cloudinary.com/demo/video/upload/abc123.mp4", OriginalSizeBytes: 1024,
		CompressedSizeBytes: 512, DurationSeconds: 3, OwnerID: "user_1", CreatedAt: created, UpdatedAt: created,
	}, nil).Once()

	req := newUploadRequest(t, "/api/video-upload", env.token, map[string]string{"title": "Demo", "description": "desc"}, "demo.mp4", data)
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp VideoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "rec-1", resp.ID)
	assert.Equal(t, "abc123", resp.ContentID)
	assert.Equal(t, int64(1024), resp.OriginalSizeBytes)
	assert.Equal(t, "user_1", resp.OwnerID)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestHandler_UploadVideo_Unauthorized(t *testing.T) {
	env := setupTestRouter(t)

	for _, token := range []string{"", "not-a-jwt"} {
		req := newUploadRequest(t, "/api/video-upload", token, map[string]string{"title": "Demo"}, "demo.mp4", mp4Bytes(64))
		w := httptest.NewRecorder()

		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
	}
	// Моки без ожиданий: ни медиасервис, ни каталог не вызывались
}

func TestHandler_UploadVideo_ValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		fields   map[string]string
		file     []byte
		contains string
	}{
		{"missing file", map[string]string{"title": "Demo"}, nil, "file is required"},
		{"missing title", map[string]string{}, mp4Bytes(64), "title is required"},
		{"over the cap", map[string]string{"title": "Demo"}, mp4Bytes(testMaxVideo + 1), "file exceeds"},
		{"far over the cap", map[string]string{"title": "Demo"}, mp4Bytes(2 << 20), "file exceeds"},
		{"not a video", map[string]string{"title": "Demo"}, []byte("just some text"), "supported video"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestRouter(t)
			req := newUploadRequest(t, "/api/video-upload", env.token, tt.fields, "demo.bin", tt.file)
			w := httptest.NewRecorder()

			env.router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Contains(t, resp.Error, tt.contains)
		})
	}
}

func TestHandler_UploadVideo_OversizeMessageIsStable(t *testing.T) {
	var messages []string
	for _, size := range []int{testMaxVideo + 1, 2 << 20} {
		env := setupTestRouter(t)
		req := newUploadRequest(t, "/api/video-upload", env.token, map[string]string{"title": "Demo"}, "demo.mp4", mp4Bytes(size))
		w := httptest.NewRecorder()

		env.router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		messages = append(messages, resp.Error)
	}

	assert.Equal(t, "file exceeds the maximum upload size of 4096 bytes", messages[0])
	assert.Equal(t, messages[0], messages[1])
}

func TestHandler_UploadVideo_NotMultipart(t *testing.T) {
	env := setupTestRouter(t)
	req := httptest.NewRequest("POST", "/api/video-upload", strings.NewReader(`{"title":"Demo"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+env.token)
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_UploadVideo_MediaNotConfigured(t *testing.T) {
	router, _, token := setupTestRouterWith(t, media.Unconfigured{}, 0)
	req := newUploadRequest(t, "/api/video-upload", token, map[string]string{"title": "Demo"}, "demo.mp4", mp4Bytes(64))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Error uploading video", resp.Error)
	assert.Equal(t, "media service: not_configured", resp.Details)
}

func TestHandler_UploadVideo_PersistFailure(t *testing.T) {
	env := setupTestRouter(t)

	env.uploader.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&media.Result{ContentID: "orphan"}, nil).Once()
	env.store.On("Create", mock.Anything, mock.Anything).
		Return(nil, app_errors.NewPersistenceError("create", errors.New("connection refused"))).Once()

	req := newUploadRequest(t, "/api/video-upload", env.token, map[string]string{"title": "Demo"}, "demo.mp4", mp4Bytes(64))
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

type alertCounter struct {
	messages []string
}

func (a *alertCounter) SendAlert(msg string) error {
	a.messages = append(a.messages, msg)
	return nil
}

func TestHandler_UploadVideo_PersistFailureAlertsOnce(t *testing.T) {
	alerts := &alertCounter{}
	prev := slog.Default()
	slog.SetDefault(logger.NewWithWriter(io.Discard, alerts, "info"))
	t.Cleanup(func() { slog.SetDefault(prev) })

	env := setupTestRouter(t)
	env.uploader.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&media.Result{ContentID: "orphan"}, nil).Once()
	env.store.On("Create", mock.Anything, mock.Anything).
		Return(nil, app_errors.NewPersistenceError("create", errors.New("connection refused"))).Once()

	req := newUploadRequest(t, "/api/video-upload", env.token, map[string]string{"title": "Demo"}, "demo.mp4", mp4Bytes(64))
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.Len(t, alerts.messages, 1)
	assert.Contains(t, alerts.messages[0], "content_id=orphan")
}

func TestHandler_UploadImage_Success(t *testing.T) {
	env := setupTestRouter(t)
	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)

	env.uploader.On("Upload", mock.Anything, png, "image/png", mock.Anything).
		Return(&media.Result{ContentID: "next-cloudinary-uploads/x", PlaybackURL: "https://res.cloudinary.com/demo/image/upload/x.png"}, nil).Once()

	req := newUploadRequest(t, "/api/image-upload", env.token, nil, "x.png", png)
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"publicId":"next-cloudinary-uploads/x","url":"https://res.cloudinary.com/demo/image/upload/x.png"}`, w.Body.String())
}

func TestHandler_UploadImage_Unauthorized(t *testing.T) {
	env := setupTestRouter(t)
	req := newUploadRequest(t, "/api/image-upload", "", nil, "x.png", []byte("\x89PNG\r\n\x1a\n"))
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_ListVideos(t *testing.T) {
	env := setupTestRouter(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	env.store.On("ListRecent", mock.Anything, catalog.ListOptions{}).Return(&catalog.Page{Records: []*catalog.VideoRecord{
		{ID: "3", Title: "t3", CreatedAt: base.Add(2 * time.Minute)},
		{ID: "2", Title: "t2", CreatedAt: base.Add(time.Minute)},
		{ID: "1", Title: "t1", CreatedAt: base},
	}}, nil).Once()

	req := httptest.NewRequest("GET", "/api/videos", nil)
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []VideoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 3)
	assert.Equal(t, []string{"t3", "t2", "t1"}, []string{resp[0].Title, resp[1].Title, resp[2].Title})
	assert.Empty(t, w.Header().Get("X-Next-Cursor"))
}

func TestHandler_ListVideos_EmptyIsArray(t *testing.T) {
	env := setupTestRouter(t)
	env.store.On("ListRecent", mock.Anything, catalog.ListOptions{}).Return(&catalog.Page{}, nil).Once()

	req := httptest.NewRequest("GET", "/api/videos", nil)
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestHandler_ListVideos_Pagination(t *testing.T) {
	env := setupTestRouter(t)
	env.store.On("ListRecent", mock.Anything, catalog.ListOptions{Limit: 2, Cursor: "abc"}).
		Return(&catalog.Page{Records: []*catalog.VideoRecord{{ID: "2"}, {ID: "1"}}, NextCursor: "next"}, nil).Once()

	req := httptest.NewRequest("GET", "/api/videos?limit=2&cursor=abc", nil)
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "next", w.Header().Get("X-Next-Cursor"))
}

func TestHandler_ListVideos_BadLimit(t *testing.T) {
	env := setupTestRouter(t)

	req := httptest.NewRequest("GET", "/api/videos?limit=abc", nil)
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_ListVideos_StoreFailure(t *testing.T) {
	env := setupTestRouter(t)
	env.store.On("ListRecent", mock.Anything, mock.Anything).Return(nil, errors.New("db down")).Once()

	req := httptest.NewRequest("GET", "/api/videos", nil)
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Error fetching videos")
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	env := setupTestRouter(t)

	for _, tc := range []struct{ method, path string }{
		{"GET", "/api/video-upload"},
		{"GET", "/api/image-upload"},
		{"POST", "/api/videos"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		w := httptest.NewRecorder()

		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, tc.path)
	}
}

func TestHandler_CORSPreflight(t *testing.T) {
	env := setupTestRouter(t)
	req := httptest.NewRequest("OPTIONS", "/api/video-upload", nil)
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHandler_UploadRateLimit(t *testing.T) {
	router, _, _ := setupTestRouterWith(t, mediamocks.NewUploader(t), 2)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := newUploadRequest(t, "/api/video-upload", "", map[string]string{"title": "Demo"}, "demo.mp4", mp4Bytes(64))
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)
}

func TestHandler_Health(t *testing.T) {
	env := setupTestRouter(t)

	for _, path := range []string{"/healthz", "/api/healthz"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest("GET", path, nil)
			w := httptest.NewRecorder()

			env.router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), `"status":"ok"`)
		})
	}
}

func TestHandler_OpenAPIPathsAreServed(t *testing.T) {
	env := setupTestRouter(t)

	var doc struct {
		BasePath string                     `json:"basePath"`
		Paths    map[string]json.RawMessage `json:"paths"`
	}
	openapi := httptest.NewRecorder()
	env.router.ServeHTTP(openapi, httptest.NewRequest("GET", "/openapi.json", nil))
	require.NoError(t, json.Unmarshal(openapi.Body.Bytes(), &doc))
	require.NotEmpty(t, doc.Paths)

	for path := range doc.Paths {
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, httptest.NewRequest("OPTIONS", doc.BasePath+path, nil))
		assert.NotEqual(t, http.StatusNotFound, w.Code, doc.BasePath+path)
	}
}

func TestHandler_OpenAPI(t *testing.T) {
	env := setupTestRouter(t)
	req := httptest.NewRequest("GET", "/openapi.json", nil)
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/video-upload")
}

func TestHandler_Metrics(t *testing.T) {
	env := setupTestRouter(t)
	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
