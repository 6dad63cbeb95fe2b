package media

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/lumiforge/mediavault-backend/internal/config"
	app_errors "github.com/lumiforge/mediavault-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploadAPI struct {
	calls    int
	params   uploader.UploadParams
	received []byte
	result   *uploader.UploadResult
	err      error
}

func (f *fakeUploadAPI) Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	f.calls++
	f.params = params
	if r, ok := file.(io.Reader); ok {
		f.received, _ = io.ReadAll(r)
	}
	return f.result, f.err
}

func TestCloudinaryClient_UploadVideo(t *testing.T) {
	fake := &fakeUploadAPI{result: &uploader.UploadResult{
		PublicID: "video-uploads/abc123",
		Bytes:    1048576,
		Response: map[string]interface{}{"duration": 12.5, "public_id": "video-uploads/abc123"},
	}}
	client := newCloudinaryClient(fake, "demo", "video-uploads", "next-cloudinary-uploads")

	res, err := client.Upload(context.Background(), []byte("payload"), "video/mp4", Hints{Filename: "clip.mp4"})

	require.NoError(t, err)
	assert.Equal(t, "video-uploads/abc123", res.ContentID)
	assert.Equal(t, "https://res.cloudinary.com/demo/video/upload/video-uploads/abc123.mp4", res.PlaybackURL)
	assert.Equal(t, "https://res.cloudinary.com/demo/video/upload/so_0/video-uploads/abc123.jpg", res.ThumbnailURL)
	assert.Equal(t, int64(1048576), res.CompressedSizeBytes)
	assert.Equal(t, 12.5, res.DurationSeconds)

	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, "video", fake.params.ResourceType)
	assert.Equal(t, "video-uploads", fake.params.Folder)
	assert.Equal(t, []byte("payload"), fake.received)
}

func TestCloudinaryClient_UploadImage(t *testing.T) {
	fake := &fakeUploadAPI{result: &uploader.UploadResult{
		PublicID:  "next-cloudinary-uploads/img1",
		SecureURL: "https://res.cloudinary.com/demo/image/upload/v1/next-cloudinary-uploads/img1.png",
		Bytes:     2048,
	}}
	client := newCloudinaryClient(fake, "demo", "video-uploads", "next-cloudinary-uploads")

	res, err := client.Upload(context.Background(), []byte("png"), "image/png", Hints{})

	require.NoError(t, err)
	assert.Equal(t, "next-cloudinary-uploads/img1", res.ContentID)
	assert.Equal(t, fake.result.SecureURL, res.PlaybackURL)
	assert.Equal(t, "image", fake.params.ResourceType)
	assert.Equal(t, "next-cloudinary-uploads", fake.params.Folder)
	assert.Zero(t, res.DurationSeconds)
}

func TestCloudinaryClient_Upload_InputContract(t *testing.T) {
	fake := &fakeUploadAPI{}
	client := newCloudinaryClient(fake, "demo", "v", "i")

	_, err := client.Upload(context.Background(), nil, "video/mp4", Hints{})
	mErr, ok := app_errors.IsMediaUpload(err)
	require.True(t, ok)
	assert.Equal(t, app_errors.ReasonEmptyPayload, mErr.Reason)

	_, err = client.Upload(context.Background(), []byte("x"), "text/plain", Hints{})
	mErr, ok = app_errors.IsMediaUpload(err)
	require.True(t, ok)
	assert.Equal(t, app_errors.ReasonUnsupportedType, mErr.Reason)

	assert.Zero(t, fake.calls)
}

func TestCloudinaryClient_Upload_Failures(t *testing.T) {
	tests := []struct {
		name   string
		result *uploader.UploadResult
		err    error
		reason string
	}{
		{"service error", &uploader.UploadResult{Error: api.ErrorResp{Message: "Invalid video file"}}, nil, app_errors.ReasonRejected},
		{"no public id", &uploader.UploadResult{Bytes: 10}, nil, app_errors.ReasonMalformedResponse},
		{"nil result", nil, nil, app_errors.ReasonMalformedResponse},
		{"timeout", nil, context.DeadlineExceeded, app_errors.ReasonNetwork},
		{"other", nil, errors.New("boom"), app_errors.ReasonRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newCloudinaryClient(&fakeUploadAPI{result: tt.result, err: tt.err}, "demo", "v", "i")

			res, err := client.Upload(context.Background(), []byte("x"), "video/mp4", Hints{})

			assert.Nil(t, res)
			mErr, ok := app_errors.IsMediaUpload(err)
			require.True(t, ok)
			assert.Equal(t, tt.reason, mErr.Reason)
		})
	}
}

func TestNewCloudinaryClient_MissingCredentials(t *testing.T) {
	_, err := NewCloudinaryClient(&config.Config{CloudinaryCloudName: "demo"})
	assert.ErrorIs(t, err, app_errors.ErrMediaServiceNotConfigured)
}

func TestDurationFromRaw(t *testing.T) {
	assert.Equal(t, 3.25, durationFromRaw(map[string]interface{}{"duration": 3.25}))
	assert.Zero(t, durationFromRaw(nil))
	assert.Zero(t, durationFromRaw(map[string]interface{}{"duration": "n/a"}))
	assert.Zero(t, durationFromRaw(map[string]interface{}{"duration": -1.0}))
}
