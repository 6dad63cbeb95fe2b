package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "secret")

	cfg := Load()

	assert.Equal(t, MediaProviderCloudinary, cfg.MediaProvider)
	assert.Equal(t, CatalogDriverPostgres, cfg.CatalogDriver)
	assert.Equal(t, int64(70*1024*1024), cfg.MaxVideoUploadBytes)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxImageUploadBytes)
	assert.Equal(t, 2*time.Minute, cfg.MediaTimeout)
	assert.Equal(t, 10*time.Second, cfg.DBTimeout)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "secret", cfg.JWTSecretKey)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MEDIA_PROVIDER", "S3")
	t.Setenv("CATALOG_DRIVER", "sqlite")
	t.Setenv("MAX_VIDEO_UPLOAD_BYTES", "1048576")
	t.Setenv("MEDIA_TIMEOUT", "45s")
	t.Setenv("S3_ENDPOINT", "storage.example.com")

	cfg := Load()

	assert.Equal(t, MediaProviderS3, cfg.MediaProvider)
	assert.Equal(t, CatalogDriverSQLite, cfg.CatalogDriver)
	assert.Equal(t, int64(1048576), cfg.MaxVideoUploadBytes)
	assert.Equal(t, 45*time.Second, cfg.MediaTimeout)
	assert.Equal(t, "https://storage.example.com", cfg.S3Endpoint)
}

func TestGetEnvInt64_ClampsAndFallsBack(t *testing.T) {
	t.Setenv("TEST_INT", "-5")
	assert.Equal(t, int64(1), getEnvInt64("TEST_INT", 10, 1, 100))

	t.Setenv("TEST_INT", "500")
	assert.Equal(t, int64(100), getEnvInt64("TEST_INT", 10, 1, 100))

	t.Setenv("TEST_INT", "abc")
	assert.Equal(t, int64(10), getEnvInt64("TEST_INT", 10, 1, 100))
}

func TestGetEnvDuration_InvalidFallsBack(t *testing.T) {
	t.Setenv("TEST_DURATION", "soon")
	assert.Equal(t, time.Second, getEnvDuration("TEST_DURATION", time.Second))

	t.Setenv("TEST_DURATION", "-1s")
	assert.Equal(t, time.Second, getEnvDuration("TEST_DURATION", time.Second))
}

func TestHasCredentials(t *testing.T) {
	cfg := &Config{CloudinaryCloudName: "demo", CloudinaryAPIKey: "key"}
	assert.False(t, cfg.HasCloudinaryCredentials())

	cfg.CloudinaryAPISecret = "secret"
	assert.True(t, cfg.HasCloudinaryCredentials())

	assert.False(t, (&Config{S3AccessKeyID: "a", S3SecretAccessKey: "b"}).HasS3Credentials())
}
