package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	MediaProviderCloudinary = "cloudinary"
	MediaProviderS3         = "s3"

	CatalogDriverPostgres = "postgres"
	CatalogDriverSQLite   = "sqlite"
	CatalogDriverYDB      = "ydb"
)

type Config struct {
	// Media service configuration
	MediaProvider         string
	CloudinaryCloudName   string
	CloudinaryAPIKey      string
	CloudinaryAPISecret   string
	CloudinaryVideoFolder string
	CloudinaryImageFolder string

	// S3 media backend
	S3Endpoint        string
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Bucket          string

	// Catalog configuration
	CatalogDriver       string
	DatabaseURL         string
	YDBEndpoint         string
	YDBDatabasePath     string
	YDBAutoCreateTables int

	// Auth provider configuration
	JWTSecretKey string
	JWTIssuer    string

	// Upload limits
	MaxVideoUploadBytes      int64
	MaxImageUploadBytes      int64
	UploadRateLimitPerMinute int

	// Timeouts
	MediaTimeout time.Duration
	DBTimeout    time.Duration

	// Telegram configuration
	TelegramBotToken    string
	TelegramAdminChatID string

	// HTTP configuration
	HTTPPort string
	LogLevel string
}

// HasCloudinaryCredentials reports whether all Cloudinary credentials are present.
func (c *Config) HasCloudinaryCredentials() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

// HasS3Credentials reports whether the S3 backend can be constructed.
func (c *Config) HasS3Credentials() bool {
	return c.S3AccessKeyID != "" && c.S3SecretAccessKey != "" && c.S3Bucket != ""
}

func Load() *Config {
	s3Endpoint := getEnv("S3_ENDPOINT", "")
	// Без схемы aws-sdk не примет BaseEndpoint
	if s3Endpoint != "" && !strings.HasPrefix(s3Endpoint, "http://") && !strings.HasPrefix(s3Endpoint, "https://") {
		s3Endpoint = "https://" + s3Endpoint
		log.Printf("WARN: S3_ENDPOINT was missing a protocol scheme. Prepending 'https://'. New endpoint: %s", s3Endpoint)
	}

	return &Config{
		// Media service configuration
		MediaProvider:         strings.ToLower(getEnv("MEDIA_PROVIDER", MediaProviderCloudinary)),
		CloudinaryCloudName:   getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:      getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret:   getEnv("CLOUDINARY_API_SECRET", ""),
		CloudinaryVideoFolder: getEnv("CLOUDINARY_FOLDER", "video-uploads"),
		CloudinaryImageFolder: getEnv("CLOUDINARY_IMAGE_FOLDER", "next-cloudinary-uploads"),

		// S3 media backend
		S3Endpoint:        s3Endpoint,
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Bucket:          getEnv("S3_BUCKET", ""),

		// Catalog configuration
		CatalogDriver:       strings.ToLower(getEnv("CATALOG_DRIVER", CatalogDriverPostgres)),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		YDBEndpoint:         getEnv("YDB_ENDPOINT", ""),
		YDBDatabasePath:     getEnv("YDB_DATABASE_PATH", ""),
		YDBAutoCreateTables: int(getEnvInt64("YDB_AUTO_CREATE_TABLES", 0, 0, 1)),

		// Auth provider configuration
		JWTSecretKey: getEnv("AUTH_JWT_SECRET", ""),
		JWTIssuer:    getEnv("AUTH_JWT_ISSUER", ""),

		// Upload limits: 70 MB video cap as in the web client, 10 MB for images
		MaxVideoUploadBytes:      getEnvInt64("MAX_VIDEO_UPLOAD_BYTES", 70*1024*1024, 1, 5*1024*1024*1024),
		MaxImageUploadBytes:      getEnvInt64("MAX_IMAGE_UPLOAD_BYTES", 10*1024*1024, 1, 1024*1024*1024),
		UploadRateLimitPerMinute: int(getEnvInt64("UPLOAD_RATE_LIMIT_PER_MINUTE", 30, 0, 10000)),

		// Timeouts
		MediaTimeout: getEnvDuration("MEDIA_TIMEOUT", 2*time.Minute),
		DBTimeout:    getEnvDuration("DB_TIMEOUT", 10*time.Second),

		// Telegram configuration
		TelegramBotToken:    getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramAdminChatID: getEnv("TELEGRAM_CHAT_ID", ""),

		// HTTP configuration
		HTTPPort: getEnv("HTTP_PORT", "8080"),
		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getEnvInt64(key string, fallback, min, max int64) int64 {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			if n < min {
				return min
			}
			if n > max {
				return max
			}
			return n
		}
		log.Printf("WARN: %s=%q is not an integer, using default %d", key, v, fallback)
	}

	if fallback < min {
		return min
	}
	if fallback > max {
		return max
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil || d <= 0 {
		log.Printf("WARN: %s=%q is not a positive duration, using default %s", key, v, fallback)
		return fallback
	}
	return d
}
