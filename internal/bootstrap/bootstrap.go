package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/lumiforge/mediavault-backend/internal/auth"
	"github.com/lumiforge/mediavault-backend/internal/catalog"
	"github.com/lumiforge/mediavault-backend/internal/config"
	app_errors "github.com/lumiforge/mediavault-backend/internal/errors"
	httpserver "github.com/lumiforge/mediavault-backend/internal/http"
	"github.com/lumiforge/mediavault-backend/internal/jwt"
	"github.com/lumiforge/mediavault-backend/internal/logger"
	"github.com/lumiforge/mediavault-backend/internal/media"
	"github.com/lumiforge/mediavault-backend/internal/telegram"
	"github.com/lumiforge/mediavault-backend/internal/video"
)

// Initialize настраивает все зависимости и возвращает готовый HTTP роутер.
// cleanup закрывает пул соединений каталога.
func Initialize(ctx context.Context, cfg *config.Config) (http.Handler, func(), error) {
	// Инициализация Telegram клиента
	tgClient := telegram.NewClient(cfg)

	// Инициализация логгера
	log := logger.New(tgClient, cfg.LogLevel)
	slog.SetDefault(log)

	// Инициализация JWT менеджера
	jwtManager := jwt.NewManager(cfg)
	if jwtManager == nil {
		return nil, nil, app_errors.ErrJWTSecretKeyNotConfigured
	}

	// Инициализация медиасервиса
	uploader, err := NewMediaUploader(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// Инициализация каталога
	store, err := NewCatalogStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	videoService := video.NewService(store, uploader, video.Options{
		MaxVideoBytes: cfg.MaxVideoUploadBytes,
		MaxImageBytes: cfg.MaxImageUploadBytes,
		MediaTimeout:  cfg.MediaTimeout,
		DBTimeout:     cfg.DBTimeout,
	})

	server := httpserver.NewServer(videoService, cfg.MaxVideoUploadBytes, cfg.MaxImageUploadBytes)
	router := httpserver.SetupRouter(server, auth.NewGuard(jwtManager), httpserver.RouterOptions{
		UploadRateLimitPerMinute: cfg.UploadRateLimitPerMinute,
	})

	cleanup := func() {
		if err := store.Close(); err != nil {
			slog.Error("Failed to close catalog store", "error", err)
		}
	}

	slog.Info("Application initialized successfully",
		"media_provider", cfg.MediaProvider,
		"catalog_driver", cfg.CatalogDriver,
	)
	return router, cleanup, nil
}

// NewMediaUploader выбирает бэкенд медиасервиса. Без учетных данных загрузки
// отвечают 500, но сервис стартует и отдает каталог.
func NewMediaUploader(ctx context.Context, cfg *config.Config) (media.Uploader, error) {
	switch cfg.MediaProvider {
	case config.MediaProviderCloudinary:
		if !cfg.HasCloudinaryCredentials() {
			slog.Warn("Cloudinary credentials are not set, uploads are disabled")
			return media.Unconfigured{}, nil
		}
		client, err := media.NewCloudinaryClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", app_errors.ErrFailedToInitMediaClient, err)
		}
		return client, nil
	case config.MediaProviderS3:
		if !cfg.HasS3Credentials() {
			slog.Warn("S3 credentials are not set, uploads are disabled")
			return media.Unconfigured{}, nil
		}
		client, err := media.NewS3Client(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", app_errors.ErrFailedToInitMediaClient, err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("%w: %q", app_errors.ErrUnknownMediaProvider, cfg.MediaProvider)
	}
}

// NewCatalogStore открывает хранилище каталога по CATALOG_DRIVER
func NewCatalogStore(ctx context.Context, cfg *config.Config) (catalog.Store, error) {
	switch cfg.CatalogDriver {
	case config.CatalogDriverPostgres:
		return catalog.NewSQLStore(ctx, catalog.DialectPostgres, cfg.DatabaseURL)
	case config.CatalogDriverSQLite:
		return catalog.NewSQLStore(ctx, catalog.DialectSQLite, cfg.DatabaseURL)
	case config.CatalogDriverYDB:
		return catalog.NewYDBStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", app_errors.ErrUnknownCatalogDriver, cfg.CatalogDriver)
	}
}
