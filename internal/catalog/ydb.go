package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lumiforge/mediavault-backend/internal/config"
	app_errors "github.com/lumiforge/mediavault-backend/internal/errors"
	"github.com/ydb-platform/ydb-go-sdk/v3"
	"github.com/ydb-platform/ydb-go-sdk/v3/table"
	"github.com/ydb-platform/ydb-go-sdk/v3/table/result/named"
	"github.com/ydb-platform/ydb-go-sdk/v3/table/types"
	yc "github.com/ydb-platform/ydb-go-yc"
)

// ydbPageSize ограничивает одну выборку: YDB обрезает результат на 1000 строк
const ydbPageSize = 1000

// YDBStore хранит каталог в YDB
type YDBStore struct {
	driver       *ydb.Driver
	databasePath string
	now          func() time.Time
}

var _ Store = (*YDBStore)(nil)

// NewYDBStore создает новый клиент YDB
func NewYDBStore(ctx context.Context, cfg *config.Config) (*YDBStore, error) {
	endpoint := cfg.YDBEndpoint
	database := cfg.YDBDatabasePath

	if endpoint == "" || database == "" {
		return nil, fmt.Errorf("%w: set YDB_ENDPOINT and YDB_DATABASE_PATH", app_errors.ErrFailedToConnectCatalog)
	}

	driver, err := ydb.Open(ctx, endpoint,
		ydb.WithDatabase(database),
		yc.WithMetadataCredentials(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", app_errors.ErrFailedToConnectCatalog, err)
	}

	slog.Info("Successfully connected to YDB", "database", database)

	store := &YDBStore{
		driver:       driver,
		databasePath: database,
		now:          time.Now,
	}

	// Создаём таблицы только если флаг установлен
	if cfg.YDBAutoCreateTables > 0 {
		if err := store.createTables(ctx); err != nil {
			driver.Close(ctx)
			return nil, fmt.Errorf("failed to create tables: %w", err)
		}
	}

	return store, nil
}

// Close закрывает соединение с базой данных
func (s *YDBStore) Close() error {
	if s.driver != nil {
		return s.driver.Close(context.Background())
	}
	return nil
}

func (s *YDBStore) createTables(ctx context.Context) error {
	exists, err := s.tableExists(ctx, "videos")
	if err != nil {
		return fmt.Errorf("failed to check videos table existence: %w", err)
	}
	if exists {
		slog.Info("Table videos already exists, skipping creation")
		return nil
	}

	query := `
		CREATE TABLE videos (
			id Text NOT NULL,
			title Text NOT NULL,
			description Text,
			content_id Text NOT NULL,
			playback_url Text,
			thumbnail_url Text,
			original_size_bytes Int64,
			compressed_size_bytes Int64,
			duration_seconds Double,
			owner_id Text,
			created_at Timestamp NOT NULL,
			updated_at Timestamp,
			PRIMARY KEY (id),
			INDEX created_idx GLOBAL ON (created_at, id),
			INDEX content_idx GLOBAL UNIQUE ON (content_id)
		)
	`
	return s.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		return session.ExecuteSchemeQuery(ctx, query)
	})
}

// tableExists checks if a table exists in the database
func (s *YDBStore) tableExists(ctx context.Context, tableName string) (bool, error) {
	fullPath := path.Join(s.databasePath, tableName)
	err := s.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, err := session.DescribeTable(ctx, fullPath)
		return err
	})

	if err != nil {
		// YDB returns SchemeError with "Path not found" (code 400070)
		msg := err.Error()
		if strings.Contains(msg, "not found") ||
			strings.Contains(msg, "does not exist") ||
			strings.Contains(msg, "code = 400070") {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (s *YDBStore) Create(ctx context.Context, in VideoRecordInput) (*VideoRecord, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	// Timestamp в YDB хранит микросекунды, курсор должен совпадать с тем, что сохранено
	now := s.now().UTC().Truncate(time.Microsecond)
	rec := &VideoRecord{
		ID:                  uuid.New().String(),
		Title:               in.Title,
		Description:         in.Description,
		ContentID:           in.ContentID,
		PlaybackURL:         in.PlaybackURL,
		ThumbnailURL:        in.ThumbnailURL,
		OriginalSizeBytes:   in.OriginalSizeBytes,
		CompressedSizeBytes: in.CompressedSizeBytes,
		DurationSeconds:     in.DurationSeconds,
		OwnerID:             in.OwnerID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	query := `
		DECLARE $id AS Text;
		DECLARE $title AS Text;
		DECLARE $description AS Optional<Text>;
		DECLARE $content_id AS Text;
		DECLARE $playback_url AS Text;
		DECLARE $thumbnail_url AS Optional<Text>;
		DECLARE $original_size_bytes AS Int64;
		DECLARE $compressed_size_bytes AS Int64;
		DECLARE $duration_seconds AS Double;
		DECLARE $owner_id AS Text;
		DECLARE $created_at AS Timestamp;

		INSERT INTO videos (
			id, title, description, content_id, playback_url, thumbnail_url,
			original_size_bytes, compressed_size_bytes, duration_seconds, owner_id, created_at, updated_at
		) VALUES (
			$id, $title, $description, $content_id, $playback_url, $thumbnail_url,
			$original_size_bytes, $compressed_size_bytes, $duration_seconds, $owner_id, $created_at, $created_at
		)
	`

	err := s.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, _, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$id", types.TextValue(rec.ID)),
				table.ValueParam("$title", types.TextValue(rec.Title)),
				optionalText("$description", rec.Description),
				table.ValueParam("$content_id", types.TextValue(rec.ContentID)),
				table.ValueParam("$playback_url", types.TextValue(rec.PlaybackURL)),
				optionalText("$thumbnail_url", rec.ThumbnailURL),
				table.ValueParam("$original_size_bytes", types.Int64Value(rec.OriginalSizeBytes)),
				table.ValueParam("$compressed_size_bytes", types.Int64Value(rec.CompressedSizeBytes)),
				table.ValueParam("$duration_seconds", types.DoubleValue(rec.DurationSeconds)),
				table.ValueParam("$owner_id", types.TextValue(rec.OwnerID)),
				table.ValueParam("$created_at", types.TimestampValueFromTime(now)),
			),
		)
		return err
	})
	if err != nil {
		if strings.Contains(err.Error(), "Conflict with existing key") || strings.Contains(err.Error(), "PRECONDITION_FAILED") {
			return nil, app_errors.NewPersistenceError("create", fmt.Errorf("%w: %s", ErrDuplicateContentID, in.ContentID))
		}
		return nil, app_errors.NewPersistenceError("create", err)
	}

	return rec, nil
}

func (s *YDBStore) ListRecent(ctx context.Context, opts ListOptions) (*Page, error) {
	var cur *Cursor
	if opts.Cursor != "" {
		c, err := DecodeCursor(opts.Cursor)
		if err != nil {
			return nil, err
		}
		cur = c
	}

	if opts.Limit > 0 {
		records, err := s.selectPage(ctx, cur, opts.Limit+1)
		if err != nil {
			return nil, err
		}
		return pageOf(records, opts.Limit), nil
	}

	// Без лимита выбираем весь каталог страницами
	var all []*VideoRecord
	for {
		records, err := s.selectPage(ctx, cur, ydbPageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
		if len(records) < ydbPageSize {
			break
		}
		last := records[len(records)-1]
		cur = &Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return pageOf(all, 0), nil
}

func (s *YDBStore) selectPage(ctx context.Context, cur *Cursor, limit int) ([]*VideoRecord, error) {
	query := `
		DECLARE $limit AS Uint64;
		DECLARE $has_cursor AS Bool;
		DECLARE $cursor_created_at AS Timestamp;
		DECLARE $cursor_id AS Text;

		SELECT id, title, description, content_id, playback_url, thumbnail_url,
		       original_size_bytes, compressed_size_bytes, duration_seconds, owner_id, created_at, updated_at
		FROM videos VIEW created_idx
		WHERE NOT $has_cursor
		   OR created_at < $cursor_created_at
		   OR (created_at = $cursor_created_at AND id < $cursor_id)
		ORDER BY created_at DESC, id DESC
		LIMIT $limit
	`

	cursorAt := time.Unix(0, 0).UTC()
	cursorID := ""
	if cur != nil {
		cursorAt = cur.CreatedAt
		cursorID = cur.ID
	}

	var records []*VideoRecord
	err := s.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		records = records[:0]
		_, res, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$limit", types.Uint64Value(uint64(limit))),
				table.ValueParam("$has_cursor", types.BoolValue(cur != nil)),
				table.ValueParam("$cursor_created_at", types.TimestampValueFromTime(cursorAt)),
				table.ValueParam("$cursor_id", types.TextValue(cursorID)),
			),
		)
		if err != nil {
			return err
		}
		defer res.Close()

		for res.NextResultSet(ctx) {
			for res.NextRow() {
				var (
					r                            VideoRecord
					description, thumbnail       *string
					playback, ownerID            *string
					originalSize, compressedSize *int64
					duration                     *float64
					updatedAt                    *time.Time
				)
				if err := res.ScanNamed(
					named.Required("id", &r.ID),
					named.Required("title", &r.Title),
					named.Optional("description", &description),
					named.Required("content_id", &r.ContentID),
					named.Optional("playback_url", &playback),
					named.Optional("thumbnail_url", &thumbnail),
					named.Optional("original_size_bytes", &originalSize),
					named.Optional("compressed_size_bytes", &compressedSize),
					named.Optional("duration_seconds", &duration),
					named.Optional("owner_id", &ownerID),
					named.Required("created_at", &r.CreatedAt),
					named.Optional("updated_at", &updatedAt),
				); err != nil {
					return fmt.Errorf("scan failed: %w", err)
				}
				r.Description = deref(description)
				r.PlaybackURL = deref(playback)
				r.ThumbnailURL = deref(thumbnail)
				r.OwnerID = deref(ownerID)
				if originalSize != nil {
					r.OriginalSizeBytes = *originalSize
				}
				if compressedSize != nil {
					r.CompressedSizeBytes = *compressedSize
				}
				if duration != nil {
					r.DurationSeconds = *duration
				}
				r.CreatedAt = r.CreatedAt.UTC()
				r.UpdatedAt = r.CreatedAt
				if updatedAt != nil {
					r.UpdatedAt = updatedAt.UTC()
				}
				records = append(records, &r)
			}
		}
		return res.Err()
	})
	if err != nil {
		return nil, app_errors.NewPersistenceError("list", err)
	}

	return records, nil
}

func optionalText(name, value string) table.ParameterOption {
	if value == "" {
		return table.ValueParam(name, types.NullValue(types.TypeText))
	}
	return table.ValueParam(name, types.OptionalValue(types.TextValue(value)))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
