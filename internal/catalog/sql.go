package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	app_errors "github.com/lumiforge/mediavault-backend/internal/errors"
	_ "modernc.org/sqlite"
)

// Dialects supported by SQLStore.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// Timestamps are stored as unix nanoseconds so cursor comparison is exact in both dialects.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS videos (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		content_id TEXT NOT NULL UNIQUE,
		playback_url TEXT NOT NULL,
		thumbnail_url TEXT NOT NULL DEFAULT '',
		original_size_bytes BIGINT NOT NULL,
		compressed_size_bytes BIGINT NOT NULL,
		duration_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
		owner_id TEXT NOT NULL,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_videos_created_at ON videos (created_at DESC, id DESC)`,
}

const selectColumns = `id, title, description, content_id, playback_url, thumbnail_url,
	original_size_bytes, compressed_size_bytes, duration_seconds, owner_id, created_at, updated_at`

// SQLStore keeps the catalog in Postgres (lib/pq) or SQLite (modernc).
type SQLStore struct {
	db      *sql.DB
	dialect string
	now     func() time.Time
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore opens the pool, checks connectivity and creates the schema.
func NewSQLStore(ctx context.Context, dialect, dsn string) (*SQLStore, error) {
	if dialect != DialectPostgres && dialect != DialectSQLite {
		return nil, fmt.Errorf("%w: %s", app_errors.ErrUnknownCatalogDriver, dialect)
	}
	if dsn == "" {
		return nil, fmt.Errorf("%w: DATABASE_URL is empty", app_errors.ErrFailedToConnectCatalog)
	}

	db, err := sql.Open(dialect, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", app_errors.ErrFailedToConnectCatalog, err)
	}
	if dialect == DialectSQLite {
		// SQLite сериализует запись, а :memory: живет в пределах одного соединения
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", app_errors.ErrFailedToConnectCatalog, err)
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return &SQLStore{db: db, dialect: dialect, now: time.Now}, nil
}

// Close закрывает пул соединений
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) Create(ctx context.Context, in VideoRecordInput) (*VideoRecord, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	now := s.now().UTC()
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

	query := s.rebind(`INSERT INTO videos (` + selectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.Title, rec.Description, rec.ContentID, rec.PlaybackURL, rec.ThumbnailURL,
		rec.OriginalSizeBytes, rec.CompressedSizeBytes, rec.DurationSeconds, rec.OwnerID,
		now.UnixNano(), now.UnixNano(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, app_errors.NewPersistenceError("create", fmt.Errorf("%w: %s", ErrDuplicateContentID, in.ContentID))
		}
		return nil, app_errors.NewPersistenceError("create", err)
	}

	return rec, nil
}

func (s *SQLStore) ListRecent(ctx context.Context, opts ListOptions) (*Page, error) {
	var (
		where string
		args  []interface{}
	)
	if opts.Cursor != "" {
		cur, err := DecodeCursor(opts.Cursor)
		if err != nil {
			return nil, err
		}
		n := cur.CreatedAt.UnixNano()
		where = ` WHERE created_at < ? OR (created_at = ? AND id < ?)`
		args = append(args, n, n, cur.ID)
	}

	query := `SELECT ` + selectColumns + ` FROM videos` + where + ` ORDER BY created_at DESC, id DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit+1)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, app_errors.NewPersistenceError("list", err)
	}
	defer rows.Close()

	var records []*VideoRecord
	for rows.Next() {
		var (
			r                    VideoRecord
			createdAt, updatedAt int64
		)
		if err := rows.Scan(
			&r.ID, &r.Title, &r.Description, &r.ContentID, &r.PlaybackURL, &r.ThumbnailURL,
			&r.OriginalSizeBytes, &r.CompressedSizeBytes, &r.DurationSeconds, &r.OwnerID,
			&createdAt, &updatedAt,
		); err != nil {
			return nil, app_errors.NewPersistenceError("list", fmt.Errorf("scan failed: %w", err))
		}
		r.CreatedAt = time.Unix(0, createdAt).UTC()
		r.UpdatedAt = time.Unix(0, updatedAt).UTC()
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, app_errors.NewPersistenceError("list", err)
	}

	return pageOf(records, opts.Limit), nil
}

// rebind переводит ? в $N для postgres
func (s *SQLStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
