package catalog

import (
	"context"
	"errors"
)

var (
	ErrEmptyContentID     = errors.New("content_id must not be empty")
	ErrEmptyTitle         = errors.New("title must not be empty")
	ErrDuplicateContentID = errors.New("content_id already exists")
)

// Store определяет интерфейс каталога видео
type Store interface {
	// Create assigns id and timestamps and inserts the record atomically.
	Create(ctx context.Context, in VideoRecordInput) (*VideoRecord, error)
	// ListRecent returns records ordered by createdAt DESC, id DESC.
	ListRecent(ctx context.Context, opts ListOptions) (*Page, error)
	Close() error
}
