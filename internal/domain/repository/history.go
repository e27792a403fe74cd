package repository

import (
	"context"
	"time"

	"github.com/sablebrowser/sable/internal/domain/entity"
)

// HistoryRepository defines operations for browsing history persistence.
type HistoryRepository interface {
	// RecordVisit upserts an entry for the URL and increments its visit count.
	RecordVisit(ctx context.Context, url, title string) error

	// UpdateTitle sets the title on an existing entry; unknown URLs are ignored.
	UpdateTitle(ctx context.Context, url, title string) error

	// FindByURL retrieves a history entry by its URL, nil when absent.
	FindByURL(ctx context.Context, url string) (*entity.HistoryEntry, error)

	// Search returns entries whose URL or title matches the query,
	// most-visited first.
	Search(ctx context.Context, query string, limit int) ([]*entity.HistoryEntry, error)

	// GetRecent returns entries ordered by last visit, newest first.
	GetRecent(ctx context.Context, limit int) ([]*entity.HistoryEntry, error)

	// ClearRange deletes entries visited inside [start, end]. A nil bound
	// is open-ended.
	ClearRange(ctx context.Context, start, end *time.Time) error
}
