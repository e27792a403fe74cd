package manager

import (
	"context"
	"fmt"
	"time"

	"github.com/sablebrowser/sable/internal/domain/entity"
	"github.com/sablebrowser/sable/internal/domain/repository"
	"github.com/sablebrowser/sable/internal/logging"
)

// HistoryManager fronts the history store for the browser facade and the
// CLI. It satisfies port.HistoryNotifier.
type HistoryManager struct {
	repo repository.HistoryRepository
}

// NewHistoryManager creates a history manager over the given store.
func NewHistoryManager(repo repository.HistoryRepository) *HistoryManager {
	return &HistoryManager{repo: repo}
}

// RecordVisit records a page visit, bumping the visit count for repeats.
func (m *HistoryManager) RecordVisit(ctx context.Context, url, title string) error {
	log := logging.FromContext(ctx)

	if url == "" {
		return nil
	}
	if err := m.repo.RecordVisit(ctx, url, title); err != nil {
		return fmt.Errorf("record visit: %w", err)
	}

	log.Debug().Str("url", logging.TruncateURL(url, 60)).Msg("recorded visit")
	return nil
}

// UpdateTitle updates the stored title for a URL once the page settles.
func (m *HistoryManager) UpdateTitle(ctx context.Context, url, title string) error {
	if url == "" || title == "" {
		return nil
	}
	if err := m.repo.UpdateTitle(ctx, url, title); err != nil {
		return fmt.Errorf("update history title: %w", err)
	}
	return nil
}

// Search returns entries matching the query, most-visited first.
func (m *HistoryManager) Search(ctx context.Context, query string, limit int) ([]*entity.HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	return m.repo.Search(ctx, query, limit)
}

// GetRecent returns the most recently visited entries.
func (m *HistoryManager) GetRecent(ctx context.Context, limit int) ([]*entity.HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	return m.repo.GetRecent(ctx, limit)
}

// ClearRange deletes history visited inside [start, end]; nil bounds are
// open-ended, so ClearRange(ctx, nil, nil) wipes everything.
func (m *HistoryManager) ClearRange(ctx context.Context, start, end *time.Time) error {
	log := logging.FromContext(ctx)

	if err := m.repo.ClearRange(ctx, start, end); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	log.Info().Msg("cleared history range")
	return nil
}
