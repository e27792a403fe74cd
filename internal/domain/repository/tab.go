package repository

import (
	"context"

	"github.com/sablebrowser/sable/internal/domain/entity"
)

// TabRepository persists tab rows.
type TabRepository interface {
	// Save inserts or replaces a tab row.
	Save(ctx context.Context, tab *entity.Tab) error

	// FindBySession returns all tab rows belonging to a session.
	FindBySession(ctx context.Context, sessionID string) ([]*entity.Tab, error)

	// Delete removes a tab row.
	Delete(ctx context.Context, id string) error
}
