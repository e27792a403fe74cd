package repository

import (
	"context"

	"github.com/sablebrowser/sable/internal/domain/entity"
)

// SessionRepository persists session rows.
type SessionRepository interface {
	// Save inserts or replaces a session row, including its tab order.
	Save(ctx context.Context, session *entity.Session) error

	// FindAll returns every stored session.
	FindAll(ctx context.Context) ([]*entity.Session, error)

	// Delete removes a session row. The store cascades deletion of the
	// session's tab rows.
	Delete(ctx context.Context, id string) error
}
