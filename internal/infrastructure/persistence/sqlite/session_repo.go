package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sablebrowser/sable/internal/domain/entity"
	"github.com/sablebrowser/sable/internal/domain/repository"
	"github.com/sablebrowser/sable/internal/logging"
)

type sessionRepo struct {
	db *sql.DB
}

// NewSessionRepository creates a SQLite-backed session repository.
func NewSessionRepository(db *sql.DB) repository.SessionRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) Save(ctx context.Context, session *entity.Session) error {
	log := logging.FromContext(ctx)
	log.Debug().
		Str("session_id", session.ID).
		Int("tab_count", session.TabCount()).
		Msg("saving session")

	tabOrder, err := json.Marshal(session.TabOrder)
	if err != nil {
		return fmt.Errorf("encode tab order: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO sessions
		 (id, name, created_at, updated_at, is_active, tab_order)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.Name,
		encodeTime(session.CreatedAt),
		encodeTime(session.UpdatedAt),
		boolToInt(session.IsActive),
		string(tabOrder),
	)
	return err
}

func (r *sessionRepo) FindAll(ctx context.Context) ([]*entity.Session, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, created_at, updated_at, is_active, tab_order FROM sessions`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var sessions []*entity.Session
	for rows.Next() {
		var (
			s                    entity.Session
			createdAt, updatedAt string
			isActive             int
			tabOrderJSON         string
		)
		if err := rows.Scan(&s.ID, &s.Name, &createdAt, &updatedAt, &isActive, &tabOrderJSON); err != nil {
			return nil, err
		}

		s.CreatedAt = decodeTime(createdAt)
		s.UpdatedAt = decodeTime(updatedAt)
		s.IsActive = isActive != 0
		if err := json.Unmarshal([]byte(tabOrderJSON), &s.TabOrder); err != nil {
			s.TabOrder = []string{}
		}
		if s.TabOrder == nil {
			s.TabOrder = []string{}
		}
		sessions = append(sessions, &s)
	}
	return sessions, rows.Err()
}

func (r *sessionRepo) Delete(ctx context.Context, id string) error {
	log := logging.FromContext(ctx)
	log.Debug().Str("session_id", id).Msg("deleting session")

	// Tab rows go with the session via the FK cascade.
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
