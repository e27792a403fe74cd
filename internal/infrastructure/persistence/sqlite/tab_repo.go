package sqlite

import (
	"context"
	"database/sql"

	"github.com/sablebrowser/sable/internal/domain/entity"
	"github.com/sablebrowser/sable/internal/domain/repository"
	"github.com/sablebrowser/sable/internal/logging"
)

type tabRepo struct {
	db *sql.DB
}

// NewTabRepository creates a SQLite-backed tab repository.
func NewTabRepository(db *sql.DB) repository.TabRepository {
	return &tabRepo{db: db}
}

func (r *tabRepo) Save(ctx context.Context, tab *entity.Tab) error {
	log := logging.FromContext(ctx)
	log.Debug().Str("tab_id", tab.ID).Str("state", tab.State.String()).Msg("saving tab")

	var favicon, snapshot sql.NullString
	if tab.FaviconURL != "" {
		favicon = sql.NullString{String: tab.FaviconURL, Valid: true}
	}
	if tab.SnapshotPath != "" {
		snapshot = sql.NullString{String: tab.SnapshotPath, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO tabs
		 (id, session_id, url, title, favicon_url, state, scroll_position,
		  created_at, updated_at, last_accessed_at, snapshot_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tab.ID,
		tab.SessionID,
		tab.URL,
		tab.Title,
		favicon,
		tab.State.String(),
		tab.ScrollPosition,
		encodeTime(tab.CreatedAt),
		encodeTime(tab.UpdatedAt),
		encodeTime(tab.LastAccessedAt),
		snapshot,
	)
	return err
}

func (r *tabRepo) FindBySession(ctx context.Context, sessionID string) ([]*entity.Tab, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, session_id, url, title, favicon_url, state, scroll_position,
		        created_at, updated_at, last_accessed_at, snapshot_path
		 FROM tabs WHERE session_id = ?`, sessionID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tabs []*entity.Tab
	for rows.Next() {
		tab, err := scanTab(rows)
		if err != nil {
			return nil, err
		}
		tabs = append(tabs, tab)
	}
	return tabs, rows.Err()
}

func (r *tabRepo) Delete(ctx context.Context, id string) error {
	log := logging.FromContext(ctx)
	log.Debug().Str("tab_id", id).Msg("deleting tab")

	_, err := r.db.ExecContext(ctx, `DELETE FROM tabs WHERE id = ?`, id)
	return err
}

func scanTab(rows *sql.Rows) (*entity.Tab, error) {
	var (
		tab                              entity.Tab
		favicon, snapshot                sql.NullString
		stateStr                         string
		createdAt, updatedAt, accessedAt string
	)

	if err := rows.Scan(
		&tab.ID, &tab.SessionID, &tab.URL, &tab.Title, &favicon, &stateStr,
		&tab.ScrollPosition, &createdAt, &updatedAt, &accessedAt, &snapshot,
	); err != nil {
		return nil, err
	}

	// Unknown stored states decode to Background rather than failing the load.
	state, err := entity.ParseTabState(stateStr)
	if err != nil {
		state = entity.TabStateBackground
	}

	tab.State = state
	tab.FaviconURL = favicon.String
	tab.SnapshotPath = snapshot.String
	tab.CreatedAt = decodeTime(createdAt)
	tab.UpdatedAt = decodeTime(updatedAt)
	tab.LastAccessedAt = decodeTime(accessedAt)
	return &tab, nil
}
