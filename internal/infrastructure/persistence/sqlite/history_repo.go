package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sablebrowser/sable/internal/domain/entity"
	"github.com/sablebrowser/sable/internal/domain/repository"
	"github.com/sablebrowser/sable/internal/logging"
)

const logURLMaxLen = 60

type historyRepo struct {
	db *sql.DB
}

// NewHistoryRepository creates a SQLite-backed history repository.
func NewHistoryRepository(db *sql.DB) repository.HistoryRepository {
	return &historyRepo{db: db}
}

func (r *historyRepo) RecordVisit(ctx context.Context, url, title string) error {
	log := logging.FromContext(ctx)
	log.Debug().Str("url", logging.TruncateURL(url, logURLMaxLen)).Msg("recording visit")

	now := encodeTime(time.Now())
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO history (url, title, visit_count, last_visited, created_at)
		 VALUES (?, ?, 1, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET
		   visit_count = visit_count + 1,
		   last_visited = excluded.last_visited,
		   title = CASE WHEN excluded.title != '' THEN excluded.title ELSE title END`,
		url, title, now, now)
	if err != nil {
		return err
	}

	// Cap about:blank at one visit so it exists but never dominates suggestions.
	if url == entity.AboutBlankURL {
		if _, capErr := r.db.ExecContext(ctx,
			`UPDATE history SET visit_count = 1 WHERE url = ?`, url); capErr != nil {
			log.Debug().Err(capErr).Msg("failed to cap about:blank visit count")
		}
	}

	return nil
}

func (r *historyRepo) UpdateTitle(ctx context.Context, url, title string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE history SET title = ? WHERE url = ?`, title, url)
	return err
}

func (r *historyRepo) FindByURL(ctx context.Context, url string) (*entity.HistoryEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, url, title, visit_count, last_visited, created_at
		 FROM history WHERE url = ?`, url)

	entry, err := scanHistoryRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return entry, err
}

func (r *historyRepo) Search(ctx context.Context, query string, limit int) ([]*entity.HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + query + "%"
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, url, title, visit_count, last_visited, created_at
		 FROM history
		 WHERE url LIKE ? OR title LIKE ?
		 ORDER BY visit_count DESC, last_visited DESC
		 LIMIT ?`, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanHistoryRows(rows)
}

func (r *historyRepo) GetRecent(ctx context.Context, limit int) ([]*entity.HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, url, title, visit_count, last_visited, created_at
		 FROM history ORDER BY last_visited DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanHistoryRows(rows)
}

func (r *historyRepo) ClearRange(ctx context.Context, start, end *time.Time) error {
	log := logging.FromContext(ctx)

	query := `DELETE FROM history`
	var (
		clauses []string
		args    []any
	)
	if start != nil {
		clauses = append(clauses, `last_visited >= ?`)
		args = append(args, encodeTime(*start))
	}
	if end != nil {
		clauses = append(clauses, `last_visited <= ?`)
		args = append(args, encodeTime(*end))
	}
	for i, clause := range clauses {
		if i == 0 {
			query += ` WHERE ` + clause
		} else {
			query += ` AND ` + clause
		}
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if deleted, err := res.RowsAffected(); err == nil && deleted > 0 {
		log.Debug().Int64("deleted", deleted).Msg("cleared history range")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHistoryRow(row rowScanner) (*entity.HistoryEntry, error) {
	var (
		entry                  entity.HistoryEntry
		lastVisited, createdAt string
	)
	if err := row.Scan(&entry.ID, &entry.URL, &entry.Title, &entry.VisitCount,
		&lastVisited, &createdAt); err != nil {
		return nil, err
	}
	entry.LastVisited = decodeTime(lastVisited)
	entry.CreatedAt = decodeTime(createdAt)
	return &entry, nil
}

func scanHistoryRows(rows *sql.Rows) ([]*entity.HistoryEntry, error) {
	var entries []*entity.HistoryEntry
	for rows.Next() {
		entry, err := scanHistoryRow(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
