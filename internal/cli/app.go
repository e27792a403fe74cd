// Package cli wires the application container used by the sable
// command-line interface.
package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sablebrowser/sable/internal/application/browser"
	"github.com/sablebrowser/sable/internal/application/manager"
	"github.com/sablebrowser/sable/internal/config"
	"github.com/sablebrowser/sable/internal/infrastructure/persistence/sqlite"
	"github.com/sablebrowser/sable/internal/logging"
	"github.com/sablebrowser/sable/internal/omnibox"
)

// App holds the wired dependencies shared by all CLI commands.
type App struct {
	Config  *config.Config
	Browser *browser.Browser
	History *manager.HistoryManager

	db  *sql.DB
	ctx context.Context
}

// NewApp loads configuration, opens the database and assembles the
// browser facade.
func NewApp() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := logging.NewFromConfigValues(cfg.Logging.Level, cfg.Logging.Format)
	ctx := logging.WithContext(context.Background(), logger)

	db, err := sqlite.NewConnection(ctx, cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	tabs := manager.NewTabManager(sqlite.NewTabRepository(db))
	sessions := manager.NewSessionManager(sqlite.NewSessionRepository(db), tabs)
	history := manager.NewHistoryManager(sqlite.NewHistoryRepository(db))
	settings := sqlite.NewSettingsRepository(db)

	searchEngine := cfg.Browsing.SearchEngine
	if v, ok, err := settings.Get(ctx, browser.SettingSearchEngine); err == nil && ok {
		searchEngine = v
	}
	resolver := omnibox.NewResolver(searchEngine)

	b := browser.New(sessions, history, settings, browser.WithOmniboxResolver(resolver))
	if _, err := b.Initialize(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize browser state: %w", err)
	}

	return &App{
		Config:  cfg,
		Browser: b,
		History: history,
		db:      db,
		ctx:     ctx,
	}, nil
}

// Ctx returns the application context carrying the logger.
func (a *App) Ctx() context.Context {
	return a.ctx
}

// Close releases the database connection.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
