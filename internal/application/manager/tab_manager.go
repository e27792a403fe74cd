// Package manager holds the stateful managers that own the in-memory
// caches over the durable store.
package manager

import (
	"context"
	"fmt"
	"sync"

	"github.com/sablebrowser/sable/internal/domain/entity"
	"github.com/sablebrowser/sable/internal/domain/repository"
	"github.com/sablebrowser/sable/internal/logging"
)

// TabManager is the authoritative owner of Tab entities. Every mutation
// persists to the store before the cache is updated, so the two never
// diverge on a successful call. Tabs handed out are copies; callers
// mutate only through the manager.
type TabManager struct {
	mu   sync.RWMutex
	tabs map[string]*entity.Tab
	repo repository.TabRepository
}

// NewTabManager creates a tab manager with an empty cache.
func NewTabManager(repo repository.TabRepository) *TabManager {
	return &TabManager{
		tabs: make(map[string]*entity.Tab),
		repo: repo,
	}
}

// LoadSessionTabs hydrates the cache with a session's tabs from the
// store. Idempotent; entries for other sessions are left alone.
func (m *TabManager) LoadSessionTabs(ctx context.Context, sessionID string) ([]*entity.Tab, error) {
	log := logging.FromContext(ctx)

	tabs, err := m.repo.FindBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session tabs: %w", err)
	}

	m.mu.Lock()
	for _, tab := range tabs {
		m.tabs[tab.ID] = tab.Clone()
	}
	m.mu.Unlock()

	log.Debug().Str("session_id", sessionID).Int("tab_count", len(tabs)).Msg("hydrated session tabs")
	return tabs, nil
}

// CreateTab creates a tab in the Active state, persists it, and caches it.
func (m *TabManager) CreateTab(ctx context.Context, sessionID, url string) (*entity.Tab, error) {
	log := logging.FromContext(ctx)

	tab, err := entity.NewTab(sessionID, url)
	if err != nil {
		return nil, err
	}

	if err := m.repo.Save(ctx, tab); err != nil {
		return nil, fmt.Errorf("persist tab: %w", err)
	}

	m.mu.Lock()
	m.tabs[tab.ID] = tab.Clone()
	m.mu.Unlock()

	log.Info().Str("tab_id", tab.ID).Str("url", logging.TruncateURL(url, 60)).Msg("created tab")
	return tab, nil
}

// GetTab returns a copy of a cached tab. The owning session must have
// been hydrated first.
func (m *TabManager) GetTab(ctx context.Context, tabID string) (*entity.Tab, error) {
	m.mu.RLock()
	tab, ok := m.tabs[tabID]
	m.mu.RUnlock()

	if !ok {
		return nil, entity.NewTabNotFound(tabID)
	}
	return tab.Clone(), nil
}

// ActivateTab focuses a tab. Legal from every state.
func (m *TabManager) ActivateTab(ctx context.Context, tabID string) (*entity.Tab, error) {
	return m.mutateTab(ctx, tabID, func(t *entity.Tab) error { return t.Activate() })
}

// BlurTab moves an Active tab to Background; a no-op otherwise.
func (m *TabManager) BlurTab(ctx context.Context, tabID string) (*entity.Tab, error) {
	return m.mutateTab(ctx, tabID, func(t *entity.Tab) error { return t.Blur() })
}

// FreezeTab suspends a tab, auto-blurring first when Active.
func (m *TabManager) FreezeTab(ctx context.Context, tabID string) (*entity.Tab, error) {
	return m.mutateTab(ctx, tabID, func(t *entity.Tab) error { return t.Freeze() })
}

// DiscardTab unloads a tab, auto-freezing first when needed.
func (m *TabManager) DiscardTab(ctx context.Context, tabID string) (*entity.Tab, error) {
	return m.mutateTab(ctx, tabID, func(t *entity.Tab) error { return t.Discard() })
}

// NavigateTab points a tab at a new URL.
func (m *TabManager) NavigateTab(ctx context.Context, tabID, url string) (*entity.Tab, error) {
	return m.mutateTab(ctx, tabID, func(t *entity.Tab) error { return t.Navigate(url) })
}

// SetTabTitle updates a tab's title.
func (m *TabManager) SetTabTitle(ctx context.Context, tabID, title string) (*entity.Tab, error) {
	return m.mutateTab(ctx, tabID, func(t *entity.Tab) error {
		t.SetTitle(title)
		return nil
	})
}

// SetTabFavicon updates a tab's favicon URL.
func (m *TabManager) SetTabFavicon(ctx context.Context, tabID, faviconURL string) (*entity.Tab, error) {
	return m.mutateTab(ctx, tabID, func(t *entity.Tab) error {
		t.SetFavicon(faviconURL)
		return nil
	})
}

// CloseTab deletes a tab from the store and the cache. Removing the id
// from the owning session's tab order is the caller's responsibility.
func (m *TabManager) CloseTab(ctx context.Context, tabID string) error {
	log := logging.FromContext(ctx)

	m.mu.RLock()
	_, ok := m.tabs[tabID]
	m.mu.RUnlock()
	if !ok {
		return entity.NewTabNotFound(tabID)
	}

	if err := m.repo.Delete(ctx, tabID); err != nil {
		return fmt.Errorf("delete tab: %w", err)
	}

	m.mu.Lock()
	delete(m.tabs, tabID)
	m.mu.Unlock()

	log.Info().Str("tab_id", tabID).Msg("closed tab")
	return nil
}

// GetSessionTabs returns an unordered snapshot of the cached tabs
// belonging to a session.
func (m *TabManager) GetSessionTabs(ctx context.Context, sessionID string) []*entity.Tab {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var tabs []*entity.Tab
	for _, tab := range m.tabs {
		if tab.SessionID == sessionID {
			tabs = append(tabs, tab.Clone())
		}
	}
	return tabs
}

// mutateTab applies fn to a private copy, persists it, and only then
// swaps it into the cache.
func (m *TabManager) mutateTab(ctx context.Context, tabID string, fn func(*entity.Tab) error) (*entity.Tab, error) {
	m.mu.RLock()
	cached, ok := m.tabs[tabID]
	m.mu.RUnlock()
	if !ok {
		return nil, entity.NewTabNotFound(tabID)
	}

	tab := cached.Clone()
	if err := fn(tab); err != nil {
		return nil, err
	}

	if err := m.repo.Save(ctx, tab); err != nil {
		return nil, fmt.Errorf("persist tab: %w", err)
	}

	m.mu.Lock()
	m.tabs[tabID] = tab.Clone()
	m.mu.Unlock()

	return tab, nil
}
