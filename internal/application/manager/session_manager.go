package manager

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sablebrowser/sable/internal/domain/entity"
	"github.com/sablebrowser/sable/internal/domain/repository"
	"github.com/sablebrowser/sable/internal/logging"
)

// SessionManager owns the session cache, the process-wide active session
// pointer, and the TabManager. Sessions auto-save on every mutation.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*entity.Session
	activeID string

	repo       repository.SessionRepository
	tabManager *TabManager
}

// NewSessionManager creates a session manager owning the given TabManager.
func NewSessionManager(repo repository.SessionRepository, tabManager *TabManager) *SessionManager {
	return &SessionManager{
		sessions:   make(map[string]*entity.Session),
		repo:       repo,
		tabManager: tabManager,
	}
}

// TabManager exposes the owned tab manager.
func (m *SessionManager) TabManager() *TabManager {
	return m.tabManager
}

// Initialize loads all sessions from the store, synthesizing a single
// "Default" session when the store holds none flagged active. The active
// session's tabs are hydrated and, as there may be stale rows from a
// crash, every Active tab after the first is demoted to Background.
func (m *SessionManager) Initialize(ctx context.Context) (*entity.Session, error) {
	log := logging.FromContext(ctx)

	sessions, err := m.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}

	m.mu.Lock()
	for _, s := range sessions {
		m.sessions[s.ID] = s.Clone()
	}
	m.mu.Unlock()

	var active *entity.Session
	for _, s := range sessions {
		if s.IsActive {
			active = s.Clone()
			break
		}
	}

	switch {
	case active == nil && len(sessions) > 0:
		// Sessions exist but none is flagged active (stale shutdown).
		active = sessions[0].Clone()
		active.IsActive = true
		if err := m.saveSession(ctx, active); err != nil {
			return nil, fmt.Errorf("reactivate session: %w", err)
		}
	case active == nil:
		active = entity.DefaultSession()
		if err := m.saveSession(ctx, active); err != nil {
			return nil, fmt.Errorf("save default session: %w", err)
		}
		log.Info().Str("session_id", active.ID).Msg("created default session")
	}

	m.mu.Lock()
	m.activeID = active.ID
	m.mu.Unlock()

	if _, err := m.tabManager.LoadSessionTabs(ctx, active.ID); err != nil {
		return nil, err
	}
	if err := m.demoteExtraActiveTabs(ctx, active); err != nil {
		return nil, err
	}

	log.Info().
		Str("session_id", active.ID).
		Str("session_name", active.Name).
		Int("tab_count", active.TabCount()).
		Msg("initialized session")

	return active, nil
}

// demoteExtraActiveTabs enforces the one-Active-tab-per-session policy on
// hydrated state: the first Active tab in order keeps focus, the rest blur.
func (m *SessionManager) demoteExtraActiveTabs(ctx context.Context, session *entity.Session) error {
	seen := false
	for _, tab := range m.GetOrderedTabsForSessionUnchecked(ctx, session) {
		if tab.State != entity.TabStateActive {
			continue
		}
		if !seen {
			seen = true
			continue
		}
		if _, err := m.tabManager.BlurTab(ctx, tab.ID); err != nil {
			return fmt.Errorf("demote active tab %s: %w", tab.ID, err)
		}
	}
	return nil
}

// ActiveSession returns the globally active session.
//
// Deprecated: the global pointer exists for callers without a window
// context; new code should track its session id explicitly.
func (m *SessionManager) ActiveSession(ctx context.Context) (*entity.Session, error) {
	m.mu.RLock()
	activeID := m.activeID
	m.mu.RUnlock()

	if activeID == "" {
		return nil, entity.ErrNoActiveSession
	}
	return m.GetSession(ctx, activeID)
}

// ActiveSessionID returns the globally active session id, or "".
func (m *SessionManager) ActiveSessionID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeID
}

// GetSession returns a copy of a cached session.
func (m *SessionManager) GetSession(ctx context.Context, sessionID string) (*entity.Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[sessionID]
	m.mu.RUnlock()

	if !ok {
		return nil, entity.NewSessionNotFound(sessionID)
	}
	return s.Clone(), nil
}

// ListSessions returns copies of every cached session.
func (m *SessionManager) ListSessions(ctx context.Context) []*entity.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sessions := make([]*entity.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s.Clone())
	}
	return sessions
}

// CreateSession creates and persists an inactive session.
func (m *SessionManager) CreateSession(ctx context.Context, name string) (*entity.Session, error) {
	log := logging.FromContext(ctx)

	if strings.TrimSpace(name) == "" {
		return nil, entity.ErrEmptyName
	}

	session := entity.NewSession(name)
	if err := m.saveSession(ctx, session); err != nil {
		return nil, err
	}

	log.Info().Str("session_id", session.ID).Str("session_name", session.Name).Msg("created session")
	return session, nil
}

// RenameSession renames a session. Blank names are rejected.
func (m *SessionManager) RenameSession(ctx context.Context, sessionID, name string) (*entity.Session, error) {
	if strings.TrimSpace(name) == "" {
		return nil, entity.ErrEmptyName
	}

	session, err := m.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	session.Rename(name)
	if err := m.saveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// SwitchSession makes the target session globally active, deactivating
// the previous one best-effort, and hydrates the target's tabs.
func (m *SessionManager) SwitchSession(ctx context.Context, sessionID string) (*entity.Session, error) {
	log := logging.FromContext(ctx)

	// Best effort: nothing may be active yet.
	if current, err := m.ActiveSession(ctx); err == nil && current.ID != sessionID {
		current.IsActive = false
		if err := m.saveSession(ctx, current); err != nil {
			log.Warn().Err(err).Str("session_id", current.ID).Msg("failed to deactivate previous session")
		}
	}

	session, err := m.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	session.IsActive = true
	if err := m.saveSession(ctx, session); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.activeID = session.ID
	m.mu.Unlock()

	if _, err := m.tabManager.LoadSessionTabs(ctx, session.ID); err != nil {
		return nil, err
	}

	log.Info().Str("session_id", session.ID).Str("session_name", session.Name).Msg("switched session")
	return session, nil
}

// DeleteSession removes a session and, via the store cascade, its tabs.
// The last remaining session can never be deleted; deleting the active
// session first switches to an arbitrary remaining one.
func (m *SessionManager) DeleteSession(ctx context.Context, sessionID string) error {
	log := logging.FromContext(ctx)

	m.mu.RLock()
	count := len(m.sessions)
	_, exists := m.sessions[sessionID]
	activeID := m.activeID
	m.mu.RUnlock()

	if !exists {
		return entity.NewSessionNotFound(sessionID)
	}
	if count <= 1 {
		return entity.ErrCannotDeleteLastSession
	}

	if activeID == sessionID {
		var fallback string
		m.mu.RLock()
		for id := range m.sessions {
			if id != sessionID {
				fallback = id
				break
			}
		}
		m.mu.RUnlock()

		if _, err := m.SwitchSession(ctx, fallback); err != nil {
			return fmt.Errorf("switch away from deleted session: %w", err)
		}
	}

	if err := m.repo.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	log.Info().Str("session_id", sessionID).Msg("deleted session")
	return nil
}

// AddTabToSession appends a tab id to a session's order.
func (m *SessionManager) AddTabToSession(ctx context.Context, sessionID, tabID string) (*entity.Session, error) {
	session, err := m.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	session.AddTab(tabID)
	if err := m.saveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// RemoveTabFromSession drops a tab id from a session's order.
func (m *SessionManager) RemoveTabFromSession(ctx context.Context, sessionID, tabID string) (*entity.Session, error) {
	session, err := m.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	session.RemoveTab(tabID)
	if err := m.saveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// MoveTabInSession reorders a tab inside a session, clamping the index.
func (m *SessionManager) MoveTabInSession(ctx context.Context, sessionID, tabID string, newIndex int) (*entity.Session, error) {
	session, err := m.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	session.MoveTab(tabID, newIndex)
	if err := m.saveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// GetOrderedTabsForSession projects a session's tab order against the
// tab cache, preserving order and silently dropping ids whose tab is not
// cached (transient order/cache skew is tolerated).
func (m *SessionManager) GetOrderedTabsForSession(ctx context.Context, sessionID string) ([]*entity.Tab, error) {
	session, err := m.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return m.GetOrderedTabsForSessionUnchecked(ctx, session), nil
}

// GetOrderedTabsForSessionUnchecked is the projection body for callers
// that already hold a session copy.
func (m *SessionManager) GetOrderedTabsForSessionUnchecked(ctx context.Context, session *entity.Session) []*entity.Tab {
	all := m.tabManager.GetSessionTabs(ctx, session.ID)
	byID := make(map[string]*entity.Tab, len(all))
	for _, tab := range all {
		byID[tab.ID] = tab
	}

	ordered := make([]*entity.Tab, 0, len(session.TabOrder))
	for _, tabID := range session.TabOrder {
		if tab, ok := byID[tabID]; ok {
			ordered = append(ordered, tab)
		}
	}
	return ordered
}

// CreateTab creates a tab in the globally active session.
//
// Deprecated: convenience for callers without a window context; wraps
// the explicit session-scoped form.
func (m *SessionManager) CreateTab(ctx context.Context, url string) (*entity.Tab, error) {
	session, err := m.ActiveSession(ctx)
	if err != nil {
		return nil, err
	}

	tab, err := m.tabManager.CreateTab(ctx, session.ID, url)
	if err != nil {
		return nil, err
	}
	if _, err := m.AddTabToSession(ctx, session.ID, tab.ID); err != nil {
		return nil, err
	}
	return tab, nil
}

// CloseTab closes a tab in the globally active session.
//
// Deprecated: see CreateTab.
func (m *SessionManager) CloseTab(ctx context.Context, tabID string) error {
	session, err := m.ActiveSession(ctx)
	if err != nil {
		return err
	}

	if err := m.tabManager.CloseTab(ctx, tabID); err != nil {
		return err
	}
	_, err = m.RemoveTabFromSession(ctx, session.ID, tabID)
	return err
}

// MoveTab reorders a tab in the globally active session.
//
// Deprecated: see CreateTab.
func (m *SessionManager) MoveTab(ctx context.Context, tabID string, newIndex int) error {
	session, err := m.ActiveSession(ctx)
	if err != nil {
		return err
	}
	_, err = m.MoveTabInSession(ctx, session.ID, tabID, newIndex)
	return err
}

// GetOrderedTabs returns the globally active session's tabs in order.
//
// Deprecated: see CreateTab.
func (m *SessionManager) GetOrderedTabs(ctx context.Context) ([]*entity.Tab, error) {
	session, err := m.ActiveSession(ctx)
	if err != nil {
		return nil, err
	}
	return m.GetOrderedTabsForSessionUnchecked(ctx, session), nil
}

// saveSession persists a session then swaps it into the cache.
func (m *SessionManager) saveSession(ctx context.Context, session *entity.Session) error {
	if err := m.repo.Save(ctx, session); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	m.mu.Lock()
	m.sessions[session.ID] = session.Clone()
	m.mu.Unlock()
	return nil
}
