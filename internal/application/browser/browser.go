package browser

import (
	"context"
	"sync"
	"time"

	"github.com/sablebrowser/sable/internal/application/manager"
	"github.com/sablebrowser/sable/internal/application/port"
	"github.com/sablebrowser/sable/internal/domain/entity"
	"github.com/sablebrowser/sable/internal/domain/repository"
	"github.com/sablebrowser/sable/internal/logging"
)

// DefaultWindowID names the window used by callers that predate
// multi-window support.
const DefaultWindowID = "main"

// Browser is the top-level facade over sessions, tabs, history and
// settings. It tracks the active tab per window and keeps the bounded
// recently-closed stack; it is the only layer that enforces the
// one-Active-tab-per-session rule.
type Browser struct {
	sessions *manager.SessionManager
	history  port.HistoryNotifier
	settings repository.SettingsRepository

	mu             sync.RWMutex
	activeByWindow map[string]string

	closed *closedStack

	downloads port.DownloadEngine
	policy    port.TrackingPolicy
	omnibox   port.OmniboxResolver
}

// Option configures optional collaborators on the Browser.
type Option func(*Browser)

// WithDownloadEngine wires a download engine.
func WithDownloadEngine(engine port.DownloadEngine) Option {
	return func(b *Browser) { b.downloads = engine }
}

// WithTrackingPolicy wires a request policy.
func WithTrackingPolicy(policy port.TrackingPolicy) Option {
	return func(b *Browser) { b.policy = policy }
}

// WithOmniboxResolver wires an omnibox resolver.
func WithOmniboxResolver(resolver port.OmniboxResolver) Option {
	return func(b *Browser) { b.omnibox = resolver }
}

// New assembles the facade. history and settings may be nil when the
// caller does not need those surfaces.
func New(sessions *manager.SessionManager, history port.HistoryNotifier, settings repository.SettingsRepository, opts ...Option) *Browser {
	b := &Browser{
		sessions:       sessions,
		history:        history,
		settings:       settings,
		activeByWindow: make(map[string]string),
		closed:         newClosedStack(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Sessions exposes the underlying session manager for read paths.
func (b *Browser) Sessions() *manager.SessionManager {
	return b.sessions
}

// Initialize boots the session layer and binds the default window to the
// active session's focused tab, if any.
func (b *Browser) Initialize(ctx context.Context) (*entity.Session, error) {
	active, err := b.sessions.Initialize(ctx)
	if err != nil {
		return nil, err
	}

	tabs, err := b.sessions.GetOrderedTabsForSession(ctx, active.ID)
	if err != nil {
		return nil, err
	}
	for _, tab := range tabs {
		if tab.State == entity.TabStateActive {
			b.setWindowActive(DefaultWindowID, tab.ID)
			break
		}
	}
	return active, nil
}

// ActiveTabForWindow returns the tab currently focused in a window, ""
// when the window has none.
func (b *Browser) ActiveTabForWindow(windowID string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.activeByWindow[windowID]
}

// FocusTabForWindow focuses a tab in a window, deriving the session from
// the tab itself.
func (b *Browser) FocusTabForWindow(ctx context.Context, windowID, tabID string) (*entity.Tab, error) {
	tab, err := b.sessions.TabManager().GetTab(ctx, tabID)
	if err != nil {
		return nil, err
	}
	return b.ActivateTabInSession(ctx, windowID, tab.SessionID, tabID)
}

// CloseWindow forgets a window's focus tracking. The tabs themselves are
// untouched.
func (b *Browser) CloseWindow(windowID string) {
	b.setWindowActive(windowID, "")
}

// GetOrderedTabsInSession returns a session's tabs in display order.
func (b *Browser) GetOrderedTabsInSession(ctx context.Context, sessionID string) ([]*entity.Tab, error) {
	return b.sessions.GetOrderedTabsForSession(ctx, sessionID)
}

// GetActiveTabInSession returns the session's Active tab, in order, or
// nil when none is focused anywhere.
func (b *Browser) GetActiveTabInSession(ctx context.Context, sessionID string) (*entity.Tab, error) {
	tabs, err := b.sessions.GetOrderedTabsForSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	for _, tab := range tabs {
		if tab.State == entity.TabStateActive {
			return tab, nil
		}
	}
	return nil, nil
}

func (b *Browser) setWindowActive(windowID, tabID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if tabID == "" {
		delete(b.activeByWindow, windowID)
		return
	}
	b.activeByWindow[windowID] = tabID
}

// CreateTabInSession opens a tab, focuses it in the window and appends
// it to the session's order. The previously focused tab blurs.
func (b *Browser) CreateTabInSession(ctx context.Context, windowID, sessionID, url string) (*entity.Tab, error) {
	if _, err := b.sessions.TabManager().LoadSessionTabs(ctx, sessionID); err != nil {
		return nil, err
	}

	tab, err := b.sessions.TabManager().CreateTab(ctx, sessionID, url)
	if err != nil {
		return nil, err
	}
	if _, err := b.sessions.AddTabToSession(ctx, sessionID, tab.ID); err != nil {
		return nil, err
	}
	if err := b.blurOtherActiveTabs(ctx, sessionID, tab.ID); err != nil {
		return nil, err
	}
	b.setWindowActive(windowID, tab.ID)

	b.notifyVisit(ctx, tab.URL, "")
	return tab, nil
}

// CreateTabInSessionBackground opens a tab without stealing focus: when
// the session already has an Active tab, the new one is appended to the
// order already blurred. On a session with no focus the new tab keeps
// the Active state it was created with.
func (b *Browser) CreateTabInSessionBackground(ctx context.Context, sessionID, url string) (*entity.Tab, error) {
	if _, err := b.sessions.TabManager().LoadSessionTabs(ctx, sessionID); err != nil {
		return nil, err
	}

	hadActive := false
	for _, t := range b.sessions.TabManager().GetSessionTabs(ctx, sessionID) {
		if t.State == entity.TabStateActive {
			hadActive = true
			break
		}
	}

	tab, err := b.sessions.TabManager().CreateTab(ctx, sessionID, url)
	if err != nil {
		return nil, err
	}
	if _, err := b.sessions.AddTabToSession(ctx, sessionID, tab.ID); err != nil {
		return nil, err
	}
	if hadActive {
		tab, err = b.sessions.TabManager().BlurTab(ctx, tab.ID)
		if err != nil {
			return nil, err
		}
	}

	b.notifyVisit(ctx, tab.URL, "")
	return tab, nil
}

// ActivateTabInSession focuses a tab in a window, blurring whichever tab
// held the session's focus before.
func (b *Browser) ActivateTabInSession(ctx context.Context, windowID, sessionID, tabID string) (*entity.Tab, error) {
	if _, err := b.sessions.TabManager().LoadSessionTabs(ctx, sessionID); err != nil {
		return nil, err
	}
	if err := b.blurOtherActiveTabs(ctx, sessionID, tabID); err != nil {
		return nil, err
	}
	tab, err := b.sessions.TabManager().ActivateTab(ctx, tabID)
	if err != nil {
		return nil, err
	}
	b.setWindowActive(windowID, tab.ID)
	return tab, nil
}

// CloseTabInSession closes a tab, records it for undo and, when the
// closed tab was the session's Active one, moves focus to the neighbour
// at the clamped index. Windows that pointed at the closed tab are
// rebound so no window keeps a dangling id.
func (b *Browser) CloseTabInSession(ctx context.Context, windowID, sessionID, tabID string) error {
	log := logging.FromContext(ctx)

	if _, err := b.sessions.TabManager().LoadSessionTabs(ctx, sessionID); err != nil {
		return err
	}

	tab, err := b.sessions.TabManager().GetTab(ctx, tabID)
	if err != nil {
		return err
	}
	session, err := b.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	index := session.TabIndex(tabID)
	if index < 0 {
		// Not in the order; restore appends at the end.
		index = session.TabCount()
	}
	wasActive := tab.State == entity.TabStateActive

	b.closed.push(ClosedTabRecord{
		SessionID:  sessionID,
		URL:        tab.URL,
		Title:      tab.Title,
		FaviconURL: tab.FaviconURL,
		Index:      index,
		ClosedAt:   time.Now().UTC(),
	})

	if err := b.sessions.TabManager().CloseTab(ctx, tabID); err != nil {
		return err
	}
	session, err = b.sessions.RemoveTabFromSession(ctx, sessionID, tabID)
	if err != nil {
		return err
	}

	boundWindows := b.forgetTabInWindows(tabID)

	if !wasActive || session.TabCount() == 0 {
		return nil
	}
	next := index
	if next >= session.TabCount() {
		next = session.TabCount() - 1
	}
	nextID := session.TabOrder[next]
	if _, err := b.ActivateTabInSession(ctx, windowID, sessionID, nextID); err != nil {
		log.Warn().Err(err).Str("tab_id", nextID).Msg("failed to focus neighbour after close")
		return nil
	}
	for _, w := range boundWindows {
		if w != windowID {
			b.setWindowActive(w, nextID)
		}
	}
	return nil
}

// forgetTabInWindows unbinds a tab id from every window, returning the
// windows that held it.
func (b *Browser) forgetTabInWindows(tabID string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	var windows []string
	for w, id := range b.activeByWindow {
		if id == tabID {
			delete(b.activeByWindow, w)
			windows = append(windows, w)
		}
	}
	return windows
}

// RestoreLastClosedTabInSession reopens the session's most recently
// closed tab at its old position and focuses it, reapplying the captured
// title and favicon.
func (b *Browser) RestoreLastClosedTabInSession(ctx context.Context, windowID, sessionID string) (*entity.Tab, error) {
	rec, ok := b.closed.popForSession(sessionID)
	if !ok {
		return nil, entity.ErrNothingToRestore
	}

	tab, err := b.CreateTabInSession(ctx, windowID, sessionID, rec.URL)
	if err != nil {
		return nil, err
	}
	if rec.Title != "" {
		if tab, err = b.sessions.TabManager().SetTabTitle(ctx, tab.ID, rec.Title); err != nil {
			return nil, err
		}
	}
	if rec.FaviconURL != "" {
		if tab, err = b.sessions.TabManager().SetTabFavicon(ctx, tab.ID, rec.FaviconURL); err != nil {
			return nil, err
		}
	}
	if _, err := b.sessions.MoveTabInSession(ctx, sessionID, tab.ID, rec.Index); err != nil {
		return nil, err
	}
	return tab, nil
}

// ReorderTabInSession moves a tab to a new index, clamped to the order.
func (b *Browser) ReorderTabInSession(ctx context.Context, sessionID, tabID string, newIndex int) (*entity.Session, error) {
	return b.sessions.MoveTabInSession(ctx, sessionID, tabID, newIndex)
}

// NavigateTab points a tab at a URL and records the visit.
func (b *Browser) NavigateTab(ctx context.Context, tabID, url string) (*entity.Tab, error) {
	tab, err := b.sessions.TabManager().NavigateTab(ctx, tabID, url)
	if err != nil {
		return nil, err
	}
	b.notifyVisit(ctx, tab.URL, "")
	return tab, nil
}

// UpdateTabURLIfChanged applies redirect-driven URL updates, skipping
// the write entirely when the URL is unchanged.
func (b *Browser) UpdateTabURLIfChanged(ctx context.Context, tabID, url string) (*entity.Tab, error) {
	tab, err := b.sessions.TabManager().GetTab(ctx, tabID)
	if err != nil {
		return nil, err
	}
	if tab.URL == url {
		return tab, nil
	}
	return b.NavigateTab(ctx, tabID, url)
}

// SetTabTitle updates a tab's title and propagates it to history unless
// the tab sits on a blank page.
func (b *Browser) SetTabTitle(ctx context.Context, tabID, title string) (*entity.Tab, error) {
	tab, err := b.sessions.TabManager().SetTabTitle(ctx, tabID, title)
	if err != nil {
		return nil, err
	}
	if tab.URL != "" && tab.URL != entity.AboutBlankURL {
		b.notifyTitle(ctx, tab.URL, title)
	}
	return tab, nil
}

// SetTabFavicon updates a tab's favicon URL.
func (b *Browser) SetTabFavicon(ctx context.Context, tabID, faviconURL string) (*entity.Tab, error) {
	return b.sessions.TabManager().SetTabFavicon(ctx, tabID, faviconURL)
}

// FreezeTab and DiscardTab forward to the tab lifecycle; focus never
// lands on a frozen or discarded tab, so the window map is untouched.
func (b *Browser) FreezeTab(ctx context.Context, tabID string) (*entity.Tab, error) {
	return b.sessions.TabManager().FreezeTab(ctx, tabID)
}

func (b *Browser) DiscardTab(ctx context.Context, tabID string) (*entity.Tab, error) {
	return b.sessions.TabManager().DiscardTab(ctx, tabID)
}

// DeleteSession removes a session and forgets its closed-tab records.
func (b *Browser) DeleteSession(ctx context.Context, sessionID string) error {
	if err := b.sessions.DeleteSession(ctx, sessionID); err != nil {
		return err
	}
	b.closed.dropSession(sessionID)
	return nil
}

// ClosedTabCount reports how many closed tabs are currently restorable.
func (b *Browser) ClosedTabCount() int {
	return b.closed.len()
}

// GetSetting reads a persisted setting, falling back to def when unset.
func (b *Browser) GetSetting(ctx context.Context, key, def string) (string, error) {
	if b.settings == nil {
		return def, nil
	}
	value, ok, err := b.settings.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return def, nil
	}
	return value, nil
}

// SetSetting persists a setting.
func (b *Browser) SetSetting(ctx context.Context, key, value string) error {
	if b.settings == nil {
		return nil
	}
	return b.settings.Set(ctx, key, value)
}

// Well-known settings keys.
const (
	SettingHomepage     = "homepage"
	SettingSearchEngine = "search_engine"
	SettingTheme        = "theme"
)

// Homepage returns the persisted homepage, falling back to def.
func (b *Browser) Homepage(ctx context.Context, def string) (string, error) {
	return b.GetSetting(ctx, SettingHomepage, def)
}

// SearchEngine returns the persisted search engine template, falling
// back to def.
func (b *Browser) SearchEngine(ctx context.Context, def string) (string, error) {
	return b.GetSetting(ctx, SettingSearchEngine, def)
}

// Theme returns the persisted theme name, falling back to def.
func (b *Browser) Theme(ctx context.Context, def string) (string, error) {
	return b.GetSetting(ctx, SettingTheme, def)
}

// StartDownload forwards to the download engine if one is wired.
func (b *Browser) StartDownload(ctx context.Context, url, fileName string) (string, error) {
	if b.downloads == nil {
		return "", nil
	}
	return b.downloads.Start(ctx, url, fileName)
}

// CancelDownload forwards to the download engine if one is wired.
func (b *Browser) CancelDownload(ctx context.Context, id string) error {
	if b.downloads == nil {
		return nil
	}
	return b.downloads.Cancel(ctx, id)
}

// ShouldBlockRequest consults the tracking policy, defaulting to allow.
func (b *Browser) ShouldBlockRequest(url string) bool {
	if b.policy == nil {
		return false
	}
	return b.policy.ShouldBlock(url)
}

// CleanURL strips tracking parameters via the policy, if wired.
func (b *Browser) CleanURL(url string) string {
	if b.policy == nil {
		return url
	}
	return b.policy.CleanURL(url)
}

// ResolveOmnibox turns address-bar input into a URL. Without a resolver
// the input passes through untouched.
func (b *Browser) ResolveOmnibox(input string) string {
	if b.omnibox == nil {
		return input
	}
	return b.omnibox.Resolve(input)
}

// CreateTab opens a tab in the active session on the default window.
//
// Deprecated: callers with a window should use CreateTabInSession.
func (b *Browser) CreateTab(ctx context.Context, url string) (*entity.Tab, error) {
	session, err := b.sessions.ActiveSession(ctx)
	if err != nil {
		return nil, err
	}
	return b.CreateTabInSession(ctx, DefaultWindowID, session.ID, url)
}

// CloseTab closes a tab in the active session on the default window.
//
// Deprecated: see CreateTab.
func (b *Browser) CloseTab(ctx context.Context, tabID string) error {
	session, err := b.sessions.ActiveSession(ctx)
	if err != nil {
		return err
	}
	return b.CloseTabInSession(ctx, DefaultWindowID, session.ID, tabID)
}

// ActivateTab focuses a tab in the active session on the default window.
//
// Deprecated: see CreateTab.
func (b *Browser) ActivateTab(ctx context.Context, tabID string) (*entity.Tab, error) {
	session, err := b.sessions.ActiveSession(ctx)
	if err != nil {
		return nil, err
	}
	return b.ActivateTabInSession(ctx, DefaultWindowID, session.ID, tabID)
}

// RestoreLastClosedTab reopens the active session's last closed tab on
// the default window.
//
// Deprecated: see CreateTab.
func (b *Browser) RestoreLastClosedTab(ctx context.Context) (*entity.Tab, error) {
	session, err := b.sessions.ActiveSession(ctx)
	if err != nil {
		return nil, err
	}
	return b.RestoreLastClosedTabInSession(ctx, DefaultWindowID, session.ID)
}

// blurOtherActiveTabs demotes every Active tab in the session except the
// one keeping (or about to take) focus.
func (b *Browser) blurOtherActiveTabs(ctx context.Context, sessionID, keepTabID string) error {
	tabs := b.sessions.TabManager().GetSessionTabs(ctx, sessionID)
	for _, tab := range tabs {
		if tab.ID == keepTabID || tab.State != entity.TabStateActive {
			continue
		}
		if _, err := b.sessions.TabManager().BlurTab(ctx, tab.ID); err != nil {
			return err
		}
	}
	return nil
}

// notifyVisit records a visit fire-and-forget. Blank pages still pass
// through; the history store caps their count at one.
func (b *Browser) notifyVisit(ctx context.Context, url, title string) {
	if b.history == nil || url == "" {
		return
	}
	if err := b.history.RecordVisit(ctx, url, title); err != nil {
		logging.FromContext(ctx).Warn().Err(err).
			Str("url", logging.TruncateURL(url, 60)).
			Msg("failed to record visit")
	}
}

// notifyTitle pushes a settled title to history fire-and-forget.
func (b *Browser) notifyTitle(ctx context.Context, url, title string) {
	if b.history == nil {
		return
	}
	if err := b.history.UpdateTitle(ctx, url, title); err != nil {
		logging.FromContext(ctx).Warn().Err(err).
			Str("url", logging.TruncateURL(url, 60)).
			Msg("failed to update history title")
	}
}
