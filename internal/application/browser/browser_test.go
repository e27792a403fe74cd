package browser_test

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/sablebrowser/sable/internal/application/browser"
	"github.com/sablebrowser/sable/internal/application/manager"
	"github.com/sablebrowser/sable/internal/domain/entity"
	"github.com/sablebrowser/sable/internal/infrastructure/persistence/sqlite"
	"github.com/sablebrowser/sable/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	ctx     context.Context
	browser *browser.Browser
	history *manager.HistoryManager
	session *entity.Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := logging.NewFromConfigValues("debug", "console")
	ctx := logging.WithContext(context.Background(), logger)

	db, err := sqlite.NewConnection(ctx, filepath.Join(t.TempDir(), "sable.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	tabs := manager.NewTabManager(sqlite.NewTabRepository(db))
	sessions := manager.NewSessionManager(sqlite.NewSessionRepository(db), tabs)
	history := manager.NewHistoryManager(sqlite.NewHistoryRepository(db))
	settings := sqlite.NewSettingsRepository(db)

	b := browser.New(sessions, history, settings)
	active, err := b.Initialize(ctx)
	require.NoError(t, err)

	return &fixture{ctx: ctx, browser: b, history: history, session: active}
}

const win = browser.DefaultWindowID

func TestBrowser_CreateTabFocusesAndBlursPrevious(t *testing.T) {
	f := newFixture(t)

	first, err := f.browser.CreateTabInSession(f.ctx, win, f.session.ID, "https://one.example")
	require.NoError(t, err)
	assert.Equal(t, entity.TabStateActive, first.State)
	assert.Equal(t, first.ID, f.browser.ActiveTabForWindow(win))

	second, err := f.browser.CreateTabInSession(f.ctx, win, f.session.ID, "https://two.example")
	require.NoError(t, err)
	assert.Equal(t, second.ID, f.browser.ActiveTabForWindow(win))

	firstNow, err := f.browser.Sessions().TabManager().GetTab(f.ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TabStateBackground, firstNow.State)
}

func TestBrowser_BackgroundCreateKeepsFocus(t *testing.T) {
	f := newFixture(t)

	front, err := f.browser.CreateTabInSession(f.ctx, win, f.session.ID, "https://front.example")
	require.NoError(t, err)

	back, err := f.browser.CreateTabInSessionBackground(f.ctx, f.session.ID, "https://back.example")
	require.NoError(t, err)
	assert.Equal(t, entity.TabStateBackground, back.State)

	assert.Equal(t, front.ID, f.browser.ActiveTabForWindow(win))
	frontNow, err := f.browser.Sessions().TabManager().GetTab(f.ctx, front.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TabStateActive, frontNow.State)
}

func TestBrowser_CloseFocusedTabPicksNeighbour(t *testing.T) {
	f := newFixture(t)

	var ids []string
	for i := 0; i < 3; i++ {
		tab, err := f.browser.CreateTabInSession(f.ctx, win, f.session.ID, fmt.Sprintf("https://t%d.example", i))
		require.NoError(t, err)
		ids = append(ids, tab.ID)
	}

	// Close the middle tab while it is NOT focused: focus stays put.
	require.NoError(t, f.browser.CloseTabInSession(f.ctx, win, f.session.ID, ids[1]))
	assert.Equal(t, ids[2], f.browser.ActiveTabForWindow(win))

	// Close the focused last tab: the clamped index lands on the new last.
	require.NoError(t, f.browser.CloseTabInSession(f.ctx, win, f.session.ID, ids[2]))
	assert.Equal(t, ids[0], f.browser.ActiveTabForWindow(win))

	activeNow, err := f.browser.Sessions().TabManager().GetTab(f.ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, entity.TabStateActive, activeNow.State)
}

func TestBrowser_CloseLastTabLeavesWindowEmpty(t *testing.T) {
	f := newFixture(t)

	tab, err := f.browser.CreateTabInSession(f.ctx, win, f.session.ID, "https://only.example")
	require.NoError(t, err)

	require.NoError(t, f.browser.CloseTabInSession(f.ctx, win, f.session.ID, tab.ID))
	assert.Empty(t, f.browser.ActiveTabForWindow(win))
}

func TestBrowser_RestoreRoundTrip(t *testing.T) {
	f := newFixture(t)

	var ids []string
	for i := 0; i < 3; i++ {
		tab, err := f.browser.CreateTabInSession(f.ctx, win, f.session.ID, fmt.Sprintf("https://t%d.example", i))
		require.NoError(t, err)
		ids = append(ids, tab.ID)
	}
	_, err := f.browser.SetTabTitle(f.ctx, ids[1], "Middle")
	require.NoError(t, err)

	require.NoError(t, f.browser.CloseTabInSession(f.ctx, win, f.session.ID, ids[1]))

	restored, err := f.browser.RestoreLastClosedTabInSession(f.ctx, win, f.session.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://t1.example", restored.URL)
	assert.Equal(t, restored.ID, f.browser.ActiveTabForWindow(win))

	session, err := f.browser.Sessions().GetSession(f.ctx, f.session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, session.TabIndex(restored.ID))

	got, err := f.browser.Sessions().TabManager().GetTab(f.ctx, restored.ID)
	require.NoError(t, err)
	assert.Equal(t, "Middle", got.Title)
}

func TestBrowser_RestoreReappliesFavicon(t *testing.T) {
	f := newFixture(t)

	tab, err := f.browser.CreateTabInSession(f.ctx, win, f.session.ID, "https://x.example")
	require.NoError(t, err)
	_, err = f.browser.SetTabFavicon(f.ctx, tab.ID, "https://x.example/favicon.ico")
	require.NoError(t, err)
	_, err = f.browser.SetTabTitle(f.ctx, tab.ID, "X")
	require.NoError(t, err)

	require.NoError(t, f.browser.CloseTabInSession(f.ctx, win, f.session.ID, tab.ID))

	restored, err := f.browser.RestoreLastClosedTabInSession(f.ctx, win, f.session.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://x.example/favicon.ico", restored.FaviconURL)
	assert.Equal(t, "X", restored.Title)

	got, err := f.browser.Sessions().TabManager().GetTab(f.ctx, restored.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://x.example/favicon.ico", got.FaviconURL)
}

func TestBrowser_RestoreAppendsWhenOrderForgotTab(t *testing.T) {
	f := newFixture(t)

	orphan, err := f.browser.CreateTabInSession(f.ctx, win, f.session.ID, "https://orphan.example")
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err := f.browser.CreateTabInSession(f.ctx, win, f.session.ID, fmt.Sprintf("https://t%d.example", i))
		require.NoError(t, err)
	}

	// Drop the tab from the order while its row survives.
	_, err = f.browser.Sessions().RemoveTabFromSession(f.ctx, f.session.ID, orphan.ID)
	require.NoError(t, err)

	require.NoError(t, f.browser.CloseTabInSession(f.ctx, win, f.session.ID, orphan.ID))

	restored, err := f.browser.RestoreLastClosedTabInSession(f.ctx, win, f.session.ID)
	require.NoError(t, err)

	session, err := f.browser.Sessions().GetSession(f.ctx, f.session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.TabCount()-1, session.TabIndex(restored.ID), "unknown index falls back to the end of the order")
}

func TestBrowser_RestoreWithEmptyStack(t *testing.T) {
	f := newFixture(t)

	_, err := f.browser.RestoreLastClosedTabInSession(f.ctx, win, f.session.ID)
	assert.ErrorIs(t, err, entity.ErrNothingToRestore)
}

func TestBrowser_ClosedStackBounded(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 25; i++ {
		tab, err := f.browser.CreateTabInSession(f.ctx, win, f.session.ID, fmt.Sprintf("https://t%d.example", i))
		require.NoError(t, err)
		require.NoError(t, f.browser.CloseTabInSession(f.ctx, win, f.session.ID, tab.ID))
	}
	assert.Equal(t, 20, f.browser.ClosedTabCount())

	// The five oldest were evicted; the newest restores first.
	restored, err := f.browser.RestoreLastClosedTabInSession(f.ctx, win, f.session.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://t24.example", restored.URL)
}

func TestBrowser_RestoreIsPerSession(t *testing.T) {
	f := newFixture(t)

	other, err := f.browser.Sessions().CreateSession(f.ctx, "Work")
	require.NoError(t, err)

	tab, err := f.browser.CreateTabInSession(f.ctx, win, f.session.ID, "https://default.example")
	require.NoError(t, err)
	require.NoError(t, f.browser.CloseTabInSession(f.ctx, win, f.session.ID, tab.ID))

	_, err = f.browser.RestoreLastClosedTabInSession(f.ctx, win, other.ID)
	assert.ErrorIs(t, err, entity.ErrNothingToRestore)
}

func TestBrowser_UpdateTabURLIfChanged(t *testing.T) {
	f := newFixture(t)

	tab, err := f.browser.CreateTabInSession(f.ctx, win, f.session.ID, "https://start.example")
	require.NoError(t, err)
	_, err = f.browser.SetTabTitle(f.ctx, tab.ID, "Start")
	require.NoError(t, err)

	same, err := f.browser.UpdateTabURLIfChanged(f.ctx, tab.ID, "https://start.example")
	require.NoError(t, err)
	assert.Equal(t, "Start", same.Title)

	moved, err := f.browser.UpdateTabURLIfChanged(f.ctx, tab.ID, "https://moved.example")
	require.NoError(t, err)
	assert.Equal(t, "https://moved.example", moved.URL)
	assert.Empty(t, moved.Title)
}

func TestBrowser_TitlePropagatesToHistory(t *testing.T) {
	f := newFixture(t)

	tab, err := f.browser.CreateTabInSession(f.ctx, win, f.session.ID, "https://news.example")
	require.NoError(t, err)
	_, err = f.browser.SetTabTitle(f.ctx, tab.ID, "Breaking")
	require.NoError(t, err)

	results, err := f.history.Search(f.ctx, "news.example", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Breaking", results[0].Title)
}

func TestBrowser_SettingsRoundTrip(t *testing.T) {
	f := newFixture(t)

	got, err := f.browser.GetSetting(f.ctx, "homepage", entity.AboutBlankURL)
	require.NoError(t, err)
	assert.Equal(t, entity.AboutBlankURL, got)

	require.NoError(t, f.browser.SetSetting(f.ctx, "homepage", "https://start.example"))
	got, err = f.browser.GetSetting(f.ctx, "homepage", entity.AboutBlankURL)
	require.NoError(t, err)
	assert.Equal(t, "https://start.example", got)
}

func TestBrowser_DeprecatedWrappersUseActiveSession(t *testing.T) {
	f := newFixture(t)

	tab, err := f.browser.CreateTab(f.ctx, "https://legacy.example")
	require.NoError(t, err)
	assert.Equal(t, f.session.ID, tab.SessionID)
	assert.Equal(t, tab.ID, f.browser.ActiveTabForWindow(win))

	require.NoError(t, f.browser.CloseTab(f.ctx, tab.ID))
	restored, err := f.browser.RestoreLastClosedTab(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://legacy.example", restored.URL)
}

func TestBrowser_SessionOpsHydrateUnloadedSessions(t *testing.T) {
	logger := logging.NewFromConfigValues("debug", "console")
	ctx := logging.WithContext(context.Background(), logger)
	dbPath := filepath.Join(t.TempDir(), "sable.db")

	newBrowser := func(db *sql.DB) *browser.Browser {
		tabs := manager.NewTabManager(sqlite.NewTabRepository(db))
		sessions := manager.NewSessionManager(sqlite.NewSessionRepository(db), tabs)
		history := manager.NewHistoryManager(sqlite.NewHistoryRepository(db))
		return browser.New(sessions, history, sqlite.NewSettingsRepository(db))
	}

	db, err := sqlite.NewConnection(ctx, dbPath)
	require.NoError(t, err)

	b1 := newBrowser(db)
	_, err = b1.Initialize(ctx)
	require.NoError(t, err)
	work, err := b1.Sessions().CreateSession(ctx, "Work")
	require.NoError(t, err)
	tab, err := b1.CreateTabInSession(ctx, "w", work.ID, "https://work.example")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Reopen the store; Initialize only hydrates the active session, so
	// closing the other session's tab must hydrate on demand.
	db2, err := sqlite.NewConnection(ctx, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db2.Close() })

	b2 := newBrowser(db2)
	_, err = b2.Initialize(ctx)
	require.NoError(t, err)

	require.NoError(t, b2.CloseTabInSession(ctx, "w", work.ID, tab.ID))

	tabs, err := b2.GetOrderedTabsInSession(ctx, work.ID)
	require.NoError(t, err)
	assert.Empty(t, tabs)
}

func TestBrowser_CloseActiveTabThroughOtherWindow(t *testing.T) {
	f := newFixture(t)

	first, err := f.browser.CreateTabInSession(f.ctx, win, f.session.ID, "https://one.example")
	require.NoError(t, err)
	second, err := f.browser.CreateTabInSession(f.ctx, win, f.session.ID, "https://two.example")
	require.NoError(t, err)

	// The session's Active tab is bound to win; close it from elsewhere.
	require.NoError(t, f.browser.CloseTabInSession(f.ctx, "other", f.session.ID, second.ID))

	firstNow, err := f.browser.Sessions().TabManager().GetTab(f.ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TabStateActive, firstNow.State, "neighbour takes over even when closed through another window")

	assert.Equal(t, first.ID, f.browser.ActiveTabForWindow("other"))
	assert.Equal(t, first.ID, f.browser.ActiveTabForWindow(win), "stale binding is rebound, not left dangling")
}

func TestBrowser_BackgroundCreateWithoutFocusStaysActive(t *testing.T) {
	f := newFixture(t)

	idle, err := f.browser.Sessions().CreateSession(f.ctx, "Idle")
	require.NoError(t, err)

	tab, err := f.browser.CreateTabInSessionBackground(f.ctx, idle.ID, "https://solo.example")
	require.NoError(t, err)
	assert.Equal(t, entity.TabStateActive, tab.State, "no focus to preserve, so the new tab keeps it")
}

func TestBrowser_FocusTabForWindow(t *testing.T) {
	f := newFixture(t)

	first, err := f.browser.CreateTabInSession(f.ctx, win, f.session.ID, "https://one.example")
	require.NoError(t, err)
	second, err := f.browser.CreateTabInSession(f.ctx, win, f.session.ID, "https://two.example")
	require.NoError(t, err)

	// Focus from the tab id alone; the session is derived.
	focused, err := f.browser.FocusTabForWindow(f.ctx, win, first.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TabStateActive, focused.State)
	assert.Equal(t, first.ID, f.browser.ActiveTabForWindow(win))

	active, err := f.browser.GetActiveTabInSession(f.ctx, f.session.ID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, first.ID, active.ID)

	secondNow, err := f.browser.Sessions().TabManager().GetTab(f.ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TabStateBackground, secondNow.State)

	f.browser.CloseWindow(win)
	assert.Empty(t, f.browser.ActiveTabForWindow(win))
}

func TestBrowser_DeleteSessionDropsClosedRecords(t *testing.T) {
	f := newFixture(t)

	other, err := f.browser.Sessions().CreateSession(f.ctx, "Work")
	require.NoError(t, err)

	tab, err := f.browser.CreateTabInSession(f.ctx, "w2", other.ID, "https://work.example")
	require.NoError(t, err)
	require.NoError(t, f.browser.CloseTabInSession(f.ctx, "w2", other.ID, tab.ID))
	require.Equal(t, 1, f.browser.ClosedTabCount())

	require.NoError(t, f.browser.DeleteSession(f.ctx, other.ID))
	assert.Zero(t, f.browser.ClosedTabCount())
}
