package manager_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sablebrowser/sable/internal/application/manager"
	"github.com/sablebrowser/sable/internal/domain/entity"
	"github.com/sablebrowser/sable/internal/infrastructure/persistence/sqlite"
	"github.com/sablebrowser/sable/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCtx() context.Context {
	logger := logging.NewFromConfigValues("debug", "console")
	return logging.WithContext(context.Background(), logger)
}

func newManagers(t *testing.T) (context.Context, *manager.SessionManager) {
	t.Helper()
	ctx := testCtx()
	dbPath := filepath.Join(t.TempDir(), "sable.db")

	db, err := sqlite.NewConnection(ctx, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	tabs := manager.NewTabManager(sqlite.NewTabRepository(db))
	return ctx, manager.NewSessionManager(sqlite.NewSessionRepository(db), tabs)
}

func TestSessionManager_InitializeCreatesDefault(t *testing.T) {
	ctx, sm := newManagers(t)

	active, err := sm.Initialize(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultSessionName, active.Name)
	assert.True(t, active.IsActive)
	assert.Equal(t, active.ID, sm.ActiveSessionID())

	// A second initialize against the same store must not mint another.
	sessions := sm.ListSessions(ctx)
	assert.Len(t, sessions, 1)
}

func TestSessionManager_CreateSessionRejectsBlankName(t *testing.T) {
	ctx, sm := newManagers(t)
	_, err := sm.Initialize(ctx)
	require.NoError(t, err)

	_, err = sm.CreateSession(ctx, "   ")
	assert.ErrorIs(t, err, entity.ErrEmptyName)
}

func TestSessionManager_SwitchSession(t *testing.T) {
	ctx, sm := newManagers(t)
	def, err := sm.Initialize(ctx)
	require.NoError(t, err)

	work, err := sm.CreateSession(ctx, "Work")
	require.NoError(t, err)
	assert.False(t, work.IsActive)

	switched, err := sm.SwitchSession(ctx, work.ID)
	require.NoError(t, err)
	assert.True(t, switched.IsActive)
	assert.Equal(t, work.ID, sm.ActiveSessionID())

	prev, err := sm.GetSession(ctx, def.ID)
	require.NoError(t, err)
	assert.False(t, prev.IsActive)
}

func TestSessionManager_DeleteLastSessionRefused(t *testing.T) {
	ctx, sm := newManagers(t)
	def, err := sm.Initialize(ctx)
	require.NoError(t, err)

	err = sm.DeleteSession(ctx, def.ID)
	assert.ErrorIs(t, err, entity.ErrCannotDeleteLastSession)
}

func TestSessionManager_DeleteActiveSessionSwitchesAway(t *testing.T) {
	ctx, sm := newManagers(t)
	def, err := sm.Initialize(ctx)
	require.NoError(t, err)

	work, err := sm.CreateSession(ctx, "Work")
	require.NoError(t, err)
	_, err = sm.SwitchSession(ctx, work.ID)
	require.NoError(t, err)

	require.NoError(t, sm.DeleteSession(ctx, work.ID))
	assert.Equal(t, def.ID, sm.ActiveSessionID())

	_, err = sm.GetSession(ctx, work.ID)
	assert.True(t, entity.IsNotFound(err))
}

func TestSessionManager_OrderedTabsDropUnknownIDs(t *testing.T) {
	ctx, sm := newManagers(t)
	def, err := sm.Initialize(ctx)
	require.NoError(t, err)

	tab, err := sm.TabManager().CreateTab(ctx, def.ID, "https://example.com")
	require.NoError(t, err)
	_, err = sm.AddTabToSession(ctx, def.ID, tab.ID)
	require.NoError(t, err)
	_, err = sm.AddTabToSession(ctx, def.ID, "ghost-tab")
	require.NoError(t, err)

	ordered, err := sm.GetOrderedTabsForSession(ctx, def.ID)
	require.NoError(t, err)
	require.Len(t, ordered, 1)
	assert.Equal(t, tab.ID, ordered[0].ID)
}

func TestSessionManager_ActiveSessionConveniences(t *testing.T) {
	ctx, sm := newManagers(t)
	_, err := sm.Initialize(ctx)
	require.NoError(t, err)

	first, err := sm.CreateTab(ctx, "https://one.example")
	require.NoError(t, err)
	second, err := sm.CreateTab(ctx, "https://two.example")
	require.NoError(t, err)

	ordered, err := sm.GetOrderedTabs(ctx)
	require.NoError(t, err)
	require.Len(t, ordered, 2)
	assert.Equal(t, first.ID, ordered[0].ID)
	assert.Equal(t, second.ID, ordered[1].ID)

	require.NoError(t, sm.CloseTab(ctx, first.ID))

	ordered, err = sm.GetOrderedTabs(ctx)
	require.NoError(t, err)
	require.Len(t, ordered, 1)
	assert.Equal(t, second.ID, ordered[0].ID)
}

func TestSessionManager_InitializeDemotesExtraActiveTabs(t *testing.T) {
	ctx := testCtx()
	dbPath := filepath.Join(t.TempDir(), "sable.db")

	db, err := sqlite.NewConnection(ctx, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	tabRepo := sqlite.NewTabRepository(db)
	sessionRepo := sqlite.NewSessionRepository(db)

	// Seed a session with two Active tabs, as a crash might leave behind.
	session := entity.DefaultSession()
	a, err := entity.NewTab(session.ID, "https://a.example")
	require.NoError(t, err)
	b, err := entity.NewTab(session.ID, "https://b.example")
	require.NoError(t, err)
	session.AddTab(a.ID)
	session.AddTab(b.ID)
	require.NoError(t, sessionRepo.Save(ctx, session))
	require.NoError(t, tabRepo.Save(ctx, a))
	require.NoError(t, tabRepo.Save(ctx, b))

	sm := manager.NewSessionManager(sessionRepo, manager.NewTabManager(tabRepo))
	_, err = sm.Initialize(ctx)
	require.NoError(t, err)

	ordered, err := sm.GetOrderedTabsForSession(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, ordered, 2)
	assert.Equal(t, entity.TabStateActive, ordered[0].State)
	assert.Equal(t, entity.TabStateBackground, ordered[1].State)
}

func TestTabManager_MutationsPersistAndClone(t *testing.T) {
	ctx := testCtx()
	dbPath := filepath.Join(t.TempDir(), "sable.db")

	db, err := sqlite.NewConnection(ctx, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	tabRepo := sqlite.NewTabRepository(db)
	session := entity.NewSession("Scratch")
	require.NoError(t, sqlite.NewSessionRepository(db).Save(ctx, session))

	tm := manager.NewTabManager(tabRepo)

	tab, err := tm.CreateTab(ctx, session.ID, "https://example.com")
	require.NoError(t, err)

	// Mutating the returned copy must not leak into the cache.
	tab.Title = "scribbled"
	cached, err := tm.GetTab(ctx, tab.ID)
	require.NoError(t, err)
	assert.Empty(t, cached.Title)

	_, err = tm.BlurTab(ctx, tab.ID)
	require.NoError(t, err)
	_, err = tm.FreezeTab(ctx, tab.ID)
	require.NoError(t, err)
	frozen, err := tm.GetTab(ctx, tab.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TabStateFrozen, frozen.State)

	// Reload from the store to prove write-through.
	fresh := manager.NewTabManager(tabRepo)
	loaded, err := fresh.LoadSessionTabs(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, entity.TabStateFrozen, loaded[0].State)
}

func TestTabManager_InvalidTransitionSurfaces(t *testing.T) {
	ctx, sm := newManagers(t)
	def, err := sm.Initialize(ctx)
	require.NoError(t, err)
	tm := sm.TabManager()

	tab, err := tm.CreateTab(ctx, def.ID, "https://example.com")
	require.NoError(t, err)

	_, err = tm.FreezeTab(ctx, "no-such-tab")
	assert.True(t, entity.IsNotFound(err))

	// Freeze from Active auto-blurs rather than failing.
	frozen, err := tm.FreezeTab(ctx, tab.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TabStateFrozen, frozen.State)
}

func TestHistoryManager_RecordAndSearch(t *testing.T) {
	ctx := testCtx()
	dbPath := filepath.Join(t.TempDir(), "sable.db")

	db, err := sqlite.NewConnection(ctx, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	hm := manager.NewHistoryManager(sqlite.NewHistoryRepository(db))

	require.NoError(t, hm.RecordVisit(ctx, "https://go.dev", "The Go Programming Language"))
	require.NoError(t, hm.RecordVisit(ctx, "https://go.dev", ""))
	require.NoError(t, hm.RecordVisit(ctx, "", "ignored"))

	results, err := hm.Search(ctx, "go.dev", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int64(2), results[0].VisitCount)
	assert.Equal(t, "The Go Programming Language", results[0].Title)

	require.NoError(t, hm.UpdateTitle(ctx, "https://go.dev", "Go"))
	recent, err := hm.GetRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "Go", recent[0].Title)

	require.NoError(t, hm.ClearRange(ctx, nil, nil))
	recent, err = hm.GetRecent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}
