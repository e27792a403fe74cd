package entity_test

import (
	"errors"
	"testing"

	"github.com/sablebrowser/sable/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTab(t *testing.T) {
	tab, err := entity.NewTab("session-1", "https://example.com")
	require.NoError(t, err)

	assert.NotEmpty(t, tab.ID)
	assert.Equal(t, "session-1", tab.SessionID)
	assert.Equal(t, "https://example.com", tab.URL)
	assert.Equal(t, entity.TabStateActive, tab.State)
	assert.Empty(t, tab.Title)
	assert.Zero(t, tab.ScrollPosition)
	assert.True(t, tab.UpdatedAt.Equal(tab.CreatedAt))
}

func TestNewTab_EmptyURL(t *testing.T) {
	_, err := entity.NewTab("session-1", "")
	require.Error(t, err)

	var invalidURL *entity.InvalidURLError
	assert.True(t, errors.As(err, &invalidURL))
}

func TestTab_TransitionChain(t *testing.T) {
	tab, err := entity.NewTab("session-1", "https://example.com")
	require.NoError(t, err)

	require.NoError(t, tab.Blur())
	assert.Equal(t, entity.TabStateBackground, tab.State)

	require.NoError(t, tab.Freeze())
	assert.Equal(t, entity.TabStateFrozen, tab.State)

	require.NoError(t, tab.Discard())
	assert.Equal(t, entity.TabStateDiscarded, tab.State)

	// Restore from discarded.
	require.NoError(t, tab.Activate())
	assert.Equal(t, entity.TabStateActive, tab.State)
}

func TestTab_DirectActiveToFrozenRejected(t *testing.T) {
	tab, err := entity.NewTab("session-1", "https://example.com")
	require.NoError(t, err)

	err = tab.TransitionTo(entity.TabStateFrozen)
	require.Error(t, err)

	var invalid *entity.InvalidTransitionError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, entity.TabStateActive, invalid.From)
	assert.Equal(t, entity.TabStateFrozen, invalid.To)
	assert.Equal(t, entity.TabStateActive, tab.State)
}

func TestTab_FreezeFromActiveAutoBlurs(t *testing.T) {
	tab, err := entity.NewTab("session-1", "https://example.com")
	require.NoError(t, err)

	require.NoError(t, tab.Freeze())
	assert.Equal(t, entity.TabStateFrozen, tab.State)
}

func TestTab_DiscardFromActiveChains(t *testing.T) {
	tab, err := entity.NewTab("session-1", "https://example.com")
	require.NoError(t, err)

	require.NoError(t, tab.Discard())
	assert.Equal(t, entity.TabStateDiscarded, tab.State)

	// Discarding again is a no-op.
	require.NoError(t, tab.Discard())
	assert.Equal(t, entity.TabStateDiscarded, tab.State)
}

func TestTab_BlurNonActiveIsNoop(t *testing.T) {
	tab, err := entity.NewTab("session-1", "https://example.com")
	require.NoError(t, err)
	require.NoError(t, tab.Discard())

	require.NoError(t, tab.Blur())
	assert.Equal(t, entity.TabStateDiscarded, tab.State)
}

func TestTab_Navigate(t *testing.T) {
	tab, err := entity.NewTab("session-1", "https://example.com")
	require.NoError(t, err)
	tab.SetTitle("Example")
	tab.ScrollPosition = 420

	before := tab.UpdatedAt
	require.NoError(t, tab.Navigate("https://example.org/page"))

	assert.Equal(t, "https://example.org/page", tab.URL)
	assert.Empty(t, tab.Title)
	assert.Zero(t, tab.ScrollPosition)
	assert.False(t, tab.UpdatedAt.Before(before))

	require.Error(t, tab.Navigate(""))
}

func TestTab_DisplayTitle(t *testing.T) {
	tab, err := entity.NewTab("session-1", "https://example.com")
	require.NoError(t, err)

	assert.Equal(t, "https://example.com", tab.DisplayTitle())
	assert.True(t, tab.IsLoading())

	tab.SetTitle("Example Domain")
	assert.Equal(t, "Example Domain", tab.DisplayTitle())
	assert.False(t, tab.IsLoading())
}

func TestTab_ActivateRefreshesLastAccessed(t *testing.T) {
	tab, err := entity.NewTab("session-1", "https://example.com")
	require.NoError(t, err)
	require.NoError(t, tab.Blur())

	accessed := tab.LastAccessedAt
	require.NoError(t, tab.Activate())
	assert.False(t, tab.LastAccessedAt.Before(accessed))
}
