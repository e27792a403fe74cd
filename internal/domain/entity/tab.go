package entity

import (
	"time"

	"github.com/google/uuid"
)

// AboutBlankURL is the placeholder URL for blank pages.
const AboutBlankURL = "about:blank"

// Tab is a single browsing unit owned by a session.
// Tabs are mutated only through their owning TabManager.
type Tab struct {
	ID             string
	SessionID      string
	URL            string
	Title          string
	FaviconURL     string // empty when no favicon is known
	State          TabState
	ScrollPosition int
	CreatedAt      time.Time
	UpdatedAt      time.Time
	LastAccessedAt time.Time
	SnapshotPath   string // set for discarded tabs with a stored snapshot
}

// NewTab creates a tab in the Active state.
func NewTab(sessionID, url string) (*Tab, error) {
	if url == "" {
		return nil, &InvalidURLError{Reason: "URL cannot be empty"}
	}

	now := time.Now().UTC()
	return &Tab{
		ID:             uuid.NewString(),
		SessionID:      sessionID,
		URL:            url,
		State:          TabStateActive,
		CreatedAt:      now,
		UpdatedAt:      now,
		LastAccessedAt: now,
	}, nil
}

// TransitionTo applies a single state-machine edge.
// Entering Active refreshes LastAccessedAt.
func (t *Tab) TransitionTo(target TabState) error {
	if !t.State.CanTransitionTo(target) {
		return &InvalidTransitionError{From: t.State, To: target}
	}

	t.State = target
	t.UpdatedAt = time.Now().UTC()
	if target == TabStateActive {
		t.LastAccessedAt = t.UpdatedAt
	}
	return nil
}

// Activate marks the tab as focused. Legal from every state.
func (t *Tab) Activate() error {
	return t.TransitionTo(TabStateActive)
}

// Blur moves an Active tab to Background; a no-op otherwise.
func (t *Tab) Blur() error {
	if t.State != TabStateActive {
		return nil
	}
	return t.TransitionTo(TabStateBackground)
}

// Freeze suspends the tab, blurring first if needed.
// A no-op when already Frozen or Discarded.
func (t *Tab) Freeze() error {
	switch t.State {
	case TabStateBackground:
		return t.TransitionTo(TabStateFrozen)
	case TabStateActive:
		if err := t.Blur(); err != nil {
			return err
		}
		return t.TransitionTo(TabStateFrozen)
	default:
		return nil
	}
}

// Discard unloads the tab, freezing first if needed. A no-op when already Discarded.
func (t *Tab) Discard() error {
	switch t.State {
	case TabStateFrozen:
		return t.TransitionTo(TabStateDiscarded)
	case TabStateDiscarded:
		return nil
	default:
		if err := t.Freeze(); err != nil {
			return err
		}
		return t.TransitionTo(TabStateDiscarded)
	}
}

// Navigate points the tab at a new URL. Title and scroll position are
// reset until the page reports them again.
func (t *Tab) Navigate(url string) error {
	if url == "" {
		return &InvalidURLError{Reason: "URL cannot be empty"}
	}

	t.URL = url
	t.Title = ""
	t.ScrollPosition = 0
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// SetTitle updates the page title.
func (t *Tab) SetTitle(title string) {
	t.Title = title
	t.UpdatedAt = time.Now().UTC()
}

// SetFavicon updates the favicon URL; empty clears it.
func (t *Tab) SetFavicon(faviconURL string) {
	t.FaviconURL = faviconURL
	t.UpdatedAt = time.Now().UTC()
}

// DisplayTitle returns the title, falling back to the URL.
func (t *Tab) DisplayTitle() string {
	if t.Title == "" {
		return t.URL
	}
	return t.Title
}

// IsLoading reports whether the tab is active with no title yet.
func (t *Tab) IsLoading() bool {
	return t.State == TabStateActive && t.Title == ""
}

// Clone returns a copy of the tab, safe to hand outside the owning manager.
func (t *Tab) Clone() *Tab {
	c := *t
	return &c
}
