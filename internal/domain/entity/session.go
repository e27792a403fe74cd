package entity

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionName is the name given to the session synthesized on an
// empty store.
const DefaultSessionName = "Default"

// Session is a named, ordered container of tab ids.
// TabOrder holds display order for the tab strip; every entry is unique.
type Session struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	IsActive  bool
	TabOrder  []string
}

// NewSession creates an inactive session with an empty tab order.
func NewSession(name string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		TabOrder:  []string{},
	}
}

// DefaultSession creates the session used to bootstrap an empty store.
func DefaultSession() *Session {
	s := NewSession(DefaultSessionName)
	s.IsActive = true
	return s
}

// AddTab appends a tab id to the order. Adding an id that is already
// present is a no-op.
func (s *Session) AddTab(tabID string) {
	if slices.Contains(s.TabOrder, tabID) {
		return
	}
	s.TabOrder = append(s.TabOrder, tabID)
	s.UpdatedAt = time.Now().UTC()
}

// RemoveTab drops a tab id from the order.
func (s *Session) RemoveTab(tabID string) {
	s.TabOrder = slices.DeleteFunc(s.TabOrder, func(id string) bool { return id == tabID })
	s.UpdatedAt = time.Now().UTC()
}

// MoveTab reinserts a tab id at newIndex, clamped to the list length.
// A no-op when the id is not present.
func (s *Session) MoveTab(tabID string, newIndex int) {
	current := slices.Index(s.TabOrder, tabID)
	if current < 0 {
		return
	}

	s.TabOrder = slices.Delete(s.TabOrder, current, current+1)
	if newIndex > len(s.TabOrder) {
		newIndex = len(s.TabOrder)
	}
	if newIndex < 0 {
		newIndex = 0
	}
	s.TabOrder = slices.Insert(s.TabOrder, newIndex, tabID)
	s.UpdatedAt = time.Now().UTC()
}

// Rename sets the session name.
func (s *Session) Rename(name string) {
	s.Name = name
	s.UpdatedAt = time.Now().UTC()
}

// TabCount returns the number of tabs in the order list.
func (s *Session) TabCount() int {
	return len(s.TabOrder)
}

// TabIndex returns the position of a tab id in the order, or -1.
func (s *Session) TabIndex(tabID string) int {
	return slices.Index(s.TabOrder, tabID)
}

// Clone returns a copy of the session with its own tab-order slice.
func (s *Session) Clone() *Session {
	c := *s
	c.TabOrder = slices.Clone(s.TabOrder)
	return &c
}
