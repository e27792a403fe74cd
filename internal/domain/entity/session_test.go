package entity_test

import (
	"testing"

	"github.com/sablebrowser/sable/internal/domain/entity"
	"github.com/stretchr/testify/assert"
)

func TestNewSession(t *testing.T) {
	s := entity.NewSession("Work")
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "Work", s.Name)
	assert.False(t, s.IsActive)
	assert.Empty(t, s.TabOrder)
}

func TestDefaultSession(t *testing.T) {
	s := entity.DefaultSession()
	assert.Equal(t, entity.DefaultSessionName, s.Name)
	assert.True(t, s.IsActive)
}

func TestSession_AddTabDeduplicates(t *testing.T) {
	s := entity.NewSession("Test")

	s.AddTab("x")
	s.AddTab("x")
	assert.Equal(t, []string{"x"}, s.TabOrder)

	s.AddTab("y")
	assert.Equal(t, []string{"x", "y"}, s.TabOrder)
	assert.Equal(t, 2, s.TabCount())
}

func TestSession_RemoveTab(t *testing.T) {
	s := entity.NewSession("Test")
	s.AddTab("a")
	s.AddTab("b")
	s.AddTab("c")

	s.RemoveTab("b")
	assert.Equal(t, []string{"a", "c"}, s.TabOrder)

	// Removing an unknown id leaves the order intact.
	s.RemoveTab("zzz")
	assert.Equal(t, []string{"a", "c"}, s.TabOrder)
}

func TestSession_MoveTab(t *testing.T) {
	s := entity.NewSession("Test")
	s.AddTab("a")
	s.AddTab("b")
	s.AddTab("c")

	s.MoveTab("c", 0)
	assert.Equal(t, []string{"c", "a", "b"}, s.TabOrder)

	// Out-of-range index clamps to the end.
	s.MoveTab("c", 99)
	assert.Equal(t, []string{"a", "b", "c"}, s.TabOrder)

	// Unknown id is a no-op.
	s.MoveTab("zzz", 0)
	assert.Equal(t, []string{"a", "b", "c"}, s.TabOrder)
}

func TestSession_MoveTabClampedInsert(t *testing.T) {
	s := entity.NewSession("Test")
	s.AddTab("a")
	s.AddTab("b")
	s.AddTab("c")

	s.MoveTab("a", 99)
	assert.Equal(t, []string{"b", "c", "a"}, s.TabOrder)
}

func TestSession_Rename(t *testing.T) {
	s := entity.NewSession("Old")
	before := s.UpdatedAt
	s.Rename("New")
	assert.Equal(t, "New", s.Name)
	assert.False(t, s.UpdatedAt.Before(before))
}

func TestSession_Clone(t *testing.T) {
	s := entity.NewSession("Test")
	s.AddTab("a")

	c := s.Clone()
	c.AddTab("b")
	assert.Equal(t, []string{"a"}, s.TabOrder)
	assert.Equal(t, []string{"a", "b"}, c.TabOrder)
}
