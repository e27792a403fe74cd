package entity

import (
	"fmt"
	"strings"
)

// TabState is the lifecycle state of a tab.
//
// The legal edges form a chain with restore shortcuts:
//
//	Active -> Background -> Frozen -> Discarded
//	Background/Frozen/Discarded -> Active
type TabState string

const (
	// TabStateActive is a tab that is currently visible and focused.
	TabStateActive TabState = "active"
	// TabStateBackground is a loaded but not visible tab.
	TabStateBackground TabState = "background"
	// TabStateFrozen is a suspended tab; script execution is stopped.
	TabStateFrozen TabState = "frozen"
	// TabStateDiscarded is an unloaded tab; only URL and snapshot remain.
	TabStateDiscarded TabState = "discarded"
)

// CanTransitionTo reports whether the edge from s to target is legal.
// A transition to the same state is always a no-op and allowed.
func (s TabState) CanTransitionTo(target TabState) bool {
	if s == target {
		return true
	}
	switch s {
	case TabStateActive:
		return target == TabStateBackground
	case TabStateBackground:
		return target == TabStateActive || target == TabStateFrozen
	case TabStateFrozen:
		return target == TabStateActive || target == TabStateDiscarded
	case TabStateDiscarded:
		return target == TabStateActive
	default:
		return false
	}
}

// ShouldFreezeJS reports whether script execution must be stopped in this state.
func (s TabState) ShouldFreezeJS() bool {
	return s == TabStateFrozen || s == TabStateDiscarded
}

// IsDiscarded reports whether the tab content is fully unloaded.
func (s TabState) IsDiscarded() bool {
	return s == TabStateDiscarded
}

func (s TabState) String() string {
	return string(s)
}

// ParseTabState parses a stored state string.
func ParseTabState(s string) (TabState, error) {
	switch TabState(strings.ToLower(s)) {
	case TabStateActive:
		return TabStateActive, nil
	case TabStateBackground:
		return TabStateBackground, nil
	case TabStateFrozen:
		return TabStateFrozen, nil
	case TabStateDiscarded:
		return TabStateDiscarded, nil
	default:
		return "", fmt.Errorf("unknown tab state: %q", s)
	}
}
