package browser

import (
	"sync"
	"time"
)

// maxClosedTabs bounds the undo stack; the oldest record is evicted when
// a close would exceed it.
const maxClosedTabs = 20

// ClosedTabRecord captures what is needed to reopen a closed tab. It is
// deliberately smaller than a Tab: state, scroll position and snapshot
// do not survive closing.
type ClosedTabRecord struct {
	SessionID  string
	URL        string
	Title      string
	FaviconURL string
	Index      int
	ClosedAt   time.Time
}

// closedStack is an in-memory bounded stack of recently closed tabs.
// It is volatile: records do not outlive the process.
type closedStack struct {
	mu      sync.Mutex
	records []ClosedTabRecord
}

func newClosedStack() *closedStack {
	return &closedStack{records: make([]ClosedTabRecord, 0, maxClosedTabs)}
}

// push appends a record, evicting the oldest when full.
func (s *closedStack) push(rec ClosedTabRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.records) >= maxClosedTabs {
		s.records = append(s.records[:0], s.records[1:]...)
	}
	s.records = append(s.records, rec)
}

// popForSession removes and returns the most recently closed record
// belonging to the session, false when none exists.
func (s *closedStack) popForSession(sessionID string) (ClosedTabRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].SessionID != sessionID {
			continue
		}
		rec := s.records[i]
		s.records = append(s.records[:i], s.records[i+1:]...)
		return rec, true
	}
	return ClosedTabRecord{}, false
}

// dropSession discards every record for a session, used when the session
// itself is deleted.
func (s *closedStack) dropSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	for _, rec := range s.records {
		if rec.SessionID != sessionID {
			kept = append(kept, rec)
		}
	}
	s.records = kept
}

func (s *closedStack) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
