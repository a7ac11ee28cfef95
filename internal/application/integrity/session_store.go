package integrity

import "sync"

// Session id markers that must never be reported for accounting.
var nonAccountableSessions = map[string]struct{}{
	"":             {},
	"not_required": {},
	"not_set":      {},
}

// AccountableSessionStore accumulates the session ids of validation calls
// performed during a request so they can be reported in one accounting batch
// afterwards. It is injected, never ambient state.
type AccountableSessionStore interface {
	// Add records session ids, ignoring duplicates and non-accountable markers
	Add(sessionIDs ...string)

	// Drain returns all recorded ids and clears the store
	Drain() []string

	// Clear discards all recorded ids
	Clear()
}

// InMemorySessionStore implements AccountableSessionStore with a mutex-guarded
// slice, preserving insertion order.
type InMemorySessionStore struct {
	mu   sync.Mutex
	ids  []string
	seen map[string]struct{}
}

// NewInMemorySessionStore creates an empty session store.
func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{
		seen: make(map[string]struct{}),
	}
}

// Add records session ids, ignoring duplicates and non-accountable markers
func (s *InMemorySessionStore) Add(sessionIDs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range sessionIDs {
		if _, skip := nonAccountableSessions[id]; skip {
			continue
		}
		if _, dup := s.seen[id]; dup {
			continue
		}
		s.seen[id] = struct{}{}
		s.ids = append(s.ids, id)
	}
}

// Drain returns all recorded ids and clears the store
func (s *InMemorySessionStore) Drain() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.ids
	s.ids = nil
	s.seen = make(map[string]struct{})
	return ids
}

// Clear discards all recorded ids
func (s *InMemorySessionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ids = nil
	s.seen = make(map[string]struct{})
}

// Ensure InMemorySessionStore implements AccountableSessionStore
var _ AccountableSessionStore = (*InMemorySessionStore)(nil)
