// File: services/session/store.go
package session

import (
	"sync"

	"sherpa/models"
)

// Store owns per-user conversational sessions. Deliveries for the same user
// must be serialized: the provider may redeliver, and a user may double-tap
// a button, so Do gives the caller exclusive access to one user's session
// for the whole read-dispatch-send cycle. Different users never contend.
type Store interface {
	GetOrCreate(userID string) models.Session
	Update(userID string, mutate func(*models.Session)) models.Session
	Clear(userID string)
	Do(userID string, fn func(*models.Session))
}

type memoryStore struct {
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	mu      sync.Mutex
	session models.Session
}

// NewMemoryStore returns an in-memory Store.
func NewMemoryStore() Store {
	return &memoryStore{entries: make(map[string]*entry)}
}

// lookup returns the entry for userID, creating a fresh IDLE session if absent.
func (s *memoryStore) lookup(userID string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[userID]
	if !ok {
		e = &entry{session: models.Session{UserID: userID, Step: models.StepIdle}}
		s.entries[userID] = e
	}
	return e
}

// GetOrCreate returns a snapshot of the user's session, creating it at IDLE
// if this is the first event from the user.
func (s *memoryStore) GetOrCreate(userID string) models.Session {
	e := s.lookup(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// Update applies a mutation atomically with respect to other updates for the
// same user, and returns the resulting snapshot.
func (s *memoryStore) Update(userID string, mutate func(*models.Session)) models.Session {
	e := s.lookup(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	mutate(&e.session)
	return e.session
}

// Clear resets the user's session to a fresh IDLE state.
func (s *memoryStore) Clear(userID string) {
	e := s.lookup(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.Reset()
}

// Do runs fn while holding the user's lock. Collaborator calls made inside
// fn block only events for this user; unrelated users proceed in parallel.
func (s *memoryStore) Do(userID string, fn func(*models.Session)) {
	e := s.lookup(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.session)
}
