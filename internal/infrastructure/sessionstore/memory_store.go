package sessionstore

import (
	"context"
	"sync"
	"time"

	"github.com/pawnfin/console/internal/domain/session"
)

type memoryEntry struct {
	state     session.State
	expiresAt time.Time
}

// MemoryStore keeps sessions in a map. Sessions do not survive a restart and
// are not shared between instances.
type MemoryStore struct {
	mu        sync.RWMutex
	entries   map[string]memoryEntry
	ttl       time.Duration
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewMemoryStore starts a store whose janitor drops idle sessions every period.
func NewMemoryStore(ttl, period time.Duration) *MemoryStore {
	s := &MemoryStore{
		entries:  make(map[string]memoryEntry),
		ttl:      ttl,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	if period <= 0 {
		period = time.Minute
	}
	s.wg.Add(1)
	go s.janitor(period)
	return s
}

func (s *MemoryStore) expired(e memoryEntry, now time.Time) bool {
	return s.ttl > 0 && now.After(e.expiresAt)
}

// Load returns the state of id and extends its idle expiry.
func (s *MemoryStore) Load(_ context.Context, id string) (session.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.entries[id]
	if !ok || s.expired(e, now) {
		delete(s.entries, id)
		return session.State{}, session.ErrNotFound
	}
	e.expiresAt = now.Add(s.ttl)
	s.entries[id] = e
	return e.state, nil
}

// Save replaces the state of id. An empty state deletes it.
func (s *MemoryStore) Save(_ context.Context, id string, state session.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state == (session.State{}) {
		delete(s.entries, id)
		return nil
	}
	s.entries[id] = memoryEntry{state: state, expiresAt: s.now().Add(s.ttl)}
	return nil
}

// Delete removes the session
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

// Ping always succeeds
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// Close stops the janitor. Safe to call more than once.
func (s *MemoryStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// Size returns the number of stored sessions
func (s *MemoryStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MemoryStore) janitor(period time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *MemoryStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, e := range s.entries {
		if s.expired(e, now) {
			delete(s.entries, id)
		}
	}
}

var _ session.Store = (*MemoryStore)(nil)
