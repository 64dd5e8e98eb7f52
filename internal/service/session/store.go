package session

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// entry pairs a Session with the lock serializing its callers.
type entry struct {
	mu      sync.Mutex
	session *Session
}

// Store hands out Sessions by id and serializes access to each of them. Idle
// sessions expire after the configured TTL.
type Store struct {
	sessions *cache.Cache
	factory  func() *Session
	mu       sync.Mutex
}

// NewStore creates a Store whose sessions are built by factory.
func NewStore(ttl time.Duration, factory func() *Session) *Store {
	return &Store{
		sessions: cache.New(ttl, 2*ttl),
		factory:  factory,
	}
}

// Do runs fn with exclusive access to the session named id, creating it when
// absent, and renews the session's expiration.
func (s *Store) Do(id string, fn func(*Session)) {
	e := s.get(id)

	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.session)
}

func (s *Store) get(id string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.sessions.Get(id); ok {
		e := v.(*entry)
		s.sessions.SetDefault(id, e)
		return e
	}

	e := &entry{session: s.factory()}
	s.sessions.SetDefault(id, e)
	return e
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	return s.sessions.ItemCount()
}
