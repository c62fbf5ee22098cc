package session

import (
	"errors"
	"sync"
	"time"

	"github.com/foomo/devguide/router"
	"github.com/google/uuid"
)

// CookieName is the cookie carrying the session id.
const CookieName = "devguide_session"

var ErrSessionNotFound = errors.New("session not found")

// Session holds the language selection of one visitor.
type Session struct {
	ID         string
	Selection  router.Selection
	CreatedAt  time.Time
	LastAccess time.Time
}

// Store is an in-memory session store with capacity and TTL limits.
type Store struct {
	mu          sync.RWMutex
	router      *router.Router
	sessions    map[string]*Session
	maxSessions int
	ttl         time.Duration
	now         func() time.Time
}

func NewStore(r *router.Router, maxSessions int, ttl time.Duration) *Store {
	return &Store{
		router:      r,
		sessions:    make(map[string]*Session),
		maxSessions: maxSessions,
		ttl:         ttl,
		now:         time.Now,
	}
}

// Create starts a session with nothing selected. The oldest session is
// evicted when the store is full.
func (s *Store) Create() Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxSessions > 0 && len(s.sessions) >= s.maxSessions {
		var oldestID string
		var oldestTime time.Time
		for id, sess := range s.sessions {
			if oldestTime.IsZero() || sess.LastAccess.Before(oldestTime) {
				oldestID = id
				oldestTime = sess.LastAccess
			}
		}
		delete(s.sessions, oldestID)
	}

	now := s.now()
	sess := &Session{
		ID:         uuid.New().String(),
		CreatedAt:  now,
		LastAccess: now,
	}
	s.sessions[sess.ID] = sess
	return *sess
}

// Get returns a copy of the session and refreshes its access time.
func (s *Store) Get(id string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, false
	}
	sess.LastAccess = s.now()
	return *sess, true
}

// Select validates code and stores it as the session's selection. An invalid
// code leaves the previous selection untouched.
func (s *Store) Select(id string, code router.LanguageCode) (router.PageSet, error) {
	pages, err := s.router.SelectLanguage(code)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.Selection = router.Selected(code)
	sess.LastAccess = s.now()
	return pages, nil
}

// Current returns the page set of the session's selection.
func (s *Store) Current(id string) (router.PageSet, error) {
	sess, ok := s.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s.router.CurrentPageSet(sess.Selection)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Cleanup removes sessions idle for longer than the TTL
func (s *Store) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	cutoff := s.now().Add(-s.ttl)
	for id, sess := range s.sessions {
		if sess.LastAccess.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// StartCleanup starts a background cleanup goroutine and returns a stop function
func (s *Store) StartCleanup(interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				s.Cleanup()
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}
