package cart

import (
	"context"
	"sync"
	"time"

	"github.com/Jeda-Ngoding/pos-mvp/internal/domain"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// session pairs one live cart with its own lock. Concurrent requests bearing
// the same session id serialize on the entry lock; lastSeen is guarded by
// the store lock so the sweeper never has to touch the cart itself.
type session struct {
	mu       sync.Mutex
	cart     *domain.Cart
	lastSeen time.Time
}

// Store keeps the live carts of open POS sessions, keyed by session id.
// Carts are memory-only: an expired or abandoned session simply loses its
// cart. All cart access goes through Update or Get, which hold the session's
// entry lock, so domain.Cart stays lock-free.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*session),
		ttl:      ttl,
	}
}

// getOrCreate returns the session entry and refreshes lastSeen. An empty
// sessionID gets a fresh uuid. Callers must take the entry lock before
// touching the cart.
func (s *Store) getOrCreate(sessionID string) (string, *session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	e, ok := s.sessions[sessionID]
	if !ok {
		e = &session{cart: domain.NewCart()}
		s.sessions[sessionID] = e
	}
	e.lastSeen = time.Now()
	return sessionID, e
}

// Update runs fn against the session's cart while holding the session lock,
// creating an empty cart on first use. An empty sessionID gets a fresh uuid
// so the caller can hand it back to the client. Returns the (possibly new)
// session id and whatever fn returned.
func (s *Store) Update(sessionID string, fn func(*domain.Cart) error) (string, error) {
	id, e := s.getOrCreate(sessionID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return id, fn(e.cart)
}

// Get returns a point-in-time copy of the session's cart, or nil if the
// session is unknown. The copy is safe to read after concurrent mutation.
func (s *Store) Get(sessionID string) *domain.Cart {
	s.mu.Lock()
	e, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	snap := *e.cart
	snap.Lines = append([]domain.CartLine(nil), e.cart.Lines...)
	return &snap
}

// Delete drops the session's cart.
func (s *Store) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Len reports how many session carts are live.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Run sweeps idle sessions on a ticker until ctx is done. A session
// untouched for longer than the store TTL counts as abandoned.
func (s *Store) Run(ctx context.Context, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-ctx.Done():
			return
		}
	}
}

func (s *Store) sweep() {
	cutoff := time.Now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			log.WithFields(log.Fields{
				"session_id": id,
				"idle_for":   time.Since(e.lastSeen).String(),
			}).Info("swept idle cart session")
		}
	}
}
