package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/courtdesk/causelist/internal/controller"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

const sessionCookie = "causelist_session"

// Sessions keeps one form controller per browser session. Every request
// restarts the session's TTL and cookie lifetime, so only idle sessions
// expire. The least recently used one is dropped when the store is full.
type Sessions struct {
	mu      sync.Mutex
	byID    *lru.LRU[string, *controller.Controller]
	ttl     time.Duration
	factory func() *controller.Controller
}

// NewSessions creates a session store. factory builds the controller of a
// new session.
func NewSessions(size int, ttl time.Duration, factory func() *controller.Controller) *Sessions {
	if size <= 0 {
		size = 1000
	}
	return &Sessions{
		byID:    lru.NewLRU[string, *controller.Controller](size, nil, ttl),
		ttl:     ttl,
		factory: factory,
	}
}

// Get returns the controller of the request's session. A missing, unknown or
// expired session gets a fresh controller and a new cookie; created is true
// in that case.
func (s *Sessions) Get(w http.ResponseWriter, r *http.Request) (ctrl *controller.Controller, created bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if ctrl, ok := s.byID.Get(cookie.Value); ok {
			// Re-adding restarts the entry's TTL.
			s.byID.Add(cookie.Value, ctrl)
			s.setCookie(w, cookie.Value)
			return ctrl, false
		}
	}

	id := uuid.NewString()
	ctrl = s.factory()
	s.byID.Add(id, ctrl)
	s.setCookie(w, id)
	return ctrl, true
}

func (s *Sessions) setCookie(w http.ResponseWriter, id string) {
	cookie := &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if s.ttl > 0 {
		cookie.MaxAge = int(s.ttl.Seconds())
	}
	http.SetCookie(w, cookie)
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	return s.byID.Len()
}
