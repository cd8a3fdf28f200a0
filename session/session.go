// Package session holds the process-wide record of the currently
// authenticated identity. The auth package is its only writer, every flow
// only reads it.
package session

import (
	"sync"

	"github.com/catchuapp/catchu/model"
)

type Session struct {
	mu   sync.RWMutex
	user *model.Identity
}

func New() *Session {
	return &Session{}
}

// CurrentUser returns a copy of the signed-in identity, or nil when
// unauthenticated. Synchronous, no network call.
func (s *Session) CurrentUser() *model.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return nil
	}
	user := *s.user
	return &user
}

// Set is invoked by the auth package on sign-in. Flows must never call it.
func (s *Session) Set(user model.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &user
}

// Clear is invoked by the auth package on sign-out.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
}
