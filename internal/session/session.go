// Package session tracks the logged-in veterinarian. The session is an
// explicit object handed to whoever needs it; there is no package-level
// current user.
package session

import (
	"sync"

	"github.com/ervinoantonio-ui/vetmaster/internal/clinic"
	"github.com/ervinoantonio-ui/vetmaster/internal/storage"
)

// Session holds the current user, backed by the store's user record.
type Session struct {
	store *storage.Store

	mu   sync.RWMutex
	user *clinic.User
}

// New creates a Session, reading any persisted user. A corrupt user
// payload degrades to logged out.
func New(store *storage.Store) (*Session, error) {
	u, err := store.User()
	if err != nil {
		if !storage.IsCorrupt(err) {
			return nil, err
		}
		u = nil
	}
	return &Session{store: store, user: u}, nil
}

// Current returns the logged-in user, or nil when logged out.
func (s *Session) Current() *clinic.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Login validates the draft, persists the user, and makes it current.
func (s *Session) Login(draft clinic.LoginDraft) (clinic.User, error) {
	u, err := draft.Build()
	if err != nil {
		return clinic.User{}, err
	}
	if err := s.store.SaveUser(&u); err != nil {
		return clinic.User{}, err
	}
	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
	return u, nil
}

// Logout clears the persisted user.
func (s *Session) Logout() error {
	if err := s.store.SaveUser(nil); err != nil {
		return err
	}
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	return nil
}
