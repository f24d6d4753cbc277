package client

import (
	"context"
	"errors"
	"sync"
)

const loginFailedMessage = "Login failed. Please check your credentials."

// Session is the signed-in state of the client: token and user, mirrored
// to a Store.  Login and Logout are its only transitions.
type Session struct {
	api   *API
	store Store

	mu      sync.RWMutex
	token   string
	user    *User
	loading bool
	err     string
}

func NewSession(api *API, store Store) *Session {
	if store == nil {
		store = &MemoryStore{}
	}
	return &Session{api: api, store: store}
}

// Load restores a saved session and arms the API with its token.
func (s *Session) Load() error {
	ss, err := s.store.Load()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.token, s.user = ss.Token, ss.User
	s.mu.Unlock()
	s.api.SetToken(ss.Token)
	return nil
}

// Login runs the password grant.  On success the token and user are kept,
// saved and attached to later API calls.  On failure Error explains why and
// the previous state is left as it was.
func (s *Session) Login(ctx context.Context, username, password string) bool {
	s.mu.Lock()
	s.loading, s.err = true, ""
	s.mu.Unlock()

	res, err := s.api.IssueToken(ctx, username, password)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.err = loginErrorMessage(err)
		return false
	}

	user := res.User
	s.token, s.user = res.AccessToken, &user
	s.api.SetToken(res.AccessToken)
	if err := s.store.Save(SavedSession{Token: s.token, User: s.user}); err != nil {
		s.err = err.Error()
	}
	return true
}

func loginErrorMessage(err error) string {
	var ae *APIError
	if errors.As(err, &ae) && ae.Description != "" {
		return ae.Description
	}
	return loginFailedMessage
}

// Logout revokes the token on the server when possible, then clears memory,
// storage and the API token.  A failed revocation does not keep the user
// signed in; it is returned for reporting only.
func (s *Session) Logout(ctx context.Context) error {
	var revokeErr error
	if s.IsAuthenticated() {
		revokeErr = s.api.Logout(ctx)
	}

	s.mu.Lock()
	s.token, s.user, s.err = "", nil, ""
	s.mu.Unlock()
	s.api.SetToken("")

	if err := s.store.Clear(); err != nil {
		return err
	}
	return revokeErr
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the signed-in user, or nil.
func (s *Session) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Error is the message of the last failed login, or "".
func (s *Session) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}
