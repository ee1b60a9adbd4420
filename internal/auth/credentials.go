package auth

import "sync"

// CredentialStore holds the client-level access token pair. The token and
// its secret form one unit: Set writes both under a single lock and Clear
// zeroes both, so a live token with an empty secret is never observable.
type CredentialStore struct {
	mu     sync.RWMutex
	token  string
	secret string
}

// NewCredentialStore creates an empty store.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{}
}

// Get returns the pair. ok is false until both halves are present.
func (s *CredentialStore) Get() (string, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token, s.secret, s.token != "" && s.secret != ""
}

// Set replaces the pair.
func (s *CredentialStore) Set(token, secret string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.secret = secret
}

// Clear removes both halves of the pair.
func (s *CredentialStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.secret = ""
}

// Present reports whether a complete pair is stored.
func (s *CredentialStore) Present() bool {
	_, _, ok := s.Get()

	return ok
}

// AppTokenStore holds the application-only bearer token.
type AppTokenStore struct {
	mu    sync.RWMutex
	token string
}

// NewAppTokenStore creates an empty store.
func NewAppTokenStore() *AppTokenStore {
	return &AppTokenStore{}
}

// Get returns the stored token, or "".
func (s *AppTokenStore) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}

// Set replaces the stored token.
func (s *AppTokenStore) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
}

// Clear removes the stored token.
func (s *AppTokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
}

// Present reports whether a token is stored.
func (s *AppTokenStore) Present() bool {
	return s.Get() != ""
}
