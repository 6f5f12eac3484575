package configsdk

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// tokenStore holds the one token cached by a Client.
type tokenStore struct {
	clock  clock.Clock
	leeway time.Duration

	mu    sync.RWMutex
	token *AccessToken
}

func newTokenStore(clk clock.Clock, leeway time.Duration) *tokenStore {
	return &tokenStore{clock: clk, leeway: leeway}
}

// Current returns the cached token while it is valid. An expired token stays
// stored until replaced but is never returned.
func (s *tokenStore) Current() (AccessToken, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == nil || !s.token.Valid(s.clock.Now().Add(s.leeway)) {
		return AccessToken{}, false
	}
	return *s.token, true
}

// Set replaces the cached token unconditionally.
func (s *tokenStore) Set(t AccessToken) {
	s.mu.Lock()
	s.token = &t
	s.mu.Unlock()
}

// Clear drops the cached token.
func (s *tokenStore) Clear() {
	s.mu.Lock()
	s.token = nil
	s.mu.Unlock()
}
