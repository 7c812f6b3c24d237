// Package services holds the client-side application services: the login
// state machine, the per-document sync engine and account security
// operations.
package services

import (
	"sync"

	"github.com/dmitrijs2005/vaultify/internal/cryptox"
)

const (
	TierFree    = "free"
	TierPremium = "premium"
)

// Session is an authenticated login: the bearer token, its privilege tier
// and the vault key derived for it. The token may be replaced during the
// session (premium upgrade), the key may not.
type Session struct {
	Email string
	Key   *cryptox.VaultKey

	mu      sync.RWMutex
	token   string
	premium bool
}

func NewSession(email, token string, premium bool, key *cryptox.VaultKey) *Session {
	return &Session{Email: email, Key: key, token: token, premium: premium}
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) Premium() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.premium
}

func (s *Session) Tier() string {
	if s.Premium() {
		return TierPremium
	}
	return TierFree
}

// Refresh swaps in a token issued for the same account.
func (s *Session) Refresh(token string, premium bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.premium = premium
}

// End destroys the vault key and forgets the token.
func (s *Session) End() {
	s.mu.Lock()
	s.token = ""
	s.premium = false
	s.mu.Unlock()
	s.Key.Destroy()
}
