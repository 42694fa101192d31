// Package auth holds EVE SSO token handling: the token value, JWT claim
// parsing and token managers that hand a bearer credential to callers.
package auth

import (
	"context"
	"sync"
	"time"

	"github.com/fivetwenty-io/esi-client/internal/constants"
)

// Token is an SSO access token as returned by the token endpoint.
type Token struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresIn    int       `json:"expires_in,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
}

// Valid reports whether the token is usable for at least the expiration buffer.
// A token without an expiry is treated as valid.
func (t *Token) Valid() bool {
	if t == nil || t.AccessToken == "" {
		return false
	}

	if t.ExpiresAt.IsZero() {
		return true
	}

	return time.Now().Add(constants.TokenExpirationBuffer).Before(t.ExpiresAt)
}

// TokenManager supplies bearer tokens to the request agent's callers.
type TokenManager interface {
	GetToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) error
	SetToken(token string, expiresAt time.Time)
}

// TokenStore is a concurrency-safe holder for the current token.
type TokenStore struct {
	mu    sync.RWMutex
	token *Token
}

// NewTokenStore creates an empty store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Get returns the current token or nil.
func (s *TokenStore) Get() *Token {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}

// Set replaces the current token.
func (s *TokenStore) Set(token *Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
}

// Clear removes the current token.
func (s *TokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = nil
}

// StaticTokenManager always returns the same token and never refreshes.
type StaticTokenManager struct {
	store *TokenStore
}

// NewStaticTokenManager wraps a fixed access token.
func NewStaticTokenManager(token string, expiresAt time.Time) *StaticTokenManager {
	manager := &StaticTokenManager{store: NewTokenStore()}
	manager.SetToken(token, expiresAt)

	return manager
}

// GetToken returns the token, or ErrTokenExpired once it is no longer valid.
func (m *StaticTokenManager) GetToken(context.Context) (string, error) {
	token := m.store.Get()
	if token == nil || token.AccessToken == "" {
		return "", constants.ErrNoToken
	}

	if !token.Valid() {
		return "", constants.ErrTokenExpired
	}

	return token.AccessToken, nil
}

// RefreshToken is a no-op.
func (m *StaticTokenManager) RefreshToken(context.Context) error {
	return nil
}

// SetToken replaces the token.
func (m *StaticTokenManager) SetToken(token string, expiresAt time.Time) {
	m.store.Set(&Token{AccessToken: token, TokenType: "Bearer", ExpiresAt: expiresAt})
}
