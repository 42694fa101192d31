package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/fivetwenty-io/esi-client/internal/constants"
)

// OAuth2Config configures the SSO refresh flow.
type OAuth2Config struct {
	// TokenURL is the SSO token endpoint.
	TokenURL string
	// ClientID identifies the registered application.
	ClientID string
	// ClientSecret is empty for PKCE (native) applications.
	ClientSecret string
	// AccessToken seeds the manager with an existing token.
	AccessToken string
	// RefreshToken is exchanged for new access tokens.
	RefreshToken string
	// HTTPClient overrides the client used for token requests.
	HTTPClient *http.Client
}

// OAuth2TokenManager keeps an SSO access token fresh using the refresh token grant.
type OAuth2TokenManager struct {
	config     *OAuth2Config
	oauth      *oauth2.Config
	store      *TokenStore
	httpClient *http.Client
	mu         sync.Mutex
}

// NewOAuth2TokenManager creates a manager. An AccessToken in config is
// stored with the expiry read from its JWT claims when available.
func NewOAuth2TokenManager(config *OAuth2Config) *OAuth2TokenManager {
	if config.TokenURL == "" {
		config.TokenURL = constants.DefaultSSOTokenURL
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: constants.ShortHTTPTimeout}
	}

	// native applications have no secret and identify themselves in the form
	authStyle := oauth2.AuthStyleInParams
	if config.ClientSecret != "" {
		authStyle = oauth2.AuthStyleInHeader
	}

	manager := &OAuth2TokenManager{
		config: config,
		oauth: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  config.TokenURL,
				AuthStyle: authStyle,
			},
		},
		store:      NewTokenStore(),
		httpClient: httpClient,
	}

	if config.AccessToken != "" {
		expiresAt, _ := ParseJWTExpiry(config.AccessToken)
		manager.store.Set(&Token{
			AccessToken:  config.AccessToken,
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
			ExpiresAt:    expiresAt,
		})
	}

	return manager
}

// GetToken returns a valid access token, refreshing if necessary.
func (m *OAuth2TokenManager) GetToken(ctx context.Context) (string, error) {
	token := m.store.Get()
	if token.Valid() {
		return token.AccessToken, nil
	}

	err := m.RefreshToken(ctx)
	if err != nil {
		return "", err
	}

	return m.store.Get().AccessToken, nil
}

// RefreshToken forces a refresh token exchange.
func (m *OAuth2TokenManager) RefreshToken(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	refreshToken := m.config.RefreshToken
	if current := m.store.Get(); current != nil && current.RefreshToken != "" {
		refreshToken = current.RefreshToken
	}

	if refreshToken == "" {
		return constants.ErrNoCredentials
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)

	refreshed, err := m.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return tokenRequestError(err)
	}

	token := &Token{
		AccessToken:  refreshed.AccessToken,
		TokenType:    refreshed.TokenType,
		RefreshToken: refreshed.RefreshToken,
		ExpiresIn:    int(refreshed.ExpiresIn),
		ExpiresAt:    refreshed.Expiry,
	}

	if token.ExpiresAt.IsZero() {
		if expiresAt, err := ParseJWTExpiry(token.AccessToken); err == nil {
			token.ExpiresAt = expiresAt
		}
	}

	if token.RefreshToken == "" {
		token.RefreshToken = refreshToken
	}

	m.store.Set(token)

	return nil
}

// SetToken manually sets the access token, keeping any known refresh token.
func (m *OAuth2TokenManager) SetToken(token string, expiresAt time.Time) {
	refreshToken := m.config.RefreshToken
	if current := m.store.Get(); current != nil && current.RefreshToken != "" {
		refreshToken = current.RefreshToken
	}

	m.store.Set(&Token{
		AccessToken:  token,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    expiresAt,
	})
}

// Current returns the stored token, which may be nil.
func (m *OAuth2TokenManager) Current() *Token {
	return m.store.Get()
}

func tokenRequestError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if !errors.As(err, &retrieveErr) {
		return fmt.Errorf("%w: %w", constants.ErrTokenRequest, err)
	}

	status := 0
	if retrieveErr.Response != nil {
		status = retrieveErr.Response.StatusCode
	}

	if retrieveErr.ErrorCode == "" {
		return fmt.Errorf("%w: status %d: %s", constants.ErrTokenRequest, status, retrieveErr.Body)
	}

	return fmt.Errorf("%w: status %d: %s: %s", constants.ErrTokenRequest, status,
		retrieveErr.ErrorCode, retrieveErr.ErrorDescription)
}
