package constants

import "errors"

// Token errors.
var (
	ErrInvalidJWTFormat  = errors.New("invalid JWT format")
	ErrNoExpirationClaim = errors.New("no expiration claim found")
	ErrNoToken           = errors.New("no token configured, use 'esi token set' to store one")
	ErrTokenExpired      = errors.New("stored token has expired")
	ErrNoCredentials     = errors.New("no valid credentials available")
	ErrTokenRequest      = errors.New("token request failed")
	ErrNoConfigPersister = errors.New("no config persister configured")
	ErrNoRefreshToken    = errors.New("no refresh token configured, use 'esi token set --refresh-token'")
	ErrNoClientID        = errors.New("no SSO client id configured, use 'esi config set client_id'")
)

// Configuration errors.
var (
	ErrUnknownConfigKey = errors.New("unknown configuration key")
	ErrInvalidOutput    = errors.New("invalid output format")
	ErrInvalidValue     = errors.New("invalid configuration value")
)

// Argument errors.
var (
	ErrInvalidKeyValue = errors.New("expected key=value")
	ErrInvalidBody     = errors.New("body is not valid JSON")
	ErrEmptyToken      = errors.New("token is empty")
)

// Transport errors.
var (
	ErrCircuitOpen = errors.New("circuit breaker is open")
)
