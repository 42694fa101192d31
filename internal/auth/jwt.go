package auth

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/esi-client/internal/constants"
)

// Claims is the subset of EVE SSO JWT claims the client reads. The signature
// is not verified; ESI does that server side.
type Claims struct {
	Subject   string    `json:"sub"`
	Name      string    `json:"name"`
	Scopes    []string  `json:"-"`
	ExpiresAt time.Time `json:"-"`
}

// CharacterID extracts the numeric id from a "CHARACTER:EVE:<id>" subject.
func (c *Claims) CharacterID() (int64, bool) {
	parts := strings.Split(c.Subject, ":")
	if len(parts) != 3 || parts[0] != "CHARACTER" {
		return 0, false
	}

	id, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return 0, false
	}

	return id, true
}

type rawClaims struct {
	Subject string          `json:"sub"`
	Name    string          `json:"name"`
	Scope   json.RawMessage `json:"scp"`
	Exp     json.Number     `json:"exp"`
}

// ParseJWT decodes the payload of an SSO access token.
func ParseJWT(token string) (*Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, constants.ErrInvalidJWTFormat
	}

	payload, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", constants.ErrInvalidJWTFormat, err)
	}

	var raw rawClaims

	err = json.Unmarshal(payload, &raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", constants.ErrInvalidJWTFormat, err)
	}

	claims := &Claims{Subject: raw.Subject, Name: raw.Name}

	// scp is a string for a single scope and an array otherwise
	if len(raw.Scope) > 0 {
		var single string
		if json.Unmarshal(raw.Scope, &single) == nil {
			claims.Scopes = []string{single}
		} else {
			_ = json.Unmarshal(raw.Scope, &claims.Scopes)
		}
	}

	if raw.Exp != "" {
		exp, err := raw.Exp.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", constants.ErrInvalidJWTFormat, err)
		}

		claims.ExpiresAt = time.Unix(int64(exp), 0)
	}

	return claims, nil
}

// ParseJWTExpiry returns the exp claim of a token.
func ParseJWTExpiry(token string) (time.Time, error) {
	claims, err := ParseJWT(token)
	if err != nil {
		return time.Time{}, err
	}

	if claims.ExpiresAt.IsZero() {
		return time.Time{}, constants.ErrNoExpirationClaim
	}

	return claims.ExpiresAt, nil
}
