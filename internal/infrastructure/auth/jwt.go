// Package auth reads the access tokens issued by the pawn-api. The console
// never verifies them; the backend does that on every call.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Common errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrEmptyToken   = errors.New("token is empty")
)

// Claims are the claims the pawn-api puts in its tokens. Which name claim
// is present depends on the backend version.
type Claims struct {
	jwt.RegisteredClaims
	Username          string `json:"username,omitempty"`
	Name              string `json:"name,omitempty"`
	PreferredUsername string `json:"preferred_username,omitempty"`
	Email             string `json:"email,omitempty"`
	Role              string `json:"role,omitempty"`
}

// DisplayName picks the most readable identity in the claims.
func (c *Claims) DisplayName() string {
	for _, v := range []string{c.Name, c.Username, c.PreferredUsername, c.Email, c.Subject} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// ExpiresAtTime returns the expiry, or the zero time when the token has none.
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// TokenReader decodes tokens without checking signatures
type TokenReader struct {
	parser *jwt.Parser
}

// NewTokenReader creates a TokenReader
func NewTokenReader() *TokenReader {
	return &TokenReader{parser: jwt.NewParser()}
}

// Parse decodes the claims of tokenString. Opaque (non-JWT) tokens fail with
// ErrInvalidToken.
func (r *TokenReader) Parse(tokenString string) (*Claims, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))
	if tokenString == "" {
		return nil, ErrEmptyToken
	}
	claims := &Claims{}
	if _, _, err := r.parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	return claims, nil
}

// DisplayName returns the "Logged in as" name for a token, or "" when the
// token carries none or cannot be decoded.
func (r *TokenReader) DisplayName(tokenString string) string {
	claims, err := r.Parse(tokenString)
	if err != nil {
		return ""
	}
	return claims.DisplayName()
}
