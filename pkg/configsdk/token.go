package configsdk

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessToken is a bearer token together with its validity window.
// Values are never mutated; renewal replaces the whole token.
type AccessToken struct {
	Value     string
	Owner     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Valid reports whether the token may still be used at now.
func (t AccessToken) Valid(now time.Time) bool {
	return t.Value != "" && now.Before(t.ExpiresAt)
}

// ParseAccessToken reads the validity window embedded in a token issued by
// the service. Two formats are understood:
//
//	owner:issuedAtMillis:expiresAtMillis:signature
//	header.claims.signature (JWT with an exp claim)
//
// JWT signatures are not verified; the client does not hold the service key.
func ParseAccessToken(raw string) (AccessToken, error) {
	if raw == "" {
		return AccessToken{}, fmt.Errorf("%w: empty token", ErrMalformedToken)
	}
	if !strings.Contains(raw, ":") && strings.Count(raw, ".") == 2 {
		return parseJWTToken(raw)
	}
	return parseLegacyToken(raw)
}

func parseLegacyToken(raw string) (AccessToken, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 4 {
		return AccessToken{}, fmt.Errorf("%w: expected 4 fields, got %d", ErrMalformedToken, len(parts))
	}

	issued, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return AccessToken{}, fmt.Errorf("%w: issued at: %v", ErrMalformedToken, err)
	}
	expires, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return AccessToken{}, fmt.Errorf("%w: expires at: %v", ErrMalformedToken, err)
	}

	return AccessToken{
		Value:     raw,
		Owner:     parts[0],
		IssuedAt:  time.UnixMilli(issued),
		ExpiresAt: time.UnixMilli(expires),
	}, nil
}

func parseJWTToken(raw string) (AccessToken, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return AccessToken{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if claims.ExpiresAt == nil {
		return AccessToken{}, fmt.Errorf("%w: missing exp claim", ErrMalformedToken)
	}

	tok := AccessToken{
		Value:     raw,
		Owner:     claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		tok.IssuedAt = claims.IssuedAt.Time
	}
	return tok, nil
}
