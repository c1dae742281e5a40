package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is what the dashboard can tell about its bearer token without
// the signing key.
type TokenInfo struct {
	IsJWT     bool
	Subject   string
	ExpiresAt time.Time
}

// InspectToken decodes the claims of a JWT without verifying it. The
// upstream API verifies; the dashboard only reads the subject and expiry.
// Opaque tokens return IsJWT false.
func InspectToken(token string) TokenInfo {
	if token == "" {
		return TokenInfo{}
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenInfo{}
	}

	info := TokenInfo{IsJWT: true, Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info
}

// Expired reports whether a JWT carries an expiry in the past.
func (t TokenInfo) Expired(now time.Time) bool {
	return t.IsJWT && !t.ExpiresAt.IsZero() && now.After(t.ExpiresAt)
}
