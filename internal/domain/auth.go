package domain

import "time"

// TokenType distinguishes access tokens from refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// TokenPair bundles the credentials returned by login and refresh.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// ExpiresIn returns the access token lifetime in whole seconds, as exposed
// in the token response body.
func (p TokenPair) ExpiresIn(now time.Time) int64 {
	secs := int64(p.AccessExpiresAt.Sub(now).Seconds())
	if secs < 0 {
		return 0
	}
	return secs
}
