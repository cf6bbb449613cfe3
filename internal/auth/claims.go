package auth

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/user-service/internal/domain"
)

const tokenIDEntropyBytes = 32

// Claims describes the JWT payload for both token types. Role, Permissions
// and the enrichment fields are populated on access tokens only; refresh
// tokens carry just the registered claims plus Type.
type Claims struct {
	Type        domain.TokenType `json:"type"`
	Role        string           `json:"role,omitempty"`
	Permissions []string         `json:"permissions,omitempty"`
	Email       string           `json:"email,omitempty"`
	Name        string           `json:"name,omitempty"`
	IsActive    *bool            `json:"is_active,omitempty"`
	jwt.RegisteredClaims
}

// NewTokenID returns a random base64url token identifier for the jti claim.
func NewTokenID() (string, error) {
	buf := make([]byte, tokenIDEntropyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// AccessClaims builds the claims for an access token. Permissions are
// resolved from the user's current role at call time, never copied from an
// older token.
func AccessClaims(user *domain.User, issuer, audience string, now time.Time, ttl time.Duration) (*Claims, error) {
	jti, err := NewTokenID()
	if err != nil {
		return nil, err
	}
	active := user.IsActive
	return &Claims{
		Type:        domain.TokenTypeAccess,
		Role:        string(user.Role),
		Permissions: PermissionsFor(user.Role),
		Email:       user.Email,
		Name:        user.FullName,
		IsActive:    &active,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			Subject:   user.ID,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}, nil
}

// RefreshClaims builds the claims for a refresh token. No role, permissions
// or profile data: the token proves identity only.
func RefreshClaims(user *domain.User, issuer, audience string, now time.Time, ttl time.Duration) (*Claims, error) {
	jti, err := NewTokenID()
	if err != nil {
		return nil, err
	}
	return &Claims{
		Type: domain.TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			Subject:   user.ID,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}, nil
}
