package auth

import "errors"

// Token verification failures. Callers distinguish ErrExpiredToken from the
// rest to decide whether a refresh attempt is worth making.
var (
	ErrMalformedToken   = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrExpiredToken     = errors.New("token expired")
	ErrIssuerMismatch   = errors.New("token issuer mismatch")
	ErrAudienceMismatch = errors.New("token audience mismatch")
	ErrWrongTokenType   = errors.New("wrong token type")

	// ErrTokenReplayed marks a refresh token redeemed more than once. The
	// token itself is well formed; the repeat redemption is what gets
	// rejected.
	ErrTokenReplayed = errors.New("refresh token already redeemed")
)
