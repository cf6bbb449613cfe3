package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/user-service/internal/domain"
)

// Codec encodes and verifies signed tokens. It is bound to one signing mode
// at construction; tokens signed under a different mode or key fail
// verification.
type Codec struct {
	keys     *SigningKeys
	issuer   string
	audience string
	parser   *jwt.Parser
}

// NewCodec builds a codec bound to the given keys and expected
// issuer/audience.
func NewCodec(keys *SigningKeys, issuer, audience string) *Codec {
	return &Codec{
		keys:     keys,
		issuer:   issuer,
		audience: audience,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{keys.Method().Alg()}),
			jwt.WithIssuer(issuer),
			jwt.WithAudience(audience),
			jwt.WithExpirationRequired(),
			jwt.WithIssuedAt(),
		),
	}
}

// Encode signs the claims into a compact token string. Claims must carry a
// subject and a future expiry.
func (c *Codec) Encode(claims *Claims) (string, error) {
	if claims.Subject == "" {
		return "", errors.New("claims subject must not be empty")
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(time.Now()) {
		return "", errors.New("claims expiry must be in the future")
	}
	token := jwt.NewWithClaims(c.keys.Method(), claims)
	signed, err := token.SignedString(c.keys.SignKey())
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies signature, expiry, issuer and audience, returning the
// claims on success. Failures map onto the package sentinel errors so
// callers can tell an expired token from an otherwise invalid one.
func (c *Codec) Decode(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := c.parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return c.keys.VerifyKey(), nil
	})
	if err != nil {
		return nil, classifyParseError(err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidSignature
	}
	return claims, nil
}

// DecodeExpecting decodes the token and additionally enforces its type
// claim, so an access token cannot pass where a refresh token is required
// and vice versa.
func (c *Codec) DecodeExpecting(tokenStr string, expected domain.TokenType) (*Claims, error) {
	claims, err := c.Decode(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.Type != expected {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrIssuerMismatch
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return ErrAudienceMismatch
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformedToken
	default:
		return ErrInvalidSignature
	}
}
