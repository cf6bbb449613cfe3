package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-service/internal/auth"
	apperrors "github.com/spec-kit/user-service/pkg/util/errorutil"
)

// KeysHandler exposes the public verification key so other services can
// verify tokens without calling back. Both endpoints are only meaningful in
// RS256 mode.
type KeysHandler struct {
	keys *auth.SigningKeys
}

// NewKeysHandler constructs handler.
func NewKeysHandler(keys *auth.SigningKeys) *KeysHandler {
	return &KeysHandler{keys: keys}
}

// PublicKey handles GET /api/v1/auth/public-key, returning the PEM text.
func (h *KeysHandler) PublicKey(c *fiber.Ctx) error {
	pemStr, err := h.keys.PublicKeyPEM()
	if err != nil {
		if errors.Is(err, auth.ErrAsymmetricOnly) {
			return apperrors.NewNotImplemented("public key endpoint requires RS256 signing")
		}
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(pemStr)
}

// JWKS handles GET /api/v1/auth/jwks. The key set is computed from the
// public key on each request.
func (h *KeysHandler) JWKS(c *fiber.Ctx) error {
	jwks, err := h.keys.JWKS()
	if err != nil {
		if errors.Is(err, auth.ErrAsymmetricOnly) {
			return apperrors.NewNotImplemented("JWKS endpoint requires RS256 signing")
		}
		return err
	}
	return c.JSON(jwks)
}
