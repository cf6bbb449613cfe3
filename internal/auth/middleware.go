package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-service/internal/domain"
	apperrors "github.com/spec-kit/user-service/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller: the freshly loaded user
// record plus the verified token claims.
type Principal struct {
	User   *domain.User
	Claims *Claims
}

// UserResolver turns a bearer token into the current user. The service
// layer implements this; resolution always re-fetches the user so a
// deactivated account is rejected even while its token is unexpired.
type UserResolver interface {
	ResolveCurrentUser(ctx context.Context, accessToken string) (*domain.User, *Claims, error)
}

// Middleware validates bearer tokens and loads principals for protected
// routes.
type Middleware struct {
	resolver UserResolver
}

// NewMiddleware constructs the middleware.
func NewMiddleware(resolver UserResolver) *Middleware {
	return &Middleware{resolver: resolver}
}

// Handle enforces authentication and stores the principal in request scope.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	token, err := BearerToken(c)
	if err != nil {
		return err
	}

	user, claims, err := m.resolver.ResolveCurrentUser(c.UserContext(), token)
	if err != nil {
		return err
	}

	c.Locals(principalKey, &Principal{User: user, Claims: claims})
	return c.Next()
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", apperrors.NewUnauthorized("missing authorization header")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", apperrors.NewUnauthorized("invalid authorization header")
	}
	return parts[1], nil
}

// PrincipalFromContext retrieves the authenticated caller.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
