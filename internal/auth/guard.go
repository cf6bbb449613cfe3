package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-service/internal/domain"
	apperrors "github.com/spec-kit/user-service/pkg/util/errorutil"
)

// Requirement declares what an endpoint demands of a verified token. A zero
// Requirement means any authenticated caller is allowed. Roles match any-of;
// AllPermissions must all be present; AnyPermissions needs at least one.
type Requirement struct {
	Roles          []domain.Role
	AllPermissions []string
	AnyPermissions []string
}

// Decision is the outcome of a guard check. Missing lists the requirements
// that were not met, for diagnostics.
type Decision struct {
	Allowed            bool
	MissingRoles       []domain.Role
	MissingPermissions []string
}

// Check evaluates claims against a requirement. Pure function; no I/O.
func Check(claims *Claims, req Requirement) Decision {
	if claims == nil {
		missing := make([]string, 0, len(req.AllPermissions)+len(req.AnyPermissions))
		missing = append(missing, req.AllPermissions...)
		missing = append(missing, req.AnyPermissions...)
		return Decision{MissingRoles: req.Roles, MissingPermissions: missing}
	}

	if len(req.Roles) > 0 {
		matched := false
		for _, role := range req.Roles {
			if string(role) == claims.Role {
				matched = true
				break
			}
		}
		if !matched {
			return Decision{MissingRoles: req.Roles}
		}
	}

	granted := make(map[string]struct{}, len(claims.Permissions))
	for _, p := range claims.Permissions {
		granted[p] = struct{}{}
	}

	if len(req.AllPermissions) > 0 {
		var missing []string
		for _, p := range req.AllPermissions {
			if _, ok := granted[p]; !ok {
				missing = append(missing, p)
			}
		}
		if len(missing) > 0 {
			return Decision{MissingPermissions: missing}
		}
	}

	if len(req.AnyPermissions) > 0 {
		matched := false
		for _, p := range req.AnyPermissions {
			if _, ok := granted[p]; ok {
				matched = true
				break
			}
		}
		if !matched {
			return Decision{MissingPermissions: req.AnyPermissions}
		}
	}

	return Decision{Allowed: true}
}

// RequireAuthenticated ensures a principal was loaded by AuthMiddleware.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequireRole ensures the caller holds one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	return requireGuard(Requirement{Roles: allowed})
}

// RequirePermissions ensures the caller's token grants every listed
// permission.
func RequirePermissions(perms ...string) fiber.Handler {
	return requireGuard(Requirement{AllPermissions: perms})
}

// RequireAnyPermission ensures the caller's token grants at least one of
// the listed permissions.
func RequireAnyPermission(perms ...string) fiber.Handler {
	return requireGuard(Requirement{AnyPermissions: perms})
}

func requireGuard(req Requirement) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		decision := Check(principal.Claims, req)
		if !decision.Allowed {
			details := map[string]any{}
			if len(decision.MissingRoles) > 0 {
				details["required_roles"] = decision.MissingRoles
			}
			if len(decision.MissingPermissions) > 0 {
				details["required_permissions"] = decision.MissingPermissions
			}
			return apperrors.NewInsufficientPermissions(details)
		}
		return c.Next()
	}
}
