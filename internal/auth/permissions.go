package auth

import "github.com/spec-kit/user-service/internal/domain"

// Permission strings embedded in access tokens. These are part of the token
// contract consumed by downstream services; keep them stable.
const (
	PermUsersReadOwn  = "users:read:own"
	PermUsersWriteOwn = "users:write:own"
	PermUsersRead     = "users:read"
	PermUsersWrite    = "users:write"
	PermUsersDelete   = "users:delete"
	PermAdminAccess   = "admin:access"
)

// PermissionsFor maps a role to its fixed permission set. The function is
// total: unknown roles resolve to an empty set rather than failing.
func PermissionsFor(role domain.Role) []string {
	switch role {
	case domain.RoleAdmin:
		return []string{PermUsersRead, PermUsersWrite, PermUsersDelete, PermAdminAccess}
	case domain.RoleUser:
		return []string{PermUsersReadOwn, PermUsersWriteOwn}
	default:
		return []string{}
	}
}
