package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/user-service/internal/domain"
)

func TestPermissionsForAdmin(t *testing.T) {
	perms := PermissionsFor(domain.RoleAdmin)
	assert.Contains(t, perms, PermUsersRead)
	assert.Contains(t, perms, PermUsersWrite)
	assert.Contains(t, perms, PermUsersDelete)
	assert.Contains(t, perms, PermAdminAccess)
	assert.NotContains(t, perms, PermUsersReadOwn)
}

func TestPermissionsForUser(t *testing.T) {
	perms := PermissionsFor(domain.RoleUser)
	assert.Equal(t, []string{PermUsersReadOwn, PermUsersWriteOwn}, perms)
	assert.NotContains(t, perms, PermUsersDelete)
	assert.NotContains(t, perms, PermAdminAccess)
}

func TestPermissionsForUnknownRole(t *testing.T) {
	perms := PermissionsFor(domain.Role("AUDITOR"))
	assert.Empty(t, perms)
	assert.NotNil(t, perms)
}
