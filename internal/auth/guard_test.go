package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/user-service/internal/domain"
)

func adminClaims(t *testing.T) *Claims {
	t.Helper()
	user := testUser()
	user.Role = domain.RoleAdmin
	claims, err := AccessClaims(user, testIssuer, testAudience, time.Now(), time.Hour)
	require.NoError(t, err)
	return claims
}

func userClaims(t *testing.T) *Claims {
	t.Helper()
	claims, err := AccessClaims(testUser(), testIssuer, testAudience, time.Now(), time.Hour)
	require.NoError(t, err)
	return claims
}

func TestCheckZeroRequirementAllowsAnyAuthenticated(t *testing.T) {
	decision := Check(userClaims(t), Requirement{})
	assert.True(t, decision.Allowed)
}

func TestCheckNilClaimsDenied(t *testing.T) {
	decision := Check(nil, Requirement{Roles: []domain.Role{domain.RoleAdmin}})
	assert.False(t, decision.Allowed)
	assert.Equal(t, []domain.Role{domain.RoleAdmin}, decision.MissingRoles)
}

func TestCheckNilClaimsDoesNotAliasRequirement(t *testing.T) {
	all := make([]string, 0, 2)
	all = append(all, PermUsersRead)
	req := Requirement{AllPermissions: all, AnyPermissions: []string{PermAdminAccess}}

	decision := Check(nil, req)

	// Growing the caller's slice into its spare capacity must not change
	// the diagnostic the decision already carries.
	grown := append(all, "something-else")
	require.Len(t, grown, 2)
	assert.Equal(t, []string{PermUsersRead, PermAdminAccess}, decision.MissingPermissions)
}

func TestCheckRoleMatching(t *testing.T) {
	req := Requirement{Roles: []domain.Role{domain.RoleAdmin}}

	assert.True(t, Check(adminClaims(t), req).Allowed)

	decision := Check(userClaims(t), req)
	assert.False(t, decision.Allowed)
	assert.Equal(t, []domain.Role{domain.RoleAdmin}, decision.MissingRoles)
}

func TestCheckRoleAnyOf(t *testing.T) {
	req := Requirement{Roles: []domain.Role{domain.RoleUser, domain.RoleAdmin}}
	assert.True(t, Check(userClaims(t), req).Allowed)
	assert.True(t, Check(adminClaims(t), req).Allowed)
}

func TestCheckAllPermissions(t *testing.T) {
	req := Requirement{AllPermissions: []string{PermUsersRead, PermUsersDelete}}

	assert.True(t, Check(adminClaims(t), req).Allowed)

	decision := Check(userClaims(t), req)
	assert.False(t, decision.Allowed)
	assert.ElementsMatch(t, []string{PermUsersRead, PermUsersDelete}, decision.MissingPermissions)
}

func TestCheckAllPermissionsPartialMissing(t *testing.T) {
	claims := userClaims(t)
	claims.Permissions = []string{PermUsersRead}

	decision := Check(claims, Requirement{AllPermissions: []string{PermUsersRead, PermUsersWrite}})
	assert.False(t, decision.Allowed)
	assert.Equal(t, []string{PermUsersWrite}, decision.MissingPermissions)
}

func TestCheckAnyPermission(t *testing.T) {
	req := Requirement{AnyPermissions: []string{PermUsersReadOwn, PermUsersRead}}

	assert.True(t, Check(userClaims(t), req).Allowed)
	assert.True(t, Check(adminClaims(t), req).Allowed)

	decision := Check(userClaims(t), Requirement{AnyPermissions: []string{PermAdminAccess}})
	assert.False(t, decision.Allowed)
	assert.Equal(t, []string{PermAdminAccess}, decision.MissingPermissions)
}

func TestCheckRoleAndPermissionsCombined(t *testing.T) {
	req := Requirement{
		Roles:          []domain.Role{domain.RoleAdmin},
		AllPermissions: []string{PermAdminAccess},
	}
	assert.True(t, Check(adminClaims(t), req).Allowed)
	assert.False(t, Check(userClaims(t), req).Allowed)
}
