package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/user-service/internal/domain"
	"github.com/spec-kit/user-service/internal/events"
	apperrors "github.com/spec-kit/user-service/pkg/util/errorutil"
)

type userFixture struct {
	svc        *UserService
	users      *fakeUserRepo
	dispatcher *recordingDispatcher
	admin      *domain.User
	member     *domain.User
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	users := newFakeUserRepo()
	dispatcher := &recordingDispatcher{}
	svc := NewUserService(testConfig(), users, dispatcher, nil)

	admin := &domain.User{Email: "admin@example.com", FullName: "Admin", Role: domain.RoleAdmin, IsActive: true}
	member := &domain.User{Email: "jane@example.com", FullName: "Jane Doe", Role: domain.RoleUser, IsActive: true}
	require.NoError(t, users.Create(context.Background(), admin))
	require.NoError(t, users.Create(context.Background(), member))

	return &userFixture{svc: svc, users: users, dispatcher: dispatcher, admin: admin, member: member}
}

func TestListRequiresAdmin(t *testing.T) {
	f := newUserFixture(t)

	_, err := f.svc.List(context.Background(), f.member, UserListFilters{})
	assert.Error(t, err)

	page, err := f.svc.List(context.Background(), f.admin, UserListFilters{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
}

func TestListPaginationClamping(t *testing.T) {
	f := newUserFixture(t)
	for i := 0; i < 25; i++ {
		user := &domain.User{
			Email:    fmt.Sprintf("user%02d@example.com", i),
			FullName: fmt.Sprintf("User %02d", i),
			Role:     domain.RoleUser,
			IsActive: true,
		}
		require.NoError(t, f.users.Create(context.Background(), user))
	}

	// Zero/negative page and size fall back to defaults.
	page, err := f.svc.List(context.Background(), f.admin, UserListFilters{Page: 0, Size: -5})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.Size)
	assert.Len(t, page.Users, 10)
	assert.Equal(t, int64(27), page.Total)
	assert.Equal(t, 3, page.Pages)

	// Size above the maximum is clamped.
	page, err = f.svc.List(context.Background(), f.admin, UserListFilters{Size: 10000})
	require.NoError(t, err)
	assert.Equal(t, 100, page.Size)
	assert.Len(t, page.Users, 27)
	assert.Equal(t, 1, page.Pages)

	// Page beyond the data returns an empty slice, not an error.
	page, err = f.svc.List(context.Background(), f.admin, UserListFilters{Page: 9, Size: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Users)
	assert.Equal(t, int64(27), page.Total)
}

func TestListFilters(t *testing.T) {
	f := newUserFixture(t)

	role := domain.RoleAdmin
	page, err := f.svc.List(context.Background(), f.admin, UserListFilters{Role: &role})
	require.NoError(t, err)
	require.Len(t, page.Users, 1)
	assert.Equal(t, "admin@example.com", page.Users[0].Email)

	page, err = f.svc.List(context.Background(), f.admin, UserListFilters{Search: "jane"})
	require.NoError(t, err)
	require.Len(t, page.Users, 1)
	assert.Equal(t, "jane@example.com", page.Users[0].Email)
}

func TestGetSelfOrAdmin(t *testing.T) {
	f := newUserFixture(t)

	// Members can read themselves.
	user, err := f.svc.Get(context.Background(), f.member, f.member.ID)
	require.NoError(t, err)
	assert.Equal(t, f.member.ID, user.ID)

	// Members cannot read other accounts.
	_, err = f.svc.Get(context.Background(), f.member, f.admin.ID)
	assert.Error(t, err)

	// Admins can read anyone.
	user, err = f.svc.Get(context.Background(), f.admin, f.member.ID)
	require.NoError(t, err)
	assert.Equal(t, f.member.ID, user.ID)
}

func TestGetUnknownUser(t *testing.T) {
	f := newUserFixture(t)

	_, err := f.svc.Get(context.Background(), f.admin, "00000000-0000-4000-8000-000000000000")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUpdateOwnProfile(t *testing.T) {
	f := newUserFixture(t)

	name := "Jane Q. Doe"
	updated, err := f.svc.Update(context.Background(), f.member, f.member.ID, UserUpdate{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.FullName)
}

func TestUpdateRoleRequiresAdmin(t *testing.T) {
	f := newUserFixture(t)

	role := domain.RoleAdmin
	_, err := f.svc.Update(context.Background(), f.member, f.member.ID, UserUpdate{Role: &role})
	assert.Error(t, err)

	updated, err := f.svc.Update(context.Background(), f.admin, f.member.ID, UserUpdate{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, updated.Role)
}

func TestUpdateRejectsUnknownRole(t *testing.T) {
	f := newUserFixture(t)

	role := domain.Role("AUDITOR")
	_, err := f.svc.Update(context.Background(), f.admin, f.member.ID, UserUpdate{Role: &role})
	assert.Error(t, err)
}

func TestUpdateEmailConflict(t *testing.T) {
	f := newUserFixture(t)

	taken := "admin@example.com"
	_, err := f.svc.Update(context.Background(), f.member, f.member.ID, UserUpdate{Email: &taken})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	// Re-submitting the current address is not a conflict.
	same := "jane@example.com"
	_, err = f.svc.Update(context.Background(), f.member, f.member.ID, UserUpdate{Email: &same})
	assert.NoError(t, err)
}

func TestDeleteRequiresAdmin(t *testing.T) {
	f := newUserFixture(t)

	err := f.svc.Delete(context.Background(), f.member, f.admin.ID)
	assert.Error(t, err)

	err = f.svc.Delete(context.Background(), f.admin, f.member.ID)
	require.NoError(t, err)
	assert.Contains(t, f.dispatcher.types(), events.EventUserDeleted)

	_, err = f.svc.Get(context.Background(), f.admin, f.member.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestDeleteOwnAccountBlocked(t *testing.T) {
	f := newUserFixture(t)

	err := f.svc.Delete(context.Background(), f.admin, f.admin.ID)
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, 409, domainErr.HTTPStatus)
}

func TestDeleteUnknownUser(t *testing.T) {
	f := newUserFixture(t)

	err := f.svc.Delete(context.Background(), f.admin, "00000000-0000-4000-8000-000000000000")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
