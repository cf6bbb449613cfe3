package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/user-service/internal/config"
	"github.com/spec-kit/user-service/internal/domain"
	"github.com/spec-kit/user-service/internal/events"
	"github.com/spec-kit/user-service/internal/repository"
	apperrors "github.com/spec-kit/user-service/pkg/util/errorutil"
)

// UserService handles user administration: paginated listing, profile
// reads and updates, and deletion. Authorization is decided here from the
// acting user's role, not from raw token claims.
type UserService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	defaultAmt int
	maxAmt     int
}

// UserListFilters define listing parameters. Page is 1-indexed.
type UserListFilters struct {
	Role     *domain.Role
	IsActive *bool
	Search   string
	Page     int
	Size     int
}

// UserPage is one page of a user listing.
type UserPage struct {
	Users []domain.User
	Total int64
	Page  int
	Size  int
	Pages int
}

// UserUpdate carries optional field changes; nil fields are left untouched.
type UserUpdate struct {
	Email    *string
	FullName *string
	Role     *domain.Role
	IsActive *bool
}

// NewUserService constructs the service.
func NewUserService(cfg config.Config, users repository.UserRepository, dispatcher events.Dispatcher, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		users:      users,
		dispatcher: dispatcher,
		logger:     logger,
		defaultAmt: cfg.Pagination.DefaultPageSize,
		maxAmt:     cfg.Pagination.MaxPageSize,
	}
}

// List returns a page of users. Admin only.
func (s *UserService) List(ctx context.Context, actor *domain.User, filters UserListFilters) (*UserPage, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	page := filters.Page
	if page < 1 {
		page = 1
	}
	size := filters.Size
	if size <= 0 {
		size = s.defaultAmt
	}
	if size > s.maxAmt {
		size = s.maxAmt
	}

	repoFilter := repository.UserFilter{
		Role:     filters.Role,
		IsActive: filters.IsActive,
		Search:   filters.Search,
		Limit:    size,
		Offset:   (page - 1) * size,
	}

	users, err := s.users.List(ctx, repoFilter)
	if err != nil {
		return nil, storeErr(err)
	}
	total, err := s.users.Count(ctx, repoFilter)
	if err != nil {
		return nil, storeErr(err)
	}

	pages := int((total + int64(size) - 1) / int64(size))
	return &UserPage{Users: users, Total: total, Page: page, Size: size, Pages: pages}, nil
}

// Get fetches a single user. Admins may fetch anyone; others only
// themselves.
func (s *UserService) Get(ctx context.Context, actor *domain.User, id string) (*domain.User, error) {
	if err := requireSelfOrAdmin(actor, id); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, storeErr(err)
	}
	return user, nil
}

// Update applies partial changes. Role and is_active changes are admin
// only; users may edit their own email and name.
func (s *UserService) Update(ctx context.Context, actor *domain.User, id string, update UserUpdate) (*domain.User, error) {
	if err := requireSelfOrAdmin(actor, id); err != nil {
		return nil, err
	}
	if (update.Role != nil || update.IsActive != nil) && actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("role and status changes require admin")
	}
	if update.Role != nil && !update.Role.Valid() {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": *update.Role})
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, storeErr(err)
	}

	if update.Email != nil && *update.Email != user.Email {
		if existing, err := s.users.GetByEmail(ctx, *update.Email); err == nil && existing.ID != user.ID {
			return nil, domain.ErrEmailTaken
		} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, storeErr(err)
		}
		user.Email = *update.Email
	}
	if update.FullName != nil {
		user.FullName = *update.FullName
	}
	if update.Role != nil {
		user.Role = *update.Role
	}
	if update.IsActive != nil {
		user.IsActive = *update.IsActive
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, storeErr(err)
	}
	return user, nil
}

// Delete removes a user permanently. Admin only; self-deletion is blocked
// to avoid locking the last administrator out.
func (s *UserService) Delete(ctx context.Context, actor *domain.User, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if actor.ID == id {
		return apperrors.NewConflict("cannot delete own account", nil)
	}

	target, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrUserNotFound
		}
		return storeErr(err)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrUserNotFound
		}
		return storeErr(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventUserDeleted,
			UserID:    target.ID,
			Email:     target.Email,
			Timestamp: time.Now().UTC(),
		})
	}
	return nil
}

func requireAdmin(actor *domain.User) error {
	if actor == nil || actor.Role != domain.RoleAdmin {
		return apperrors.NewInsufficientPermissions(map[string]any{"required_roles": []domain.Role{domain.RoleAdmin}})
	}
	return nil
}

func requireSelfOrAdmin(actor *domain.User, id string) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if actor.Role == domain.RoleAdmin || actor.ID == id {
		return nil
	}
	return apperrors.NewInsufficientPermissions(map[string]any{"required_permissions": []string{"users:read"}})
}
