package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-service/internal/api/dto"
	"github.com/spec-kit/user-service/internal/auth"
	"github.com/spec-kit/user-service/internal/domain"
	"github.com/spec-kit/user-service/internal/service"
	apperrors "github.com/spec-kit/user-service/pkg/util/errorutil"
)

// UsersHandler exposes user administration endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// List handles GET /api/v1/users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	filters := service.UserListFilters{
		Search: c.Query("search"),
		Page:   parseIntQuery(c, "page", 1),
		Size:   parseIntQuery(c, "size", 0),
	}
	if roleStr := c.Query("role"); roleStr != "" {
		role := domain.Role(roleStr)
		if !role.Valid() {
			return apperrors.NewValidationError("unknown role", map[string]any{"role": roleStr})
		}
		filters.Role = &role
	}
	if activeStr := c.Query("is_active"); activeStr != "" {
		active, err := strconv.ParseBool(activeStr)
		if err != nil {
			return apperrors.NewValidationError("is_active must be a boolean", nil)
		}
		filters.IsActive = &active
	}

	page, err := h.users.List(c.UserContext(), principal.User, filters)
	if err != nil {
		return err
	}

	items := make([]dto.UserResponse, 0, len(page.Users))
	for i := range page.Users {
		items = append(items, dto.NewUserResponse(&page.Users[i]))
	}
	return c.JSON(dto.UserListResponse{
		Items: items,
		Total: page.Total,
		Page:  page.Page,
		Size:  page.Size,
		Pages: page.Pages,
	})
}

// Get handles GET /api/v1/users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	user, err := h.users.Get(c.UserContext(), principal.User, c.Params("id"))
	if err != nil {
		return userAdminError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Update handles PATCH /api/v1/users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	var req dto.UserUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	user, err := h.users.Update(c.UserContext(), principal.User, c.Params("id"), service.UserUpdate{
		Email:    req.Email,
		FullName: req.FullName,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		return userAdminError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Delete handles DELETE /api/v1/users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	if err := h.users.Delete(c.UserContext(), principal.User, c.Params("id")); err != nil {
		return userAdminError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// userAdminError converts a missing target user into a 404: on admin
// routes the subject is a resource, not the caller's own credential.
func userAdminError(err error) error {
	if errors.Is(err, domain.ErrUserNotFound) {
		return apperrors.NewNotFound("user", nil)
	}
	return err
}

func parseIntQuery(c *fiber.Ctx, key string, fallback int) int {
	val := c.Query(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
