package dto

import (
	"time"

	"github.com/spec-kit/user-service/internal/domain"
)

// UserResponse is the public view of a user record; the password hash never
// leaves the service.
type UserResponse struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	FullName  string      `json:"full_name"`
	Role      domain.Role `json:"role"`
	IsActive  bool        `json:"is_active"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NewUserResponse maps a domain user to its API shape.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      user.Role,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// UserListResponse is a paginated user listing.
type UserListResponse struct {
	Items []UserResponse `json:"items"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
	Pages int            `json:"pages"`
}

// UserUpdateRequest carries optional field changes.
type UserUpdateRequest struct {
	Email    *string      `json:"email"`
	FullName *string      `json:"full_name"`
	Role     *domain.Role `json:"role"`
	IsActive *bool        `json:"is_active"`
}
