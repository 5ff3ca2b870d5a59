package dto

import (
	"time"

	"github.com/spec-kit/crm-service/internal/domain"
)

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Secret   string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ChangePasswordRequest payload for password change.
type ChangePasswordRequest struct {
	CurrentSecret string `json:"current_password"`
	NewSecret     string `json:"new_password"`
}

// PasswordResetRequest payload for reset issuance.
type PasswordResetRequest struct {
	Username string `json:"username"`
}

// PasswordResetConfirm payload for redeeming a reset token.
type PasswordResetConfirm struct {
	Token     string `json:"token"`
	NewSecret string `json:"new_password"`
}

// CreateUserRequest payload for account provisioning.
type CreateUserRequest struct {
	Role     domain.Role `json:"role"`
	Name     string      `json:"name"`
	Username string      `json:"username"`
	Secret   string      `json:"password"`
	Email    string      `json:"email"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        string      `json:"id"`
	Username  string      `json:"username"`
	Role      domain.Role `json:"role"`
	Name      string      `json:"name"`
	Email     string      `json:"email,omitempty"`
	Active    bool        `json:"is_active"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewUserResponse strips credential material from a user record.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		Name:      u.Name,
		Email:     u.Email,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
	}
}
