package dto

import "github.com/atcops/opstrack/internal/common/cnst"

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents a login response
type LoginResponse struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}

// UserInfo represents the authenticated user attached to the request context
type UserInfo struct {
	ID       uint      `json:"id"`
	Username string    `json:"username"`
	Role     cnst.Role `json:"role"`
}

// ChangePasswordRequest represents a request to change password. The
// confirmation must repeat the new password exactly.
type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// UpdateProfileRequest represents a request to update the caller's profile
type UpdateProfileRequest struct {
	Username string `json:"username" binding:"required"`
}
