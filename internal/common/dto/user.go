package dto

// CreateUserRequest represents a request to create a new user
type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=service_maintenance service_integration chef_departement superadmin"`
}

// UpdateUserRequest represents a request to update a user. Absent fields are
// left untouched.
type UpdateUserRequest struct {
	Password *string `json:"password,omitempty" binding:"omitempty,min=8"`
	Role     *string `json:"role,omitempty" binding:"omitempty,oneof=service_maintenance service_integration chef_departement superadmin"`
	IsActive *bool   `json:"is_active,omitempty"`
}
