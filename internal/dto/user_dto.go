package dto

import (
	"time"

	"github.com/noah-isme/facility-ops-api/internal/models"
)

// UserListRequest defines filters for listing users.
type UserListRequest struct {
	ListRequest
	Role   string
	Status string
	Search string
}

// UserCreateRequest captures a new staff account. TenantID is honoured only for superadmins.
type UserCreateRequest struct {
	TenantID     string  `json:"tenant_id" validate:"omitempty,max=36"`
	Name         string  `json:"name" validate:"required,min=2,max=255"`
	Email        string  `json:"email" validate:"required,email"`
	Password     string  `json:"password" validate:"required,min=8,max=72"`
	Role         string  `json:"role" validate:"required,oneof=employee supervisor manager admin superadmin"`
	Phone        string  `json:"phone" validate:"omitempty,max=64"`
	Department   string  `json:"department" validate:"omitempty,max=128"`
	SupervisorID *string `json:"supervisor_id" validate:"omitempty,max=36"`
	ManagerID    *string `json:"manager_id" validate:"omitempty,max=36"`
}

// UserUpdateRequest captures partial user updates.
type UserUpdateRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=2,max=255"`
	Password     *string `json:"password" validate:"omitempty,min=8,max=72"`
	Role         *string `json:"role" validate:"omitempty,oneof=employee supervisor manager admin superadmin"`
	Status       *string `json:"status" validate:"omitempty,oneof=active inactive"`
	Phone        *string `json:"phone" validate:"omitempty,max=64"`
	Department   *string `json:"department" validate:"omitempty,max=128"`
	SupervisorID *string `json:"supervisor_id" validate:"omitempty,max=36"`
	ManagerID    *string `json:"manager_id" validate:"omitempty,max=36"`
}

// UserResponse serializes a user without credentials.
type UserResponse struct {
	ID           string     `json:"id"`
	TenantID     string     `json:"tenant_id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	Status       string     `json:"status"`
	Phone        string     `json:"phone"`
	Department   string     `json:"department"`
	SupervisorID *string    `json:"supervisor_id"`
	ManagerID    *string    `json:"manager_id"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NewUserResponse converts a user model into a DTO.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:           user.ID,
		TenantID:     user.TenantID,
		Name:         user.Name,
		Email:        user.Email,
		Role:         user.Role,
		Status:       user.Status,
		Phone:        user.Phone,
		Department:   user.Department,
		SupervisorID: user.SupervisorID,
		ManagerID:    user.ManagerID,
		LastLoginAt:  user.LastLoginAt,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}
