package dto

import (
	"time"

	"github.com/noah-isme/facility-ops-api/internal/models"
)

// TenantListRequest defines filters for listing tenants.
type TenantListRequest struct {
	ListRequest
	Search string
	Status string
}

// TenantCreateRequest captures a new tenant.
type TenantCreateRequest struct {
	Name string `json:"name" validate:"required,min=2,max=255"`
	Slug string `json:"slug" validate:"required,min=2,max=128"`
	Plan string `json:"plan" validate:"omitempty,max=64"`
}

// TenantUpdateRequest captures partial tenant updates.
type TenantUpdateRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=2,max=255"`
	Plan   *string `json:"plan" validate:"omitempty,max=64"`
	Status *string `json:"status" validate:"omitempty,oneof=active suspended"`
}

// TenantResponse serializes a tenant.
type TenantResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Plan      string    `json:"plan"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTenantResponse converts a tenant model into a DTO.
func NewTenantResponse(tenant models.Tenant) TenantResponse {
	return TenantResponse{
		ID:        tenant.ID,
		Name:      tenant.Name,
		Slug:      tenant.Slug,
		Plan:      tenant.Plan,
		Status:    tenant.Status,
		CreatedAt: tenant.CreatedAt,
		UpdatedAt: tenant.UpdatedAt,
	}
}
