package models

// Tenant statuses.
const (
	TenantStatusActive    = "active"
	TenantStatusSuspended = "suspended"
)

// Tenant is a facility-management company using the back office.
type Tenant struct {
	Record
	Name   string `gorm:"size:255;not null" json:"name"`
	Slug   string `gorm:"size:128;uniqueIndex;not null" json:"slug"`
	Plan   string `gorm:"size:64" json:"plan"`
	Status string `gorm:"size:32;not null;index" json:"status"`
}
