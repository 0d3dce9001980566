package models

import (
	"strings"
	"time"
)

// Roles ordered from least to most privileged.
const (
	RoleEmployee   = "employee"
	RoleSupervisor = "supervisor"
	RoleManager    = "manager"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

// User statuses.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

var roleRanks = map[string]int{
	RoleEmployee:   1,
	RoleSupervisor: 2,
	RoleManager:    3,
	RoleAdmin:      4,
	RoleSuperadmin: 5,
}

// RoleRank returns the privilege rank of a role, or 0 when unknown.
func RoleRank(role string) int {
	return roleRanks[strings.ToLower(strings.TrimSpace(role))]
}

// IsValidRole reports whether role is one of the declared roles.
func IsValidRole(role string) bool {
	return RoleRank(role) > 0
}

// User is an authenticated member of a tenant. Superadmins have no tenant.
type User struct {
	Record
	TenantID     string     `gorm:"size:36;index" json:"tenant_id"`
	Name         string     `gorm:"size:255;not null" json:"name"`
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	Role         string     `gorm:"size:32;not null;index" json:"role"`
	Status       string     `gorm:"size:32;not null;index" json:"status"`
	Phone        string     `gorm:"size:64" json:"phone"`
	Department   string     `gorm:"size:128" json:"department"`
	SupervisorID *string    `gorm:"size:36;index" json:"supervisor_id"`
	ManagerID    *string    `gorm:"size:36;index" json:"manager_id"`
	LastLoginAt  *time.Time `json:"last_login_at"`
}
