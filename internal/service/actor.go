package service

import (
	"strings"

	"github.com/noah-isme/facility-ops-api/internal/models"
)

// Actor is the authenticated caller performing an operation. ViewRole is the
// role selected through the view switch and never outranks Role.
type Actor struct {
	ID       string
	Role     string
	ViewRole string
	TenantID string
}

// EffectiveRole returns the role used for visibility decisions.
func (a Actor) EffectiveRole() string {
	if role := strings.ToLower(strings.TrimSpace(a.ViewRole)); role != "" {
		return role
	}
	return strings.ToLower(strings.TrimSpace(a.Role))
}

// Rank returns the privilege rank of the effective role.
func (a Actor) Rank() int {
	return models.RoleRank(a.EffectiveRole())
}

// AtLeast reports whether the effective role ranks at or above role.
func (a Actor) AtLeast(role string) bool {
	return a.Rank() >= models.RoleRank(role)
}

func (a Actor) requireTenant() error {
	if strings.TrimSpace(a.TenantID) == "" {
		return ErrTenantRequired
	}
	return nil
}

// rolesAtOrBelow lists the roles whose rank does not exceed the given rank.
func rolesAtOrBelow(rank int) []string {
	roles := make([]string, 0, 5)
	for _, role := range []string{models.RoleEmployee, models.RoleSupervisor, models.RoleManager, models.RoleAdmin, models.RoleSuperadmin} {
		if models.RoleRank(role) <= rank {
			roles = append(roles, role)
		}
	}
	return roles
}
