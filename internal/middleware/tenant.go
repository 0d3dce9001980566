package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/facility-ops-api/internal/models"
	"github.com/noah-isme/facility-ops-api/internal/utils"
)

// TenantScope resolves the tenant a request operates on. Superadmins pick one
// with the tenant_id query parameter and may proceed without one; everyone
// else is pinned to their token's tenant.
func TenantScope() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := normalizeRoleValue(c.Locals(LocalUserRole))
		tenantID, _ := c.Locals(LocalTenantID).(string)

		if role == models.RoleSuperadmin {
			if override := strings.TrimSpace(c.Query("tenant_id")); override != "" {
				tenantID = override
			}
		}

		if strings.TrimSpace(tenantID) == "" && role != models.RoleSuperadmin {
			return utils.SendError(c, fiber.StatusBadRequest, "tenant context required")
		}

		c.Locals(LocalTenantID, tenantID)
		return c.Next()
	}
}
