package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/facility-ops-api/internal/models"
	"github.com/noah-isme/facility-ops-api/internal/utils"
)

// ViewAs applies the X-User-Type header as the effective role for the request.
// Callers may only step down to a role at or below their own rank.
func ViewAs() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actual := normalizeRoleValue(c.Locals(LocalUserRole))
		requested := normalizeRoleValue(c.Get(HeaderUserType))

		if requested == "" {
			c.Locals(LocalViewRole, actual)
			return c.Next()
		}

		if !models.IsValidRole(requested) {
			return utils.SendError(c, fiber.StatusBadRequest, "unknown user type")
		}
		if models.RoleRank(requested) > models.RoleRank(actual) {
			return utils.SendError(c, fiber.StatusForbidden, "user type not permitted")
		}

		c.Locals(LocalViewRole, requested)
		return c.Next()
	}
}
