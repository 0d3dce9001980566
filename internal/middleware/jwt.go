package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/facility-ops-api/internal/auth"
	"github.com/noah-isme/facility-ops-api/internal/utils"
)

// JWTProtected returns a middleware that validates bearer tokens and loads the principal.
func JWTProtected(tokens *auth.TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		parts := strings.SplitN(authorization, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		role := normalizeRoleValue(claims.Role)
		c.Locals(LocalUserID, claims.Subject)
		c.Locals(LocalUserRole, role)
		c.Locals(LocalTenantID, strings.TrimSpace(claims.TenantID))
		c.Locals(LocalViewRole, role)

		return c.Next()
	}
}
