package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func withRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(LocalUserID, "user-1")
		c.Locals(LocalUserRole, role)
		c.Locals(LocalViewRole, role)
		return c.Next()
	}
}

func TestRequireRoleAllowsAuthorizedRoles(t *testing.T) {
	app := fiber.New()
	app.Use(withRole("Admin"))
	app.Use(RequireRole("admin", "superadmin"))
	app.Get("/tenants", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/tenants", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireRoleRejectsUnauthorizedRoles(t *testing.T) {
	app := fiber.New()
	app.Use(withRole("employee"))
	app.Use(RequireRole("admin", "superadmin"))
	app.Get("/tenants", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/tenants", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRequireMinRoleUsesRank(t *testing.T) {
	cases := []struct {
		role   string
		status int
	}{
		{role: "employee", status: fiber.StatusForbidden},
		{role: "supervisor", status: fiber.StatusForbidden},
		{role: "manager", status: fiber.StatusOK},
		{role: "superadmin", status: fiber.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.role, func(t *testing.T) {
			app := fiber.New()
			app.Use(withRole(tc.role))
			app.Get("/", RequireMinRole("manager"), func(c *fiber.Ctx) error {
				return c.SendStatus(fiber.StatusOK)
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
