package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/facility-ops-api/internal/config"
	"github.com/noah-isme/facility-ops-api/internal/handler"
	"github.com/noah-isme/facility-ops-api/internal/middleware"
	"github.com/noah-isme/facility-ops-api/internal/models"
	"github.com/noah-isme/facility-ops-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler              *handler.AuthHandler
	TenantHandler            *handler.TenantHandler
	UserHandler              *handler.UserHandler
	AlertHandler             *handler.AlertHandler
	AttendanceHandler        *handler.AttendanceHandler
	ManagerAttendanceHandler *handler.ManagerAttendanceHandler
	RosterHandler            *handler.RosterHandler
	LeaveHandler             *handler.LeaveHandler
	CRMHandler               *handler.CRMHandler
	InvoiceHandler           *handler.InvoiceHandler
	ExpenseHandler           *handler.ExpenseHandler
	DashboardHandler         *handler.DashboardHandler
	ActivityHandler          *handler.ActivityHandler
	HealthProbes             map[string]handler.HealthProbe
	JWTMiddleware            fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes))

	if deps.AuthHandler != nil {
		api.Post("/auth/login", middleware.RateLimit("login", cfg.LoginRateLimit, time.Minute), deps.AuthHandler.Login)
	}

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	secured := api.Group("", jwtMiddleware, middleware.ViewAs())

	if deps.AuthHandler != nil {
		secured.Get("/auth/me", deps.AuthHandler.Me)
	}

	if deps.TenantHandler != nil {
		tenants := secured.Group("/tenants", middleware.RequireRole(models.RoleSuperadmin))
		deps.TenantHandler.Register(tenants)
	}

	scoped := secured.Group("", middleware.TenantScope())

	if deps.DashboardHandler != nil {
		scoped.Get("/dashboard", deps.DashboardHandler.Get)
	}

	if deps.UserHandler != nil {
		users := scoped.Group("/users", middleware.RequireMinRole(models.RoleSupervisor))
		deps.UserHandler.Register(users, middleware.RequireMinRole(models.RoleAdmin))
	}

	if deps.AlertHandler != nil {
		alerts := scoped.Group("/alerts")
		deps.AlertHandler.Register(alerts, middleware.RequireMinRole(models.RoleSupervisor))
	}

	if deps.AttendanceHandler != nil {
		attendance := scoped.Group("/attendance")
		deps.AttendanceHandler.Register(attendance, handler.AttendanceGuards{
			Supervisor: middleware.RequireMinRole(models.RoleSupervisor),
			Manager:    middleware.RequireMinRole(models.RoleManager),
		})
	}

	if deps.ManagerAttendanceHandler != nil {
		managerAttendance := scoped.Group("/manager-attendance", middleware.RequireMinRole(models.RoleManager))
		deps.ManagerAttendanceHandler.Register(managerAttendance)
	}

	if deps.RosterHandler != nil {
		roster := scoped.Group("/roster")
		deps.RosterHandler.Register(roster, middleware.RequireMinRole(models.RoleSupervisor))
	}

	if deps.LeaveHandler != nil {
		leaves := scoped.Group("/leaves")
		deps.LeaveHandler.Register(leaves, middleware.RequireMinRole(models.RoleManager))
	}

	if deps.CRMHandler != nil {
		crm := scoped.Group("/crm", middleware.RequireMinRole(models.RoleManager))
		deps.CRMHandler.Register(crm)
	}

	if deps.InvoiceHandler != nil {
		invoices := scoped.Group("/invoices", middleware.RequireMinRole(models.RoleManager))
		deps.InvoiceHandler.Register(invoices)
	}

	if deps.ExpenseHandler != nil {
		expenses := scoped.Group("/expenses", middleware.RequireMinRole(models.RoleSupervisor))
		deps.ExpenseHandler.Register(expenses, middleware.RequireMinRole(models.RoleManager))
	}

	if deps.ActivityHandler != nil {
		scoped.Get("/activity", middleware.RequireMinRole(models.RoleAdmin), deps.ActivityHandler.List)
	}
}
