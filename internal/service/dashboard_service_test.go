package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/facility-ops-api/internal/models"
	"github.com/noah-isme/facility-ops-api/internal/repository"
)

type dashboardFixture struct {
	db         *gorm.DB
	tenant     models.Tenant
	admin      models.User
	supervisor models.User
	crew       models.User
	other      models.User
}

func newDashboardFixture(t *testing.T) dashboardFixture {
	t.Helper()
	db := setupServiceDB(t)
	tenant := seedTenant(t, db, "acme")
	seedTenant(t, db, "globex")

	admin := seedUser(t, db, tenant.ID, models.RoleAdmin, "admin@acme.test", nil)
	supervisor := seedUser(t, db, tenant.ID, models.RoleSupervisor, "lead@acme.test", nil)
	crew := seedUser(t, db, tenant.ID, models.RoleEmployee, "crew@acme.test", &supervisor.ID)
	other := seedUser(t, db, tenant.ID, models.RoleEmployee, "other@acme.test", nil)

	hours := []struct {
		employee string
		date     string
		status   string
		total    float64
	}{
		{crew.ID, "2026-03-16", models.AttendanceStatusPresent, 8},
		{other.ID, "2026-03-16", models.AttendanceStatusHalfDay, 3.5},
		{crew.ID, "2026-03-13", models.AttendanceStatusPresent, 7.25},
		{crew.ID, "2026-02-27", models.AttendanceStatusPresent, 9},
	}
	for _, row := range hours {
		record := models.Attendance{
			TenantID:   tenant.ID,
			EmployeeID: row.employee,
			Date:       row.date,
			Status:     row.status,
			Clock:      models.Clock{State: models.ClockStateCheckedOut, TotalHours: row.total},
		}
		require.NoError(t, db.Create(&record).Error)
	}

	leaves := []models.LeaveRequest{
		{TenantID: tenant.ID, EmployeeID: crew.ID, Type: models.LeaveTypeAnnual, StartDate: "2026-04-01", EndDate: "2026-04-02", Days: 2, Status: models.LeaveStatusPending},
		{TenantID: tenant.ID, EmployeeID: other.ID, Type: models.LeaveTypeSick, StartDate: "2026-03-20", EndDate: "2026-03-20", Days: 1, Status: models.LeaveStatusPending},
		{TenantID: tenant.ID, EmployeeID: crew.ID, Type: models.LeaveTypeSick, StartDate: "2026-03-02", EndDate: "2026-03-02", Days: 1, Status: models.LeaveStatusApproved},
	}
	require.NoError(t, db.Create(&leaves).Error)

	alerts := []models.Alert{
		{TenantID: tenant.ID, Title: "Leak", Message: "Basement", Severity: models.AlertSeverityWarning, Category: "maintenance", Audience: models.RoleEmployee, Status: models.AlertStatusOpen},
		{TenantID: tenant.ID, Title: "Audit", Message: "Board", Severity: models.AlertSeverityInfo, Category: "system", Audience: models.RoleSuperadmin, Status: models.AlertStatusOpen},
		{TenantID: tenant.ID, Title: "Fixed", Message: "Done", Severity: models.AlertSeverityInfo, Category: "system", Audience: models.RoleEmployee, Status: models.AlertStatusResolved},
	}
	require.NoError(t, db.Create(&alerts).Error)

	leads := []models.Lead{
		{TenantID: tenant.ID, Name: "Harbour", Status: models.LeadStatusNew},
		{TenantID: tenant.ID, Name: "Dockside", Status: models.LeadStatusClosedWon},
	}
	require.NoError(t, db.Create(&leads).Error)

	invoices := []models.Invoice{
		{TenantID: tenant.ID, Number: "INV-202603-0001", ClientID: "c1", IssueDate: "2026-03-01", DueDate: "2026-03-31", Status: models.InvoiceStatusSent, Total: 100.5},
		{TenantID: tenant.ID, Number: "INV-202603-0002", ClientID: "c1", IssueDate: "2026-03-02", DueDate: "2026-03-31", Status: models.InvoiceStatusOverdue, Total: 200},
		{TenantID: tenant.ID, Number: "INV-202603-0003", ClientID: "c1", IssueDate: "2026-03-03", DueDate: "2026-03-31", Status: models.InvoiceStatusPaid, Total: 999},
	}
	require.NoError(t, db.Create(&invoices).Error)

	expenses := []models.Expense{
		{TenantID: tenant.ID, Category: "supplies", Amount: 20, IncurredOn: "2026-03-10", Status: models.ExpenseStatusPending, SubmittedBy: admin.ID},
		{TenantID: tenant.ID, Category: "travel", Amount: 30, IncurredOn: "2026-03-11", Status: models.ExpenseStatusApproved, SubmittedBy: admin.ID},
	}
	require.NoError(t, db.Create(&expenses).Error)

	return dashboardFixture{db: db, tenant: tenant, admin: admin, supervisor: supervisor, crew: crew, other: other}
}

func newDashboardService(db *gorm.DB, cache *redis.Client) *dashboardService {
	svc := NewDashboardService(DashboardRepositories{
		Tenants:    repository.NewTenantRepository(db),
		Users:      repository.NewUserRepository(db),
		Attendance: repository.NewAttendanceRepository(db),
		Leaves:     repository.NewLeaveRepository(db),
		Alerts:     repository.NewAlertRepository(db),
		Leads:      repository.NewLeadRepository(db),
		Invoices:   repository.NewInvoiceRepository(db),
		Expenses:   repository.NewExpenseRepository(db),
	}, cache, time.Minute, time.UTC, zerolog.Nop()).(*dashboardService)
	svc.now = func() time.Time { return time.Date(2026, 3, 16, 15, 0, 0, 0, time.UTC) }
	return svc
}

func TestDashboardServicePerRole(t *testing.T) {
	fx := newDashboardFixture(t)
	svc := newDashboardService(fx.db, nil)
	ctx := context.Background()

	platform, err := svc.Get(ctx, Actor{ID: "root", Role: models.RoleSuperadmin})
	require.NoError(t, err)
	require.Equal(t, models.RoleSuperadmin, platform.Role)
	require.Equal(t, int64(2), *platform.Tenants)
	require.Equal(t, int64(4), *platform.Users)
	require.Nil(t, platform.Headcount)

	ops, err := svc.Get(ctx, actorFor(fx.admin))
	require.NoError(t, err)
	require.Equal(t, int64(4), *ops.Headcount)
	require.Equal(t, map[string]int64{
		models.AttendanceStatusPresent: 1,
		models.AttendanceStatusHalfDay: 1,
		models.AttendanceStatusAbsent:  0,
		models.AttendanceStatusLeave:   0,
	}, ops.AttendanceToday)
	require.Equal(t, int64(2), *ops.PendingLeaves)
	require.Equal(t, int64(1), *ops.OpenAlerts)
	require.Equal(t, int64(1), *ops.OpenLeads)
	require.Equal(t, 300.5, *ops.OutstandingInvoices)
	require.Equal(t, int64(1), *ops.PendingExpenses)

	team, err := svc.Get(ctx, actorFor(fx.supervisor))
	require.NoError(t, err)
	require.Equal(t, int64(1), *team.Headcount)
	require.Equal(t, int64(1), team.AttendanceToday[models.AttendanceStatusPresent])
	require.Equal(t, int64(0), team.AttendanceToday[models.AttendanceStatusHalfDay])
	require.Nil(t, team.OpenLeads)

	personal, err := svc.Get(ctx, actorFor(fx.crew))
	require.NoError(t, err)
	require.NotNil(t, personal.Today)
	require.Equal(t, "2026-03-16", personal.Today.Date)
	require.Equal(t, 15.25, *personal.MonthHours)
	require.Equal(t, int64(1), *personal.PendingLeaves)
	require.Nil(t, personal.OutstandingInvoices)
}

func TestDashboardServiceViewAsSupervisorWithoutTeam(t *testing.T) {
	fx := newDashboardFixture(t)
	svc := newDashboardService(fx.db, nil)

	actor := actorFor(fx.admin)
	actor.ViewRole = models.RoleSupervisor
	response, err := svc.Get(context.Background(), actor)
	require.NoError(t, err)
	require.Equal(t, models.RoleSupervisor, response.Role)
	require.Equal(t, int64(0), *response.Headcount)
	require.Equal(t, int64(0), response.AttendanceToday[models.AttendanceStatusPresent])
}

func TestDashboardServiceRequiresTenant(t *testing.T) {
	svc := newDashboardService(setupServiceDB(t), nil)

	_, err := svc.Get(context.Background(), Actor{ID: "u1", Role: models.RoleManager})
	require.ErrorIs(t, err, ErrTenantRequired)
}

func TestDashboardServiceCachesPerRole(t *testing.T) {
	fx := newDashboardFixture(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := newDashboardService(fx.db, client)
	ctx := context.Background()
	actor := actorFor(fx.admin)

	first, err := svc.Get(ctx, actor)
	require.NoError(t, err)
	key := "dashboard:v1:" + fx.tenant.ID + ":admin:" + fx.admin.ID
	require.True(t, mr.Exists(key))

	require.NoError(t, fx.db.Create(&models.Lead{TenantID: fx.tenant.ID, Name: "Late", Status: models.LeadStatusNew}).Error)

	cached, err := svc.Get(ctx, actor)
	require.NoError(t, err)
	require.Equal(t, *first.OpenLeads, *cached.OpenLeads)

	mr.FastForward(2 * time.Minute)
	fresh, err := svc.Get(ctx, actor)
	require.NoError(t, err)
	require.Equal(t, int64(2), *fresh.OpenLeads)
}
