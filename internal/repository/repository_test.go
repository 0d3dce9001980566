package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/facility-ops-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func TestAttendanceRepositoryRejectsSecondRecordForSameDay(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAttendanceRepository(db)
	ctx := context.Background()

	first := models.Attendance{TenantID: "t1", EmployeeID: "e1", Date: "2026-03-02", Status: models.AttendanceStatusPresent}
	require.NoError(t, repo.Create(ctx, &first))

	second := models.Attendance{TenantID: "t1", EmployeeID: "e1", Date: "2026-03-02", Status: models.AttendanceStatusPresent}
	err := repo.Create(ctx, &second)
	require.Error(t, err)
	require.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "expected duplicated key, got %v", err)

	other := models.Attendance{TenantID: "t1", EmployeeID: "e1", Date: "2026-03-03", Status: models.AttendanceStatusPresent}
	require.NoError(t, repo.Create(ctx, &other))

	otherTenant := models.Attendance{TenantID: "t2", EmployeeID: "e1", Date: "2026-03-02", Status: models.AttendanceStatusPresent}
	require.NoError(t, repo.Create(ctx, &otherTenant))

	found, err := repo.GetByEmployeeDate(ctx, "t1", "e1", "2026-03-02")
	require.NoError(t, err)
	require.Equal(t, first.ID, found.ID)
}

func TestAttendanceRepositorySummaryGroupsByStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAttendanceRepository(db)
	ctx := context.Background()

	records := []models.Attendance{
		{TenantID: "t1", EmployeeID: "e1", Date: "2026-03-02", Status: models.AttendanceStatusPresent, Clock: models.Clock{TotalHours: 8}},
		{TenantID: "t1", EmployeeID: "e2", Date: "2026-03-02", Status: models.AttendanceStatusPresent, Clock: models.Clock{TotalHours: 7.5}},
		{TenantID: "t1", EmployeeID: "e3", Date: "2026-03-02", Status: models.AttendanceStatusAbsent},
		{TenantID: "t2", EmployeeID: "e4", Date: "2026-03-02", Status: models.AttendanceStatusPresent, Clock: models.Clock{TotalHours: 9}},
	}
	for i := range records {
		require.NoError(t, repo.Create(ctx, &records[i]))
	}

	rows, err := repo.Summary(ctx, AttendanceFilter{TenantID: "t1", Date: "2026-03-02"})
	require.NoError(t, err)

	byStatus := map[string]StatusCount{}
	for _, row := range rows {
		byStatus[row.Status] = row
	}
	require.Equal(t, int64(2), byStatus[models.AttendanceStatusPresent].Count)
	require.InDelta(t, 15.5, byStatus[models.AttendanceStatusPresent].Total, 0.001)
	require.Equal(t, int64(1), byStatus[models.AttendanceStatusAbsent].Count)
}

func TestRosterRepositoryScopesAndDuplicates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRosterRepository(db)
	ctx := context.Background()

	bySupervisor := models.Roster{TenantID: "t1", EmployeeID: "e1", Site: "North", OwnerType: models.RoleSupervisor, CreatedBy: "s1", Status: models.RosterStatusDraft}
	byAdmin := models.Roster{TenantID: "t1", EmployeeID: "e1", Site: "North", OwnerType: models.RoleAdmin, CreatedBy: "a1", Status: models.RosterStatusDraft}
	require.NoError(t, repo.Create(ctx, &bySupervisor))
	require.NoError(t, repo.Create(ctx, &byAdmin))

	exists, err := repo.ExistsForEmployee(ctx, "t1", "e1", models.RoleSupervisor, "")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = repo.ExistsForEmployee(ctx, "t1", "e1", models.RoleSupervisor, bySupervisor.ID)
	require.NoError(t, err)
	require.False(t, exists)

	exists, err = repo.ExistsForEmployee(ctx, "t2", "e1", models.RoleSupervisor, "")
	require.NoError(t, err)
	require.False(t, exists)

	managerScope := RosterScope{TenantID: "t1", OwnerTypes: []string{models.RoleManager, models.RoleSupervisor}}
	items, total, err := repo.List(ctx, RosterFilter{RosterScope: managerScope})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, bySupervisor.ID, items[0].ID)

	_, err = repo.Get(ctx, managerScope, byAdmin.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.Delete(ctx, "t1", byAdmin.ID))
	require.ErrorIs(t, repo.Delete(ctx, "t1", byAdmin.ID), gorm.ErrRecordNotFound)
}

func TestLeadRepositoryConvertLinksClient(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLeadRepository(db)
	ctx := context.Background()

	lead := models.Lead{TenantID: "t1", Name: "Harbor Offices", Status: models.LeadStatusQualified, EstimatedValue: 1200}
	require.NoError(t, repo.Create(ctx, &lead))

	client := models.Client{TenantID: "t1", Name: "Harbor Offices", Status: models.ClientStatusActive}
	require.NoError(t, repo.Convert(ctx, &lead, &client))

	stored, err := repo.GetByID(ctx, "t1", lead.ID)
	require.NoError(t, err)
	require.Equal(t, models.LeadStatusClosedWon, stored.Status)
	require.NotNil(t, stored.ClientID)
	require.Equal(t, client.ID, *stored.ClientID)

	open, err := repo.CountOpen(ctx, "t1")
	require.NoError(t, err)
	require.Zero(t, open)

	rows, err := repo.Pipeline(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.InDelta(t, 1200, rows[0].Value, 0.001)
}

func TestInvoiceRepositoryNumberUniquePerTenant(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInvoiceRepository(db)
	ctx := context.Background()

	first := models.Invoice{TenantID: "t1", Number: "INV-202603-0001", ClientID: "c1", IssueDate: "2026-03-01", DueDate: "2026-03-31", Status: models.InvoiceStatusDraft}
	require.NoError(t, repo.Create(ctx, &first))

	clash := models.Invoice{TenantID: "t1", Number: "INV-202603-0001", ClientID: "c1", IssueDate: "2026-03-01", DueDate: "2026-03-31", Status: models.InvoiceStatusDraft}
	require.ErrorIs(t, repo.Create(ctx, &clash), gorm.ErrDuplicatedKey)

	otherTenant := models.Invoice{TenantID: "t2", Number: "INV-202603-0001", ClientID: "c9", IssueDate: "2026-03-01", DueDate: "2026-03-31", Status: models.InvoiceStatusDraft}
	require.NoError(t, repo.Create(ctx, &otherTenant))

	second := models.Invoice{TenantID: "t1", Number: "INV-202603-0007", ClientID: "c1", IssueDate: "2026-03-02", DueDate: "2026-03-31", Status: models.InvoiceStatusDraft}
	require.NoError(t, repo.Create(ctx, &second))

	last, err := repo.LastNumber(ctx, "t1", "INV-202603-")
	require.NoError(t, err)
	require.Equal(t, "INV-202603-0007", last)

	none, err := repo.LastNumber(ctx, "t1", "INV-202604-")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestUserRepositoryListFiltersByRole(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	users := []models.User{
		{TenantID: "t1", Name: "Ana", Email: "ana@example.com", Role: models.RoleEmployee, Status: models.UserStatusActive},
		{TenantID: "t1", Name: "Ben", Email: "ben@example.com", Role: models.RoleSupervisor, Status: models.UserStatusActive},
		{TenantID: "t2", Name: "Cid", Email: "cid@example.com", Role: models.RoleEmployee, Status: models.UserStatusActive},
	}
	for i := range users {
		require.NoError(t, repo.Create(ctx, &users[i]))
	}

	items, total, err := repo.List(ctx, UserFilter{TenantID: "t1", Roles: []string{models.RoleEmployee}})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "Ana", items[0].Name)

	found, err := repo.GetByEmail(ctx, " BEN@example.com ")
	require.NoError(t, err)
	require.Equal(t, users[1].ID, found.ID)
}
