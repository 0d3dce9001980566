package handler_test

import (
	"bytes"
	"io"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/facility-ops-api/internal/dto"
	"github.com/noah-isme/facility-ops-api/internal/models"
	"github.com/noah-isme/facility-ops-api/pkg/report"
)

func TestAttendanceClockFlow(t *testing.T) {
	env := newTestEnv(t)
	tenant := env.seedTenant(t, "acme")
	supervisor := env.seedUser(t, tenant.ID, models.RoleSupervisor, "lead@acme.test", nil)
	crew := env.seedUser(t, tenant.ID, models.RoleEmployee, "crew@acme.test", &supervisor.ID)
	token := env.token(t, crew)

	resp := env.do(t, http.MethodPost, "/api/attendance/checkout", token, nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/attendance/checkin", token, dto.CheckInRequest{Location: "Gate 4"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	checkedIn := decodeEnvelope[dto.AttendanceResponse](t, resp)
	require.Equal(t, models.ClockStateCheckedIn, checkedIn.Data.State)
	require.Equal(t, "Gate 4", checkedIn.Data.Location)

	resp = env.do(t, http.MethodPost, "/api/attendance/checkin", token, nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/attendance/break/start", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/attendance/checkout", token, nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/attendance/break/end", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resumed := decodeEnvelope[dto.AttendanceResponse](t, resp)
	require.Equal(t, 1, resumed.Data.BreakCount)

	resp = env.do(t, http.MethodPost, "/api/attendance/checkout", token, dto.CheckOutRequest{Notes: "done"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	checkedOut := decodeEnvelope[dto.AttendanceResponse](t, resp)
	require.Equal(t, models.ClockStateCheckedOut, checkedOut.Data.State)
	require.NotNil(t, checkedOut.Data.CheckOutAt)

	resp = env.do(t, http.MethodGet, "/api/attendance/today", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	today := decodeEnvelope[dto.AttendanceTodayResponse](t, resp)
	require.Equal(t, models.ClockStateCheckedOut, today.Data.State)
	require.NotNil(t, today.Data.Record)

	resp = env.do(t, http.MethodGet, "/api/attendance/me", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	mine := decodeEnvelope[dto.ListResponse[dto.AttendanceResponse]](t, resp)
	require.Len(t, mine.Data.Items, 1)
}

func TestAttendanceTeamViewsAreGuarded(t *testing.T) {
	env := newTestEnv(t)
	tenant := env.seedTenant(t, "acme")
	supervisor := env.seedUser(t, tenant.ID, models.RoleSupervisor, "lead@acme.test", nil)
	crew := env.seedUser(t, tenant.ID, models.RoleEmployee, "crew@acme.test", &supervisor.ID)
	other := env.seedUser(t, tenant.ID, models.RoleEmployee, "other@acme.test", nil)

	for _, user := range []models.User{crew, other} {
		resp := env.do(t, http.MethodPost, "/api/attendance/checkin", env.token(t, user), nil)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	}

	resp := env.do(t, http.MethodGet, "/api/attendance", env.token(t, crew), nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/attendance", env.token(t, supervisor), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	team := decodeEnvelope[dto.ListResponse[dto.AttendanceResponse]](t, resp)
	require.Len(t, team.Data.Items, 1)
	require.Equal(t, crew.ID, team.Data.Items[0].EmployeeID)

	resp = env.do(t, http.MethodGet, "/api/attendance?from=2026-03-10&to=2026-03-01", env.token(t, supervisor), nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/attendance/mark", env.token(t, supervisor), dto.AttendanceMarkRequest{
		EmployeeID: crew.ID,
		Date:       "2026-03-02",
		Status:     models.AttendanceStatusAbsent,
	})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/attendance?page=abc", env.token(t, supervisor), nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAttendanceExportReturnsWorkbook(t *testing.T) {
	env := newTestEnv(t)
	tenant := env.seedTenant(t, "acme")
	manager := env.seedUser(t, tenant.ID, models.RoleManager, "manager@acme.test", nil)
	crew := env.seedUser(t, tenant.ID, models.RoleEmployee, "crew@acme.test", nil)

	resp := env.do(t, http.MethodPost, "/api/attendance/checkin", env.token(t, crew), nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/attendance/export", env.token(t, manager), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, report.ContentType, resp.Header.Get(fiber.HeaderContentType))
	require.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "attendance-")

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NotEmpty(t, body)

	workbook, err := excelize.OpenReader(bytes.NewReader(body))
	require.NoError(t, err)
	defer workbook.Close()
	require.NotEmpty(t, workbook.GetSheetList())
}
