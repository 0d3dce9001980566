package handler_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/facility-ops-api/internal/dto"
	"github.com/noah-isme/facility-ops-api/internal/models"
)

func TestRosterDuplicateDetectionIsScopedByUserType(t *testing.T) {
	env := newTestEnv(t)
	tenant := env.seedTenant(t, "acme")
	supervisor := env.seedUser(t, tenant.ID, models.RoleSupervisor, "lead@acme.test", nil)
	manager := env.seedUser(t, tenant.ID, models.RoleManager, "manager@acme.test", nil)
	crew := env.seedUser(t, tenant.ID, models.RoleEmployee, "crew@acme.test", &supervisor.ID)

	payload := dto.RosterCreateRequest{
		EmployeeID: crew.ID,
		Site:       "Harbour Mall",
		WeekStart:  "2026-03-16",
		Shifts: []dto.RosterShiftPayload{
			{Day: "monday", Start: "07:00", End: "15:00"},
			{Day: "sunday", Off: true},
		},
	}

	resp := env.do(t, http.MethodPost, "/api/roster", env.token(t, supervisor), payload, viewAs(models.RoleSupervisor))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	created := decodeEnvelope[dto.RosterResponse](t, resp)
	require.Equal(t, models.RoleSupervisor, created.Data.OwnerType)
	require.Equal(t, crew.Name, created.Data.EmployeeName)
	require.Len(t, created.Data.Shifts, 2)

	resp = env.do(t, http.MethodPost, "/api/roster", env.token(t, supervisor), payload, viewAs(models.RoleSupervisor))
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/roster", env.token(t, manager), payload, viewAs(models.RoleManager))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	managed := decodeEnvelope[dto.RosterResponse](t, resp)
	require.Equal(t, models.RoleManager, managed.Data.OwnerType)

	resp = env.do(t, http.MethodGet, "/api/roster", env.token(t, manager), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	list := decodeEnvelope[dto.ListResponse[dto.RosterResponse]](t, resp)
	require.EqualValues(t, 2, list.Data.Pagination.TotalItems)

	resp = env.do(t, http.MethodGet, "/api/roster", env.token(t, supervisor), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	own := decodeEnvelope[dto.ListResponse[dto.RosterResponse]](t, resp)
	require.Len(t, own.Data.Items, 1)
	require.Equal(t, created.Data.ID, own.Data.Items[0].ID)

	resp = env.do(t, http.MethodGet, "/api/roster", env.token(t, crew), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	mine := decodeEnvelope[dto.ListResponse[dto.RosterResponse]](t, resp)
	require.Len(t, mine.Data.Items, 2)
}

func TestRosterWritesRequireSupervisor(t *testing.T) {
	env := newTestEnv(t)
	tenant := env.seedTenant(t, "acme")
	crew := env.seedUser(t, tenant.ID, models.RoleEmployee, "crew@acme.test", nil)
	supervisor := env.seedUser(t, tenant.ID, models.RoleSupervisor, "lead@acme.test", nil)

	resp := env.do(t, http.MethodPost, "/api/roster", env.token(t, crew), dto.RosterCreateRequest{EmployeeID: crew.ID, Site: "Depot"})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/roster", env.token(t, supervisor), dto.RosterCreateRequest{EmployeeID: crew.ID, Site: "Depot"}, viewAs(models.RoleEmployee))
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/roster", env.token(t, supervisor), dto.RosterCreateRequest{EmployeeID: "missing", Site: "Depot"})
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/roster", env.token(t, supervisor), map[string]string{"site": "Depot"})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRosterMissingRecordReturnsNotFound(t *testing.T) {
	env := newTestEnv(t)
	tenant := env.seedTenant(t, "acme")
	admin := env.seedUser(t, tenant.ID, models.RoleAdmin, "admin@acme.test", nil)
	token := env.token(t, admin)
	site := "Depot"

	resp := env.do(t, http.MethodGet, "/api/roster/missing", token, nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodPut, "/api/roster/missing", token, dto.RosterUpdateRequest{Site: &site})
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/api/roster/missing", token, nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
