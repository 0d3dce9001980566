package handler_test

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/facility-ops-api/internal/dto"
	"github.com/noah-isme/facility-ops-api/internal/models"
)

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	schemaPath, err := filepath.Abs(filepath.Join("testdata", name))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + filepath.ToSlash(schemaPath))
	require.NoError(t, err)
	return schema
}

func validateBody(t *testing.T, schema *jsonschema.Schema, resp *http.Response) {
	t.Helper()
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload), string(body))
}

func TestDashboardContract(t *testing.T) {
	schema := compileSchema(t, "dashboard.schema.json")
	env := newTestEnv(t)
	tenant := env.seedTenant(t, "acme")
	root := env.seedUser(t, "", models.RoleSuperadmin, "root@platform.test", nil)
	admin := env.seedUser(t, tenant.ID, models.RoleAdmin, "admin@acme.test", nil)
	crew := env.seedUser(t, tenant.ID, models.RoleEmployee, "crew@acme.test", nil)

	resp := env.do(t, http.MethodPost, "/api/attendance/checkin", env.token(t, crew), nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	for _, user := range []models.User{root, admin, crew} {
		resp := env.do(t, http.MethodGet, "/api/dashboard", env.token(t, user), nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode, user.Role)
		validateBody(t, schema, resp)
	}

	resp = env.do(t, http.MethodGet, "/api/dashboard", env.token(t, admin), nil, viewAs(models.RoleSupervisor))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	validateBody(t, schema, resp)
}

func TestRosterListContract(t *testing.T) {
	schema := compileSchema(t, "roster_list.schema.json")
	env := newTestEnv(t)
	tenant := env.seedTenant(t, "acme")
	manager := env.seedUser(t, tenant.ID, models.RoleManager, "manager@acme.test", nil)
	crew := env.seedUser(t, tenant.ID, models.RoleEmployee, "crew@acme.test", nil)

	resp := env.do(t, http.MethodPost, "/api/roster", env.token(t, manager), dto.RosterCreateRequest{
		EmployeeID: crew.ID,
		Site:       "Depot",
		Shifts:     []dto.RosterShiftPayload{{Day: "tuesday", Start: "22:00", End: "06:00"}},
		Status:     models.RosterStatusPublished,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/roster?page=1&page_size=5", env.token(t, manager), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	validateBody(t, schema, resp)
}

func TestErrorEnvelopeContract(t *testing.T) {
	schema := compileSchema(t, "error_envelope.schema.json")
	env := newTestEnv(t)
	tenant := env.seedTenant(t, "acme")
	crew := env.seedUser(t, tenant.ID, models.RoleEmployee, "crew@acme.test", nil)

	cases := []*http.Response{
		env.do(t, http.MethodGet, "/api/dashboard", "", nil),
		env.do(t, http.MethodGet, "/api/users", env.token(t, crew), nil),
		env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "nope"}),
		env.do(t, http.MethodGet, "/api/roster/missing", env.token(t, crew), nil),
	}
	for _, resp := range cases {
		require.GreaterOrEqual(t, resp.StatusCode, fiber.StatusBadRequest)
		validateBody(t, schema, resp)
	}
}
