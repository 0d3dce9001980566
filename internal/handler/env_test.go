package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/facility-ops-api/internal/auth"
	"github.com/noah-isme/facility-ops-api/internal/config"
	"github.com/noah-isme/facility-ops-api/internal/handler"
	"github.com/noah-isme/facility-ops-api/internal/middleware"
	"github.com/noah-isme/facility-ops-api/internal/models"
	"github.com/noah-isme/facility-ops-api/internal/repository"
	"github.com/noah-isme/facility-ops-api/internal/router"
	"github.com/noah-isme/facility-ops-api/internal/service"
)

const testPassword = "correct-horse"

// testEnv is a fully wired API on an in-memory database.
type testEnv struct {
	app    *fiber.App
	db     *gorm.DB
	tokens *auth.TokenManager
	alerts service.AlertService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.Nop()
	tokens := auth.NewTokenManager("handler-test-secret", time.Hour)
	cfg := config.Config{AppName: "facility-test", AppEnv: "test", LoginRateLimit: 100}

	tenantRepo := repository.NewTenantRepository(db)
	userRepo := repository.NewUserRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	leaveRepo := repository.NewLeaveRepository(db)
	clientRepo := repository.NewClientRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)

	activity := service.NewActivityService(repository.NewActivityLogRepository(db), logger)
	alerts := service.NewAlertService(alertRepo, nil, "", nil, validate, logger)

	app := fiber.New()
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:   handler.NewAuthHandler(service.NewAuthService(userRepo, tenantRepo, tokens, validate, bcrypt.MinCost, logger), logger),
		TenantHandler: handler.NewTenantHandler(service.NewTenantService(tenantRepo, validate, activity, logger), logger),
		UserHandler:   handler.NewUserHandler(service.NewUserService(userRepo, validate, activity, bcrypt.MinCost, logger), logger),
		AlertHandler:  handler.NewAlertHandler(alerts, logger),
		AttendanceHandler: handler.NewAttendanceHandler(service.NewAttendanceService(attendanceRepo, userRepo, validate, service.AttendanceOptions{
			HalfDayHours: 4,
			Location:     time.UTC,
		}, logger), logger),
		ManagerAttendanceHandler: handler.NewManagerAttendanceHandler(service.NewManagerAttendanceService(repository.NewManagerAttendanceRepository(db), nil, validate, service.ManagerAttendanceOptions{
			HalfDayHours: 4,
			MaxPhotos:    3,
			MaxUploadMB:  1,
			Location:     time.UTC,
		}, logger), logger),
		RosterHandler: handler.NewRosterHandler(service.NewRosterService(repository.NewRosterRepository(db), userRepo, validate, activity, logger), logger),
		LeaveHandler:  handler.NewLeaveHandler(service.NewLeaveService(leaveRepo, validate, activity, logger), logger),
		CRMHandler: handler.NewCRMHandler(
			service.NewClientService(clientRepo, validate, activity, logger),
			service.NewLeadService(leadRepo, validate, activity, nil, time.Minute, logger),
			service.NewCommunicationService(repository.NewCommunicationRepository(db), clientRepo, leadRepo, validate, logger),
			logger,
		),
		InvoiceHandler: handler.NewInvoiceHandler(service.NewInvoiceService(invoiceRepo, clientRepo, validate, activity, time.UTC, logger), logger),
		ExpenseHandler: handler.NewExpenseHandler(service.NewExpenseService(expenseRepo, validate, activity, time.UTC, logger), logger),
		DashboardHandler: handler.NewDashboardHandler(service.NewDashboardService(service.DashboardRepositories{
			Tenants:    tenantRepo,
			Users:      userRepo,
			Attendance: attendanceRepo,
			Leaves:     leaveRepo,
			Alerts:     alertRepo,
			Leads:      leadRepo,
			Invoices:   invoiceRepo,
			Expenses:   expenseRepo,
		}, nil, time.Minute, time.UTC, logger), logger),
		ActivityHandler: handler.NewActivityHandler(activity, logger),
		JWTMiddleware:   middleware.JWTProtected(tokens),
	})

	return &testEnv{app: app, db: db, tokens: tokens, alerts: alerts}
}

func (e *testEnv) seedTenant(t *testing.T, slug string) models.Tenant {
	t.Helper()
	tenant := models.Tenant{Name: slug, Slug: slug, Status: models.TenantStatusActive}
	require.NoError(t, e.db.Create(&tenant).Error)
	return tenant
}

func (e *testEnv) seedUser(t *testing.T, tenantID, role, email string, supervisorID *string) models.User {
	t.Helper()
	hash, err := auth.HashPassword(testPassword, bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{
		TenantID:     tenantID,
		Name:         email,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       models.UserStatusActive,
		SupervisorID: supervisorID,
	}
	require.NoError(t, e.db.Create(&user).Error)
	return user
}

func (e *testEnv) token(t *testing.T, user models.User) string {
	t.Helper()
	token, _, err := e.tokens.Generate(user.ID, user.Role, user.TenantID)
	require.NoError(t, err)
	return token
}

type requestOption func(*http.Request)

func viewAs(role string) requestOption {
	return func(req *http.Request) {
		req.Header.Set(middleware.HeaderUserType, role)
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}, opts ...requestOption) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	for _, opt := range opts {
		opt(req)
	}

	resp, err := e.app.Test(req, 5000)
	require.NoError(t, err)
	return resp
}

type envelope[T any] struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    T                 `json:"data"`
	Details map[string]string `json:"details"`
}

func decodeEnvelope[T any](t *testing.T, resp *http.Response) envelope[T] {
	t.Helper()
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload envelope[T]
	require.NoError(t, json.Unmarshal(body, &payload), string(body))
	return payload
}
