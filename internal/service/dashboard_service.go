package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/facility-ops-api/internal/dto"
	"github.com/noah-isme/facility-ops-api/internal/models"
	"github.com/noah-isme/facility-ops-api/internal/observability"
	"github.com/noah-isme/facility-ops-api/internal/repository"
)

// DashboardService builds the role-specific landing summary.
type DashboardService interface {
	Get(ctx context.Context, actor Actor) (dto.DashboardResponse, error)
}

// DashboardRepositories groups the read sources of the dashboard.
type DashboardRepositories struct {
	Tenants    repository.TenantRepository
	Users      repository.UserRepository
	Attendance repository.AttendanceRepository
	Leaves     repository.LeaveRepository
	Alerts     repository.AlertRepository
	Leads      repository.LeadRepository
	Invoices   repository.InvoiceRepository
	Expenses   repository.ExpenseRepository
}

type dashboardService struct {
	repos    DashboardRepositories
	cache    *redis.Client
	cacheTTL time.Duration
	location *time.Location
	logger   zerolog.Logger
	now      func() time.Time
}

// NewDashboardService constructs the dashboard service. cache may be nil.
func NewDashboardService(repos DashboardRepositories, cache *redis.Client, ttl time.Duration, location *time.Location, logger zerolog.Logger) DashboardService {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	if location == nil {
		location = time.UTC
	}
	return &dashboardService{
		repos:    repos,
		cache:    cache,
		cacheTTL: ttl,
		location: location,
		logger:   logger.With().Str("component", "dashboard_service").Logger(),
		now:      time.Now,
	}
}

func (s *dashboardService) Get(ctx context.Context, actor Actor) (dto.DashboardResponse, error) {
	role := actor.EffectiveRole()
	if role != models.RoleSuperadmin {
		if err := actor.requireTenant(); err != nil {
			return dto.DashboardResponse{}, err
		}
	}
	cacheKey := fmt.Sprintf("dashboard:v1:%s:%s:%s", actor.TenantID, role, actor.ID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.DashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				observability.CacheRequests().WithLabelValues("dashboard", "hit").Inc()
				s.logger.Debug().Str("role", role).Str("user_id", actor.ID).Msg("dashboard cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
		observability.CacheRequests().WithLabelValues("dashboard", "miss").Inc()
	}

	now := s.now().In(s.location)
	response := dto.DashboardResponse{Role: role, GeneratedAt: now.UTC()}

	var err error
	switch role {
	case models.RoleSuperadmin:
		err = s.fillPlatform(ctx, &response)
	case models.RoleAdmin, models.RoleManager:
		err = s.fillOperations(ctx, actor, now, &response)
	case models.RoleSupervisor:
		err = s.fillTeam(ctx, actor, now, &response)
	default:
		err = s.fillPersonal(ctx, actor, now, &response)
	}
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	if s.cache != nil {
		payload, err := json.Marshal(response)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
			}
		}
	}
	return response, nil
}

func (s *dashboardService) fillPlatform(ctx context.Context, response *dto.DashboardResponse) error {
	tenants, err := s.repos.Tenants.Count(ctx)
	if err != nil {
		return err
	}
	users, err := s.repos.Users.Count(ctx, repository.UserFilter{})
	if err != nil {
		return err
	}
	response.Tenants = &tenants
	response.Users = &users
	return nil
}

func (s *dashboardService) fillOperations(ctx context.Context, actor Actor, now time.Time, response *dto.DashboardResponse) error {
	headcount, err := s.repos.Users.Count(ctx, repository.UserFilter{TenantID: actor.TenantID, Status: models.UserStatusActive})
	if err != nil {
		return err
	}
	attendance, err := s.attendanceToday(ctx, actor.TenantID, nil, now)
	if err != nil {
		return err
	}
	pendingLeaves, err := s.repos.Leaves.Count(ctx, repository.LeaveFilter{TenantID: actor.TenantID, Status: models.LeaveStatusPending})
	if err != nil {
		return err
	}
	openAlerts, err := s.repos.Alerts.CountOpen(ctx, actor.TenantID, rolesAtOrBelow(actor.Rank()))
	if err != nil {
		return err
	}
	openLeads, err := s.repos.Leads.CountOpen(ctx, actor.TenantID)
	if err != nil {
		return err
	}

	invoices, err := s.repos.Invoices.Summary(ctx, actor.TenantID)
	if err != nil {
		return err
	}
	outstanding := 0.0
	for _, row := range invoices {
		if row.Status == models.InvoiceStatusSent || row.Status == models.InvoiceStatusOverdue {
			outstanding += row.Amount
		}
	}
	outstanding = round2(outstanding)

	expenses, err := s.repos.Expenses.Summary(ctx, actor.TenantID)
	if err != nil {
		return err
	}
	var pendingExpenses int64
	for _, row := range expenses {
		if row.Status == models.ExpenseStatusPending {
			pendingExpenses = row.Count
		}
	}

	response.Headcount = &headcount
	response.AttendanceToday = attendance
	response.PendingLeaves = &pendingLeaves
	response.OpenAlerts = &openAlerts
	response.OpenLeads = &openLeads
	response.OutstandingInvoices = &outstanding
	response.PendingExpenses = &pendingExpenses
	return nil
}

func (s *dashboardService) fillTeam(ctx context.Context, actor Actor, now time.Time, response *dto.DashboardResponse) error {
	team, err := s.repos.Users.IDs(ctx, repository.UserFilter{TenantID: actor.TenantID, SupervisorID: actor.ID, Status: models.UserStatusActive})
	if err != nil {
		return err
	}
	if team == nil {
		team = []string{}
	}
	attendance, err := s.attendanceToday(ctx, actor.TenantID, team, now)
	if err != nil {
		return err
	}
	headcount := int64(len(team))
	response.Headcount = &headcount
	response.AttendanceToday = attendance
	return nil
}

func (s *dashboardService) fillPersonal(ctx context.Context, actor Actor, now time.Time, response *dto.DashboardResponse) error {
	today := now.Format(models.DateLayout)
	record, err := s.repos.Attendance.GetByEmployeeDate(ctx, actor.TenantID, actor.ID, today)
	switch {
	case err == nil:
		payload := dto.NewAttendanceResponse(record)
		response.Today = &payload
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format(models.DateLayout)
	rows, err := s.repos.Attendance.Summary(ctx, repository.AttendanceFilter{
		TenantID:   actor.TenantID,
		EmployeeID: actor.ID,
		From:       monthStart,
		To:         today,
	})
	if err != nil {
		return err
	}
	hours := 0.0
	for _, row := range rows {
		hours += row.Total
	}
	hours = round2(hours)

	pendingLeaves, err := s.repos.Leaves.Count(ctx, repository.LeaveFilter{TenantID: actor.TenantID, EmployeeID: actor.ID, Status: models.LeaveStatusPending})
	if err != nil {
		return err
	}

	response.MonthHours = &hours
	response.PendingLeaves = &pendingLeaves
	return nil
}

func (s *dashboardService) attendanceToday(ctx context.Context, tenantID string, employees []string, now time.Time) (map[string]int64, error) {
	rows, err := s.repos.Attendance.Summary(ctx, repository.AttendanceFilter{
		TenantID:    tenantID,
		EmployeeIDs: employees,
		Date:        now.Format(models.DateLayout),
	})
	if err != nil {
		return nil, err
	}
	counts := map[string]int64{
		models.AttendanceStatusPresent: 0,
		models.AttendanceStatusHalfDay: 0,
		models.AttendanceStatusAbsent:  0,
		models.AttendanceStatusLeave:   0,
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
