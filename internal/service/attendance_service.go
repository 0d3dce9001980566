package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/facility-ops-api/internal/dto"
	"github.com/noah-isme/facility-ops-api/internal/models"
	"github.com/noah-isme/facility-ops-api/internal/observability"
	"github.com/noah-isme/facility-ops-api/internal/repository"
	"github.com/noah-isme/facility-ops-api/pkg/report"
)

// AttendanceOptions tunes the attendance rules.
type AttendanceOptions struct {
	HalfDayHours float64
	Location     *time.Location
}

// AttendanceService tracks the working day of employees.
type AttendanceService interface {
	CheckIn(ctx context.Context, actor Actor, req dto.CheckInRequest) (dto.AttendanceResponse, error)
	StartBreak(ctx context.Context, actor Actor) (dto.AttendanceResponse, error)
	EndBreak(ctx context.Context, actor Actor) (dto.AttendanceResponse, error)
	CheckOut(ctx context.Context, actor Actor, req dto.CheckOutRequest) (dto.AttendanceResponse, error)
	Today(ctx context.Context, actor Actor) (dto.AttendanceTodayResponse, error)
	Mine(ctx context.Context, actor Actor, req dto.AttendanceListRequest) (dto.ListResponse[dto.AttendanceResponse], error)
	List(ctx context.Context, actor Actor, req dto.AttendanceListRequest) (dto.ListResponse[dto.AttendanceResponse], error)
	Mark(ctx context.Context, actor Actor, req dto.AttendanceMarkRequest) (dto.AttendanceResponse, error)
	UpdateStatus(ctx context.Context, actor Actor, id string, req dto.AttendanceStatusRequest) (dto.AttendanceResponse, error)
	Summary(ctx context.Context, actor Actor, from, to string) (dto.AttendanceSummaryResponse, error)
	Export(ctx context.Context, actor Actor, from, to string) ([]byte, error)
}

type attendanceService struct {
	repo      repository.AttendanceRepository
	users     repository.UserRepository
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	options   AttendanceOptions
	now       func() time.Time
}

// NewAttendanceService constructs the employee attendance service.
func NewAttendanceService(repo repository.AttendanceRepository, users repository.UserRepository, validate *validator.Validate, options AttendanceOptions, logger zerolog.Logger) AttendanceService {
	if options.HalfDayHours <= 0 {
		options.HalfDayHours = 4
	}
	if options.Location == nil {
		options.Location = time.UTC
	}
	return &attendanceService{
		repo:      repo,
		users:     users,
		validator: validate,
		logger:    logger.With().Str("component", "attendance_service").Logger(),
		tracer:    observability.Tracer("attendance"),
		options:   options,
		now:       time.Now,
	}
}

func (s *attendanceService) today() (time.Time, string) {
	now := s.now().In(s.options.Location)
	return now, now.Format(models.DateLayout)
}

func (s *attendanceService) CheckIn(ctx context.Context, actor Actor, req dto.CheckInRequest) (dto.AttendanceResponse, error) {
	if err := actor.requireTenant(); err != nil {
		return dto.AttendanceResponse{}, err
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.AttendanceResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "attendance.checkin", trace.WithAttributes(
		attribute.String("attendance.employee_id", actor.ID),
		attribute.String("attendance.tenant_id", actor.TenantID),
	))
	defer span.End()

	now, date := s.today()
	if _, err := s.repo.GetByEmployeeDate(ctx, actor.TenantID, actor.ID, date); err == nil {
		return dto.AttendanceResponse{}, ErrAlreadyCheckedIn
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		span.RecordError(err)
		return dto.AttendanceResponse{}, err
	}

	record := models.Attendance{
		TenantID:   actor.TenantID,
		EmployeeID: actor.ID,
		Date:       date,
		Status:     models.AttendanceStatusPresent,
	}
	_ = startClock(&record.Clock, now)
	applyCheckIn(&record, req)
	if err := s.repo.Create(ctx, &record); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.AttendanceResponse{}, ErrAlreadyCheckedIn
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		return dto.AttendanceResponse{}, err
	}

	observability.AttendanceEvents().WithLabelValues("attendance", "checkin").Inc()
	s.logger.Info().Str("employee_id", actor.ID).Str("date", date).Msg("employee checked in")
	return dto.NewAttendanceResponse(record), nil
}

func applyCheckIn(record *models.Attendance, req dto.CheckInRequest) {
	if location := strings.TrimSpace(req.Location); location != "" {
		record.Location = location
	}
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		record.Notes = notes
	}
	if len(req.Photos) > 0 {
		record.Photos = append([]string(nil), req.Photos...)
	}
}

func (s *attendanceService) StartBreak(ctx context.Context, actor Actor) (dto.AttendanceResponse, error) {
	return s.transition(ctx, actor, "break_start", func(record *models.Attendance, now time.Time) error {
		return startBreak(&record.Clock, now)
	})
}

func (s *attendanceService) EndBreak(ctx context.Context, actor Actor) (dto.AttendanceResponse, error) {
	return s.transition(ctx, actor, "break_end", func(record *models.Attendance, now time.Time) error {
		return endBreak(&record.Clock, now)
	})
}

func (s *attendanceService) CheckOut(ctx context.Context, actor Actor, req dto.CheckOutRequest) (dto.AttendanceResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AttendanceResponse{}, err
	}
	return s.transition(ctx, actor, "checkout", func(record *models.Attendance, now time.Time) error {
		status, err := finishClock(&record.Clock, now, s.options.HalfDayHours)
		if err != nil {
			return err
		}
		record.Status = status
		if notes := strings.TrimSpace(req.Notes); notes != "" {
			record.Notes = notes
		}
		return nil
	})
}

func (s *attendanceService) transition(ctx context.Context, actor Actor, action string, apply func(*models.Attendance, time.Time) error) (dto.AttendanceResponse, error) {
	if err := actor.requireTenant(); err != nil {
		return dto.AttendanceResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "attendance."+action, trace.WithAttributes(
		attribute.String("attendance.employee_id", actor.ID),
	))
	defer span.End()

	now, date := s.today()
	record, err := s.repo.GetByEmployeeDate(ctx, actor.TenantID, actor.ID, date)
	if err != nil {
		return dto.AttendanceResponse{}, notFound(err, ErrAttendanceNotFound)
	}

	if err := apply(&record, now); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return dto.AttendanceResponse{}, err
	}

	if err := s.repo.Save(ctx, &record); err != nil {
		span.RecordError(err)
		return dto.AttendanceResponse{}, err
	}

	observability.AttendanceEvents().WithLabelValues("attendance", action).Inc()
	s.logger.Info().Str("employee_id", actor.ID).Str("action", action).Str("state", record.State).Msg("attendance updated")
	return dto.NewAttendanceResponse(record), nil
}

func (s *attendanceService) Today(ctx context.Context, actor Actor) (dto.AttendanceTodayResponse, error) {
	if err := actor.requireTenant(); err != nil {
		return dto.AttendanceTodayResponse{}, err
	}
	_, date := s.today()
	response := dto.AttendanceTodayResponse{Date: date, State: models.ClockStateNotClocked}

	record, err := s.repo.GetByEmployeeDate(ctx, actor.TenantID, actor.ID, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response, nil
		}
		return dto.AttendanceTodayResponse{}, err
	}

	payload := dto.NewAttendanceResponse(record)
	response.Record = &payload
	if record.State != "" {
		response.State = record.State
	}
	return response, nil
}

func (s *attendanceService) Mine(ctx context.Context, actor Actor, req dto.AttendanceListRequest) (dto.ListResponse[dto.AttendanceResponse], error) {
	req.EmployeeID = actor.ID
	return s.list(ctx, actor, req, nil)
}

func (s *attendanceService) List(ctx context.Context, actor Actor, req dto.AttendanceListRequest) (dto.ListResponse[dto.AttendanceResponse], error) {
	visible, err := s.visibleEmployees(ctx, actor)
	if err != nil {
		return dto.ListResponse[dto.AttendanceResponse]{}, err
	}
	return s.list(ctx, actor, req, visible)
}

func (s *attendanceService) list(ctx context.Context, actor Actor, req dto.AttendanceListRequest, employeeIDs []string) (dto.ListResponse[dto.AttendanceResponse], error) {
	if err := actor.requireTenant(); err != nil {
		return dto.ListResponse[dto.AttendanceResponse]{}, err
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.ListResponse[dto.AttendanceResponse]{}, err
	}
	if err := validateRange(req.From, req.To); err != nil {
		return dto.ListResponse[dto.AttendanceResponse]{}, err
	}

	pageSize := clampPageSize(req.PageSize)
	records, total, err := s.repo.List(ctx, repository.AttendanceFilter{
		Page:        repository.Page{Page: req.Page, PageSize: pageSize},
		TenantID:    actor.TenantID,
		EmployeeID:  strings.TrimSpace(req.EmployeeID),
		EmployeeIDs: employeeIDs,
		Date:        req.Date,
		From:        req.From,
		To:          req.To,
		Status:      req.Status,
	})
	if err != nil {
		return dto.ListResponse[dto.AttendanceResponse]{}, err
	}

	items := make([]dto.AttendanceResponse, 0, len(records))
	for _, record := range records {
		items = append(items, dto.NewAttendanceResponse(record))
	}
	return dto.ListResponse[dto.AttendanceResponse]{
		Items:      items,
		Pagination: dto.NewPaginationMeta(maxInt(req.Page, 1), pageSize, total),
	}, nil
}

// visibleEmployees returns nil when the whole tenant is visible.
func (s *attendanceService) visibleEmployees(ctx context.Context, actor Actor) ([]string, error) {
	switch {
	case actor.AtLeast(models.RoleManager):
		return nil, nil
	case actor.EffectiveRole() == models.RoleSupervisor:
		ids, err := s.users.IDs(ctx, repository.UserFilter{TenantID: actor.TenantID, SupervisorID: actor.ID})
		if err != nil {
			return nil, err
		}
		if ids == nil {
			ids = []string{}
		}
		return ids, nil
	default:
		return []string{actor.ID}, nil
	}
}

func (s *attendanceService) Mark(ctx context.Context, actor Actor, req dto.AttendanceMarkRequest) (dto.AttendanceResponse, error) {
	if err := actor.requireTenant(); err != nil {
		return dto.AttendanceResponse{}, err
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.AttendanceResponse{}, err
	}

	employee, err := s.users.GetByID(ctx, req.EmployeeID)
	if err != nil || employee.TenantID != actor.TenantID {
		if err == nil || errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AttendanceResponse{}, ErrUserNotFound
		}
		return dto.AttendanceResponse{}, err
	}

	record, err := s.repo.GetByEmployeeDate(ctx, actor.TenantID, employee.ID, req.Date)
	switch {
	case err == nil:
		record.Status = req.Status
		if notes := strings.TrimSpace(req.Notes); notes != "" {
			record.Notes = notes
		}
		record.MarkedBy = stringPtr(actor.ID)
		err = s.repo.Save(ctx, &record)
	case errors.Is(err, gorm.ErrRecordNotFound):
		record = models.Attendance{
			TenantID:   actor.TenantID,
			EmployeeID: employee.ID,
			Date:       req.Date,
			Status:     req.Status,
			Notes:      strings.TrimSpace(req.Notes),
			MarkedBy:   stringPtr(actor.ID),
			Clock:      models.Clock{State: models.ClockStateNotClocked},
		}
		err = s.repo.Create(ctx, &record)
	}
	if err != nil {
		return dto.AttendanceResponse{}, err
	}

	observability.AttendanceEvents().WithLabelValues("attendance", "mark").Inc()
	s.logger.Info().Str("employee_id", employee.ID).Str("date", req.Date).Str("status", req.Status).Msg("attendance marked")
	return dto.NewAttendanceResponse(record), nil
}

func (s *attendanceService) UpdateStatus(ctx context.Context, actor Actor, id string, req dto.AttendanceStatusRequest) (dto.AttendanceResponse, error) {
	if err := actor.requireTenant(); err != nil {
		return dto.AttendanceResponse{}, err
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.AttendanceResponse{}, err
	}

	record, err := s.repo.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return dto.AttendanceResponse{}, notFound(err, ErrAttendanceNotFound)
	}

	record.Status = req.Status
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		record.Notes = notes
	}
	record.MarkedBy = stringPtr(actor.ID)
	if err := s.repo.Save(ctx, &record); err != nil {
		return dto.AttendanceResponse{}, err
	}

	observability.AttendanceEvents().WithLabelValues("attendance", "status").Inc()
	return dto.NewAttendanceResponse(record), nil
}

func (s *attendanceService) Summary(ctx context.Context, actor Actor, from, to string) (dto.AttendanceSummaryResponse, error) {
	if err := actor.requireTenant(); err != nil {
		return dto.AttendanceSummaryResponse{}, err
	}
	from, to, err := s.resolveRange(from, to)
	if err != nil {
		return dto.AttendanceSummaryResponse{}, err
	}
	visible, err := s.visibleEmployees(ctx, actor)
	if err != nil {
		return dto.AttendanceSummaryResponse{}, err
	}

	rows, err := s.repo.Summary(ctx, repository.AttendanceFilter{TenantID: actor.TenantID, EmployeeIDs: visible, From: from, To: to})
	if err != nil {
		return dto.AttendanceSummaryResponse{}, err
	}

	response := dto.AttendanceSummaryResponse{
		From: from,
		To:   to,
		ByStatus: map[string]int64{
			models.AttendanceStatusPresent: 0,
			models.AttendanceStatusAbsent:  0,
			models.AttendanceStatusHalfDay: 0,
			models.AttendanceStatusLeave:   0,
		},
	}
	for _, row := range rows {
		response.ByStatus[row.Status] = row.Count
		response.Records += row.Count
		response.TotalHours += row.Total
	}
	response.TotalHours = round2(response.TotalHours)
	return response, nil
}

func (s *attendanceService) Export(ctx context.Context, actor Actor, from, to string) ([]byte, error) {
	if err := actor.requireTenant(); err != nil {
		return nil, err
	}
	from, to, err := s.resolveRange(from, to)
	if err != nil {
		return nil, err
	}
	visible, err := s.visibleEmployees(ctx, actor)
	if err != nil {
		return nil, err
	}

	records, _, err := s.repo.List(ctx, repository.AttendanceFilter{TenantID: actor.TenantID, EmployeeIDs: visible, From: from, To: to})
	if err != nil {
		return nil, err
	}

	rows := make([][]interface{}, 0, len(records))
	for _, record := range records {
		rows = append(rows, []interface{}{
			record.Date,
			record.EmployeeID,
			record.Status,
			record.State,
			formatClockTime(record.CheckInAt, s.options.Location),
			formatClockTime(record.CheckOutAt, s.options.Location),
			record.BreakMinutes,
			record.TotalHours,
			record.Location,
			record.Notes,
		})
	}

	summary, err := s.Summary(ctx, actor, from, to)
	if err != nil {
		return nil, err
	}
	summaryRows := [][]interface{}{}
	for _, status := range []string{models.AttendanceStatusPresent, models.AttendanceStatusHalfDay, models.AttendanceStatusAbsent, models.AttendanceStatusLeave} {
		summaryRows = append(summaryRows, []interface{}{status, summary.ByStatus[status]})
	}
	summaryRows = append(summaryRows, []interface{}{"total_hours", summary.TotalHours})

	return report.Workbook(
		report.Sheet{
			Name:    "Attendance",
			Headers: []string{"Date", "Employee", "Status", "State", "Check In", "Check Out", "Break Minutes", "Total Hours", "Location", "Notes"},
			Rows:    rows,
		},
		report.Sheet{Name: "Summary", Headers: []string{"Status", "Count"}, Rows: summaryRows},
	)
}

// resolveRange defaults to the current month.
func (s *attendanceService) resolveRange(from, to string) (string, string, error) {
	now, _ := s.today()
	if strings.TrimSpace(from) == "" {
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format(models.DateLayout)
	}
	if strings.TrimSpace(to) == "" {
		to = now.Format(models.DateLayout)
	}
	if _, err := parseDate(from); err != nil {
		return "", "", fmt.Errorf("%w: invalid from date", ErrInvalidDateRange)
	}
	if _, err := parseDate(to); err != nil {
		return "", "", fmt.Errorf("%w: invalid to date", ErrInvalidDateRange)
	}
	if err := validateRange(from, to); err != nil {
		return "", "", err
	}
	return from, to, nil
}

func formatClockTime(value *time.Time, loc *time.Location) string {
	if value == nil {
		return ""
	}
	return value.In(loc).Format("15:04")
}
