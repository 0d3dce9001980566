package service

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/facility-ops-api/internal/dto"
	"github.com/noah-isme/facility-ops-api/internal/models"
	"github.com/noah-isme/facility-ops-api/internal/observability"
	"github.com/noah-isme/facility-ops-api/internal/repository"
)

// ManagerAttendanceOptions tunes manager attendance rules.
type ManagerAttendanceOptions struct {
	HalfDayHours float64
	MaxPhotos    int
	MaxUploadMB  int
	Location     *time.Location
}

// ManagerAttendanceService tracks manager site attendance.
type ManagerAttendanceService interface {
	CheckIn(ctx context.Context, actor Actor, req dto.ManagerCheckInRequest) (dto.ManagerAttendanceResponse, error)
	StartBreak(ctx context.Context, actor Actor) (dto.ManagerAttendanceResponse, error)
	EndBreak(ctx context.Context, actor Actor) (dto.ManagerAttendanceResponse, error)
	CheckOut(ctx context.Context, actor Actor, req dto.ManagerCheckOutRequest) (dto.ManagerAttendanceResponse, error)
	Today(ctx context.Context, actor Actor) (dto.ManagerAttendanceTodayResponse, error)
	AddPhotos(ctx context.Context, actor Actor, files []*multipart.FileHeader) (dto.ManagerAttendanceResponse, error)
	List(ctx context.Context, actor Actor, req dto.ManagerAttendanceListRequest) (dto.ListResponse[dto.ManagerAttendanceResponse], error)
}

type managerAttendanceService struct {
	repo      repository.ManagerAttendanceRepository
	photos    *photoIntake
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	options   ManagerAttendanceOptions
	now       func() time.Time
}

// NewManagerAttendanceService constructs the manager attendance service. storage may be nil.
func NewManagerAttendanceService(repo repository.ManagerAttendanceRepository, storage FileStorage, validate *validator.Validate, options ManagerAttendanceOptions, logger zerolog.Logger) ManagerAttendanceService {
	if options.HalfDayHours <= 0 {
		options.HalfDayHours = 4
	}
	if options.MaxPhotos <= 0 {
		options.MaxPhotos = 5
	}
	if options.Location == nil {
		options.Location = time.UTC
	}
	componentLogger := logger.With().Str("component", "manager_attendance_service").Logger()
	return &managerAttendanceService{
		repo:      repo,
		photos:    newPhotoIntake(storage, options.MaxUploadMB, componentLogger),
		validator: validate,
		logger:    componentLogger,
		tracer:    observability.Tracer("manager_attendance"),
		options:   options,
		now:       time.Now,
	}
}

func (s *managerAttendanceService) today() (time.Time, string) {
	now := s.now().In(s.options.Location)
	return now, now.Format(models.DateLayout)
}

func (s *managerAttendanceService) CheckIn(ctx context.Context, actor Actor, req dto.ManagerCheckInRequest) (dto.ManagerAttendanceResponse, error) {
	if err := actor.requireTenant(); err != nil {
		return dto.ManagerAttendanceResponse{}, err
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.ManagerAttendanceResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "manager_attendance.checkin", trace.WithAttributes(
		attribute.String("attendance.manager_id", actor.ID),
	))
	defer span.End()

	now, date := s.today()
	if _, err := s.repo.GetByManagerDate(ctx, actor.TenantID, actor.ID, date); err == nil {
		return dto.ManagerAttendanceResponse{}, ErrAlreadyCheckedIn
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		span.RecordError(err)
		return dto.ManagerAttendanceResponse{}, err
	}

	record := models.ManagerAttendance{
		TenantID:  actor.TenantID,
		ManagerID: actor.ID,
		Date:      date,
		Status:    models.AttendanceStatusPresent,
		Site:      strings.TrimSpace(req.Site),
		Remarks:   strings.TrimSpace(req.Remarks),
	}
	_ = startClock(&record.Clock, now)

	if err := s.repo.Create(ctx, &record); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.ManagerAttendanceResponse{}, ErrAlreadyCheckedIn
		}
		span.RecordError(err)
		return dto.ManagerAttendanceResponse{}, err
	}

	observability.AttendanceEvents().WithLabelValues("manager_attendance", "checkin").Inc()
	s.logger.Info().Str("manager_id", actor.ID).Str("site", record.Site).Msg("manager checked in")
	return dto.NewManagerAttendanceResponse(record), nil
}

func (s *managerAttendanceService) StartBreak(ctx context.Context, actor Actor) (dto.ManagerAttendanceResponse, error) {
	return s.transition(ctx, actor, "break_start", func(record *models.ManagerAttendance, now time.Time) error {
		return startBreak(&record.Clock, now)
	})
}

func (s *managerAttendanceService) EndBreak(ctx context.Context, actor Actor) (dto.ManagerAttendanceResponse, error) {
	return s.transition(ctx, actor, "break_end", func(record *models.ManagerAttendance, now time.Time) error {
		return endBreak(&record.Clock, now)
	})
}

func (s *managerAttendanceService) CheckOut(ctx context.Context, actor Actor, req dto.ManagerCheckOutRequest) (dto.ManagerAttendanceResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ManagerAttendanceResponse{}, err
	}
	return s.transition(ctx, actor, "checkout", func(record *models.ManagerAttendance, now time.Time) error {
		status, err := finishClock(&record.Clock, now, s.options.HalfDayHours)
		if err != nil {
			return err
		}
		record.Status = status
		if remarks := strings.TrimSpace(req.Remarks); remarks != "" {
			record.Remarks = remarks
		}
		return nil
	})
}

func (s *managerAttendanceService) transition(ctx context.Context, actor Actor, action string, apply func(*models.ManagerAttendance, time.Time) error) (dto.ManagerAttendanceResponse, error) {
	if err := actor.requireTenant(); err != nil {
		return dto.ManagerAttendanceResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "manager_attendance."+action)
	defer span.End()

	now, date := s.today()
	record, err := s.repo.GetByManagerDate(ctx, actor.TenantID, actor.ID, date)
	if err != nil {
		return dto.ManagerAttendanceResponse{}, notFound(err, ErrAttendanceNotFound)
	}
	if err := apply(&record, now); err != nil {
		return dto.ManagerAttendanceResponse{}, err
	}
	if err := s.repo.Save(ctx, &record); err != nil {
		span.RecordError(err)
		return dto.ManagerAttendanceResponse{}, err
	}

	observability.AttendanceEvents().WithLabelValues("manager_attendance", action).Inc()
	return dto.NewManagerAttendanceResponse(record), nil
}

func (s *managerAttendanceService) Today(ctx context.Context, actor Actor) (dto.ManagerAttendanceTodayResponse, error) {
	if err := actor.requireTenant(); err != nil {
		return dto.ManagerAttendanceTodayResponse{}, err
	}
	_, date := s.today()
	response := dto.ManagerAttendanceTodayResponse{Date: date, State: models.ClockStateNotClocked}

	record, err := s.repo.GetByManagerDate(ctx, actor.TenantID, actor.ID, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response, nil
		}
		return dto.ManagerAttendanceTodayResponse{}, err
	}
	payload := dto.NewManagerAttendanceResponse(record)
	response.Record = &payload
	response.State = record.State
	return response, nil
}

func (s *managerAttendanceService) AddPhotos(ctx context.Context, actor Actor, files []*multipart.FileHeader) (dto.ManagerAttendanceResponse, error) {
	if err := actor.requireTenant(); err != nil {
		return dto.ManagerAttendanceResponse{}, err
	}
	if len(files) == 0 {
		return dto.ManagerAttendanceResponse{}, ErrPhotoRequired
	}

	_, date := s.today()
	record, err := s.repo.GetByManagerDate(ctx, actor.TenantID, actor.ID, date)
	if err != nil {
		return dto.ManagerAttendanceResponse{}, notFound(err, ErrAttendanceNotFound)
	}
	if len(record.Photos)+len(files) > s.options.MaxPhotos {
		return dto.ManagerAttendanceResponse{}, ErrPhotoLimit
	}

	urls, err := s.photos.store(ctx, actor.TenantID+"/"+date, files)
	if err != nil {
		return dto.ManagerAttendanceResponse{}, err
	}

	record.Photos = append(record.Photos, urls...)
	if err := s.repo.Save(ctx, &record); err != nil {
		return dto.ManagerAttendanceResponse{}, err
	}

	observability.AttendanceEvents().WithLabelValues("manager_attendance", "photos").Inc()
	return dto.NewManagerAttendanceResponse(record), nil
}

func (s *managerAttendanceService) List(ctx context.Context, actor Actor, req dto.ManagerAttendanceListRequest) (dto.ListResponse[dto.ManagerAttendanceResponse], error) {
	if err := actor.requireTenant(); err != nil {
		return dto.ListResponse[dto.ManagerAttendanceResponse]{}, err
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.ListResponse[dto.ManagerAttendanceResponse]{}, err
	}
	if err := validateRange(req.From, req.To); err != nil {
		return dto.ListResponse[dto.ManagerAttendanceResponse]{}, err
	}

	managerID := strings.TrimSpace(req.ManagerID)
	if !actor.AtLeast(models.RoleAdmin) {
		managerID = actor.ID
	}

	pageSize := clampPageSize(req.PageSize)
	records, total, err := s.repo.List(ctx, repository.ManagerAttendanceFilter{
		Page:      repository.Page{Page: req.Page, PageSize: pageSize},
		TenantID:  actor.TenantID,
		ManagerID: managerID,
		Date:      req.Date,
		From:      req.From,
		To:        req.To,
	})
	if err != nil {
		return dto.ListResponse[dto.ManagerAttendanceResponse]{}, err
	}

	items := make([]dto.ManagerAttendanceResponse, 0, len(records))
	for _, record := range records {
		items = append(items, dto.NewManagerAttendanceResponse(record))
	}
	return dto.ListResponse[dto.ManagerAttendanceResponse]{
		Items:      items,
		Pagination: dto.NewPaginationMeta(maxInt(req.Page, 1), pageSize, total),
	}, nil
}
