package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/facility-ops-api/internal/dto"
	"github.com/noah-isme/facility-ops-api/internal/models"
	"github.com/noah-isme/facility-ops-api/internal/repository"
)

// LeaveService manages leave requests and their review.
type LeaveService interface {
	Create(ctx context.Context, actor Actor, req dto.LeaveCreateRequest) (dto.LeaveResponse, error)
	List(ctx context.Context, actor Actor, req dto.LeaveListRequest) (dto.ListResponse[dto.LeaveResponse], error)
	Approve(ctx context.Context, actor Actor, id string, req dto.LeaveReviewRequest) (dto.LeaveResponse, error)
	Reject(ctx context.Context, actor Actor, id string, req dto.LeaveReviewRequest) (dto.LeaveResponse, error)
	Cancel(ctx context.Context, actor Actor, id string) (dto.LeaveResponse, error)
}

type leaveService struct {
	repo      repository.LeaveRepository
	validator *validator.Validate
	activity  ActivityRecorder
	logger    zerolog.Logger
	now       func() time.Time
}

// NewLeaveService constructs the leave service.
func NewLeaveService(repo repository.LeaveRepository, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) LeaveService {
	return &leaveService{
		repo:      repo,
		validator: validate,
		activity:  activity,
		logger:    logger.With().Str("component", "leave_service").Logger(),
		now:       time.Now,
	}
}

func (s *leaveService) Create(ctx context.Context, actor Actor, req dto.LeaveCreateRequest) (dto.LeaveResponse, error) {
	if err := actor.requireTenant(); err != nil {
		return dto.LeaveResponse{}, err
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.LeaveResponse{}, err
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		return dto.LeaveResponse{}, err
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return dto.LeaveResponse{}, err
	}
	if end.Before(start) {
		return dto.LeaveResponse{}, ErrLeaveDates
	}

	leave := models.LeaveRequest{
		TenantID:   actor.TenantID,
		EmployeeID: actor.ID,
		Type:       req.Type,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Days:       int(end.Sub(start).Hours()/24) + 1,
		Reason:     strings.TrimSpace(req.Reason),
		Status:     models.LeaveStatusPending,
	}
	if err := s.repo.Create(ctx, &leave); err != nil {
		return dto.LeaveResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "leave.requested",
		EntityType: "leave",
		EntityID:   leave.ID,
		Metadata:   map[string]interface{}{"type": leave.Type, "days": leave.Days},
	})
	return dto.NewLeaveResponse(leave), nil
}

func (s *leaveService) List(ctx context.Context, actor Actor, req dto.LeaveListRequest) (dto.ListResponse[dto.LeaveResponse], error) {
	if err := actor.requireTenant(); err != nil {
		return dto.ListResponse[dto.LeaveResponse]{}, err
	}

	filter := repository.LeaveFilter{
		TenantID:   actor.TenantID,
		EmployeeID: strings.TrimSpace(req.EmployeeID),
		Status:     strings.TrimSpace(req.Status),
		Type:       strings.TrimSpace(req.Type),
	}
	if !actor.AtLeast(models.RoleSupervisor) {
		filter.EmployeeID = actor.ID
	}

	pageSize := clampPageSize(req.PageSize)
	filter.Page = repository.Page{Page: req.Page, PageSize: pageSize}
	leaves, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.ListResponse[dto.LeaveResponse]{}, err
	}

	items := make([]dto.LeaveResponse, 0, len(leaves))
	for _, leave := range leaves {
		items = append(items, dto.NewLeaveResponse(leave))
	}
	return dto.ListResponse[dto.LeaveResponse]{
		Items:      items,
		Pagination: dto.NewPaginationMeta(maxInt(req.Page, 1), pageSize, total),
	}, nil
}

func (s *leaveService) Approve(ctx context.Context, actor Actor, id string, req dto.LeaveReviewRequest) (dto.LeaveResponse, error) {
	return s.review(ctx, actor, id, req, models.LeaveStatusApproved)
}

func (s *leaveService) Reject(ctx context.Context, actor Actor, id string, req dto.LeaveReviewRequest) (dto.LeaveResponse, error) {
	return s.review(ctx, actor, id, req, models.LeaveStatusRejected)
}

func (s *leaveService) review(ctx context.Context, actor Actor, id string, req dto.LeaveReviewRequest, status string) (dto.LeaveResponse, error) {
	if err := actor.requireTenant(); err != nil {
		return dto.LeaveResponse{}, err
	}
	if !actor.AtLeast(models.RoleManager) {
		return dto.LeaveResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.LeaveResponse{}, err
	}

	leave, err := s.repo.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return dto.LeaveResponse{}, notFound(err, ErrLeaveNotFound)
	}
	if leave.Status != models.LeaveStatusPending {
		return dto.LeaveResponse{}, ErrLeaveNotPending
	}

	leave.Status = status
	leave.ReviewedBy = stringPtr(actor.ID)
	leave.ReviewedAt = timePtr(s.now().UTC())
	leave.ReviewNote = strings.TrimSpace(req.Note)
	if err := s.repo.Save(ctx, &leave); err != nil {
		return dto.LeaveResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "leave." + status,
		EntityType: "leave",
		EntityID:   leave.ID,
		Metadata:   map[string]interface{}{"employee_id": leave.EmployeeID},
	})
	return dto.NewLeaveResponse(leave), nil
}

func (s *leaveService) Cancel(ctx context.Context, actor Actor, id string) (dto.LeaveResponse, error) {
	if err := actor.requireTenant(); err != nil {
		return dto.LeaveResponse{}, err
	}
	leave, err := s.repo.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return dto.LeaveResponse{}, notFound(err, ErrLeaveNotFound)
	}
	if leave.EmployeeID != actor.ID {
		return dto.LeaveResponse{}, ErrLeaveNotFound
	}
	if leave.Status != models.LeaveStatusPending {
		return dto.LeaveResponse{}, ErrLeaveNotPending
	}

	leave.Status = models.LeaveStatusCancelled
	if err := s.repo.Save(ctx, &leave); err != nil {
		return dto.LeaveResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "leave.cancelled",
		EntityType: "leave",
		EntityID:   leave.ID,
	})
	return dto.NewLeaveResponse(leave), nil
}
