package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/facility-ops-api/internal/dto"
	"github.com/noah-isme/facility-ops-api/internal/models"
	"github.com/noah-isme/facility-ops-api/internal/repository"
)

// RosterService manages weekly shift rosters. Duplicate detection and
// visibility both follow the effective role of the caller.
type RosterService interface {
	Create(ctx context.Context, actor Actor, req dto.RosterCreateRequest) (dto.RosterResponse, error)
	Get(ctx context.Context, actor Actor, id string) (dto.RosterResponse, error)
	List(ctx context.Context, actor Actor, req dto.RosterListRequest) (dto.ListResponse[dto.RosterResponse], error)
	Update(ctx context.Context, actor Actor, id string, req dto.RosterUpdateRequest) (dto.RosterResponse, error)
	Delete(ctx context.Context, actor Actor, id string) error
}

type rosterService struct {
	repo      repository.RosterRepository
	users     repository.UserRepository
	validator *validator.Validate
	activity  ActivityRecorder
	logger    zerolog.Logger
}

// NewRosterService constructs the roster service.
func NewRosterService(repo repository.RosterRepository, users repository.UserRepository, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) RosterService {
	return &rosterService{
		repo:      repo,
		users:     users,
		validator: validate,
		activity:  activity,
		logger:    logger.With().Str("component", "roster_service").Logger(),
	}
}

// rosterScope maps the effective role onto what the caller may see.
func rosterScope(actor Actor) repository.RosterScope {
	scope := repository.RosterScope{TenantID: actor.TenantID}
	switch actor.EffectiveRole() {
	case models.RoleSuperadmin, models.RoleAdmin:
	case models.RoleManager:
		scope.OwnerTypes = []string{models.RoleManager, models.RoleSupervisor}
	case models.RoleSupervisor:
		scope.CreatedBy = actor.ID
	default:
		scope.EmployeeID = actor.ID
	}
	return scope
}

func (s *rosterService) Create(ctx context.Context, actor Actor, req dto.RosterCreateRequest) (dto.RosterResponse, error) {
	if err := actor.requireTenant(); err != nil {
		return dto.RosterResponse{}, err
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.RosterResponse{}, err
	}
	if err := validateShifts(req.Shifts); err != nil {
		return dto.RosterResponse{}, err
	}

	employee, err := s.tenantUser(ctx, actor.TenantID, req.EmployeeID)
	if err != nil {
		return dto.RosterResponse{}, err
	}

	ownerType := actor.EffectiveRole()
	exists, err := s.repo.ExistsForEmployee(ctx, actor.TenantID, employee.ID, ownerType, "")
	if err != nil {
		return dto.RosterResponse{}, err
	}
	if exists {
		return dto.RosterResponse{}, ErrRosterDuplicate
	}

	name := strings.TrimSpace(req.EmployeeName)
	if name == "" {
		name = employee.Name
	}
	status := req.Status
	if status == "" {
		status = models.RosterStatusDraft
	}

	roster := models.Roster{
		TenantID:     actor.TenantID,
		EmployeeID:   employee.ID,
		EmployeeName: name,
		Site:         strings.TrimSpace(req.Site),
		OwnerType:    ownerType,
		CreatedBy:    actor.ID,
		WeekStart:    req.WeekStart,
		Shifts:       dto.ShiftsFromPayload(req.Shifts),
		Status:       status,
		Notes:        strings.TrimSpace(req.Notes),
	}

	if err := s.repo.Create(ctx, &roster); err != nil {
		return dto.RosterResponse{}, err
	}

	s.logger.Info().Str("roster_id", roster.ID).Str("owner_type", ownerType).Msg("roster created")
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "roster.created",
		EntityType: "roster",
		EntityID:   roster.ID,
		Metadata:   map[string]interface{}{"employee_id": roster.EmployeeID, "owner_type": ownerType},
	})

	return dto.NewRosterResponse(roster), nil
}

func (s *rosterService) Get(ctx context.Context, actor Actor, id string) (dto.RosterResponse, error) {
	if err := actor.requireTenant(); err != nil {
		return dto.RosterResponse{}, err
	}
	roster, err := s.repo.Get(ctx, rosterScope(actor), id)
	if err != nil {
		return dto.RosterResponse{}, notFound(err, ErrRosterNotFound)
	}
	return dto.NewRosterResponse(roster), nil
}

func (s *rosterService) List(ctx context.Context, actor Actor, req dto.RosterListRequest) (dto.ListResponse[dto.RosterResponse], error) {
	if err := actor.requireTenant(); err != nil {
		return dto.ListResponse[dto.RosterResponse]{}, err
	}
	pageSize := clampPageSize(req.PageSize)
	rosters, total, err := s.repo.List(ctx, repository.RosterFilter{
		Page:        repository.Page{Page: req.Page, PageSize: pageSize},
		RosterScope: rosterScope(actor),
		Site:        strings.TrimSpace(req.Site),
		WeekStart:   strings.TrimSpace(req.WeekStart),
		Status:      strings.TrimSpace(req.Status),
		Employee:    strings.TrimSpace(req.EmployeeID),
	})
	if err != nil {
		return dto.ListResponse[dto.RosterResponse]{}, err
	}

	items := make([]dto.RosterResponse, 0, len(rosters))
	for _, roster := range rosters {
		items = append(items, dto.NewRosterResponse(roster))
	}
	return dto.ListResponse[dto.RosterResponse]{
		Items:      items,
		Pagination: dto.NewPaginationMeta(maxInt(req.Page, 1), pageSize, total),
	}, nil
}

func (s *rosterService) Update(ctx context.Context, actor Actor, id string, req dto.RosterUpdateRequest) (dto.RosterResponse, error) {
	if err := actor.requireTenant(); err != nil {
		return dto.RosterResponse{}, err
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.RosterResponse{}, err
	}
	if err := validateShifts(req.Shifts); err != nil {
		return dto.RosterResponse{}, err
	}

	roster, err := s.editable(ctx, actor, id)
	if err != nil {
		return dto.RosterResponse{}, err
	}

	if req.EmployeeID != nil && strings.TrimSpace(*req.EmployeeID) != roster.EmployeeID {
		employee, err := s.tenantUser(ctx, actor.TenantID, strings.TrimSpace(*req.EmployeeID))
		if err != nil {
			return dto.RosterResponse{}, err
		}
		exists, err := s.repo.ExistsForEmployee(ctx, actor.TenantID, employee.ID, roster.OwnerType, roster.ID)
		if err != nil {
			return dto.RosterResponse{}, err
		}
		if exists {
			return dto.RosterResponse{}, ErrRosterDuplicate
		}
		roster.EmployeeID = employee.ID
		if req.EmployeeName == nil {
			roster.EmployeeName = employee.Name
		}
	}
	if req.EmployeeName != nil {
		roster.EmployeeName = strings.TrimSpace(*req.EmployeeName)
	}
	if req.Site != nil {
		roster.Site = strings.TrimSpace(*req.Site)
	}
	if req.WeekStart != nil {
		roster.WeekStart = *req.WeekStart
	}
	if req.Shifts != nil {
		roster.Shifts = dto.ShiftsFromPayload(req.Shifts)
	}
	if req.Status != nil {
		roster.Status = *req.Status
	}
	if req.Notes != nil {
		roster.Notes = strings.TrimSpace(*req.Notes)
	}

	if err := s.repo.Save(ctx, &roster); err != nil {
		return dto.RosterResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "roster.updated",
		EntityType: "roster",
		EntityID:   roster.ID,
	})
	return dto.NewRosterResponse(roster), nil
}

func (s *rosterService) Delete(ctx context.Context, actor Actor, id string) error {
	if err := actor.requireTenant(); err != nil {
		return err
	}
	roster, err := s.editable(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, actor.TenantID, roster.ID); err != nil {
		return notFound(err, ErrRosterNotFound)
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "roster.deleted",
		EntityType: "roster",
		EntityID:   roster.ID,
		Metadata:   map[string]interface{}{"employee_id": roster.EmployeeID},
	})
	return nil
}

// editable loads a visible roster the caller created, or any visible roster for managers and above.
func (s *rosterService) editable(ctx context.Context, actor Actor, id string) (models.Roster, error) {
	roster, err := s.repo.Get(ctx, rosterScope(actor), id)
	if err != nil {
		return models.Roster{}, notFound(err, ErrRosterNotFound)
	}
	if roster.CreatedBy != actor.ID && !actor.AtLeast(models.RoleManager) {
		return models.Roster{}, ErrForbidden
	}
	return roster, nil
}

func (s *rosterService) tenantUser(ctx context.Context, tenantID, id string) (models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	if user.TenantID != tenantID {
		return models.User{}, ErrUserNotFound
	}
	return user, nil
}

func validateShifts(shifts []dto.RosterShiftPayload) error {
	for _, shift := range shifts {
		if shift.Off {
			continue
		}
		if shift.Start == "" || shift.End == "" {
			return ErrRosterShift
		}
	}
	return nil
}
