package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/facility-ops-api/internal/auth"
	"github.com/noah-isme/facility-ops-api/internal/dto"
	"github.com/noah-isme/facility-ops-api/internal/models"
	"github.com/noah-isme/facility-ops-api/internal/repository"
)

// UserService manages tenant staff accounts.
type UserService interface {
	List(ctx context.Context, actor Actor, req dto.UserListRequest) (dto.ListResponse[dto.UserResponse], error)
	Get(ctx context.Context, actor Actor, id string) (dto.UserResponse, error)
	Create(ctx context.Context, actor Actor, req dto.UserCreateRequest) (dto.UserResponse, error)
	Update(ctx context.Context, actor Actor, id string, req dto.UserUpdateRequest) (dto.UserResponse, error)
	Deactivate(ctx context.Context, actor Actor, id string) (dto.UserResponse, error)
}

type userService struct {
	repo       repository.UserRepository
	validator  *validator.Validate
	activity   ActivityRecorder
	bcryptCost int
	logger     zerolog.Logger
}

// NewUserService constructs the user service.
func NewUserService(repo repository.UserRepository, validate *validator.Validate, activity ActivityRecorder, bcryptCost int, logger zerolog.Logger) UserService {
	return &userService{
		repo:       repo,
		validator:  validate,
		activity:   activity,
		bcryptCost: bcryptCost,
		logger:     logger.With().Str("component", "user_service").Logger(),
	}
}

// userScope narrows listings to the accounts the effective role may see.
func userScope(actor Actor) repository.UserFilter {
	filter := repository.UserFilter{TenantID: actor.TenantID}
	switch actor.EffectiveRole() {
	case models.RoleSuperadmin, models.RoleAdmin:
	case models.RoleManager:
		filter.Roles = []string{models.RoleSupervisor, models.RoleEmployee}
	case models.RoleSupervisor:
		filter.Roles = []string{models.RoleEmployee}
		filter.SupervisorID = actor.ID
	default:
		filter.Roles = []string{}
	}
	return filter
}

func (s *userService) List(ctx context.Context, actor Actor, req dto.UserListRequest) (dto.ListResponse[dto.UserResponse], error) {
	if actor.EffectiveRole() != models.RoleSuperadmin {
		if err := actor.requireTenant(); err != nil {
			return dto.ListResponse[dto.UserResponse]{}, err
		}
	}
	if !actor.AtLeast(models.RoleSupervisor) {
		return dto.ListResponse[dto.UserResponse]{}, ErrForbidden
	}

	filter := userScope(actor)
	if role := strings.ToLower(strings.TrimSpace(req.Role)); role != "" {
		if !roleAllowed(filter.Roles, role) {
			return dto.ListResponse[dto.UserResponse]{Items: []dto.UserResponse{}, Pagination: dto.NewPaginationMeta(req.Page, clampPageSize(req.PageSize), 0)}, nil
		}
		filter.Roles = []string{role}
	}
	filter.Status = strings.TrimSpace(req.Status)
	filter.Search = strings.TrimSpace(req.Search)

	pageSize := clampPageSize(req.PageSize)
	filter.Page = repository.Page{Page: req.Page, PageSize: pageSize}
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.ListResponse[dto.UserResponse]{}, err
	}

	items := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, dto.NewUserResponse(user))
	}
	return dto.ListResponse[dto.UserResponse]{
		Items:      items,
		Pagination: dto.NewPaginationMeta(maxInt(req.Page, 1), pageSize, total),
	}, nil
}

// roleAllowed treats a nil list as unrestricted and an empty list as nothing visible.
func roleAllowed(values []string, value string) bool {
	if len(values) == 0 {
		return values == nil
	}
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

func (s *userService) Get(ctx context.Context, actor Actor, id string) (dto.UserResponse, error) {
	user, err := s.visible(ctx, actor, id)
	if err != nil {
		return dto.UserResponse{}, err
	}
	return dto.NewUserResponse(user), nil
}

// visible loads a user the caller may see. Everyone can see themselves.
func (s *userService) visible(ctx context.Context, actor Actor, id string) (models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return models.User{}, notFound(err, ErrUserNotFound)
	}
	if user.ID == actor.ID {
		return user, nil
	}
	if actor.EffectiveRole() == models.RoleSuperadmin && actor.TenantID == "" {
		return user, nil
	}
	if user.TenantID != actor.TenantID {
		return models.User{}, ErrUserNotFound
	}

	scope := userScope(actor)
	if scope.Roles != nil && !roleAllowed(scope.Roles, user.Role) {
		return models.User{}, ErrUserNotFound
	}
	if scope.SupervisorID != "" && (user.SupervisorID == nil || *user.SupervisorID != scope.SupervisorID) {
		return models.User{}, ErrUserNotFound
	}
	return user, nil
}

func (s *userService) Create(ctx context.Context, actor Actor, req dto.UserCreateRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}
	if models.RoleRank(req.Role) >= actor.Rank() {
		return dto.UserResponse{}, ErrRoleNotAllowed
	}

	tenantID := actor.TenantID
	if actor.EffectiveRole() == models.RoleSuperadmin && strings.TrimSpace(req.TenantID) != "" {
		tenantID = strings.TrimSpace(req.TenantID)
	}
	if tenantID == "" {
		return dto.UserResponse{}, ErrTenantRequired
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return dto.UserResponse{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.UserResponse{}, err
	}

	if err := s.checkReferences(ctx, tenantID, req.SupervisorID, req.ManagerID); err != nil {
		return dto.UserResponse{}, err
	}

	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return dto.UserResponse{}, err
	}

	user := models.User{
		TenantID:     tenantID,
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         strings.ToLower(req.Role),
		Status:       models.UserStatusActive,
		Phone:        strings.TrimSpace(req.Phone),
		Department:   strings.TrimSpace(req.Department),
		SupervisorID: trimmedPtr(req.SupervisorID),
		ManagerID:    trimmedPtr(req.ManagerID),
	}
	if err := s.repo.Create(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.UserResponse{}, ErrEmailTaken
		}
		return dto.UserResponse{}, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("user created")
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "user.created",
		EntityType: "user",
		EntityID:   user.ID,
		Metadata:   map[string]interface{}{"email": user.Email, "role": user.Role},
	})
	return dto.NewUserResponse(user), nil
}

func (s *userService) Update(ctx context.Context, actor Actor, id string, req dto.UserUpdateRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}

	user, err := s.manageable(ctx, actor, id)
	if err != nil {
		return dto.UserResponse{}, err
	}

	changed := []string{}
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
		changed = append(changed, "name")
	}
	if req.Role != nil {
		role := strings.ToLower(*req.Role)
		if models.RoleRank(role) >= actor.Rank() {
			return dto.UserResponse{}, ErrRoleNotAllowed
		}
		user.Role = role
		changed = append(changed, "role")
	}
	if req.Status != nil {
		user.Status = *req.Status
		changed = append(changed, "status")
	}
	if req.Phone != nil {
		user.Phone = strings.TrimSpace(*req.Phone)
		changed = append(changed, "phone")
	}
	if req.Department != nil {
		user.Department = strings.TrimSpace(*req.Department)
		changed = append(changed, "department")
	}
	if req.SupervisorID != nil || req.ManagerID != nil {
		if err := s.checkReferences(ctx, user.TenantID, req.SupervisorID, req.ManagerID); err != nil {
			return dto.UserResponse{}, err
		}
		if req.SupervisorID != nil {
			user.SupervisorID = trimmedPtr(req.SupervisorID)
			changed = append(changed, "supervisor_id")
		}
		if req.ManagerID != nil {
			user.ManagerID = trimmedPtr(req.ManagerID)
			changed = append(changed, "manager_id")
		}
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password, s.bcryptCost)
		if err != nil {
			return dto.UserResponse{}, err
		}
		user.PasswordHash = hash
		changed = append(changed, "password")
	}

	if err := s.repo.Save(ctx, &user); err != nil {
		return dto.UserResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "user.updated",
		EntityType: "user",
		EntityID:   user.ID,
		Metadata:   map[string]interface{}{"fields": changed},
	})
	return dto.NewUserResponse(user), nil
}

func (s *userService) Deactivate(ctx context.Context, actor Actor, id string) (dto.UserResponse, error) {
	if id == actor.ID {
		return dto.UserResponse{}, ErrForbidden
	}
	user, err := s.manageable(ctx, actor, id)
	if err != nil {
		return dto.UserResponse{}, err
	}

	user.Status = models.UserStatusInactive
	if err := s.repo.Save(ctx, &user); err != nil {
		return dto.UserResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "user.deactivated",
		EntityType: "user",
		EntityID:   user.ID,
	})
	return dto.NewUserResponse(user), nil
}

// manageable loads a visible user ranked strictly below the caller.
func (s *userService) manageable(ctx context.Context, actor Actor, id string) (models.User, error) {
	user, err := s.visible(ctx, actor, id)
	if err != nil {
		return models.User{}, err
	}
	if models.RoleRank(user.Role) >= actor.Rank() {
		return models.User{}, ErrRoleNotAllowed
	}
	return user, nil
}

func (s *userService) checkReferences(ctx context.Context, tenantID string, ids ...*string) error {
	for _, id := range ids {
		if id == nil || strings.TrimSpace(*id) == "" {
			continue
		}
		ref, err := s.repo.GetByID(ctx, strings.TrimSpace(*id))
		if err != nil {
			return notFound(err, ErrUserNotFound)
		}
		if ref.TenantID != tenantID {
			return ErrUserNotFound
		}
	}
	return nil
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
