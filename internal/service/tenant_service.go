package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/facility-ops-api/internal/dto"
	"github.com/noah-isme/facility-ops-api/internal/models"
	"github.com/noah-isme/facility-ops-api/internal/repository"
)

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

// TenantService manages tenants on behalf of superadmins.
type TenantService interface {
	List(ctx context.Context, req dto.TenantListRequest) (dto.ListResponse[dto.TenantResponse], error)
	Get(ctx context.Context, id string) (dto.TenantResponse, error)
	Create(ctx context.Context, actor Actor, req dto.TenantCreateRequest) (dto.TenantResponse, error)
	Update(ctx context.Context, actor Actor, id string, req dto.TenantUpdateRequest) (dto.TenantResponse, error)
}

type tenantService struct {
	repo      repository.TenantRepository
	validator *validator.Validate
	activity  ActivityRecorder
	logger    zerolog.Logger
}

// NewTenantService constructs the tenant service.
func NewTenantService(repo repository.TenantRepository, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) TenantService {
	return &tenantService{
		repo:      repo,
		validator: validate,
		activity:  activity,
		logger:    logger.With().Str("component", "tenant_service").Logger(),
	}
}

func (s *tenantService) List(ctx context.Context, req dto.TenantListRequest) (dto.ListResponse[dto.TenantResponse], error) {
	pageSize := clampPageSize(req.PageSize)
	tenants, total, err := s.repo.List(ctx, repository.TenantFilter{
		Page:   repository.Page{Page: req.Page, PageSize: pageSize},
		Search: strings.TrimSpace(req.Search),
		Status: strings.TrimSpace(req.Status),
	})
	if err != nil {
		return dto.ListResponse[dto.TenantResponse]{}, err
	}

	items := make([]dto.TenantResponse, 0, len(tenants))
	for _, tenant := range tenants {
		items = append(items, dto.NewTenantResponse(tenant))
	}
	return dto.ListResponse[dto.TenantResponse]{
		Items:      items,
		Pagination: dto.NewPaginationMeta(maxInt(req.Page, 1), pageSize, total),
	}, nil
}

func (s *tenantService) Get(ctx context.Context, id string) (dto.TenantResponse, error) {
	tenant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.TenantResponse{}, notFound(err, ErrTenantNotFound)
	}
	return dto.NewTenantResponse(tenant), nil
}

func (s *tenantService) Create(ctx context.Context, actor Actor, req dto.TenantCreateRequest) (dto.TenantResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.TenantResponse{}, err
	}
	slug := normalizeSlug(req.Slug)
	if slug == "" {
		return dto.TenantResponse{}, ErrTenantSlugInvalid
	}

	tenant := models.Tenant{
		Name:   strings.TrimSpace(req.Name),
		Slug:   slug,
		Plan:   strings.TrimSpace(req.Plan),
		Status: models.TenantStatusActive,
	}
	if err := s.repo.Create(ctx, &tenant); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.TenantResponse{}, ErrTenantSlugTaken
		}
		return dto.TenantResponse{}, err
	}

	s.logger.Info().Str("tenant_id", tenant.ID).Str("slug", tenant.Slug).Msg("tenant created")
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "tenant.created",
		EntityType: "tenant",
		EntityID:   tenant.ID,
		Metadata:   map[string]interface{}{"slug": tenant.Slug},
	})
	return dto.NewTenantResponse(tenant), nil
}

func (s *tenantService) Update(ctx context.Context, actor Actor, id string, req dto.TenantUpdateRequest) (dto.TenantResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.TenantResponse{}, err
	}
	tenant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.TenantResponse{}, notFound(err, ErrTenantNotFound)
	}

	if req.Name != nil {
		tenant.Name = strings.TrimSpace(*req.Name)
	}
	if req.Plan != nil {
		tenant.Plan = strings.TrimSpace(*req.Plan)
	}
	if req.Status != nil {
		tenant.Status = *req.Status
	}
	if err := s.repo.Save(ctx, &tenant); err != nil {
		return dto.TenantResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "tenant.updated",
		EntityType: "tenant",
		EntityID:   tenant.ID,
		Metadata:   map[string]interface{}{"status": tenant.Status},
	})
	return dto.NewTenantResponse(tenant), nil
}

func normalizeSlug(value string) string {
	slug := slugInvalid.ReplaceAllString(strings.ToLower(strings.TrimSpace(value)), "-")
	return strings.Trim(slug, "-")
}
