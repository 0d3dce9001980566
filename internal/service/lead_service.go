package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/facility-ops-api/internal/dto"
	"github.com/noah-isme/facility-ops-api/internal/models"
	"github.com/noah-isme/facility-ops-api/internal/observability"
	"github.com/noah-isme/facility-ops-api/internal/repository"
)

// LeadService manages the sales pipeline.
type LeadService interface {
	List(ctx context.Context, actor Actor, req dto.LeadListRequest) (dto.ListResponse[dto.LeadResponse], error)
	Get(ctx context.Context, actor Actor, id string) (dto.LeadResponse, error)
	Create(ctx context.Context, actor Actor, req dto.LeadCreateRequest) (dto.LeadResponse, error)
	Update(ctx context.Context, actor Actor, id string, req dto.LeadUpdateRequest) (dto.LeadResponse, error)
	UpdateStatus(ctx context.Context, actor Actor, id string, req dto.LeadStatusRequest) (dto.LeadResponse, error)
	Convert(ctx context.Context, actor Actor, id string, req dto.LeadConvertRequest) (dto.LeadConvertResponse, error)
	Delete(ctx context.Context, actor Actor, id string) error
	Pipeline(ctx context.Context, actor Actor) (dto.PipelineResponse, error)
}

type leadService struct {
	repo      repository.LeadRepository
	validator *validator.Validate
	activity  ActivityRecorder
	cache     *redis.Client
	cacheTTL  time.Duration
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewLeadService constructs the lead service. cache may be nil.
func NewLeadService(repo repository.LeadRepository, validate *validator.Validate, activity ActivityRecorder, cache *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) LeadService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &leadService{
		repo:      repo,
		validator: validate,
		activity:  activity,
		cache:     cache,
		cacheTTL:  cacheTTL,
		logger:    logger.With().Str("component", "lead_service").Logger(),
		tracer:    observability.Tracer("crm"),
	}
}

func pipelineCacheKey(tenantID string) string {
	return fmt.Sprintf("crm:pipeline:v1:%s", tenantID)
}

func (s *leadService) List(ctx context.Context, actor Actor, req dto.LeadListRequest) (dto.ListResponse[dto.LeadResponse], error) {
	if err := actor.requireTenant(); err != nil {
		return dto.ListResponse[dto.LeadResponse]{}, err
	}
	pageSize := clampPageSize(req.PageSize)
	leads, total, err := s.repo.List(ctx, repository.LeadFilter{
		Page:       repository.Page{Page: req.Page, PageSize: pageSize},
		TenantID:   actor.TenantID,
		Status:     strings.TrimSpace(req.Status),
		Source:     strings.TrimSpace(req.Source),
		AssignedTo: strings.TrimSpace(req.AssignedTo),
		Search:     strings.TrimSpace(req.Search),
	})
	if err != nil {
		return dto.ListResponse[dto.LeadResponse]{}, err
	}

	items := make([]dto.LeadResponse, 0, len(leads))
	for _, lead := range leads {
		items = append(items, dto.NewLeadResponse(lead))
	}
	return dto.ListResponse[dto.LeadResponse]{
		Items:      items,
		Pagination: dto.NewPaginationMeta(maxInt(req.Page, 1), pageSize, total),
	}, nil
}

func (s *leadService) Get(ctx context.Context, actor Actor, id string) (dto.LeadResponse, error) {
	if err := actor.requireTenant(); err != nil {
		return dto.LeadResponse{}, err
	}
	lead, err := s.repo.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return dto.LeadResponse{}, notFound(err, ErrLeadNotFound)
	}
	return dto.NewLeadResponse(lead), nil
}

func (s *leadService) Create(ctx context.Context, actor Actor, req dto.LeadCreateRequest) (dto.LeadResponse, error) {
	if err := actor.requireTenant(); err != nil {
		return dto.LeadResponse{}, err
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.LeadResponse{}, err
	}

	status := req.Status
	if status == "" {
		status = models.LeadStatusNew
	}
	lead := models.Lead{
		TenantID:       actor.TenantID,
		Name:           strings.TrimSpace(req.Name),
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:          strings.TrimSpace(req.Phone),
		Company:        strings.TrimSpace(req.Company),
		Source:         strings.TrimSpace(req.Source),
		Status:         status,
		EstimatedValue: req.EstimatedValue,
		AssignedTo:     trimmedPtr(req.AssignedTo),
		Notes:          strings.TrimSpace(req.Notes),
	}
	if err := s.repo.Create(ctx, &lead); err != nil {
		return dto.LeadResponse{}, err
	}

	s.invalidatePipeline(ctx, actor.TenantID)
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "lead.created",
		EntityType: "lead",
		EntityID:   lead.ID,
		Metadata:   map[string]interface{}{"status": lead.Status, "email": lead.Email},
	})
	return dto.NewLeadResponse(lead), nil
}

func (s *leadService) Update(ctx context.Context, actor Actor, id string, req dto.LeadUpdateRequest) (dto.LeadResponse, error) {
	if err := actor.requireTenant(); err != nil {
		return dto.LeadResponse{}, err
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.LeadResponse{}, err
	}
	lead, err := s.repo.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return dto.LeadResponse{}, notFound(err, ErrLeadNotFound)
	}

	assignTrimmed(&lead.Name, req.Name)
	if req.Email != nil {
		lead.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	assignTrimmed(&lead.Phone, req.Phone)
	assignTrimmed(&lead.Company, req.Company)
	assignTrimmed(&lead.Source, req.Source)
	assignTrimmed(&lead.Notes, req.Notes)
	if req.EstimatedValue != nil {
		lead.EstimatedValue = *req.EstimatedValue
	}
	if req.AssignedTo != nil {
		lead.AssignedTo = trimmedPtr(req.AssignedTo)
	}

	if err := s.repo.Save(ctx, &lead); err != nil {
		return dto.LeadResponse{}, err
	}
	s.invalidatePipeline(ctx, actor.TenantID)
	return dto.NewLeadResponse(lead), nil
}

func (s *leadService) UpdateStatus(ctx context.Context, actor Actor, id string, req dto.LeadStatusRequest) (dto.LeadResponse, error) {
	if err := actor.requireTenant(); err != nil {
		return dto.LeadResponse{}, err
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.LeadResponse{}, err
	}
	lead, err := s.repo.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return dto.LeadResponse{}, notFound(err, ErrLeadNotFound)
	}
	if lead.IsClosed() {
		return dto.LeadResponse{}, ErrLeadClosed
	}

	previous := lead.Status
	lead.Status = req.Status
	if err := s.repo.Save(ctx, &lead); err != nil {
		return dto.LeadResponse{}, err
	}

	s.invalidatePipeline(ctx, actor.TenantID)
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "lead.status_changed",
		EntityType: "lead",
		EntityID:   lead.ID,
		Metadata:   map[string]interface{}{"from": previous, "to": lead.Status},
	})
	return dto.NewLeadResponse(lead), nil
}

func (s *leadService) Convert(ctx context.Context, actor Actor, id string, req dto.LeadConvertRequest) (dto.LeadConvertResponse, error) {
	if err := actor.requireTenant(); err != nil {
		return dto.LeadConvertResponse{}, err
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.LeadConvertResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "lead.convert", trace.WithAttributes(
		attribute.String("lead.id", id),
		attribute.String("lead.tenant_id", actor.TenantID),
	))
	defer span.End()

	lead, err := s.repo.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return dto.LeadConvertResponse{}, notFound(err, ErrLeadNotFound)
	}
	if lead.IsClosed() {
		return dto.LeadConvertResponse{}, ErrLeadClosed
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = lead.Company
	}
	if name == "" {
		name = lead.Name
	}
	client := models.Client{
		TenantID: actor.TenantID,
		Name:     name,
		Email:    lead.Email,
		Phone:    lead.Phone,
		Company:  lead.Company,
		Address:  strings.TrimSpace(req.Address),
		Industry: strings.TrimSpace(req.Industry),
		Status:   models.ClientStatusActive,
		Notes:    lead.Notes,
	}
	if err := s.repo.Convert(ctx, &lead, &client); err != nil {
		span.RecordError(err)
		return dto.LeadConvertResponse{}, err
	}

	s.invalidatePipeline(ctx, actor.TenantID)
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "lead.converted",
		EntityType: "lead",
		EntityID:   lead.ID,
		Metadata:   map[string]interface{}{"client_id": client.ID},
	})
	return dto.LeadConvertResponse{Lead: dto.NewLeadResponse(lead), Client: dto.NewClientResponse(client)}, nil
}

func (s *leadService) Delete(ctx context.Context, actor Actor, id string) error {
	if err := actor.requireTenant(); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, actor.TenantID, id); err != nil {
		return notFound(err, ErrLeadNotFound)
	}
	s.invalidatePipeline(ctx, actor.TenantID)
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "lead.deleted",
		EntityType: "lead",
		EntityID:   id,
	})
	return nil
}

func (s *leadService) Pipeline(ctx context.Context, actor Actor) (dto.PipelineResponse, error) {
	if err := actor.requireTenant(); err != nil {
		return dto.PipelineResponse{}, err
	}
	key := pipelineCacheKey(actor.TenantID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key).Result(); err == nil {
			var response dto.PipelineResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				observability.CacheRequests().WithLabelValues("pipeline", "hit").Inc()
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read pipeline cache")
		}
		observability.CacheRequests().WithLabelValues("pipeline", "miss").Inc()
	}

	rows, err := s.repo.Pipeline(ctx, actor.TenantID)
	if err != nil {
		return dto.PipelineResponse{}, err
	}

	byStatus := make(map[string]repository.PipelineRow, len(rows))
	for _, row := range rows {
		byStatus[row.Status] = row
	}
	response := dto.PipelineResponse{Stages: make([]dto.PipelineStage, 0, len(models.LeadStatuses))}
	for _, status := range models.LeadStatuses {
		row := byStatus[status]
		response.Stages = append(response.Stages, dto.PipelineStage{Status: status, Count: row.Count, Value: round2(row.Value)})
		response.TotalCount += row.Count
		response.TotalValue += row.Value
	}
	response.TotalValue = round2(response.TotalValue)

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store pipeline cache")
			}
		}
	}
	return response, nil
}

func (s *leadService) invalidatePipeline(ctx context.Context, tenantID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, pipelineCacheKey(tenantID)).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate pipeline cache")
	}
}
