package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/facility-ops-api/internal/dto"
	"github.com/noah-isme/facility-ops-api/internal/models"
	"github.com/noah-isme/facility-ops-api/internal/repository"
)

// ClientService manages CRM clients.
type ClientService interface {
	List(ctx context.Context, actor Actor, req dto.ClientListRequest) (dto.ListResponse[dto.ClientResponse], error)
	Get(ctx context.Context, actor Actor, id string) (dto.ClientResponse, error)
	Create(ctx context.Context, actor Actor, req dto.ClientCreateRequest) (dto.ClientResponse, error)
	Update(ctx context.Context, actor Actor, id string, req dto.ClientUpdateRequest) (dto.ClientResponse, error)
	Delete(ctx context.Context, actor Actor, id string) error
}

type clientService struct {
	repo      repository.ClientRepository
	validator *validator.Validate
	activity  ActivityRecorder
	logger    zerolog.Logger
}

// NewClientService constructs the client service.
func NewClientService(repo repository.ClientRepository, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) ClientService {
	return &clientService{
		repo:      repo,
		validator: validate,
		activity:  activity,
		logger:    logger.With().Str("component", "client_service").Logger(),
	}
}

func (s *clientService) List(ctx context.Context, actor Actor, req dto.ClientListRequest) (dto.ListResponse[dto.ClientResponse], error) {
	if err := actor.requireTenant(); err != nil {
		return dto.ListResponse[dto.ClientResponse]{}, err
	}
	pageSize := clampPageSize(req.PageSize)
	clients, total, err := s.repo.List(ctx, repository.ClientFilter{
		Page:     repository.Page{Page: req.Page, PageSize: pageSize},
		TenantID: actor.TenantID,
		Status:   strings.TrimSpace(req.Status),
		Search:   strings.TrimSpace(req.Search),
	})
	if err != nil {
		return dto.ListResponse[dto.ClientResponse]{}, err
	}

	items := make([]dto.ClientResponse, 0, len(clients))
	for _, client := range clients {
		items = append(items, dto.NewClientResponse(client))
	}
	return dto.ListResponse[dto.ClientResponse]{
		Items:      items,
		Pagination: dto.NewPaginationMeta(maxInt(req.Page, 1), pageSize, total),
	}, nil
}

func (s *clientService) Get(ctx context.Context, actor Actor, id string) (dto.ClientResponse, error) {
	if err := actor.requireTenant(); err != nil {
		return dto.ClientResponse{}, err
	}
	client, err := s.repo.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return dto.ClientResponse{}, notFound(err, ErrClientNotFound)
	}
	return dto.NewClientResponse(client), nil
}

func (s *clientService) Create(ctx context.Context, actor Actor, req dto.ClientCreateRequest) (dto.ClientResponse, error) {
	if err := actor.requireTenant(); err != nil {
		return dto.ClientResponse{}, err
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.ClientResponse{}, err
	}

	status := req.Status
	if status == "" {
		status = models.ClientStatusActive
	}
	client := models.Client{
		TenantID: actor.TenantID,
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:    strings.TrimSpace(req.Phone),
		Company:  strings.TrimSpace(req.Company),
		Address:  strings.TrimSpace(req.Address),
		Industry: strings.TrimSpace(req.Industry),
		Status:   status,
		Notes:    strings.TrimSpace(req.Notes),
	}
	if err := s.repo.Create(ctx, &client); err != nil {
		return dto.ClientResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "client.created",
		EntityType: "client",
		EntityID:   client.ID,
		Metadata:   map[string]interface{}{"name": client.Name},
	})
	return dto.NewClientResponse(client), nil
}

func (s *clientService) Update(ctx context.Context, actor Actor, id string, req dto.ClientUpdateRequest) (dto.ClientResponse, error) {
	if err := actor.requireTenant(); err != nil {
		return dto.ClientResponse{}, err
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.ClientResponse{}, err
	}
	client, err := s.repo.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return dto.ClientResponse{}, notFound(err, ErrClientNotFound)
	}

	assignTrimmed(&client.Name, req.Name)
	if req.Email != nil {
		client.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	assignTrimmed(&client.Phone, req.Phone)
	assignTrimmed(&client.Company, req.Company)
	assignTrimmed(&client.Address, req.Address)
	assignTrimmed(&client.Industry, req.Industry)
	assignTrimmed(&client.Status, req.Status)
	assignTrimmed(&client.Notes, req.Notes)

	if err := s.repo.Save(ctx, &client); err != nil {
		return dto.ClientResponse{}, err
	}
	return dto.NewClientResponse(client), nil
}

func (s *clientService) Delete(ctx context.Context, actor Actor, id string) error {
	if err := actor.requireTenant(); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, actor.TenantID, id); err != nil {
		return notFound(err, ErrClientNotFound)
	}
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "client.deleted",
		EntityType: "client",
		EntityID:   id,
	})
	return nil
}

func assignTrimmed(target *string, value *string) {
	if value != nil {
		*target = strings.TrimSpace(*value)
	}
}
