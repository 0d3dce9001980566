package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/facility-ops-api/internal/dto"
	"github.com/noah-isme/facility-ops-api/internal/models"
	"github.com/noah-isme/facility-ops-api/internal/repository"
)

// CommunicationService logs interactions with clients and leads.
type CommunicationService interface {
	List(ctx context.Context, actor Actor, req dto.CommunicationListRequest) (dto.ListResponse[dto.CommunicationResponse], error)
	Create(ctx context.Context, actor Actor, req dto.CommunicationCreateRequest) (dto.CommunicationResponse, error)
}

type communicationService struct {
	repo      repository.CommunicationRepository
	clients   repository.ClientRepository
	leads     repository.LeadRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewCommunicationService constructs the communication service.
func NewCommunicationService(repo repository.CommunicationRepository, clients repository.ClientRepository, leads repository.LeadRepository, validate *validator.Validate, logger zerolog.Logger) CommunicationService {
	return &communicationService{
		repo:      repo,
		clients:   clients,
		leads:     leads,
		validator: validate,
		sanitizer: bluemonday.UGCPolicy(),
		logger:    logger.With().Str("component", "communication_service").Logger(),
		now:       time.Now,
	}
}

func (s *communicationService) List(ctx context.Context, actor Actor, req dto.CommunicationListRequest) (dto.ListResponse[dto.CommunicationResponse], error) {
	if err := actor.requireTenant(); err != nil {
		return dto.ListResponse[dto.CommunicationResponse]{}, err
	}
	pageSize := clampPageSize(req.PageSize)
	entries, total, err := s.repo.List(ctx, repository.CommunicationFilter{
		Page:     repository.Page{Page: req.Page, PageSize: pageSize},
		TenantID: actor.TenantID,
		ClientID: strings.TrimSpace(req.ClientID),
		LeadID:   strings.TrimSpace(req.LeadID),
		Channel:  strings.TrimSpace(req.Channel),
	})
	if err != nil {
		return dto.ListResponse[dto.CommunicationResponse]{}, err
	}

	items := make([]dto.CommunicationResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.NewCommunicationResponse(entry))
	}
	return dto.ListResponse[dto.CommunicationResponse]{
		Items:      items,
		Pagination: dto.NewPaginationMeta(maxInt(req.Page, 1), pageSize, total),
	}, nil
}

func (s *communicationService) Create(ctx context.Context, actor Actor, req dto.CommunicationCreateRequest) (dto.CommunicationResponse, error) {
	if err := actor.requireTenant(); err != nil {
		return dto.CommunicationResponse{}, err
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.CommunicationResponse{}, err
	}

	clientID := strings.TrimSpace(req.ClientID)
	leadID := strings.TrimSpace(req.LeadID)
	if (clientID == "") == (leadID == "") {
		return dto.CommunicationResponse{}, ErrCommunicationTarget
	}

	entry := models.Communication{
		TenantID:   actor.TenantID,
		Channel:    req.Channel,
		Direction:  req.Direction,
		Subject:    strings.TrimSpace(s.sanitizer.Sanitize(req.Subject)),
		Body:       strings.TrimSpace(s.sanitizer.Sanitize(req.Body)),
		OccurredAt: s.now().UTC(),
		CreatedBy:  actor.ID,
	}
	if entry.Direction == "" {
		entry.Direction = "outbound"
	}
	if req.OccurredAt != nil {
		entry.OccurredAt = req.OccurredAt.UTC()
	}

	if clientID != "" {
		if _, err := s.clients.GetByID(ctx, actor.TenantID, clientID); err != nil {
			return dto.CommunicationResponse{}, notFound(err, ErrClientNotFound)
		}
		entry.ClientID = &clientID
	} else {
		if _, err := s.leads.GetByID(ctx, actor.TenantID, leadID); err != nil {
			return dto.CommunicationResponse{}, notFound(err, ErrLeadNotFound)
		}
		entry.LeadID = &leadID
	}

	if err := s.repo.Create(ctx, &entry); err != nil {
		return dto.CommunicationResponse{}, err
	}
	return dto.NewCommunicationResponse(entry), nil
}
