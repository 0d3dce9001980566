package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"github.com/noah-isme/facility-ops-api/internal/dto"
	"github.com/noah-isme/facility-ops-api/internal/models"
	"github.com/noah-isme/facility-ops-api/internal/observability"
	"github.com/noah-isme/facility-ops-api/internal/repository"
)

const alertBufferSize = 16

// AlertService raises operational alerts and streams them to connected staff.
type AlertService interface {
	Create(ctx context.Context, actor Actor, req dto.AlertCreateRequest) (dto.AlertResponse, error)
	List(ctx context.Context, actor Actor, req dto.AlertListRequest) (dto.ListResponse[dto.AlertResponse], error)
	Acknowledge(ctx context.Context, actor Actor, id string) (dto.AlertResponse, error)
	Resolve(ctx context.Context, actor Actor, id string) (dto.AlertResponse, error)
	Subscribe(tenantID string, rank int) (<-chan dto.AlertResponse, func())
	Start(ctx context.Context)
}

type alertService struct {
	repo         repository.AlertRepository
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	validator    *validator.Validate
	logger       zerolog.Logger
	tracer       trace.Tracer
	sanitizer    *bluemonday.Policy
	broker       *alertBroker
	nodeID       string
	now          func() time.Time
}

type alertEvent struct {
	Source string            `json:"source"`
	Alert  dto.AlertResponse `json:"alert"`
	SentAt time.Time         `json:"sent_at"`
}

type alertSubscriber struct {
	rank int
}

type alertBroker struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan dto.AlertResponse]alertSubscriber
}

// NewAlertService constructs the alert service. redisClient and natsConn may be nil.
func NewAlertService(repo repository.AlertRepository, redisClient *redis.Client, channelBase string, natsConn *nats.Conn, validate *validator.Validate, logger zerolog.Logger) AlertService {
	channel := ""
	subject := ""
	if channelBase != "" {
		channel = channelBase + ":alerts"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".alerts"
	}

	return &alertService{
		repo:         repo,
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
		validator:    validate,
		logger:       logger.With().Str("component", "alert_service").Logger(),
		tracer:       observability.Tracer("alert"),
		sanitizer:    bluemonday.StrictPolicy(),
		broker: &alertBroker{
			subscribers: make(map[string]map[chan dto.AlertResponse]alertSubscriber),
		},
		nodeID: uuid.NewString(),
		now:    time.Now,
	}
}

func (s *alertService) Start(ctx context.Context) {
	if s.redis != nil && s.redisChannel != "" {
		go s.consumeRedis(ctx)
	}
	if s.nats != nil && s.natsSubject != "" {
		go s.consumeNATS(ctx)
	}
}

func (s *alertService) Create(ctx context.Context, actor Actor, req dto.AlertCreateRequest) (dto.AlertResponse, error) {
	if err := actor.requireTenant(); err != nil {
		return dto.AlertResponse{}, err
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.AlertResponse{}, err
	}

	message := strings.TrimSpace(s.sanitizer.Sanitize(req.Message))
	if message == "" {
		return dto.AlertResponse{}, ErrAlertEmpty
	}

	category := req.Category
	if category == "" {
		category = "general"
	}
	audience := req.Audience
	if audience == "" {
		audience = models.RoleEmployee
	}

	ctx, span := s.tracer.Start(ctx, "alerts.publish", trace.WithAttributes(
		attribute.String("alert.tenant_id", actor.TenantID),
		attribute.String("alert.severity", req.Severity),
	))
	defer span.End()

	metadata := datatypes.JSONMap{}
	for key, value := range req.Metadata {
		metadata[key] = value
	}

	alert := models.Alert{
		TenantID:  actor.TenantID,
		Title:     strings.TrimSpace(s.sanitizer.Sanitize(req.Title)),
		Message:   message,
		Severity:  req.Severity,
		Category:  category,
		Audience:  audience,
		Status:    models.AlertStatusOpen,
		CreatedBy: actor.ID,
		Metadata:  metadata,
	}
	if err := s.repo.Create(ctx, &alert); err != nil {
		span.RecordError(err)
		return dto.AlertResponse{}, err
	}

	response := dto.NewAlertResponse(alert)
	s.broker.broadcast(response)
	if err := s.publish(ctx, response); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish alert to broker")
	}

	observability.AlertsPublished().WithLabelValues(response.Severity).Inc()
	s.logger.Info().Str("alert_id", alert.ID).Str("severity", alert.Severity).Msg("alert raised")
	return response, nil
}

func (s *alertService) List(ctx context.Context, actor Actor, req dto.AlertListRequest) (dto.ListResponse[dto.AlertResponse], error) {
	if err := actor.requireTenant(); err != nil {
		return dto.ListResponse[dto.AlertResponse]{}, err
	}

	pageSize := clampPageSize(req.PageSize)
	alerts, total, err := s.repo.List(ctx, repository.AlertFilter{
		Page:      repository.Page{Page: req.Page, PageSize: pageSize},
		TenantID:  actor.TenantID,
		Status:    strings.TrimSpace(req.Status),
		Severity:  strings.TrimSpace(req.Severity),
		Category:  strings.TrimSpace(req.Category),
		Audiences: rolesAtOrBelow(actor.Rank()),
	})
	if err != nil {
		return dto.ListResponse[dto.AlertResponse]{}, err
	}

	items := make([]dto.AlertResponse, 0, len(alerts))
	for _, alert := range alerts {
		items = append(items, dto.NewAlertResponse(alert))
	}
	return dto.ListResponse[dto.AlertResponse]{
		Items:      items,
		Pagination: dto.NewPaginationMeta(maxInt(req.Page, 1), pageSize, total),
	}, nil
}

func (s *alertService) Acknowledge(ctx context.Context, actor Actor, id string) (dto.AlertResponse, error) {
	return s.transition(ctx, actor, id, func(alert *models.Alert) error {
		if alert.Status != models.AlertStatusOpen {
			return ErrAlertTransition
		}
		alert.Status = models.AlertStatusAcknowledged
		alert.AcknowledgedBy = stringPtr(actor.ID)
		alert.AcknowledgedAt = timePtr(s.now().UTC())
		return nil
	})
}

func (s *alertService) Resolve(ctx context.Context, actor Actor, id string) (dto.AlertResponse, error) {
	return s.transition(ctx, actor, id, func(alert *models.Alert) error {
		if alert.Status == models.AlertStatusResolved {
			return ErrAlertTransition
		}
		alert.Status = models.AlertStatusResolved
		alert.ResolvedAt = timePtr(s.now().UTC())
		return nil
	})
}

func (s *alertService) transition(ctx context.Context, actor Actor, id string, apply func(*models.Alert) error) (dto.AlertResponse, error) {
	if err := actor.requireTenant(); err != nil {
		return dto.AlertResponse{}, err
	}
	alert, err := s.repo.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return dto.AlertResponse{}, notFound(err, ErrAlertNotFound)
	}
	if models.RoleRank(alert.Audience) > actor.Rank() {
		return dto.AlertResponse{}, ErrAlertNotFound
	}
	if err := apply(&alert); err != nil {
		return dto.AlertResponse{}, err
	}
	if err := s.repo.Save(ctx, &alert); err != nil {
		return dto.AlertResponse{}, err
	}
	return dto.NewAlertResponse(alert), nil
}

func (s *alertService) Subscribe(tenantID string, rank int) (<-chan dto.AlertResponse, func()) {
	channel := make(chan dto.AlertResponse, alertBufferSize)

	s.broker.subscribe(tenantID, channel, rank)
	observability.AlertSubscribers().Inc()

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			s.broker.unsubscribe(tenantID, channel)
			observability.AlertSubscribers().Dec()
		})
	}
	return channel, cleanup
}

func (s *alertService) publish(ctx context.Context, alert dto.AlertResponse) error {
	event := alertEvent{Source: s.nodeID, Alert: alert, SentAt: s.now().UTC()}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if s.redis != nil && s.redisChannel != "" {
		if err := s.redis.Publish(ctx, s.redisChannel, payload).Err(); err != nil {
			return err
		}
	}
	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			return err
		}
	}
	return nil
}

func (s *alertService) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisChannel)
	defer func() { _ = pubsub.Close() }()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			s.logger.Error().Err(err).Msg("alert redis subscription closed")
			return
		}
		s.handleEvent([]byte(msg.Payload))
	}
}

func (s *alertService) consumeNATS(ctx context.Context) {
	sub, err := s.nats.Subscribe(s.natsSubject, func(msg *nats.Msg) {
		s.handleEvent(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats alerts subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain alert nats subscription")
		}
	}()
}

// handleEvent re-broadcasts alerts raised on other nodes.
func (s *alertService) handleEvent(payload []byte) {
	var event alertEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		s.logger.Warn().Err(err).Msg("invalid alert event payload")
		return
	}
	if event.Source == s.nodeID || event.Alert.TenantID == "" {
		return
	}
	s.broker.broadcast(event.Alert)
}

func (b *alertBroker) subscribe(tenantID string, ch chan dto.AlertResponse, rank int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.subscribers[tenantID]; !exists {
		b.subscribers[tenantID] = make(map[chan dto.AlertResponse]alertSubscriber)
	}
	b.subscribers[tenantID][ch] = alertSubscriber{rank: rank}
}

func (b *alertBroker) unsubscribe(tenantID string, ch chan dto.AlertResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subscribers, ok := b.subscribers[tenantID]; ok {
		if _, present := subscribers[ch]; !present {
			return
		}
		delete(subscribers, ch)
		close(ch)
		if len(subscribers) == 0 {
			delete(b.subscribers, tenantID)
		}
	}
}

// broadcast drops the alert for subscribers whose buffers are full.
func (b *alertBroker) broadcast(alert dto.AlertResponse) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	audience := models.RoleRank(alert.Audience)
	for ch, sub := range b.subscribers[alert.TenantID] {
		if audience > sub.rank {
			continue
		}
		select {
		case ch <- alert:
		default:
		}
	}
}
