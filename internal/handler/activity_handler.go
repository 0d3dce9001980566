package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/facility-ops-api/internal/dto"
	"github.com/noah-isme/facility-ops-api/internal/service"
	"github.com/noah-isme/facility-ops-api/internal/utils"
)

// ActivityHandler lists the tenant audit trail.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(service service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// List returns audit entries filtered by actor, action and entity type.
func (h *ActivityHandler) List(c *fiber.Ctx) error {
	page, err := listRequest(c)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list activity")
	}
	entries, err := h.service.List(requestContext(c), actorFromContext(c), dto.ActivityListRequest{
		ListRequest: page,
		ActorID:     query(c, "actor_id"),
		Action:      query(c, "action"),
		EntityType:  query(c, "entity_type"),
	})
	if err != nil {
		return respondError(c, h.logger, err, "failed to list activity")
	}
	return utils.SendSuccess(c, "activity retrieved", entries)
}
