package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/facility-ops-api/internal/dto"
	"github.com/noah-isme/facility-ops-api/internal/service"
	"github.com/noah-isme/facility-ops-api/internal/utils"
)

// RosterHandler manages weekly rosters.
type RosterHandler struct {
	service service.RosterService
	logger  zerolog.Logger
}

// NewRosterHandler constructs the handler.
func NewRosterHandler(service service.RosterService, logger zerolog.Logger) *RosterHandler {
	return &RosterHandler{
		service: service,
		logger:  logger.With().Str("component", "roster_handler").Logger(),
	}
}

// Register attaches roster endpoints. write guards the mutating routes.
func (h *RosterHandler) Register(router fiber.Router, write fiber.Handler) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Post("", write, h.create)
	router.Put("/:id", write, h.update)
	router.Delete("/:id", write, h.delete)
}

func (h *RosterHandler) list(c *fiber.Ctx) error {
	page, err := listRequest(c)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list rosters")
	}
	rosters, err := h.service.List(requestContext(c), actorFromContext(c), dto.RosterListRequest{
		ListRequest: page,
		Site:        query(c, "site"),
		WeekStart:   query(c, "week_start"),
		Status:      query(c, "status"),
		EmployeeID:  query(c, "employee_id"),
	})
	if err != nil {
		return respondError(c, h.logger, err, "failed to list rosters")
	}
	return utils.SendSuccess(c, "rosters retrieved", rosters)
}

func (h *RosterHandler) get(c *fiber.Ctx) error {
	roster, err := h.service.Get(requestContext(c), actorFromContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load roster")
	}
	return utils.SendSuccess(c, "roster retrieved", roster)
}

func (h *RosterHandler) create(c *fiber.Ctx) error {
	var payload dto.RosterCreateRequest
	if err := parseBody(c, &payload); err != nil {
		return respondError(c, h.logger, err, "failed to create roster")
	}
	roster, err := h.service.Create(requestContext(c), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create roster")
	}
	return utils.SendCreated(c, "roster created", roster)
}

func (h *RosterHandler) update(c *fiber.Ctx) error {
	var payload dto.RosterUpdateRequest
	if err := parseBody(c, &payload); err != nil {
		return respondError(c, h.logger, err, "failed to update roster")
	}
	roster, err := h.service.Update(requestContext(c), actorFromContext(c), c.Params("id"), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update roster")
	}
	return utils.SendSuccess(c, "roster updated", roster)
}

func (h *RosterHandler) delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.Delete(requestContext(c), actorFromContext(c), id); err != nil {
		return respondError(c, h.logger, err, "failed to delete roster")
	}
	return utils.SendSuccess(c, "roster deleted", fiber.Map{"id": id})
}
