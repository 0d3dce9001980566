package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/facility-ops-api/internal/dto"
	"github.com/noah-isme/facility-ops-api/internal/service"
	"github.com/noah-isme/facility-ops-api/internal/utils"
)

// LeaveHandler exposes leave requests and their review.
type LeaveHandler struct {
	service service.LeaveService
	logger  zerolog.Logger
}

// NewLeaveHandler constructs the handler.
func NewLeaveHandler(service service.LeaveService, logger zerolog.Logger) *LeaveHandler {
	return &LeaveHandler{
		service: service,
		logger:  logger.With().Str("component", "leave_handler").Logger(),
	}
}

// Register attaches leave endpoints. review guards approval and rejection.
func (h *LeaveHandler) Register(router fiber.Router, review fiber.Handler) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Patch("/:id/approve", review, h.approve)
	router.Patch("/:id/reject", review, h.reject)
	router.Patch("/:id/cancel", h.cancel)
}

func (h *LeaveHandler) list(c *fiber.Ctx) error {
	page, err := listRequest(c)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list leave requests")
	}
	leaves, err := h.service.List(requestContext(c), actorFromContext(c), dto.LeaveListRequest{
		ListRequest: page,
		Status:      query(c, "status"),
		Type:        query(c, "type"),
		EmployeeID:  query(c, "employee_id"),
	})
	if err != nil {
		return respondError(c, h.logger, err, "failed to list leave requests")
	}
	return utils.SendSuccess(c, "leave requests retrieved", leaves)
}

func (h *LeaveHandler) create(c *fiber.Ctx) error {
	var payload dto.LeaveCreateRequest
	if err := parseBody(c, &payload); err != nil {
		return respondError(c, h.logger, err, "failed to request leave")
	}
	leave, err := h.service.Create(requestContext(c), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to request leave")
	}
	return utils.SendCreated(c, "leave requested", leave)
}

func (h *LeaveHandler) approve(c *fiber.Ctx) error {
	var payload dto.LeaveReviewRequest
	if err := parseBody(c, &payload); err != nil {
		return respondError(c, h.logger, err, "failed to approve leave")
	}
	leave, err := h.service.Approve(requestContext(c), actorFromContext(c), c.Params("id"), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to approve leave")
	}
	return utils.SendSuccess(c, "leave approved", leave)
}

func (h *LeaveHandler) reject(c *fiber.Ctx) error {
	var payload dto.LeaveReviewRequest
	if err := parseBody(c, &payload); err != nil {
		return respondError(c, h.logger, err, "failed to reject leave")
	}
	leave, err := h.service.Reject(requestContext(c), actorFromContext(c), c.Params("id"), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to reject leave")
	}
	return utils.SendSuccess(c, "leave rejected", leave)
}

func (h *LeaveHandler) cancel(c *fiber.Ctx) error {
	leave, err := h.service.Cancel(requestContext(c), actorFromContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to cancel leave")
	}
	return utils.SendSuccess(c, "leave cancelled", leave)
}
