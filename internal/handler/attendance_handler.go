package handler

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/facility-ops-api/internal/dto"
	"github.com/noah-isme/facility-ops-api/internal/service"
	"github.com/noah-isme/facility-ops-api/internal/utils"
	"github.com/noah-isme/facility-ops-api/pkg/report"
)

// AttendanceHandler exposes employee time tracking.
type AttendanceHandler struct {
	service service.AttendanceService
	logger  zerolog.Logger
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(service service.AttendanceService, logger zerolog.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		service: service,
		logger:  logger.With().Str("component", "attendance_handler").Logger(),
	}
}

// AttendanceGuards carries the role checks for the privileged attendance routes.
type AttendanceGuards struct {
	Supervisor fiber.Handler
	Manager    fiber.Handler
}

// Register attaches attendance endpoints.
func (h *AttendanceHandler) Register(router fiber.Router, guards AttendanceGuards) {
	router.Post("/checkin", h.checkIn)
	router.Post("/break/start", h.startBreak)
	router.Post("/break/end", h.endBreak)
	router.Post("/checkout", h.checkOut)
	router.Get("/today", h.today)
	router.Get("/me", h.mine)

	router.Get("/summary", guards.Supervisor, h.summary)
	router.Get("/export", guards.Supervisor, h.export)
	router.Get("", guards.Supervisor, h.list)
	router.Post("/mark", guards.Manager, h.mark)
	router.Put("/:id/status", guards.Manager, h.updateStatus)
}

func (h *AttendanceHandler) checkIn(c *fiber.Ctx) error {
	var payload dto.CheckInRequest
	if err := parseBody(c, &payload); err != nil {
		return respondError(c, h.logger, err, "failed to check in")
	}
	record, err := h.service.CheckIn(requestContext(c), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to check in")
	}
	return utils.SendCreated(c, "checked in", record)
}

func (h *AttendanceHandler) startBreak(c *fiber.Ctx) error {
	record, err := h.service.StartBreak(requestContext(c), actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to start break")
	}
	return utils.SendSuccess(c, "break started", record)
}

func (h *AttendanceHandler) endBreak(c *fiber.Ctx) error {
	record, err := h.service.EndBreak(requestContext(c), actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to end break")
	}
	return utils.SendSuccess(c, "break ended", record)
}

func (h *AttendanceHandler) checkOut(c *fiber.Ctx) error {
	var payload dto.CheckOutRequest
	if err := parseBody(c, &payload); err != nil {
		return respondError(c, h.logger, err, "failed to check out")
	}
	record, err := h.service.CheckOut(requestContext(c), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to check out")
	}
	return utils.SendSuccess(c, "checked out", record)
}

func (h *AttendanceHandler) today(c *fiber.Ctx) error {
	today, err := h.service.Today(requestContext(c), actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load attendance")
	}
	return utils.SendSuccess(c, "attendance retrieved", today)
}

func (h *AttendanceHandler) mine(c *fiber.Ctx) error {
	req, err := attendanceListRequest(c)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list attendance")
	}
	records, err := h.service.Mine(requestContext(c), actorFromContext(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list attendance")
	}
	return utils.SendSuccess(c, "attendance retrieved", records)
}

func (h *AttendanceHandler) list(c *fiber.Ctx) error {
	req, err := attendanceListRequest(c)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list attendance")
	}
	records, err := h.service.List(requestContext(c), actorFromContext(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list attendance")
	}
	return utils.SendSuccess(c, "attendance retrieved", records)
}

func (h *AttendanceHandler) mark(c *fiber.Ctx) error {
	var payload dto.AttendanceMarkRequest
	if err := parseBody(c, &payload); err != nil {
		return respondError(c, h.logger, err, "failed to mark attendance")
	}
	record, err := h.service.Mark(requestContext(c), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to mark attendance")
	}
	return utils.SendSuccess(c, "attendance marked", record)
}

func (h *AttendanceHandler) updateStatus(c *fiber.Ctx) error {
	var payload dto.AttendanceStatusRequest
	if err := parseBody(c, &payload); err != nil {
		return respondError(c, h.logger, err, "failed to update attendance")
	}
	record, err := h.service.UpdateStatus(requestContext(c), actorFromContext(c), c.Params("id"), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update attendance")
	}
	return utils.SendSuccess(c, "attendance updated", record)
}

func (h *AttendanceHandler) summary(c *fiber.Ctx) error {
	summary, err := h.service.Summary(requestContext(c), actorFromContext(c), query(c, "from"), query(c, "to"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to summarise attendance")
	}
	return utils.SendSuccess(c, "attendance summary", summary)
}

func (h *AttendanceHandler) export(c *fiber.Ctx) error {
	payload, err := h.service.Export(requestContext(c), actorFromContext(c), query(c, "from"), query(c, "to"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to export attendance")
	}
	return sendWorkbook(c, "attendance", payload)
}

func attendanceListRequest(c *fiber.Ctx) (dto.AttendanceListRequest, error) {
	page, err := listRequest(c)
	if err != nil {
		return dto.AttendanceListRequest{}, err
	}
	return dto.AttendanceListRequest{
		ListRequest: page,
		Date:        query(c, "date"),
		From:        query(c, "from"),
		To:          query(c, "to"),
		EmployeeID:  query(c, "employee_id"),
		Status:      query(c, "status"),
	}, nil
}

func sendWorkbook(c *fiber.Ctx, name string, payload []byte) error {
	filename := fmt.Sprintf("%s-%s.xlsx", name, time.Now().UTC().Format("20060102-150405"))
	c.Set(fiber.HeaderContentType, report.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Status(fiber.StatusOK).Send(payload)
}
