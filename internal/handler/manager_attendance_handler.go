package handler

import (
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/facility-ops-api/internal/dto"
	"github.com/noah-isme/facility-ops-api/internal/service"
	"github.com/noah-isme/facility-ops-api/internal/utils"
)

// ManagerAttendanceHandler exposes site manager time tracking.
type ManagerAttendanceHandler struct {
	service service.ManagerAttendanceService
	logger  zerolog.Logger
}

// NewManagerAttendanceHandler constructs the handler.
func NewManagerAttendanceHandler(service service.ManagerAttendanceService, logger zerolog.Logger) *ManagerAttendanceHandler {
	return &ManagerAttendanceHandler{
		service: service,
		logger:  logger.With().Str("component", "manager_attendance_handler").Logger(),
	}
}

// Register attaches manager attendance endpoints.
func (h *ManagerAttendanceHandler) Register(router fiber.Router) {
	router.Post("/checkin", h.checkIn)
	router.Post("/break/start", h.startBreak)
	router.Post("/break/end", h.endBreak)
	router.Post("/checkout", h.checkOut)
	router.Post("/photos", h.addPhotos)
	router.Get("/today", h.today)
	router.Get("", h.list)
}

func (h *ManagerAttendanceHandler) checkIn(c *fiber.Ctx) error {
	var payload dto.ManagerCheckInRequest
	if err := parseBody(c, &payload); err != nil {
		return respondError(c, h.logger, err, "failed to check in")
	}
	record, err := h.service.CheckIn(requestContext(c), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to check in")
	}
	return utils.SendCreated(c, "checked in", record)
}

func (h *ManagerAttendanceHandler) startBreak(c *fiber.Ctx) error {
	record, err := h.service.StartBreak(requestContext(c), actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to start break")
	}
	return utils.SendSuccess(c, "break started", record)
}

func (h *ManagerAttendanceHandler) endBreak(c *fiber.Ctx) error {
	record, err := h.service.EndBreak(requestContext(c), actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to end break")
	}
	return utils.SendSuccess(c, "break ended", record)
}

func (h *ManagerAttendanceHandler) checkOut(c *fiber.Ctx) error {
	var payload dto.ManagerCheckOutRequest
	if err := parseBody(c, &payload); err != nil {
		return respondError(c, h.logger, err, "failed to check out")
	}
	record, err := h.service.CheckOut(requestContext(c), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to check out")
	}
	return utils.SendSuccess(c, "checked out", record)
}

func (h *ManagerAttendanceHandler) addPhotos(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "multipart form required")
	}
	files := photoFiles(form)
	if len(files) == 0 {
		return respondError(c, h.logger, service.ErrPhotoRequired, "failed to store photos")
	}

	record, err := h.service.AddPhotos(requestContext(c), actorFromContext(c), files)
	if err != nil {
		return respondError(c, h.logger, err, "failed to store photos")
	}
	return utils.SendSuccess(c, "photos stored", record)
}

func (h *ManagerAttendanceHandler) today(c *fiber.Ctx) error {
	today, err := h.service.Today(requestContext(c), actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load attendance")
	}
	return utils.SendSuccess(c, "attendance retrieved", today)
}

func (h *ManagerAttendanceHandler) list(c *fiber.Ctx) error {
	page, err := listRequest(c)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list attendance")
	}
	records, err := h.service.List(requestContext(c), actorFromContext(c), dto.ManagerAttendanceListRequest{
		ListRequest: page,
		Date:        query(c, "date"),
		From:        query(c, "from"),
		To:          query(c, "to"),
		ManagerID:   query(c, "manager_id"),
	})
	if err != nil {
		return respondError(c, h.logger, err, "failed to list attendance")
	}
	return utils.SendSuccess(c, "attendance retrieved", records)
}

// photoFiles accepts both "photos" and "photos[]" field names.
func photoFiles(form *multipart.Form) []*multipart.FileHeader {
	files := make([]*multipart.FileHeader, 0)
	files = append(files, form.File["photos"]...)
	files = append(files, form.File["photos[]"]...)
	return files
}
