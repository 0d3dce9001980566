package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/facility-ops-api/internal/dto"
	"github.com/noah-isme/facility-ops-api/internal/service"
	"github.com/noah-isme/facility-ops-api/internal/utils"
)

// InvoiceHandler exposes client invoicing.
type InvoiceHandler struct {
	service service.InvoiceService
	logger  zerolog.Logger
}

// NewInvoiceHandler constructs the handler.
func NewInvoiceHandler(service service.InvoiceService, logger zerolog.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		service: service,
		logger:  logger.With().Str("component", "invoice_handler").Logger(),
	}
}

// Register attaches invoice endpoints.
func (h *InvoiceHandler) Register(router fiber.Router) {
	router.Get("/summary", h.summary)
	router.Get("/export", h.export)
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Patch("/:id/status", h.updateStatus)
	router.Delete("/:id", h.delete)
}

func (h *InvoiceHandler) filters(c *fiber.Ctx) (dto.InvoiceListRequest, error) {
	page, err := listRequest(c)
	if err != nil {
		return dto.InvoiceListRequest{}, err
	}
	return dto.InvoiceListRequest{
		ListRequest: page,
		ClientID:    query(c, "client_id"),
		Status:      query(c, "status"),
		From:        query(c, "from"),
		To:          query(c, "to"),
	}, nil
}

func (h *InvoiceHandler) list(c *fiber.Ctx) error {
	req, err := h.filters(c)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list invoices")
	}
	invoices, err := h.service.List(requestContext(c), actorFromContext(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list invoices")
	}
	return utils.SendSuccess(c, "invoices retrieved", invoices)
}

func (h *InvoiceHandler) get(c *fiber.Ctx) error {
	invoice, err := h.service.Get(requestContext(c), actorFromContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load invoice")
	}
	return utils.SendSuccess(c, "invoice retrieved", invoice)
}

func (h *InvoiceHandler) create(c *fiber.Ctx) error {
	var payload dto.InvoiceCreateRequest
	if err := parseBody(c, &payload); err != nil {
		return respondError(c, h.logger, err, "failed to create invoice")
	}
	invoice, err := h.service.Create(requestContext(c), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create invoice")
	}
	return utils.SendCreated(c, "invoice created", invoice)
}

func (h *InvoiceHandler) update(c *fiber.Ctx) error {
	var payload dto.InvoiceUpdateRequest
	if err := parseBody(c, &payload); err != nil {
		return respondError(c, h.logger, err, "failed to update invoice")
	}
	invoice, err := h.service.Update(requestContext(c), actorFromContext(c), c.Params("id"), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update invoice")
	}
	return utils.SendSuccess(c, "invoice updated", invoice)
}

func (h *InvoiceHandler) updateStatus(c *fiber.Ctx) error {
	var payload dto.InvoiceStatusRequest
	if err := parseBody(c, &payload); err != nil {
		return respondError(c, h.logger, err, "failed to update invoice status")
	}
	invoice, err := h.service.UpdateStatus(requestContext(c), actorFromContext(c), c.Params("id"), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update invoice status")
	}
	return utils.SendSuccess(c, "invoice status updated", invoice)
}

func (h *InvoiceHandler) delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.Delete(requestContext(c), actorFromContext(c), id); err != nil {
		return respondError(c, h.logger, err, "failed to delete invoice")
	}
	return utils.SendSuccess(c, "invoice deleted", fiber.Map{"id": id})
}

func (h *InvoiceHandler) summary(c *fiber.Ctx) error {
	summary, err := h.service.Summary(requestContext(c), actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to summarise invoices")
	}
	return utils.SendSuccess(c, "invoice summary", summary)
}

func (h *InvoiceHandler) export(c *fiber.Ctx) error {
	req, err := h.filters(c)
	if err != nil {
		return respondError(c, h.logger, err, "failed to export invoices")
	}
	payload, err := h.service.Export(requestContext(c), actorFromContext(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to export invoices")
	}
	return sendWorkbook(c, "invoices", payload)
}

// ExpenseHandler exposes expense submission and review.
type ExpenseHandler struct {
	service service.ExpenseService
	logger  zerolog.Logger
}

// NewExpenseHandler constructs the handler.
func NewExpenseHandler(service service.ExpenseService, logger zerolog.Logger) *ExpenseHandler {
	return &ExpenseHandler{
		service: service,
		logger:  logger.With().Str("component", "expense_handler").Logger(),
	}
}

// Register attaches expense endpoints. review guards approval and rejection.
func (h *ExpenseHandler) Register(router fiber.Router, review fiber.Handler) {
	router.Get("/summary", h.summary)
	router.Get("", h.list)
	router.Post("", h.create)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Patch("/:id/approve", review, h.approve)
	router.Patch("/:id/reject", review, h.reject)
}

func (h *ExpenseHandler) list(c *fiber.Ctx) error {
	page, err := listRequest(c)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list expenses")
	}
	expenses, err := h.service.List(requestContext(c), actorFromContext(c), dto.ExpenseListRequest{
		ListRequest: page,
		Category:    query(c, "category"),
		Status:      query(c, "status"),
		From:        query(c, "from"),
		To:          query(c, "to"),
	})
	if err != nil {
		return respondError(c, h.logger, err, "failed to list expenses")
	}
	return utils.SendSuccess(c, "expenses retrieved", expenses)
}

func (h *ExpenseHandler) create(c *fiber.Ctx) error {
	var payload dto.ExpenseCreateRequest
	if err := parseBody(c, &payload); err != nil {
		return respondError(c, h.logger, err, "failed to submit expense")
	}
	expense, err := h.service.Create(requestContext(c), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to submit expense")
	}
	return utils.SendCreated(c, "expense submitted", expense)
}

func (h *ExpenseHandler) update(c *fiber.Ctx) error {
	var payload dto.ExpenseUpdateRequest
	if err := parseBody(c, &payload); err != nil {
		return respondError(c, h.logger, err, "failed to update expense")
	}
	expense, err := h.service.Update(requestContext(c), actorFromContext(c), c.Params("id"), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update expense")
	}
	return utils.SendSuccess(c, "expense updated", expense)
}

func (h *ExpenseHandler) delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.Delete(requestContext(c), actorFromContext(c), id); err != nil {
		return respondError(c, h.logger, err, "failed to delete expense")
	}
	return utils.SendSuccess(c, "expense deleted", fiber.Map{"id": id})
}

func (h *ExpenseHandler) approve(c *fiber.Ctx) error {
	expense, err := h.service.Approve(requestContext(c), actorFromContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to approve expense")
	}
	return utils.SendSuccess(c, "expense approved", expense)
}

func (h *ExpenseHandler) reject(c *fiber.Ctx) error {
	expense, err := h.service.Reject(requestContext(c), actorFromContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to reject expense")
	}
	return utils.SendSuccess(c, "expense rejected", expense)
}

func (h *ExpenseHandler) summary(c *fiber.Ctx) error {
	summary, err := h.service.Summary(requestContext(c), actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to summarise expenses")
	}
	return utils.SendSuccess(c, "expense summary", summary)
}
