package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/facility-ops-api/internal/dto"
	"github.com/noah-isme/facility-ops-api/internal/service"
	"github.com/noah-isme/facility-ops-api/internal/utils"
)

// TenantHandler manages tenants for superadmins.
type TenantHandler struct {
	service service.TenantService
	logger  zerolog.Logger
}

// NewTenantHandler constructs the handler.
func NewTenantHandler(service service.TenantService, logger zerolog.Logger) *TenantHandler {
	return &TenantHandler{
		service: service,
		logger:  logger.With().Str("component", "tenant_handler").Logger(),
	}
}

// Register attaches tenant endpoints to the router group.
func (h *TenantHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
}

func (h *TenantHandler) list(c *fiber.Ctx) error {
	page, err := listRequest(c)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list tenants")
	}
	tenants, err := h.service.List(requestContext(c), dto.TenantListRequest{
		ListRequest: page,
		Search:      query(c, "search"),
		Status:      query(c, "status"),
	})
	if err != nil {
		return respondError(c, h.logger, err, "failed to list tenants")
	}
	return utils.SendSuccess(c, "tenants retrieved", tenants)
}

func (h *TenantHandler) get(c *fiber.Ctx) error {
	tenant, err := h.service.Get(requestContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load tenant")
	}
	return utils.SendSuccess(c, "tenant retrieved", tenant)
}

func (h *TenantHandler) create(c *fiber.Ctx) error {
	var payload dto.TenantCreateRequest
	if err := parseBody(c, &payload); err != nil {
		return respondError(c, h.logger, err, "failed to create tenant")
	}
	tenant, err := h.service.Create(requestContext(c), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create tenant")
	}
	return utils.SendCreated(c, "tenant created", tenant)
}

func (h *TenantHandler) update(c *fiber.Ctx) error {
	var payload dto.TenantUpdateRequest
	if err := parseBody(c, &payload); err != nil {
		return respondError(c, h.logger, err, "failed to update tenant")
	}
	tenant, err := h.service.Update(requestContext(c), actorFromContext(c), c.Params("id"), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update tenant")
	}
	return utils.SendSuccess(c, "tenant updated", tenant)
}
