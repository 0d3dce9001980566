package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/facility-ops-api/internal/dto"
	"github.com/noah-isme/facility-ops-api/internal/service"
	"github.com/noah-isme/facility-ops-api/internal/utils"
)

// CRMHandler wires clients, leads and communications.
type CRMHandler struct {
	clients        service.ClientService
	leads          service.LeadService
	communications service.CommunicationService
	logger         zerolog.Logger
}

// NewCRMHandler constructs the handler.
func NewCRMHandler(clients service.ClientService, leads service.LeadService, communications service.CommunicationService, logger zerolog.Logger) *CRMHandler {
	return &CRMHandler{
		clients:        clients,
		leads:          leads,
		communications: communications,
		logger:         logger.With().Str("component", "crm_handler").Logger(),
	}
}

// Register attaches the CRM endpoints under the provided group.
func (h *CRMHandler) Register(router fiber.Router) {
	clients := router.Group("/clients")
	clients.Get("", h.listClients)
	clients.Post("", h.createClient)
	clients.Get("/:id", h.getClient)
	clients.Put("/:id", h.updateClient)
	clients.Delete("/:id", h.deleteClient)

	leads := router.Group("/leads")
	leads.Get("/pipeline", h.pipeline)
	leads.Get("", h.listLeads)
	leads.Post("", h.createLead)
	leads.Get("/:id", h.getLead)
	leads.Put("/:id", h.updateLead)
	leads.Patch("/:id/status", h.updateLeadStatus)
	leads.Post("/:id/convert", h.convertLead)
	leads.Delete("/:id", h.deleteLead)

	communications := router.Group("/communications")
	communications.Get("", h.listCommunications)
	communications.Post("", h.createCommunication)
}

func (h *CRMHandler) listClients(c *fiber.Ctx) error {
	page, err := listRequest(c)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list clients")
	}
	clients, err := h.clients.List(requestContext(c), actorFromContext(c), dto.ClientListRequest{
		ListRequest: page,
		Status:      query(c, "status"),
		Search:      query(c, "search"),
	})
	if err != nil {
		return respondError(c, h.logger, err, "failed to list clients")
	}
	return utils.SendSuccess(c, "clients retrieved", clients)
}

func (h *CRMHandler) getClient(c *fiber.Ctx) error {
	client, err := h.clients.Get(requestContext(c), actorFromContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load client")
	}
	return utils.SendSuccess(c, "client retrieved", client)
}

func (h *CRMHandler) createClient(c *fiber.Ctx) error {
	var payload dto.ClientCreateRequest
	if err := parseBody(c, &payload); err != nil {
		return respondError(c, h.logger, err, "failed to create client")
	}
	client, err := h.clients.Create(requestContext(c), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create client")
	}
	return utils.SendCreated(c, "client created", client)
}

func (h *CRMHandler) updateClient(c *fiber.Ctx) error {
	var payload dto.ClientUpdateRequest
	if err := parseBody(c, &payload); err != nil {
		return respondError(c, h.logger, err, "failed to update client")
	}
	client, err := h.clients.Update(requestContext(c), actorFromContext(c), c.Params("id"), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update client")
	}
	return utils.SendSuccess(c, "client updated", client)
}

func (h *CRMHandler) deleteClient(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.clients.Delete(requestContext(c), actorFromContext(c), id); err != nil {
		return respondError(c, h.logger, err, "failed to delete client")
	}
	return utils.SendSuccess(c, "client deleted", fiber.Map{"id": id})
}

func (h *CRMHandler) pipeline(c *fiber.Ctx) error {
	pipeline, err := h.leads.Pipeline(requestContext(c), actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load pipeline")
	}
	return utils.SendSuccess(c, "pipeline retrieved", pipeline)
}

func (h *CRMHandler) listLeads(c *fiber.Ctx) error {
	page, err := listRequest(c)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list leads")
	}
	leads, err := h.leads.List(requestContext(c), actorFromContext(c), dto.LeadListRequest{
		ListRequest: page,
		Status:      query(c, "status"),
		Source:      query(c, "source"),
		AssignedTo:  query(c, "assigned_to"),
		Search:      query(c, "search"),
	})
	if err != nil {
		return respondError(c, h.logger, err, "failed to list leads")
	}
	return utils.SendSuccess(c, "leads retrieved", leads)
}

func (h *CRMHandler) getLead(c *fiber.Ctx) error {
	lead, err := h.leads.Get(requestContext(c), actorFromContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load lead")
	}
	return utils.SendSuccess(c, "lead retrieved", lead)
}

func (h *CRMHandler) createLead(c *fiber.Ctx) error {
	var payload dto.LeadCreateRequest
	if err := parseBody(c, &payload); err != nil {
		return respondError(c, h.logger, err, "failed to create lead")
	}
	lead, err := h.leads.Create(requestContext(c), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create lead")
	}
	return utils.SendCreated(c, "lead created", lead)
}

func (h *CRMHandler) updateLead(c *fiber.Ctx) error {
	var payload dto.LeadUpdateRequest
	if err := parseBody(c, &payload); err != nil {
		return respondError(c, h.logger, err, "failed to update lead")
	}
	lead, err := h.leads.Update(requestContext(c), actorFromContext(c), c.Params("id"), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update lead")
	}
	return utils.SendSuccess(c, "lead updated", lead)
}

func (h *CRMHandler) updateLeadStatus(c *fiber.Ctx) error {
	var payload dto.LeadStatusRequest
	if err := parseBody(c, &payload); err != nil {
		return respondError(c, h.logger, err, "failed to update lead status")
	}
	lead, err := h.leads.UpdateStatus(requestContext(c), actorFromContext(c), c.Params("id"), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update lead status")
	}
	return utils.SendSuccess(c, "lead status updated", lead)
}

func (h *CRMHandler) convertLead(c *fiber.Ctx) error {
	var payload dto.LeadConvertRequest
	if err := parseBody(c, &payload); err != nil {
		return respondError(c, h.logger, err, "failed to convert lead")
	}
	converted, err := h.leads.Convert(requestContext(c), actorFromContext(c), c.Params("id"), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to convert lead")
	}
	return utils.SendCreated(c, "lead converted", converted)
}

func (h *CRMHandler) deleteLead(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.leads.Delete(requestContext(c), actorFromContext(c), id); err != nil {
		return respondError(c, h.logger, err, "failed to delete lead")
	}
	return utils.SendSuccess(c, "lead deleted", fiber.Map{"id": id})
}

func (h *CRMHandler) listCommunications(c *fiber.Ctx) error {
	page, err := listRequest(c)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list communications")
	}
	communications, err := h.communications.List(requestContext(c), actorFromContext(c), dto.CommunicationListRequest{
		ListRequest: page,
		ClientID:    query(c, "client_id"),
		LeadID:      query(c, "lead_id"),
		Channel:     query(c, "channel"),
	})
	if err != nil {
		return respondError(c, h.logger, err, "failed to list communications")
	}
	return utils.SendSuccess(c, "communications retrieved", communications)
}

func (h *CRMHandler) createCommunication(c *fiber.Ctx) error {
	var payload dto.CommunicationCreateRequest
	if err := parseBody(c, &payload); err != nil {
		return respondError(c, h.logger, err, "failed to log communication")
	}
	communication, err := h.communications.Create(requestContext(c), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to log communication")
	}
	return utils.SendCreated(c, "communication logged", communication)
}
