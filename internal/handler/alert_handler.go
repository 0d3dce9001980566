package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/facility-ops-api/internal/dto"
	"github.com/noah-isme/facility-ops-api/internal/middleware"
	"github.com/noah-isme/facility-ops-api/internal/models"
	"github.com/noah-isme/facility-ops-api/internal/service"
	"github.com/noah-isme/facility-ops-api/internal/utils"
)

const alertPingInterval = 30 * time.Second

// AlertHandler wires alert endpoints including the live stream.
type AlertHandler struct {
	service service.AlertService
	logger  zerolog.Logger
}

// NewAlertHandler creates an alert handler instance.
func NewAlertHandler(service service.AlertService, logger zerolog.Logger) *AlertHandler {
	return &AlertHandler{
		service: service,
		logger:  logger.With().Str("component", "alert_handler").Logger(),
	}
}

// Register binds alert routes. create guards alert publication.
func (h *AlertHandler) Register(router fiber.Router, create fiber.Handler) {
	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/ws", websocket.New(h.stream))

	router.Get("", h.list)
	router.Post("", create, h.create)
	router.Patch("/:id/acknowledge", h.acknowledge)
	router.Patch("/:id/resolve", h.resolve)
}

func (h *AlertHandler) list(c *fiber.Ctx) error {
	page, err := listRequest(c)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list alerts")
	}
	alerts, err := h.service.List(requestContext(c), actorFromContext(c), dto.AlertListRequest{
		ListRequest: page,
		Status:      query(c, "status"),
		Severity:    query(c, "severity"),
		Category:    query(c, "category"),
	})
	if err != nil {
		return respondError(c, h.logger, err, "failed to list alerts")
	}
	return utils.SendSuccess(c, "alerts retrieved", alerts)
}

func (h *AlertHandler) create(c *fiber.Ctx) error {
	var payload dto.AlertCreateRequest
	if err := parseBody(c, &payload); err != nil {
		return respondError(c, h.logger, err, "failed to create alert")
	}
	alert, err := h.service.Create(requestContext(c), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create alert")
	}
	return utils.SendCreated(c, "alert created", alert)
}

func (h *AlertHandler) acknowledge(c *fiber.Ctx) error {
	alert, err := h.service.Acknowledge(requestContext(c), actorFromContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to acknowledge alert")
	}
	return utils.SendSuccess(c, "alert acknowledged", alert)
}

func (h *AlertHandler) resolve(c *fiber.Ctx) error {
	alert, err := h.service.Resolve(requestContext(c), actorFromContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to resolve alert")
	}
	return utils.SendSuccess(c, "alert resolved", alert)
}

func (h *AlertHandler) stream(conn *websocket.Conn) {
	tenantID, _ := conn.Locals(middleware.LocalTenantID).(string)
	role, _ := conn.Locals(middleware.LocalViewRole).(string)
	userID, _ := conn.Locals(middleware.LocalUserID).(string)
	if tenantID == "" {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "tenant context required"))
		_ = conn.Close()
		return
	}

	alerts, cancel := h.service.Subscribe(tenantID, models.RoleRank(role))
	defer cancel()

	h.logger.Info().Str("user_id", userID).Str("tenant_id", tenantID).Msg("alert stream connected")
	defer h.logger.Info().Str("user_id", userID).Str("tenant_id", tenantID).Msg("alert stream disconnected")

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(alertPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case alert, ok := <-alerts:
			if !ok {
				return
			}
			if err := conn.WriteJSON(alert); err != nil {
				h.logger.Debug().Err(err).Msg("alert stream write failed")
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
