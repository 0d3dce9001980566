package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/facility-ops-api/internal/dto"
	"github.com/noah-isme/facility-ops-api/internal/middleware"
	"github.com/noah-isme/facility-ops-api/internal/service"
	"github.com/noah-isme/facility-ops-api/internal/utils"
)

var (
	errInvalidPayload = errors.New("invalid request payload")
	errInvalidQuery   = errors.New("invalid query parameter")
)

var (
	notFoundErrors = []error{
		service.ErrTenantNotFound,
		service.ErrUserNotFound,
		service.ErrAlertNotFound,
		service.ErrAttendanceNotFound,
		service.ErrRosterNotFound,
		service.ErrLeaveNotFound,
		service.ErrClientNotFound,
		service.ErrLeadNotFound,
		service.ErrInvoiceNotFound,
		service.ErrExpenseNotFound,
	}
	badRequestErrors = []error{
		errInvalidPayload,
		errInvalidQuery,
		service.ErrTenantRequired,
		service.ErrTenantSlugInvalid,
		service.ErrTenantSlugTaken,
		service.ErrEmailTaken,
		service.ErrAlertEmpty,
		service.ErrAlertTransition,
		service.ErrAlreadyCheckedIn,
		service.ErrClockTransition,
		service.ErrInvalidDateRange,
		service.ErrPhotoLimit,
		service.ErrPhotoRequired,
		service.ErrUploadTypeNotAllowed,
		service.ErrRosterDuplicate,
		service.ErrRosterShift,
		service.ErrLeaveNotPending,
		service.ErrLeaveDates,
		service.ErrLeadClosed,
		service.ErrCommunicationTarget,
		service.ErrInvoiceNotDraft,
		service.ErrInvoiceTransition,
		service.ErrInvoiceDates,
		service.ErrExpenseNotPending,
	}
	forbiddenErrors = []error{
		service.ErrForbidden,
		service.ErrRoleNotAllowed,
	}
)

// respondError maps service errors onto the response envelope. Unknown errors
// are logged and reported as 500.
func respondError(c *fiber.Ctx, logger zerolog.Logger, err error, fallback string) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrors):
		return utils.Fail(c, fiber.StatusBadRequest, "validation failed", validationDetails(validationErrors))
	case matchesAny(err, notFoundErrors):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case matchesAny(err, badRequestErrors):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case matchesAny(err, forbiddenErrors):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrUserInactive), errors.Is(err, service.ErrTenantSuspended):
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrUploadTooLarge):
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, service.ErrPhotoStorageUnavailable), errors.Is(err, service.ErrInvoiceNumberExhausted):
		return utils.SendError(c, fiber.StatusServiceUnavailable, err.Error())
	}

	requestLogger(logger, c).Error().Err(err).Str("path", c.Path()).Msg(fallback)
	return utils.Fail(c, fiber.StatusInternalServerError, fallback, map[string]string{"error": err.Error()})
}

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func validationDetails(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, fieldErr := range errs {
		field := fieldErr.Field()
		if fieldErr.Param() != "" {
			details[field] = fieldErr.Tag() + "=" + fieldErr.Param()
			continue
		}
		details[field] = fieldErr.Tag()
	}
	return details
}

// parseBody decodes an optional JSON body.
func parseBody(c *fiber.Ctx, target interface{}) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(target); err != nil {
		return errInvalidPayload
	}
	return nil
}

// actorFromContext assembles the caller identity loaded by the auth middlewares.
func actorFromContext(c *fiber.Ctx) service.Actor {
	return service.Actor{
		ID:       localString(c, middleware.LocalUserID),
		Role:     localString(c, middleware.LocalUserRole),
		ViewRole: localString(c, middleware.LocalViewRole),
		TenantID: localString(c, middleware.LocalTenantID),
	}
}

func localString(c *fiber.Ctx, key string) string {
	if value, ok := c.Locals(key).(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

func requestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
}

func listRequest(c *fiber.Ctx) (dto.ListRequest, error) {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return dto.ListRequest{}, fmt.Errorf("%w: page", errInvalidQuery)
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return dto.ListRequest{}, fmt.Errorf("%w: page_size", errInvalidQuery)
	}
	return dto.ListRequest{Page: page, PageSize: pageSize}, nil
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func query(c *fiber.Ctx, key string) string {
	return strings.TrimSpace(c.Query(key))
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}
