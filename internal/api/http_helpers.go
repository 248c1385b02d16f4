package api

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/forgeboard/internal/services"
)

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
func (handler *Handler) respondServiceError(c *fiber.Ctx, err error) error {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": validationErr.Error(),
			"field": validationErr.Field,
		})
	case errors.Is(err, services.ErrWeakPassword):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
			"field": "password",
		})
	case errors.Is(err, services.ErrAuthCredentialsInvalid):
		return apiError(c, fiber.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, services.ErrNotFound):
		return apiError(c, fiber.StatusNotFound, "not found")
	case errors.Is(err, services.ErrAlreadyPaid):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":        "installment already paid",
			"already_paid": true,
		})
	case errors.Is(err, services.ErrInstallmentNotPaid):
		return apiError(c, fiber.StatusConflict, "installment not paid")
	case errors.Is(err, services.ErrNoFailureState):
		return apiError(c, fiber.StatusConflict, "no discipline failure to resolve")
	case errors.Is(err, services.ErrSetupClosed):
		return apiError(c, fiber.StatusConflict, "owner already configured")
	case errors.Is(err, services.ErrConflict):
		return apiError(c, fiber.StatusConflict, "conflict")
	case errors.Is(err, services.ErrTransientStore):
		handler.logger.Warn("store unavailable", "path", c.Path(), "error", err)
		return apiError(c, fiber.StatusServiceUnavailable, "store unavailable, retry")
	default:
		handler.logger.Error("request failed", "path", c.Path(), "error", err)
		return apiError(c, fiber.StatusInternalServerError, "internal error")
	}
}

// respondInputError handles body parsing failures raised as fiber errors
// and falls through to the service mapping otherwise.
func (handler *Handler) respondInputError(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return apiError(c, fiberErr.Code, fiberErr.Message)
	}
	return handler.respondServiceError(c, err)
}

func parseIDParam(c *fiber.Ctx, name string) (uint, bool) {
	value, err := strconv.ParseUint(strings.TrimSpace(c.Params(name)), 10, 64)
	if err != nil || value == 0 {
		return 0, false
	}
	return uint(value), true
}

func (handler *Handler) parseOptionalDayQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	day, err := services.ParseDay(raw, handler.location)
	if err != nil {
		return nil, err
	}
	return &day, nil
}

func (handler *Handler) parseOptionalDay(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	day, err := services.ParseDay(strings.TrimSpace(*raw), handler.location)
	if err != nil {
		return nil, err
	}
	return &day, nil
}
