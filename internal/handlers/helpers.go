package handlers

import (
	"errors"
	"strings"

	"github.com/drivebox/backend/internal/services"
	"github.com/drivebox/backend/pkg/logger"
	"github.com/drivebox/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func parseUUID(value string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(value))
}

// parseOptionalUUID maps an optional JSON string field to an id. A nil or
// empty value means "none" (root); returns ok=false on a malformed id.
func parseOptionalUUID(raw *string) (id *uuid.UUID, ok bool) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, true
	}
	parsed, err := parseUUID(*raw)
	if err != nil {
		return nil, false
	}
	return &parsed, true
}

// serviceError translates the service error taxonomy into an HTTP response.
// Anything outside the taxonomy is an unexpected store failure: logged, and
// reported as a generic 500.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return utils.Error(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrValidation):
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrConflict):
		return utils.Error(c, fiber.StatusConflict, err.Error())
	default:
		logger.Error("internal_error", err, map[string]interface{}{
			"method": c.Method(),
			"path":   c.Path(),
		})
		return utils.Error(c, fiber.StatusInternalServerError, "internal server error")
	}
}
