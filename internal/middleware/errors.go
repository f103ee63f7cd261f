package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/khabar/internal/apperr"
	"github.com/bilgisen/khabar/internal/logger"
)

// statusFor maps an error onto an HTTP status and the client-facing body.
func statusFor(err error) (int, fiber.Map) {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, fiber.Map{"error": fe.Message}
	}

	var ae *apperr.Error
	if !errors.As(err, &ae) {
		return fiber.StatusInternalServerError, fiber.Map{"error": "Internal server error"}
	}

	body := fiber.Map{"error": ae.Message}
	switch ae.Kind {
	case apperr.KindValidation:
		if len(ae.Fields) > 0 {
			body["fields"] = ae.Fields
			return fiber.StatusUnprocessableEntity, body
		}
		return fiber.StatusBadRequest, body
	case apperr.KindInvalidCredentials, apperr.KindInvalidToken, apperr.KindInactive:
		return fiber.StatusUnauthorized, body
	case apperr.KindForbidden:
		return fiber.StatusForbidden, body
	case apperr.KindNotFound:
		return fiber.StatusNotFound, body
	case apperr.KindConflict:
		return fiber.StatusConflict, body
	case apperr.KindUpstreamFetch:
		return fiber.StatusBadGateway, body
	default:
		return fiber.StatusInternalServerError, fiber.Map{"error": "Internal server error"}
	}
}

// ErrorHandler is the Fiber error handler: every error becomes a JSON body
// with a status derived from its kind. Causes of server errors are logged,
// never returned.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code, body := statusFor(err)

	if code >= fiber.StatusInternalServerError {
		logger.Get().Error().
			Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", code).
			Msg("HTTP error")
	}

	return c.Status(code).JSON(body)
}
