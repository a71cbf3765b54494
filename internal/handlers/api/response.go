package api

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"kisansense/internal/services"
)

// jsonSuccess returns a 200 response with data wrapped in the standard envelope.
func jsonSuccess(c fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"data":   data,
	})
}

// jsonError returns an error response with the given HTTP status code.
func jsonError(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "error",
		"error":  message,
	})
}

// reasonStatus maps a service failure reason code to an HTTP status.
var reasonStatus = map[string]int{
	"not_configured": fiber.StatusServiceUnavailable,
	"unavailable":    fiber.StatusBadGateway,
	"no_data":        fiber.StatusNotFound,
	"invalid_input":  fiber.StatusBadRequest,
	"malformed":      fiber.StatusBadGateway,
}

// jsonServiceError reports a failed remote call with its reason code so
// clients can tell an unconfigured service from one that is down.
func jsonServiceError(c fiber.Ctx, service string, err error) error {
	reason := services.ReasonCode(err)
	status, ok := reasonStatus[reason]
	if !ok {
		status = fiber.StatusBadGateway
	}
	return c.Status(status).JSON(fiber.Map{
		"status":  "error",
		"error":   service + " " + strings.ReplaceAll(reason, "_", " "),
		"service": service,
		"reason":  reason,
	})
}
