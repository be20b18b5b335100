package handlers

import (
	"errors"
	"log/slog"

	"doc-notification/services"
	"doc-notification/validator"

	"github.com/gofiber/fiber/v2"
)

func success(c *fiber.Ctx, data fiber.Map) error {
	return c.JSON(data)
}

func created(c *fiber.Ctx, data fiber.Map) error {
	return c.Status(fiber.StatusCreated).JSON(data)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}

func serverErrorWithDetails(c *fiber.Ctx, message string, err error) error {
	requestID := ""
	if id, ok := c.Locals("requestID").(string); ok {
		requestID = id
	}

	slog.Error("server error",
		"request_id", requestID,
		"method", c.Method(),
		"path", c.Path(),
		"message", message,
		"error", err,
	)

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": message})
}

// StatusFor maps a service error to its HTTP status. ok is false for
// errors outside the service taxonomy.
func StatusFor(err error) (status int, ok bool) {
	switch {
	case errors.Is(err, services.ErrValidation):
		return fiber.StatusBadRequest, true
	case errors.Is(err, services.ErrAuth), errors.Is(err, services.ErrNoSession):
		return fiber.StatusUnauthorized, true
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound, true
	case errors.Is(err, services.ErrConflict):
		return fiber.StatusConflict, true
	case errors.Is(err, services.ErrStorage):
		return fiber.StatusInternalServerError, true
	}
	return 0, false
}

// serviceError writes err with the status of its category. Storage and
// unknown errors are logged and reported without their details.
func serviceError(c *fiber.Ctx, message string, err error) error {
	status, ok := StatusFor(err)
	if !ok || status >= fiber.StatusInternalServerError {
		return serverErrorWithDetails(c, message, err)
	}

	if status == fiber.StatusBadRequest {
		return validationError(c, err)
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func validationError(c *fiber.Ctx, err error) error {
	body := fiber.Map{"error": err.Error()}

	var details validator.ValidationErrors
	if errors.As(err, &details) {
		body["details"] = details
	}
	return c.Status(fiber.StatusBadRequest).JSON(body)
}
