package middleware

import (
	"context"
	"errors"

	"doc-notification/models"
	"doc-notification/services"

	"github.com/gofiber/fiber/v2"
)

// SessionResolver resolves the session pointer to a user
type SessionResolver interface {
	CurrentUser(ctx context.Context) (*models.User, error)
}

// AuthRequired rejects requests unless the session pointer resolves to a
// user in the directory. The resolved user is stored in c.Locals.
func AuthRequired(resolver SessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := resolver.CurrentUser(c.UserContext())
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Not authenticated",
				})
			}
			return err
		}

		c.Locals("user", user)
		c.Locals("userID", user.ID)
		c.Locals("userEmail", user.Email)
		return c.Next()
	}
}

func GetUser(c *fiber.Ctx) *models.User {
	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return nil
	}
	return user
}

func GetUserEmail(c *fiber.Ctx) string {
	email, ok := c.Locals("userEmail").(string)
	if !ok {
		return ""
	}
	return email
}
