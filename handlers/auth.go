package handlers

import (
	"strings"

	"doc-notification/app"
	"doc-notification/middleware"
	"doc-notification/models"

	"github.com/gofiber/fiber/v2"
)

// Register creates a new account. It does not log the user in.
func Register(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.RegisterRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}

		user, err := a.Users.Register(c.UserContext(), req)
		if err != nil {
			return serviceError(c, "Failed to register", err)
		}

		return created(c, fiber.Map{
			"success": true,
			"user":    user.Public(),
		})
	}
}

// Login checks credentials and points the session at the user
func Login(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		req.Email = strings.TrimSpace(req.Email)

		if err := a.Validator.Validate(&req); err != nil {
			return validationError(c, err)
		}

		user, err := a.Users.Login(c.UserContext(), req.Email, req.Password)
		if err != nil {
			return serviceError(c, "Login failed", err)
		}

		return success(c, fiber.Map{
			"success": true,
			"user":    user.Public(),
		})
	}
}

// Logout clears the session pointer
func Logout(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := a.Users.Logout(c.UserContext()); err != nil {
			return serviceError(c, "Logout failed", err)
		}
		return success(c, fiber.Map{"success": true})
	}
}

// Me returns the user the session resolves to
func Me(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := middleware.GetUser(c)
		if user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"authenticated": false,
			})
		}

		return success(c, fiber.Map{
			"authenticated": true,
			"user":          user.Public(),
		})
	}
}

// UpdateProfile merges profile fields for the logged-in user
func UpdateProfile(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.ProfileUpdate
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}

		user, err := a.Users.UpdateProfile(c.UserContext(), middleware.GetUserEmail(c), req)
		if err != nil {
			return serviceError(c, "Failed to update profile", err)
		}

		return success(c, fiber.Map{
			"success": true,
			"user":    user.Public(),
		})
	}
}
