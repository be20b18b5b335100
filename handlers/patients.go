package handlers

import (
	"time"

	"doc-notification/app"
	"doc-notification/models"

	"github.com/gofiber/fiber/v2"
)

// ListPatients returns every patient, or those matching ?q=
func ListPatients(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		patients, err := a.Patients.Search(c.UserContext(), c.Query("q"))
		if err != nil {
			return serviceError(c, "Failed to fetch patients", err)
		}

		return success(c, fiber.Map{
			"patients": patients,
			"count":    len(patients),
		})
	}
}

func GetPatient(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		patient, err := a.Patients.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return serviceError(c, "Failed to fetch patient", err)
		}
		return success(c, fiber.Map{"patient": patient})
	}
}

func CreatePatient(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.PatientInput
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}

		patient, err := a.Patients.Create(c.UserContext(), req)
		if err != nil {
			return serviceError(c, "Failed to create patient", err)
		}

		return created(c, fiber.Map{"patient": patient})
	}
}

func UpdatePatient(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.PatientUpdate
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}

		patient, err := a.Patients.Update(c.UserContext(), c.Params("id"), req)
		if err != nil {
			return serviceError(c, "Failed to update patient", err)
		}

		return success(c, fiber.Map{"patient": patient})
	}
}

// DeletePatient is idempotent: unknown ids succeed
func DeletePatient(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := a.Patients.Delete(c.UserContext(), c.Params("id")); err != nil {
			return serviceError(c, "Failed to delete patient", err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ClearPatients removes every patient
func ClearPatients(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := a.Snapshots.ClearPatients(c.UserContext()); err != nil {
			return serviceError(c, "Failed to clear patients", err)
		}
		return success(c, fiber.Map{"success": true})
	}
}

// Dashboard returns the patient counters. ?timezone= selects the calendar
// used for "today" and defaults to the server's local zone.
func Dashboard(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		now := time.Now()
		if tz := c.Query("timezone"); tz != "" {
			loc, err := time.LoadLocation(tz)
			if err != nil {
				return badRequest(c, "Unknown timezone")
			}
			now = now.In(loc)
		}

		stats, err := a.Patients.Stats(c.UserContext(), now)
		if err != nil {
			return serviceError(c, "Failed to compute dashboard", err)
		}

		return success(c, fiber.Map{"stats": stats})
	}
}
