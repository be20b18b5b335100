package handlers

import (
	"fmt"
	"time"

	"doc-notification/app"
	"doc-notification/backup"

	"github.com/gofiber/fiber/v2"
)

// ExportBackup downloads the current snapshot as a JSON file
func ExportBackup(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		data, err := a.Snapshots.ExportJSON(c.UserContext())
		if err != nil {
			return serviceError(c, "Failed to export data", err)
		}

		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", backup.FileName(time.Now())))
		return c.Send(data)
	}
}

// SaveBackup exports a snapshot and writes it to every configured sink
func SaveBackup(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		data, err := a.Snapshots.ExportJSON(c.UserContext())
		if err != nil {
			return serviceError(c, "Failed to export data", err)
		}

		name := backup.FileName(time.Now())
		results, err := a.Backups.SaveAll(c.UserContext(), name, data)
		if err != nil {
			return serverErrorWithDetails(c, "Failed to save backup", err)
		}

		return success(c, fiber.Map{
			"success": true,
			"file":    name,
			"results": results,
		})
	}
}

// PreviewBackup validates an uploaded document and reports what an import
// would replace. Nothing is written.
func PreviewBackup(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := a.Snapshots.Decode(c.Body())
		if err != nil {
			return serviceError(c, "Invalid backup", err)
		}

		preview, err := a.Snapshots.Preview(doc)
		if err != nil {
			return serviceError(c, "Invalid backup", err)
		}

		return success(c, fiber.Map{"preview": preview})
	}
}

// ImportBackup replaces the collections carried by the uploaded document.
// The caller is expected to have confirmed the preview.
func ImportBackup(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := a.Snapshots.Decode(c.Body())
		if err != nil {
			return serviceError(c, "Invalid backup", err)
		}

		result, err := a.Snapshots.Apply(c.UserContext(), doc)
		if err != nil {
			if result != nil {
				a.Logger.Warn("import partially applied", "patients_replaced", result.PatientsReplaced)
			}
			return serviceError(c, "Failed to import backup", err)
		}

		return success(c, fiber.Map{
			"success": true,
			"result":  result,
		})
	}
}
