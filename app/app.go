package app

import (
	"log/slog"

	"doc-notification/backup"
	"doc-notification/database"
	"doc-notification/reminders"
	"doc-notification/services"
	"doc-notification/storage"
	"doc-notification/validator"
)

// App holds all application dependencies
// This struct is the central point for dependency injection
type App struct {
	DB        *database.DB
	Store     storage.Store
	Users     *services.UserService
	Patients  *services.PatientService
	Snapshots *services.SnapshotService
	Backups   *backup.Manager
	Reminders *reminders.Worker
	Validator *validator.Validator
	Logger    *slog.Logger
}

// New wires the services on top of store. db may be nil when store is not
// SQLite-backed (tests). backups and worker are optional.
func New(db *database.DB, store storage.Store, backups *backup.Manager, logger *slog.Logger) *App {
	v := validator.New()
	users := services.NewUserService(store, v, logger)
	patients := services.NewPatientService(store, v, logger)

	if backups == nil {
		backups = backup.NewManager(logger)
	}

	return &App{
		DB:        db,
		Store:     store,
		Users:     users,
		Patients:  patients,
		Snapshots: services.NewSnapshotService(patients, users, logger),
		Backups:   backups,
		Validator: v,
		Logger:    logger,
	}
}
