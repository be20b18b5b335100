package setup

import (
	"context"
	"log/slog"
	"time"

	"doc-notification/app"
	"doc-notification/backup"
	"doc-notification/config"
	"doc-notification/database"
	"doc-notification/reminders"
)

// InitDatabase initializes the SQLite database and runs migrations
func InitDatabase(dbPath string, logger *slog.Logger) (*database.DB, error) {
	db, err := database.New(dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("database initialized", "path", dbPath)
	return db, nil
}

// InitBackups builds the backup sinks from configuration. The file sink is
// always present; Drive is added when credentials are configured.
func InitBackups(ctx context.Context, cfg *config.Config, logger *slog.Logger) *backup.Manager {
	sinks := []backup.Sink{backup.NewFileSink(cfg.BackupDir)}

	if cfg.DriveEnabled() {
		driveSink, err := backup.NewDriveSink(ctx, backup.DriveConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RefreshToken: cfg.GoogleRefreshToken,
			FolderID:     cfg.DriveFolderID,
		})
		if err != nil {
			logger.Error("drive backup disabled", "error", err)
		} else {
			sinks = append(sinks, driveSink)
			logger.Info("drive backup enabled")
		}
	}

	return backup.NewManager(logger, sinks...)
}

// InitApp initializes the application with all dependencies
func InitApp(ctx context.Context, db *database.DB, cfg *config.Config, logger *slog.Logger) (*app.App, error) {
	store := database.NewKVStore(db)
	backups := InitBackups(ctx, cfg, logger)

	application := app.New(db, store, backups, logger)

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := application.Users.EnsureDefaultAccount(initCtx); err != nil {
		return nil, err
	}

	application.Reminders = reminders.NewWorker(application.Patients, nil, cfg.ReminderInterval, cfg.ReminderLead, logger)
	application.Reminders.Start()
	logger.Info("reminder worker started")

	logger.Info("application initialized with dependency injection")
	return application, nil
}

// Shutdown performs graceful shutdown of all services
func Shutdown(application *app.App, logger *slog.Logger) {
	logger.Info("shutting down services...")

	if application == nil {
		return
	}

	if application.Reminders != nil {
		application.Reminders.Stop()
		logger.Info("reminder worker stopped")
	}

	if application.DB != nil {
		application.DB.Close()
		logger.Info("database closed")
	}
}
