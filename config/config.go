package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	Env      string
	DBPath   string
	LogLevel string

	BackupDir   string
	CORSOrigins string

	ReminderInterval time.Duration
	ReminderLead     time.Duration

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRefreshToken string
	DriveFolderID      string
}

var AppConfig *Config

// Load reads .env (if any) and the process environment into AppConfig
func Load() *Config {
	_ = godotenv.Load()

	AppConfig = &Config{
		Port:               GetEnv("PORT", "3000"),
		Env:                GetEnv("ENV", "development"),
		DBPath:             GetEnv("DB_PATH", "./data/doc-notification.db"),
		LogLevel:           GetEnv("LOG_LEVEL", "info"),
		BackupDir:          GetEnv("BACKUP_DIR", "./data/backups"),
		CORSOrigins:        GetEnv("CORS_ORIGINS", "*"),
		ReminderInterval:   GetDuration("REMINDER_INTERVAL", time.Minute),
		ReminderLead:       GetDuration("REMINDER_LEAD", 30*time.Minute),
		GoogleClientID:     GetEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: GetEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRefreshToken: GetEnv("GOOGLE_REFRESH_TOKEN", ""),
		DriveFolderID:      GetEnv("DRIVE_FOLDER_ID", ""),
	}

	return AppConfig
}

// DriveEnabled reports whether Drive backups can be configured
func (c *Config) DriveEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleRefreshToken != ""
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetDuration parses key as a time.Duration. Missing, malformed and
// non-positive values fall back to defaultValue.
func GetDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}

	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration, using default", "key", key, "value", raw, "default", defaultValue)
		return defaultValue
	}
	return d
}
