package reminders

import (
	"context"
	"log/slog"
	"time"

	"doc-notification/models"
)

// LogNotifier writes reminders to the application log
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, p models.Patient) error {
	n.logger.InfoContext(ctx, "appointment reminder",
		"patient_id", p.ID,
		"name", p.Name,
		"phone", p.Phone,
		"appointment", p.AppointmentDateTime.Format(time.RFC3339),
	)
	return nil
}
