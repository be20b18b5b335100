package reminders

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"doc-notification/models"
)

// PatientSource is the part of the patient repository the worker needs
type PatientSource interface {
	Due(ctx context.Context, now time.Time, lead time.Duration) ([]models.Patient, error)
	MarkNotified(ctx context.Context, id string) error
}

// Notifier delivers a single appointment reminder
type Notifier interface {
	Notify(ctx context.Context, patient models.Patient) error
}

// Worker periodically looks for upcoming appointments that have not been
// notified yet, hands them to the notifier and marks them notified.
// A patient whose notification fails stays pending and is retried on the
// next tick.
type Worker struct {
	patients PatientSource
	notifier Notifier
	interval time.Duration
	lead     time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	done     chan struct{}
}

// NewWorker creates a reminder worker. A nil notifier logs reminders.
func NewWorker(patients PatientSource, notifier Notifier, interval, lead time.Duration, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}
	return &Worker{
		patients: patients,
		notifier: notifier,
		interval: interval,
		lead:     lead,
		logger:   logger.With("component", "reminders"),
		now:      time.Now,
	}
}

// Start begins the background loop. Calling Start twice is a no-op.
func (w *Worker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return
	}
	w.running = true
	w.stopChan = make(chan struct{})
	w.done = make(chan struct{})

	w.logger.Info("starting reminder worker", "interval", w.interval, "lead", w.lead)
	go w.run(w.stopChan, w.done)
}

// Stop halts the loop and waits for an in-flight pass to finish
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	close(w.stopChan)
	done := w.done
	w.running = false
	w.mu.Unlock()

	<-done
	w.logger.Info("reminder worker stopped")
}

func (w *Worker) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Run immediately on start
	w.RunOnce(ctx)

	for {
		select {
		case <-ticker.C:
			w.RunOnce(ctx)
		case <-stop:
			return
		}
	}
}

// RunOnce performs a single pass and returns how many patients were
// notified
func (w *Worker) RunOnce(ctx context.Context) int {
	due, err := w.patients.Due(ctx, w.now(), w.lead)
	if err != nil {
		w.logger.Error("failed to load due appointments", "error", err)
		return 0
	}
	if len(due) == 0 {
		return 0
	}

	notified := 0
	for _, p := range due {
		if ctx.Err() != nil {
			break
		}

		if err := w.notifier.Notify(ctx, p); err != nil {
			w.logger.Warn("reminder failed, will retry", "patient_id", p.ID, "error", err)
			continue
		}
		if err := w.patients.MarkNotified(ctx, p.ID); err != nil {
			w.logger.Error("failed to mark patient notified", "patient_id", p.ID, "error", err)
			continue
		}
		notified++
	}

	w.logger.Info("reminder pass complete", "due", len(due), "notified", notified)
	return notified
}
