package backup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// Sink is a destination for exported snapshots
type Sink interface {
	// Name identifies the sink in logs and API responses
	Name() string
	// Save stores data under name and returns where it ended up
	Save(ctx context.Context, name string, data []byte) (string, error)
}

// Result is the outcome of saving to one sink
type Result struct {
	Sink     string `json:"sink"`
	Location string `json:"location,omitempty"`
	Error    string `json:"error,omitempty"`
}

// FileName returns the backup file name for an export taken at t
func FileName(t time.Time) string {
	return fmt.Sprintf("doc_notification_backup_%d.json", t.UnixMilli())
}

// Load reads a backup file from disk
func Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read backup %s: %w", path, err)
	}
	return data, nil
}

// Manager fans a snapshot out to every configured sink
type Manager struct {
	sinks  []Sink
	logger *slog.Logger
}

// NewManager creates a manager over sinks. Nil sinks are skipped.
func NewManager(logger *slog.Logger, sinks ...Sink) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{logger: logger}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// Sinks returns the names of the configured sinks
func (m *Manager) Sinks() []string {
	names := make([]string, 0, len(m.sinks))
	for _, s := range m.sinks {
		names = append(names, s.Name())
	}
	return names
}

// SaveAll writes data to every sink. A failing sink does not stop the
// others; the returned error is non-nil only when every sink failed.
func (m *Manager) SaveAll(ctx context.Context, name string, data []byte) ([]Result, error) {
	if len(m.sinks) == 0 {
		return nil, fmt.Errorf("no backup sink configured")
	}

	results := make([]Result, 0, len(m.sinks))
	failed := 0
	var lastErr error

	for _, s := range m.sinks {
		location, err := s.Save(ctx, name, data)
		if err != nil {
			m.logger.Error("backup failed", "sink", s.Name(), "file", name, "error", err)
			results = append(results, Result{Sink: s.Name(), Error: err.Error()})
			failed++
			lastErr = err
			continue
		}

		m.logger.Info("backup saved", "sink", s.Name(), "location", location, "bytes", len(data))
		results = append(results, Result{Sink: s.Name(), Location: location})
	}

	if failed == len(m.sinks) {
		return results, fmt.Errorf("all backup sinks failed: %w", lastErr)
	}
	return results, nil
}
