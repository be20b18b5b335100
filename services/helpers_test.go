package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"doc-notification/storage"
	"doc-notification/validator"

	"github.com/stretchr/testify/mock"
)

// ==================== MOCKS ====================

// MockStore is a mock implementation of storage.Store
type MockStore struct {
	mock.Mock
}

var _ storage.Store = (*MockStore)(nil)

func (m *MockStore) Get(ctx context.Context, key string, dst any) (bool, error) {
	args := m.Called(ctx, key, dst)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) Set(ctx context.Context, key string, value any) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockStore) Remove(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStore) Keys(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// ==================== HELPERS ====================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestServices() (*storage.Memory, *UserService, *PatientService, *SnapshotService) {
	store := storage.NewMemory()
	v := validator.New()
	users := NewUserService(store, v, testLogger())
	patients := NewPatientService(store, v, testLogger())
	snapshots := NewSnapshotService(patients, users, testLogger())
	return store, users, patients, snapshots
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }
