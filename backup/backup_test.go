package backup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFileName(t *testing.T) {
	ts := time.UnixMilli(1760781600123)
	assert.Equal(t, "doc_notification_backup_1760781600123.json", FileName(ts))
}

func TestFileSink_Save(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested", "backups")
	sink := NewFileSink(dir)

	location, err := sink.Save(ctx, "b.json", []byte(`{"patients":[]}`))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "b.json"), location)

	data, err := Load(location)
	require.NoError(t, err)
	assert.Equal(t, `{"patients":[]}`, string(data))

	t.Run("Overwrite replaces content", func(t *testing.T) {
		_, err := sink.Save(ctx, "b.json", []byte(`{"users":[]}`))
		require.NoError(t, err)

		data, err := Load(location)
		require.NoError(t, err)
		assert.Equal(t, `{"users":[]}`, string(data))
	})

	t.Run("No temp files left behind", func(t *testing.T) {
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "b.json", entries[0].Name())
	})

	t.Run("Rejects path traversal", func(t *testing.T) {
		_, err := sink.Save(ctx, "../escape.json", []byte(`{}`))
		assert.Error(t, err)
		_, err = sink.Save(ctx, "", []byte(`{}`))
		assert.Error(t, err)
	})
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

type stubSink struct {
	name string
	err  error
}

func (s stubSink) Name() string { return s.name }

func (s stubSink) Save(ctx context.Context, name string, data []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.name + "://" + name, nil
}

func TestManager_SaveAll(t *testing.T) {
	ctx := context.Background()

	t.Run("Partial failure still succeeds", func(t *testing.T) {
		m := NewManager(testLogger(), stubSink{name: "a"}, nil, stubSink{name: "b", err: errors.New("offline")})
		assert.Equal(t, []string{"a", "b"}, m.Sinks())

		results, err := m.SaveAll(ctx, "x.json", []byte("{}"))
		require.NoError(t, err)
		assert.Equal(t, []Result{
			{Sink: "a", Location: "a://x.json"},
			{Sink: "b", Error: "offline"},
		}, results)
	})

	t.Run("All failing", func(t *testing.T) {
		m := NewManager(testLogger(), stubSink{name: "a", err: errors.New("boom")})
		results, err := m.SaveAll(ctx, "x.json", []byte("{}"))
		assert.Error(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("No sinks", func(t *testing.T) {
		_, err := NewManager(testLogger()).SaveAll(ctx, "x.json", []byte("{}"))
		assert.Error(t, err)
	})
}

// fakeDrive answers just enough of the Drive v3 API for DriveSink
type fakeDrive struct {
	mu       sync.Mutex
	uploads  []string
	folders  int
	status   int
	response string
}

func (f *fakeDrive) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if f.status != 0 {
		w.WriteHeader(f.status)
		_, _ = io.WriteString(w, f.response)
		return
	}

	isUpload := strings.Contains(r.URL.Path, "/upload/") || r.URL.Query().Get("uploadType") != ""
	switch {
	case r.Method == http.MethodPost && isUpload:
		body, _ := io.ReadAll(r.Body)
		f.uploads = append(f.uploads, string(body))
		_, _ = io.WriteString(w, `{"id":"file-1"}`)
	case r.Method == http.MethodPost:
		f.folders++
		_, _ = io.WriteString(w, `{"id":"folder-1"}`)
	default:
		_, _ = io.WriteString(w, `{"files":[]}`)
	}
}

func newFakeDriveSink(t *testing.T, fake *fakeDrive, folderID string) *DriveSink {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	sink, err := NewDriveSinkWithOptions(context.Background(), folderID,
		option.WithEndpoint(srv.URL+"/drive/v3/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return sink
}

func TestDriveSink_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates default folder once", func(t *testing.T) {
		fake := &fakeDrive{}
		sink := newFakeDriveSink(t, fake, "")

		id, err := sink.Save(ctx, "doc_notification_backup_1.json", []byte(`{"patients":[]}`))
		require.NoError(t, err)
		assert.Equal(t, "file-1", id)

		_, err = sink.Save(ctx, "doc_notification_backup_2.json", []byte(`{"patients":[]}`))
		require.NoError(t, err)

		assert.Equal(t, 1, fake.folders)
		require.Len(t, fake.uploads, 2)
		assert.Contains(t, fake.uploads[0], "doc_notification_backup_1.json")
		assert.Contains(t, fake.uploads[0], `{"patients":[]}`)
	})

	t.Run("Configured folder skips lookup", func(t *testing.T) {
		fake := &fakeDrive{}
		sink := newFakeDriveSink(t, fake, "folder-xyz")

		_, err := sink.Save(ctx, "b.json", []byte(`{}`))
		require.NoError(t, err)
		assert.Equal(t, 0, fake.folders)
		assert.Contains(t, fake.uploads[0], "folder-xyz")
	})

	t.Run("Rejected credentials", func(t *testing.T) {
		fake := &fakeDrive{status: http.StatusUnauthorized, response: `{"error":{"code":401,"message":"invalid_grant"}}`}
		sink := newFakeDriveSink(t, fake, "folder-xyz")

		_, err := sink.Save(ctx, "b.json", []byte(`{}`))
		assert.ErrorIs(t, err, ErrDriveAuth)
	})
}

func TestDriveConfig_Enabled(t *testing.T) {
	assert.False(t, DriveConfig{}.Enabled())
	assert.False(t, DriveConfig{ClientID: "id"}.Enabled())
	assert.True(t, DriveConfig{ClientID: "id", RefreshToken: "rt"}.Enabled())

	_, err := NewDriveSink(context.Background(), DriveConfig{})
	assert.Error(t, err)
}
