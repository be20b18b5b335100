package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	folderMimeType    = "application/vnd.google-apps.folder"
	defaultFolderName = "doc-notification"
)

// ErrDriveAuth is returned when Drive rejects the stored credentials
var ErrDriveAuth = errors.New("drive credentials rejected")

// DriveConfig holds the OAuth client and the long-lived refresh token used
// to upload backups without an interactive login.
type DriveConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	// FolderID is the target folder. When empty a "doc-notification"
	// folder is looked up or created in the Drive root.
	FolderID string
}

// Enabled reports whether enough credentials are present to talk to Drive
func (c DriveConfig) Enabled() bool {
	return c.ClientID != "" && c.RefreshToken != ""
}

// DriveSink uploads backups to Google Drive
type DriveSink struct {
	service *drive.Service

	mu       sync.Mutex
	folderID string
}

// NewDriveSink authenticates with the refresh token and returns a sink.
// The access token is refreshed automatically.
func NewDriveSink(ctx context.Context, cfg DriveConfig) (*DriveSink, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("drive backup is not configured")
	}

	oauthConfig := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       []string{drive.DriveFileScope},
		Endpoint:     google.Endpoint,
	}

	tokenSource := oauthConfig.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})
	httpClient := oauth2.NewClient(ctx, tokenSource)

	return NewDriveSinkWithOptions(ctx, cfg.FolderID, option.WithHTTPClient(httpClient))
}

// NewDriveSinkWithOptions builds the Drive service from explicit client
// options, e.g. a custom endpoint.
func NewDriveSinkWithOptions(ctx context.Context, folderID string, opts ...option.ClientOption) (*DriveSink, error) {
	srv, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &DriveSink{service: srv, folderID: folderID}, nil
}

func (s *DriveSink) Name() string { return "drive" }

// Save uploads data as a new JSON file and returns its Drive file id
func (s *DriveSink) Save(ctx context.Context, name string, data []byte) (string, error) {
	folderID, err := s.folder(ctx)
	if err != nil {
		return "", driveError(err)
	}

	meta := &drive.File{
		Name:     name,
		Parents:  []string{folderID},
		MimeType: "application/json",
	}

	file, err := s.service.Files.Create(meta).
		Media(bytes.NewReader(data)).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", driveError(err)
	}

	return file.Id, nil
}

// folder returns the configured folder, resolving the default one on
// first use
func (s *DriveSink) folder(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.folderID != "" {
		return s.folderID, nil
	}

	query := fmt.Sprintf("name='%s' and mimeType='%s' and trashed=false and 'root' in parents", defaultFolderName, folderMimeType)
	list, err := s.service.Files.List().
		Q(query).
		Fields("files(id, name)").
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}

	if len(list.Files) > 0 {
		s.folderID = list.Files[0].Id
		return s.folderID, nil
	}

	created, err := s.service.Files.Create(&drive.File{
		Name:     defaultFolderName,
		MimeType: folderMimeType,
		Parents:  []string{"root"},
	}).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", err
	}

	s.folderID = created.Id
	return s.folderID, nil
}

func driveError(err error) error {
	if isTokenExpiredError(err) {
		return fmt.Errorf("%w: %v", ErrDriveAuth, err)
	}
	return fmt.Errorf("drive: %w", err)
}

// isTokenExpiredError checks if an error is related to token expiration
func isTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "token expired") ||
		strings.Contains(msg, "Token has been expired") ||
		strings.Contains(msg, "invalid_grant") ||
		strings.Contains(msg, "401")
}
