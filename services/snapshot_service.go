package services

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"doc-notification/models"
	"doc-notification/validator"
)

const (
	snapshotPatientsKey = "patients"
	snapshotUsersKey    = "users"
)

// Document is a decoded backup file: its top-level keys with their raw
// JSON values. Only "patients" and "users" are interpreted.
type Document map[string]json.RawMessage

// SnapshotService produces and consumes backup documents. It only talks to
// the two repositories, never to storage directly.
type SnapshotService struct {
	patients PatientCollection
	users    UserCollection
	logger   *slog.Logger
	now      func() time.Time
}

// NewSnapshotService creates a snapshot reconciler over both repositories
func NewSnapshotService(patients PatientCollection, users UserCollection, logger *slog.Logger) *SnapshotService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotService{
		patients: patients,
		users:    users,
		logger:   logger,
		now:      time.Now,
	}
}

// Export reads both collections and returns a snapshot without passwords.
// It never writes.
func (ss *SnapshotService) Export(ctx context.Context) (*models.Snapshot, error) {
	patients, err := ss.patients.List(ctx)
	if err != nil {
		return nil, err
	}

	users, err := ss.users.List(ctx)
	if err != nil {
		return nil, err
	}

	public := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		public = append(public, u.Public())
	}

	if patients == nil {
		patients = []models.Patient{}
	}

	return &models.Snapshot{
		Patients:   patients,
		Users:      public,
		ExportDate: ss.now().UTC(),
		Version:    models.SnapshotVersion,
	}, nil
}

// ExportJSON renders Export as indented JSON, ready to be written to a file
func (ss *SnapshotService) ExportJSON(ctx context.Context) ([]byte, error) {
	snapshot, err := ss.Export(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(snapshot, "", "  ")
}

// Decode parses raw bytes into a Document. Anything but a JSON object is
// rejected.
func (ss *SnapshotService) Decode(data []byte) (Document, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, invalidf("document must be a JSON object")
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, invalidf("document is not valid JSON: %v", err)
	}
	return doc, nil
}

// Validate checks that doc has at least one of "patients" or "users" and
// that each present key is an array of well-formed records.
func (ss *SnapshotService) Validate(doc Document) error {
	_, err := parseDocument(doc)
	return err
}

// Preview validates doc and counts what an import would write
func (ss *SnapshotService) Preview(doc Document) (*models.SnapshotPreview, error) {
	parsed, err := parseDocument(doc)
	if err != nil {
		return nil, err
	}

	return &models.SnapshotPreview{
		PatientCount: len(parsed.patients),
		UserCount:    len(parsed.users),
		HasPatients:  parsed.hasPatients,
		HasUsers:     parsed.hasUsers,
	}, nil
}

// Apply validates doc and replaces every collection it carries. Existing
// records are discarded, not merged. Collections absent from doc are left
// alone. Patients are written before users; a failure on users leaves the
// already-replaced patients in place.
func (ss *SnapshotService) Apply(ctx context.Context, doc Document) (*models.ImportResult, error) {
	parsed, err := parseDocument(doc)
	if err != nil {
		return nil, err
	}

	result := &models.ImportResult{}

	if parsed.hasPatients {
		if err := ss.patients.ReplaceAll(ctx, parsed.patients); err != nil {
			ss.logger.Error("import of patients failed", "error", err)
			return nil, err
		}
		result.PatientsReplaced = true
		result.PatientCount = len(parsed.patients)
	}

	if parsed.hasUsers {
		if err := ss.users.ReplaceAll(ctx, parsed.users); err != nil {
			ss.logger.Error("import of users failed", "error", err, "patients_replaced", result.PatientsReplaced)
			return result, err
		}
		result.UsersReplaced = true
		result.UserCount = len(parsed.users)
	}

	ss.logger.Info("snapshot imported",
		"patients_replaced", result.PatientsReplaced,
		"patient_count", result.PatientCount,
		"users_replaced", result.UsersReplaced,
		"user_count", result.UserCount,
	)
	return result, nil
}

// ClearPatients empties the patient collection
func (ss *SnapshotService) ClearPatients(ctx context.Context) error {
	if err := ss.patients.ReplaceAll(ctx, []models.Patient{}); err != nil {
		return err
	}
	ss.logger.Info("all patients cleared")
	return nil
}

// ==================== DOCUMENT PARSING ====================

type parsedDocument struct {
	hasPatients bool
	hasUsers    bool
	patients    []models.Patient
	users       []models.User
}

// patientRecord mirrors models.Patient with loose types so that every
// problem can be reported with its index. appointmentDate is the key
// used by older exports.
type patientRecord struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Phone               string `json:"phone"`
	AppointmentDateTime string `json:"appointmentDateTime"`
	AppointmentDate     string `json:"appointmentDate"`
	Notes               string `json:"notes"`
	Notified            bool   `json:"notified"`
	CreatedAt           string `json:"createdAt"`
}

type userRecord struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
	Phone     string `json:"phone"`
	CreatedAt string `json:"createdAt"`
}

func parseDocument(doc Document) (*parsedDocument, error) {
	if doc == nil {
		return nil, invalidf("document is empty")
	}

	rawPatients, hasPatients := present(doc, snapshotPatientsKey)
	rawUsers, hasUsers := present(doc, snapshotUsersKey)
	if !hasPatients && !hasUsers {
		return nil, invalidf("document has neither %q nor %q", snapshotPatientsKey, snapshotUsersKey)
	}

	parsed := &parsedDocument{hasPatients: hasPatients, hasUsers: hasUsers}

	if hasPatients {
		items, err := objectArray(snapshotPatientsKey, rawPatients)
		if err != nil {
			return nil, err
		}
		patients, err := parsePatients(items)
		if err != nil {
			return nil, err
		}
		parsed.patients = patients
	}

	if hasUsers {
		items, err := objectArray(snapshotUsersKey, rawUsers)
		if err != nil {
			return nil, err
		}
		users, err := parseUsers(items)
		if err != nil {
			return nil, err
		}
		parsed.users = users
	}

	return parsed, nil
}

// present treats a JSON null the same as a missing key
func present(doc Document, key string) (json.RawMessage, bool) {
	raw, ok := doc[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, false
	}
	return raw, true
}

func objectArray(key string, raw json.RawMessage) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, invalidf("%s must be an array", key)
	}

	for i, item := range items {
		trimmed := bytes.TrimSpace(item)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			return nil, invalidf("%s[%d] must be an object", key, i)
		}
	}
	return items, nil
}

func parsePatients(items []json.RawMessage) ([]models.Patient, error) {
	patients := make([]models.Patient, 0, len(items))
	seen := make(map[string]struct{}, len(items))

	for i, item := range items {
		var rec patientRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			return nil, invalidf("patients[%d]: %v", i, err)
		}

		if strings.TrimSpace(rec.ID) == "" {
			return nil, invalidf("patients[%d]: id is required", i)
		}
		if _, dup := seen[rec.ID]; dup {
			return nil, invalidf("patients[%d]: duplicate id %q", i, rec.ID)
		}
		seen[rec.ID] = struct{}{}

		if strings.TrimSpace(rec.Name) == "" {
			return nil, invalidf("patients[%d]: name is required", i)
		}

		when := rec.AppointmentDateTime
		if when == "" {
			when = rec.AppointmentDate
		}
		if when == "" {
			return nil, invalidf("patients[%d]: appointmentDateTime is required", i)
		}
		appointment, err := validator.ParseAppointment(when)
		if err != nil {
			return nil, invalidf("patients[%d]: %v", i, err)
		}

		var createdAt time.Time
		if rec.CreatedAt != "" {
			createdAt, err = time.Parse(time.RFC3339, rec.CreatedAt)
			if err != nil {
				return nil, invalidf("patients[%d]: createdAt %q is not a valid RFC 3339 timestamp", i, rec.CreatedAt)
			}
		}

		patients = append(patients, models.Patient{
			ID:                  rec.ID,
			Name:                rec.Name,
			Phone:               rec.Phone,
			AppointmentDateTime: appointment,
			Notes:               rec.Notes,
			Notified:            rec.Notified,
			CreatedAt:           createdAt,
		})
	}

	return patients, nil
}

func parseUsers(items []json.RawMessage) ([]models.User, error) {
	users := make([]models.User, 0, len(items))
	seen := make(map[string]struct{}, len(items))

	for i, item := range items {
		var rec userRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			return nil, invalidf("users[%d]: %v", i, err)
		}

		if strings.TrimSpace(rec.Email) == "" {
			return nil, invalidf("users[%d]: email is required", i)
		}
		if _, dup := seen[rec.Email]; dup {
			return nil, invalidf("users[%d]: duplicate email %q", i, rec.Email)
		}
		seen[rec.Email] = struct{}{}

		var createdAt time.Time
		if rec.CreatedAt != "" {
			var err error
			createdAt, err = time.Parse(time.RFC3339, rec.CreatedAt)
			if err != nil {
				return nil, invalidf("users[%d]: createdAt %q is not a valid RFC 3339 timestamp", i, rec.CreatedAt)
			}
		}

		users = append(users, models.User{
			ID:        rec.ID,
			Email:     rec.Email,
			Password:  rec.Password,
			Name:      rec.Name,
			Specialty: rec.Specialty,
			Phone:     rec.Phone,
			CreatedAt: createdAt,
		})
	}

	return users, nil
}
