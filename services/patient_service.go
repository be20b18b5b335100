package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"doc-notification/models"
	"doc-notification/storage"
	"doc-notification/validator"

	"github.com/google/uuid"
)

const PatientsKey = "patients"

// PatientService is the patient repository. The whole collection lives
// under a single key and is rewritten on every mutation.
type PatientService struct {
	patients  *storage.Collection[models.Patient]
	validator Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewPatientService creates a patient repository on top of store
func NewPatientService(store storage.Store, v Validator, logger *slog.Logger) *PatientService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PatientService{
		patients:  storage.NewCollection[models.Patient](store, PatientsKey),
		validator: v,
		logger:    logger,
		now:       time.Now,
	}
}

// List returns all patients in storage order
func (ps *PatientService) List(ctx context.Context) ([]models.Patient, error) {
	return ps.patients.Load(ctx)
}

// Get returns a single patient by id
func (ps *PatientService) Get(ctx context.Context, id string) (*models.Patient, error) {
	patients, err := ps.patients.Load(ctx)
	if err != nil {
		return nil, err
	}

	i := indexByID(patients, id)
	if i < 0 {
		return nil, ErrPatientNotFound
	}

	patient := patients[i]
	return &patient, nil
}

// Create validates input, assigns id and createdAt, and appends the patient
func (ps *PatientService) Create(ctx context.Context, input models.PatientInput) (*models.Patient, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Notes = strings.TrimSpace(input.Notes)

	if ps.validator != nil {
		if err := ps.validator.Validate(&input); err != nil {
			return nil, invalid(err)
		}
	}

	appointment, err := validator.ParseAppointment(input.AppointmentDateTime)
	if err != nil {
		return nil, invalid(err)
	}
	if input.Name == "" {
		return nil, invalidf("name is required")
	}

	patient := models.Patient{
		Name:                input.Name,
		Phone:               input.Phone,
		AppointmentDateTime: appointment.UTC(),
		Notes:               input.Notes,
		Notified:            false,
		CreatedAt:           ps.now().UTC(),
	}

	err = ps.patients.Mutate(ctx, func(patients []models.Patient) ([]models.Patient, error) {
		patient.ID = newPatientID(patients)
		return append(patients, patient), nil
	})
	if err != nil {
		return nil, err
	}

	ps.logger.Debug("patient created", "patient_id", patient.ID)
	return &patient, nil
}

// Update applies the provided fields to an existing patient. id and
// createdAt never change; notified changes only when provided.
func (ps *PatientService) Update(ctx context.Context, id string, update models.PatientUpdate) (*models.Patient, error) {
	if ps.validator != nil {
		if err := ps.validator.Validate(&update); err != nil {
			return nil, invalid(err)
		}
	}

	var appointment *time.Time
	if update.AppointmentDateTime != nil {
		t, err := validator.ParseAppointment(*update.AppointmentDateTime)
		if err != nil {
			return nil, invalid(err)
		}
		t = t.UTC()
		appointment = &t
	}
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return nil, invalidf("name is required")
	}

	var updated models.Patient
	err := ps.patients.Mutate(ctx, func(patients []models.Patient) ([]models.Patient, error) {
		i := indexByID(patients, id)
		if i < 0 {
			return nil, ErrPatientNotFound
		}

		p := &patients[i]
		if update.Name != nil {
			p.Name = strings.TrimSpace(*update.Name)
		}
		if update.Phone != nil {
			p.Phone = strings.TrimSpace(*update.Phone)
		}
		if appointment != nil {
			p.AppointmentDateTime = *appointment
		}
		if update.Notes != nil {
			p.Notes = strings.TrimSpace(*update.Notes)
		}
		if update.Notified != nil {
			p.Notified = *update.Notified
		}

		updated = *p
		return patients, nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// Delete removes the patient with id. Unknown ids are ignored.
func (ps *PatientService) Delete(ctx context.Context, id string) error {
	return ps.patients.Mutate(ctx, func(patients []models.Patient) ([]models.Patient, error) {
		i := indexByID(patients, id)
		if i < 0 {
			return patients, nil
		}
		return append(patients[:i], patients[i+1:]...), nil
	})
}

// Search matches query case-insensitively against name or phone.
// A blank query returns every patient.
func (ps *PatientService) Search(ctx context.Context, query string) ([]models.Patient, error) {
	patients, err := ps.patients.Load(ctx)
	if err != nil {
		return nil, err
	}
	return filterPatients(patients, query), nil
}

// MarkNotified records that the reminder for a patient has been sent
func (ps *PatientService) MarkNotified(ctx context.Context, id string) error {
	notified := true
	_, err := ps.Update(ctx, id, models.PatientUpdate{Notified: &notified})
	return err
}

// Due returns un-notified patients whose appointment falls within
// [now, now+lead], in storage order
func (ps *PatientService) Due(ctx context.Context, now time.Time, lead time.Duration) ([]models.Patient, error) {
	patients, err := ps.patients.Load(ctx)
	if err != nil {
		return nil, err
	}

	until := now.Add(lead)
	due := make([]models.Patient, 0)
	for _, p := range patients {
		if p.Notified {
			continue
		}
		if p.AppointmentDateTime.Before(now) || p.AppointmentDateTime.After(until) {
			continue
		}
		due = append(due, p)
	}
	return due, nil
}

// Stats summarizes the collection for the dashboard. "Today" is the
// calendar day of now in now's location.
func (ps *PatientService) Stats(ctx context.Context, now time.Time) (models.DashboardStats, error) {
	patients, err := ps.patients.Load(ctx)
	if err != nil {
		return models.DashboardStats{}, err
	}

	y, m, d := now.Date()
	stats := models.DashboardStats{TotalPatients: len(patients)}
	for _, p := range patients {
		py, pm, pd := p.AppointmentDateTime.In(now.Location()).Date()
		if py == y && pm == m && pd == d {
			stats.TodayAppointments++
		}
		if !p.Notified {
			stats.PendingNotifications++
		}
	}
	return stats, nil
}

// ReplaceAll overwrites the whole collection. Only the shape is checked:
// every record needs an id and ids must be unique.
func (ps *PatientService) ReplaceAll(ctx context.Context, patients []models.Patient) error {
	seen := make(map[string]struct{}, len(patients))
	for i, p := range patients {
		if p.ID == "" {
			return invalidf("patients[%d]: id is required", i)
		}
		if _, dup := seen[p.ID]; dup {
			return invalidf("patients[%d]: duplicate id %q", i, p.ID)
		}
		seen[p.ID] = struct{}{}
	}

	next := make([]models.Patient, len(patients))
	copy(next, patients)
	return ps.patients.Replace(ctx, next)
}

// Clear removes every patient
func (ps *PatientService) Clear(ctx context.Context) error {
	if err := ps.patients.Replace(ctx, []models.Patient{}); err != nil {
		return err
	}
	ps.logger.Info("patient collection cleared")
	return nil
}

func filterPatients(patients []models.Patient, query string) []models.Patient {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return patients
	}

	matches := make([]models.Patient, 0)
	for _, p := range patients {
		if strings.Contains(strings.ToLower(p.Name), query) ||
			strings.Contains(strings.ToLower(p.Phone), query) {
			matches = append(matches, p)
		}
	}
	return matches
}

func indexByID(patients []models.Patient, id string) int {
	for i, p := range patients {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// newPatientID returns a uuid not already present in patients
func newPatientID(patients []models.Patient) string {
	for {
		id := uuid.New().String()
		if indexByID(patients, id) < 0 {
			return id
		}
	}
}
