package services

import (
	"context"

	"doc-notification/models"
)

// PatientCollection is the part of the patient repository the snapshot
// reconciler depends on
type PatientCollection interface {
	List(ctx context.Context) ([]models.Patient, error)
	ReplaceAll(ctx context.Context, patients []models.Patient) error
}

// UserCollection is the part of the user directory the snapshot
// reconciler depends on
type UserCollection interface {
	List(ctx context.Context) ([]models.User, error)
	ReplaceAll(ctx context.Context, users []models.User) error
}

// Validator validates request structs
type Validator interface {
	Validate(i interface{}) error
}

var (
	_ PatientCollection = (*PatientService)(nil)
	_ UserCollection    = (*UserService)(nil)
)
