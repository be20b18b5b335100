package models

import "time"

type Patient struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Phone               string    `json:"phone"`
	AppointmentDateTime time.Time `json:"appointmentDateTime"`
	Notes               string    `json:"notes"`
	Notified            bool      `json:"notified"`
	CreatedAt           time.Time `json:"createdAt"`
}

// PatientInput carries the fields accepted when creating a patient.
// AppointmentDateTime is an RFC 3339 string and is parsed by the service.
type PatientInput struct {
	Name                string `json:"name" validate:"notblank,max=200"`
	Phone               string `json:"phone" validate:"phone"`
	AppointmentDateTime string `json:"appointmentDateTime" validate:"required,appointment"`
	Notes               string `json:"notes" validate:"max=5000"`
}

// PatientUpdate carries the fields to change on an existing patient.
// Nil fields are left untouched.
type PatientUpdate struct {
	Name                *string `json:"name,omitempty" validate:"omitnil,notblank,max=200"`
	Phone               *string `json:"phone,omitempty" validate:"omitnil,phone"`
	AppointmentDateTime *string `json:"appointmentDateTime,omitempty" validate:"omitnil,appointment"`
	Notes               *string `json:"notes,omitempty" validate:"omitnil,max=5000"`
	Notified            *bool   `json:"notified,omitempty"`
}

type DashboardStats struct {
	TotalPatients        int `json:"totalPatients"`
	TodayAppointments    int `json:"todayAppointments"`
	PendingNotifications int `json:"pendingNotifications"`
}
