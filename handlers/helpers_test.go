package handlers_test

import "doc-notification/models"

func patientInput(name, when string) models.PatientInput {
	return models.PatientInput{Name: name, AppointmentDateTime: when}
}
