package models

import "time"

// SnapshotVersion is written into every export. Imports treat it as advisory.
const SnapshotVersion = "1.0.0"

type Snapshot struct {
	Patients   []Patient    `json:"patients"`
	Users      []PublicUser `json:"users"`
	ExportDate time.Time    `json:"exportDate"`
	Version    string       `json:"version"`
}

type SnapshotPreview struct {
	PatientCount int  `json:"patientCount"`
	UserCount    int  `json:"userCount"`
	HasPatients  bool `json:"hasPatients"`
	HasUsers     bool `json:"hasUsers"`
}

// ImportResult reports what Apply replaced
type ImportResult struct {
	PatientsReplaced bool `json:"patientsReplaced"`
	UsersReplaced    bool `json:"usersReplaced"`
	PatientCount     int  `json:"patientCount"`
	UserCount        int  `json:"userCount"`
}
