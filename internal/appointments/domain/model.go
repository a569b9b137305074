package domain

import "time"

// Appointment type constants
const (
	TypeVideo    = "video"
	TypeInPerson = "inPerson"
)

// Appointment status constants. Records are never deleted, only
// status-transitioned.
const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// AppointmentRecord is a booked appointment. The remote store is the
// long-term owner; the local cache holds a device-scoped copy. ID is
// assigned locally at creation and may legitimately differ from the
// remotely-assigned id.
type AppointmentRecord struct {
	ID              string    `json:"id"`
	PatientID       string    `json:"patient_id"`
	PatientName     string    `json:"patient_name,omitempty"`
	DoctorID        string    `json:"doctor_id"`
	DoctorName      string    `json:"doctor_name,omitempty"`
	DoctorSpecialty string    `json:"doctor_specialty,omitempty"`
	DoctorImage     string    `json:"doctor_image,omitempty"`
	Date            string    `json:"date"`
	Time            string    `json:"time"`
	Type            string    `json:"type"`
	Reason          string    `json:"reason,omitempty"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

// ListFilter narrows a remote listing.
type ListFilter struct {
	Status string
	From   string
	To     string
}

// ValidType reports whether t is a known appointment type.
func ValidType(t string) bool {
	return t == TypeVideo || t == TypeInPerson
}

// ValidStatus reports whether s is a known appointment status.
func ValidStatus(s string) bool {
	return s == StatusConfirmed || s == StatusCancelled || s == StatusCompleted
}

// CanTransition reports whether a status change is allowed. Confirmed
// records may be cancelled or completed; terminal states stay put.
func CanTransition(from, to string) bool {
	if !ValidStatus(to) {
		return false
	}
	return from == StatusConfirmed && to != StatusConfirmed
}
