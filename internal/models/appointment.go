// ABOUTME: Appointment and medical history types mirrored from the record service
// ABOUTME: The engine holds only what it needs to render and confirm bookings
package models

import "time"

// AppointmentStatus is the lifecycle state of an appointment
type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

// AppointmentRecord is the engine's view of a stored appointment
type AppointmentRecord struct {
	ID        int64             `json:"id"`
	PatientID int64             `json:"patient_id"`
	Slot      time.Time         `json:"slot"`
	Doctor    string            `json:"doctor"`
	Purpose   string            `json:"purpose"`
	Status    AppointmentStatus `json:"status"`
}

// HistoryEntry is one entry of a patient's medical history
type HistoryEntry struct {
	Date         time.Time `json:"date"`
	Diagnosis    string    `json:"diagnosis"`
	Treatment    string    `json:"treatment"`
	Prescription string    `json:"prescription"`
}
