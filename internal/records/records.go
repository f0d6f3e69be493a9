// ABOUTME: Record service contract consumed by the dialogue engine
// ABOUTME: All operations are scoped to the authenticated patient id
package records

import (
	"context"
	"errors"
	"time"

	"github.com/welldesk/careline/internal/models"
)

var (
	// ErrSlotTaken indicates the requested slot is already booked.
	ErrSlotTaken = errors.New("slot already booked")
	// ErrNotFound indicates no such appointment exists.
	ErrNotFound = errors.New("appointment not found")
	// ErrNotOwned indicates the appointment belongs to a different patient.
	ErrNotOwned = errors.New("appointment not owned by patient")
	// ErrNotActive indicates the appointment is already cancelled.
	ErrNotActive = errors.New("appointment is not active")
)

// DateRange bounds a listing query. A zero From or To is unbounded.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the range
func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

// Service is the boundary contract the engine requires from appointment
// and medical-history storage. Ownership checks live behind this interface;
// the engine assumes them rather than re-validating.
type Service interface {
	ListAppointments(ctx context.Context, patientID int64, rng *DateRange) ([]models.AppointmentRecord, error)
	ListHistory(ctx context.Context, patientID int64, rng *DateRange) ([]models.HistoryEntry, error)
	Create(ctx context.Context, patientID int64, slot time.Time, doctor, purpose string) (int64, error)
	Cancel(ctx context.Context, patientID, appointmentID int64) error
	Reschedule(ctx context.Context, patientID, appointmentID int64, newSlot time.Time) error
	AvailableDoctors(ctx context.Context) ([]string, error)
}
