// ABOUTME: SQLite implementation of the record service
// ABOUTME: Appointments, medical history, and doctor slot bookkeeping
package records

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/welldesk/careline/internal/models"
)

// Store is the SQLite-backed record service
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) a record store at the given path
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open records database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS appointments (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		patient_id INTEGER NOT NULL,
		doctor     TEXT NOT NULL,
		slot       TEXT NOT NULL,
		purpose    TEXT NOT NULL DEFAULT '',
		status     TEXT NOT NULL CHECK(status IN ('pending', 'confirmed', 'cancelled'))
	);
	CREATE INDEX IF NOT EXISTS idx_appointments_patient ON appointments(patient_id);
	CREATE INDEX IF NOT EXISTS idx_appointments_doctor_slot ON appointments(doctor, slot);

	CREATE TABLE IF NOT EXISTS medical_records (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		patient_id   INTEGER NOT NULL,
		diagnosis    TEXT NOT NULL DEFAULT '',
		treatment    TEXT NOT NULL DEFAULT '',
		prescription TEXT NOT NULL DEFAULT '',
		record_date  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_medical_records_patient ON medical_records(patient_id);

	CREATE TABLE IF NOT EXISTS doctors (
		name TEXT PRIMARY KEY
	);`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create records schema: %w", err)
	}
	return nil
}

// ListAppointments returns the patient's appointments, newest first
func (s *Store) ListAppointments(ctx context.Context, patientID int64, rng *DateRange) ([]models.AppointmentRecord, error) {
	query := `SELECT id, patient_id, doctor, slot, purpose, status
	          FROM appointments WHERE patient_id = ?`
	args := []any{patientID}
	if rng != nil {
		if !rng.From.IsZero() {
			query += ` AND slot >= ?`
			args = append(args, rng.From.UTC().Format(time.RFC3339))
		}
		if !rng.To.IsZero() {
			query += ` AND slot <= ?`
			args = append(args, rng.To.UTC().Format(time.RFC3339))
		}
	}
	query += ` ORDER BY slot DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.AppointmentRecord
	for rows.Next() {
		var rec models.AppointmentRecord
		var slot, status string
		if err := rows.Scan(&rec.ID, &rec.PatientID, &rec.Doctor, &slot, &rec.Purpose, &status); err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		rec.Slot, err = time.Parse(time.RFC3339, slot)
		if err != nil {
			return nil, fmt.Errorf("malformed slot %q: %w", slot, err)
		}
		rec.Status = models.AppointmentStatus(status)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListHistory returns the patient's medical history entries, newest first
func (s *Store) ListHistory(ctx context.Context, patientID int64, rng *DateRange) ([]models.HistoryEntry, error) {
	query := `SELECT diagnosis, treatment, prescription, record_date
	          FROM medical_records WHERE patient_id = ?`
	args := []any{patientID}
	if rng != nil {
		if !rng.From.IsZero() {
			query += ` AND record_date >= ?`
			args = append(args, rng.From.UTC().Format(time.RFC3339))
		}
		if !rng.To.IsZero() {
			query += ` AND record_date <= ?`
			args = append(args, rng.To.UTC().Format(time.RFC3339))
		}
	}
	query += ` ORDER BY record_date DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.HistoryEntry
	for rows.Next() {
		var entry models.HistoryEntry
		var date string
		if err := rows.Scan(&entry.Diagnosis, &entry.Treatment, &entry.Prescription, &date); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entry.Date, err = time.Parse(time.RFC3339, date)
		if err != nil {
			return nil, fmt.Errorf("malformed record date %q: %w", date, err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// Create books a new confirmed appointment. Returns ErrSlotTaken when the
// doctor already has an active appointment at that slot.
func (s *Store) Create(ctx context.Context, patientID int64, slot time.Time, doctor, purpose string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	slotStr := slot.UTC().Format(time.RFC3339)
	taken, err := slotTaken(ctx, tx, doctor, slotStr, 0)
	if err != nil {
		return 0, err
	}
	if taken {
		return 0, ErrSlotTaken
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO appointments (patient_id, doctor, slot, purpose, status) VALUES (?, ?, ?, ?, 'confirmed')`,
		patientID, doctor, slotStr, purpose)
	if err != nil {
		return 0, fmt.Errorf("failed to insert appointment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read appointment id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit booking: %w", err)
	}
	return id, nil
}

// Cancel marks an appointment cancelled. The patient must own it.
func (s *Store) Cancel(ctx context.Context, patientID, appointmentID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := checkOwnership(ctx, tx, patientID, appointmentID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE appointments SET status = 'cancelled' WHERE id = ?`, appointmentID); err != nil {
		return fmt.Errorf("failed to cancel appointment: %w", err)
	}
	return tx.Commit()
}

// Reschedule moves an appointment to a new slot with the same doctor.
// Returns ErrSlotTaken when the doctor is booked at the new slot.
func (s *Store) Reschedule(ctx context.Context, patientID, appointmentID int64, newSlot time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := checkOwnership(ctx, tx, patientID, appointmentID); err != nil {
		return err
	}

	var doctor string
	if err := tx.QueryRowContext(ctx,
		`SELECT doctor FROM appointments WHERE id = ?`, appointmentID).Scan(&doctor); err != nil {
		return fmt.Errorf("failed to load appointment doctor: %w", err)
	}

	slotStr := newSlot.UTC().Format(time.RFC3339)
	taken, err := slotTaken(ctx, tx, doctor, slotStr, appointmentID)
	if err != nil {
		return err
	}
	if taken {
		return ErrSlotTaken
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE appointments SET slot = ? WHERE id = ?`, slotStr, appointmentID); err != nil {
		return fmt.Errorf("failed to reschedule appointment: %w", err)
	}
	return tx.Commit()
}

// AvailableDoctors lists the doctors appointments can be booked with
func (s *Store) AvailableDoctors(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM doctors ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan doctor: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// AddHistoryEntry records a medical history entry for a patient
func (s *Store) AddHistoryEntry(ctx context.Context, patientID int64, entry models.HistoryEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO medical_records (patient_id, diagnosis, treatment, prescription, record_date) VALUES (?, ?, ?, ?, ?)`,
		patientID, entry.Diagnosis, entry.Treatment, entry.Prescription, entry.Date.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}
	return nil
}

// AddDoctor registers a doctor appointments can be booked with
func (s *Store) AddDoctor(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO doctors (name) VALUES (?)`, name); err != nil {
		return fmt.Errorf("failed to add doctor: %w", err)
	}
	return nil
}

// checkOwnership verifies the appointment exists, belongs to the patient,
// and is still active
func checkOwnership(ctx context.Context, tx *sql.Tx, patientID, appointmentID int64) error {
	var owner int64
	var status string
	err := tx.QueryRowContext(ctx,
		`SELECT patient_id, status FROM appointments WHERE id = ?`, appointmentID).Scan(&owner, &status)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load appointment: %w", err)
	}
	if owner != patientID {
		return ErrNotOwned
	}
	if models.AppointmentStatus(status) == models.AppointmentCancelled {
		return ErrNotActive
	}
	return nil
}

// slotTaken reports whether the doctor has an active appointment at the slot,
// ignoring the appointment being rescheduled
func slotTaken(ctx context.Context, tx *sql.Tx, doctor, slot string, ignoreID int64) (bool, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM appointments WHERE doctor = ? AND slot = ? AND status != 'cancelled' AND id != ?`,
		doctor, slot, ignoreID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check slot: %w", err)
	}
	return n > 0, nil
}
