// ABOUTME: Demo data seeding for the record store
// ABOUTME: Registers sample doctors and history so the chat loop works out of the box
package records

import (
	"context"
	"fmt"
	"time"

	"github.com/welldesk/careline/internal/models"
)

var demoDoctors = []string{
	"Dr. Sarah Johnson",
	"Dr. James Williams",
	"Dr. Emma Davis",
	"Dr. Robert Miller",
}

// SeedDemo populates the store with sample doctors and a small medical
// history for the given patient. Existing rows are left alone.
func (s *Store) SeedDemo(ctx context.Context, patientID int64) error {
	for _, name := range demoDoctors {
		if err := s.AddDoctor(ctx, name); err != nil {
			return err
		}
	}

	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM medical_records WHERE patient_id = ?`, patientID).Scan(&n); err != nil {
		return fmt.Errorf("failed to check history: %w", err)
	}
	if n > 0 {
		return nil
	}

	entries := []models.HistoryEntry{
		{
			Date:         time.Now().AddDate(0, -6, 0),
			Diagnosis:    "Allergic rhinitis",
			Treatment:    "Lifestyle modifications",
			Prescription: "Loratadine 10mg daily",
		},
		{
			Date:         time.Now().AddDate(0, -2, 0),
			Diagnosis:    "Hypertension",
			Treatment:    "Medication management",
			Prescription: "Lisinopril 10mg daily",
		},
	}
	for _, entry := range entries {
		if err := s.AddHistoryEntry(ctx, patientID, entry); err != nil {
			return err
		}
	}
	return nil
}
