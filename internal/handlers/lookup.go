// ABOUTME: RecordLookup handler: read-only retrieval of appointments or medical history
// ABOUTME: Goes straight to Done; nothing is mutated so there is no confirmation step
package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/welldesk/careline/internal/models"
	"github.com/welldesk/careline/internal/records"
)

// Record types stored in the scratchpad
const (
	recordTypeAppointments = "appointments"
	recordTypeHistory      = "history"
)

// RecordLookup answers questions about the patient's stored appointments
// and medical history
type RecordLookup struct {
	records records.Service
	now     func() time.Time
}

// NewRecordLookup creates the lookup handler
func NewRecordLookup(svc records.Service) *RecordLookup {
	return &RecordLookup{records: svc, now: time.Now}
}

// Task implements TaskHandler
func (h *RecordLookup) Task() models.TaskType {
	return models.TaskRecordLookup
}

// Attempt resolves the record type, performs the read, and reports Done
func (h *RecordLookup) Attempt(ctx context.Context, patientID int64, in models.Intent, fields models.Fields, utterance string) (Result, error) {
	delta := models.Fields{}
	recordType := fields["record_type"]
	if recordType == "" {
		recordType = detectRecordType(utterance)
		if recordType == "" {
			return Result{
				Kind:     OutcomeNeedsMoreInput,
				Missing:  []string{"record_type"},
				Response: "Would you like to see your appointments or your medical history?",
			}, nil
		}
		delta["record_type"] = recordType
	}

	rng := detectDateRange(utterance, h.now())

	switch recordType {
	case recordTypeAppointments:
		appts, err := h.records.ListAppointments(ctx, patientID, rng)
		if err != nil {
			return upstreamFailure(), nil
		}
		return Result{Kind: OutcomeDone, Delta: delta, Response: formatAppointments(appts)}, nil

	case recordTypeHistory:
		entries, err := h.records.ListHistory(ctx, patientID, rng)
		if err != nil {
			return upstreamFailure(), nil
		}
		return Result{Kind: OutcomeDone, Delta: delta, Response: formatHistory(entries)}, nil

	default:
		return Result{}, fmt.Errorf("unknown record type %q", recordType)
	}
}

// Commit is never reached: lookups complete without confirmation
func (h *RecordLookup) Commit(ctx context.Context, patientID int64, fields models.Fields) (Result, error) {
	return Result{}, errNothingToCommit("record lookup")
}

var upcomingWords = []string{"upcoming", "future", "next", "coming"}
var pastWords = []string{"past", "previous", "recent", "earlier", "old"}

// detectDateRange bounds the listing when the patient asks for upcoming or
// past records. No time wording means no bound.
func detectDateRange(utterance string, now time.Time) *records.DateRange {
	lower := strings.ToLower(utterance)
	for _, word := range upcomingWords {
		if strings.Contains(lower, word) {
			return &records.DateRange{From: now}
		}
	}
	for _, word := range pastWords {
		if strings.Contains(lower, word) {
			return &records.DateRange{To: now}
		}
	}
	return nil
}

// detectRecordType resolves the requested record type from the utterance
func detectRecordType(utterance string) string {
	lower := strings.ToLower(utterance)
	mentionsAppointments := strings.Contains(lower, "appointment") || strings.Contains(lower, "booking") || strings.Contains(lower, "visit")
	mentionsHistory := strings.Contains(lower, "history") || strings.Contains(lower, "diagnos") ||
		strings.Contains(lower, "prescription") || strings.Contains(lower, "treatment") ||
		strings.Contains(lower, "medical record")

	switch {
	case mentionsAppointments && !mentionsHistory:
		return recordTypeAppointments
	case mentionsHistory && !mentionsAppointments:
		return recordTypeHistory
	default:
		return ""
	}
}

func formatAppointments(appts []models.AppointmentRecord) string {
	if len(appts) == 0 {
		return "You have no appointments on record."
	}

	var sb strings.Builder
	sb.WriteString("Your appointments:\n")
	for i, appt := range appts {
		if i >= 5 {
			sb.WriteString(fmt.Sprintf("...and %d more.\n", len(appts)-5))
			break
		}
		sb.WriteString(fmt.Sprintf("- ID %d: %s on %s (%s)\n",
			appt.ID, appt.Doctor, appt.Slot.Local().Format("2006-01-02 at 15:04"), appt.Status))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatHistory(entries []models.HistoryEntry) string {
	if len(entries) == 0 {
		return "No medical records found."
	}

	var sb strings.Builder
	sb.WriteString("Your recent medical records:\n")
	for i, entry := range entries {
		if i >= 5 {
			sb.WriteString(fmt.Sprintf("...and %d more.\n", len(entries)-5))
			break
		}
		sb.WriteString(fmt.Sprintf("- %s: Diagnosis=%s, Treatment=%s",
			entry.Date.Format("2006-01-02"), entry.Diagnosis, entry.Treatment))
		if entry.Prescription != "" {
			sb.WriteString(fmt.Sprintf(", Prescription=%s", entry.Prescription))
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
