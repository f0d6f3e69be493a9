// ABOUTME: Tests for the scheduling handler
// ABOUTME: Field collection, validation re-prompts, confirmation, and commit conflicts
package handlers

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/welldesk/careline/internal/models"
)

func fixedNow() time.Time {
	return time.Date(2026, time.September, 1, 9, 0, 0, 0, time.Local)
}

func newTestScheduling(recs *fakeRecords, ext *fakeExtractor) *Scheduling {
	h := NewScheduling(recs, ext)
	h.now = fixedNow
	return h
}

func TestSchedulingAttempt_AsksForDateThenTime(t *testing.T) {
	h := newTestScheduling(newFakeRecords(), &fakeExtractor{})
	ctx := context.Background()

	res, err := h.Attempt(ctx, 1, models.IntentSchedule, models.Fields{}, "I need to book an appointment")
	if err != nil {
		t.Fatalf("Attempt() error = %v", err)
	}
	if res.Kind != OutcomeNeedsMoreInput {
		t.Fatalf("Kind = %q, want needs_more_input", res.Kind)
	}
	if len(res.Missing) == 0 || res.Missing[0] != "date" {
		t.Errorf("Missing = %v, want date first", res.Missing)
	}

	// Date known, time still missing
	fields := models.Fields{"action": actionCreate, "date": "2026-09-08"}
	res, err = h.Attempt(ctx, 1, models.IntentSchedule, fields, "sometime that day")
	if err != nil {
		t.Fatalf("Attempt() error = %v", err)
	}
	if res.Kind != OutcomeNeedsMoreInput {
		t.Fatalf("Kind = %q, want needs_more_input", res.Kind)
	}
	if len(res.Missing) == 0 || res.Missing[0] != "time" {
		t.Errorf("Missing = %v, want time", res.Missing)
	}
}

func TestSchedulingAttempt_ReadyToConfirm(t *testing.T) {
	ext := &fakeExtractor{date: "2026-09-08", clock: "15:00"}
	h := newTestScheduling(newFakeRecords(), ext)

	res, err := h.Attempt(context.Background(), 1, models.IntentSchedule, models.Fields{},
		"book me with Dr. Davis next Tuesday at 3pm")
	if err != nil {
		t.Fatalf("Attempt() error = %v", err)
	}

	if res.Kind != OutcomeReadyToConfirm {
		t.Fatalf("Kind = %q, want ready_to_confirm", res.Kind)
	}
	if res.Delta["date"] != "2026-09-08" || res.Delta["time"] != "15:00" {
		t.Errorf("Delta = %v, want extracted date and time", res.Delta)
	}
	if res.Delta["doctor"] != "Dr. Davis" {
		t.Errorf("doctor = %q, want Dr. Davis", res.Delta["doctor"])
	}
	if !strings.Contains(res.Summary, "Dr. Davis") {
		t.Errorf("Summary = %q, want the doctor named", res.Summary)
	}
	if !strings.Contains(res.Response, "yes/no") {
		t.Errorf("Response = %q, want an explicit confirmation prompt", res.Response)
	}
}

// Handlers never mutate the passed fields; changes travel in the delta
func TestSchedulingAttempt_DoesNotMutateFields(t *testing.T) {
	ext := &fakeExtractor{date: "2026-09-08", clock: "15:00"}
	h := newTestScheduling(newFakeRecords(), ext)

	fields := models.Fields{"action": actionCreate}
	_, err := h.Attempt(context.Background(), 1, models.IntentSchedule, fields, "next Tuesday at 3pm")
	if err != nil {
		t.Fatalf("Attempt() error = %v", err)
	}

	if len(fields) != 1 {
		t.Errorf("fields = %v, handler must not mutate its input", fields)
	}
}

func TestSchedulingAttempt_PastSlotRePrompts(t *testing.T) {
	ext := &fakeExtractor{date: "2026-08-01", clock: "10:00"}
	h := newTestScheduling(newFakeRecords(), ext)

	res, err := h.Attempt(context.Background(), 1, models.IntentSchedule, models.Fields{}, "August 1st at 10am")
	if err != nil {
		t.Fatalf("Attempt() error = %v", err)
	}

	if res.Kind != OutcomeNeedsMoreInput {
		t.Fatalf("Kind = %q, want re-prompt for a past slot", res.Kind)
	}
	if res.Delta["date"] != "" || res.Delta["time"] != "" {
		t.Errorf("Delta = %v, want the invalid slot cleared", res.Delta)
	}
	if strings.Contains(strings.ToLower(res.Response), "error") {
		t.Errorf("Response = %q, must read as a prompt, not an error", res.Response)
	}
}

func TestSchedulingAttempt_MalformedSlotRePrompts(t *testing.T) {
	ext := &fakeExtractor{date: "soonish", clock: "whenever"}
	h := newTestScheduling(newFakeRecords(), ext)

	res, err := h.Attempt(context.Background(), 1, models.IntentSchedule, models.Fields{}, "soonish whenever")
	if err != nil {
		t.Fatalf("Attempt() error = %v", err)
	}
	if res.Kind != OutcomeNeedsMoreInput {
		t.Fatalf("Kind = %q, want re-prompt for malformed slot", res.Kind)
	}
}

func TestSchedulingAttempt_ExtractorFailure(t *testing.T) {
	ext := &fakeExtractor{err: errors.New("timeout")}
	h := newTestScheduling(newFakeRecords(), ext)

	res, err := h.Attempt(context.Background(), 1, models.IntentSchedule, models.Fields{}, "book me next Tuesday")
	if err != nil {
		t.Fatalf("Attempt() error = %v", err)
	}
	if res.Kind != OutcomeFailed || res.FailReason != FailUpstreamTimeout {
		t.Errorf("got %q/%q, want failed/upstream_timeout", res.Kind, res.FailReason)
	}
}

func TestSchedulingAttempt_CancelNeedsID(t *testing.T) {
	h := newTestScheduling(newFakeRecords(), &fakeExtractor{})
	ctx := context.Background()

	res, err := h.Attempt(ctx, 1, models.IntentCancel, models.Fields{}, "I want to cancel my appointment")
	if err != nil {
		t.Fatalf("Attempt() error = %v", err)
	}
	if res.Kind != OutcomeNeedsMoreInput {
		t.Fatalf("Kind = %q, want needs_more_input", res.Kind)
	}

	res, err = h.Attempt(ctx, 1, models.IntentCancel, models.Fields{"action": actionCancel}, "it's number 7")
	if err != nil {
		t.Fatalf("Attempt() error = %v", err)
	}
	if res.Kind != OutcomeReadyToConfirm {
		t.Fatalf("Kind = %q, want ready_to_confirm once the id is known", res.Kind)
	}
	if res.Delta["appointment_id"] != "7" {
		t.Errorf("appointment_id = %q, want 7", res.Delta["appointment_id"])
	}
}

func TestSchedulingAttempt_RescheduleTimeNumbersAreNotIDs(t *testing.T) {
	h := newTestScheduling(newFakeRecords(), &fakeExtractor{date: "2026-09-02", clock: "15:00"})
	ctx := context.Background()

	res, err := h.Attempt(ctx, 1, models.IntentReschedule, models.Fields{}, "reschedule my appointment to tomorrow at 3 pm")
	if err != nil {
		t.Fatalf("Attempt() error = %v", err)
	}
	if res.Kind != OutcomeNeedsMoreInput {
		t.Fatalf("Kind = %q, want needs_more_input", res.Kind)
	}
	if len(res.Missing) == 0 || res.Missing[0] != "appointment_id" {
		t.Errorf("Missing = %v, want appointment_id", res.Missing)
	}
	if got := res.Delta["appointment_id"]; got != "" {
		t.Errorf("appointment_id = %q, the 3 in \"3 pm\" is a time, not an id", got)
	}
}

func TestSchedulingCommit_Create(t *testing.T) {
	recs := newFakeRecords()
	h := newTestScheduling(recs, &fakeExtractor{})

	fields := models.Fields{
		"action": actionCreate, "date": "2026-09-08", "time": "15:00",
		"doctor": "Dr. Emma Davis", "purpose": "a checkup",
	}
	res, err := h.Commit(context.Background(), 1, fields)
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	if res.Kind != OutcomeDone {
		t.Fatalf("Kind = %q, want done", res.Kind)
	}
	if !strings.Contains(res.Response, "ID: 1") {
		t.Errorf("Response = %q, want the booked appointment id", res.Response)
	}
	if len(recs.appointments) != 1 {
		t.Fatalf("appointments = %d, want 1 booked", len(recs.appointments))
	}
	if recs.appointments[0].Purpose != "a checkup" {
		t.Errorf("purpose = %q, want a checkup", recs.appointments[0].Purpose)
	}
}

func TestSchedulingCommit_DefaultsDoctorAndPurpose(t *testing.T) {
	recs := newFakeRecords()
	h := newTestScheduling(recs, &fakeExtractor{})

	fields := models.Fields{"action": actionCreate, "date": "2026-09-08", "time": "15:00"}
	res, err := h.Commit(context.Background(), 1, fields)
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	if res.Kind != OutcomeDone {
		t.Fatalf("Kind = %q, want done", res.Kind)
	}
	if recs.appointments[0].Doctor != "Dr. Emma Davis" {
		t.Errorf("doctor = %q, want the first available doctor", recs.appointments[0].Doctor)
	}
	if recs.appointments[0].Purpose != "General consultation" {
		t.Errorf("purpose = %q, want the default", recs.appointments[0].Purpose)
	}
}

func TestSchedulingCommit_SlotConflict(t *testing.T) {
	recs := newFakeRecords()
	h := newTestScheduling(recs, &fakeExtractor{})
	ctx := context.Background()

	fields := models.Fields{
		"action": actionCreate, "date": "2026-09-08", "time": "15:00", "doctor": "Dr. Emma Davis",
	}
	if _, err := h.Commit(ctx, 1, fields); err != nil {
		t.Fatalf("first Commit() error = %v", err)
	}

	res, err := h.Commit(ctx, 2, fields)
	if err != nil {
		t.Fatalf("second Commit() error = %v", err)
	}
	if res.Kind != OutcomeFailed || res.FailReason != FailSlotUnavailable {
		t.Fatalf("got %q/%q, want failed/slot_unavailable", res.Kind, res.FailReason)
	}
	// The conflicting slot is cleared so the patient can pick another
	if res.Delta["date"] != "" || res.Delta["time"] != "" {
		t.Errorf("Delta = %v, want date and time cleared", res.Delta)
	}
}

func TestSchedulingCommit_Cancel(t *testing.T) {
	recs := newFakeRecords()
	h := newTestScheduling(recs, &fakeExtractor{})
	ctx := context.Background()

	if _, err := recs.Create(ctx, 1, fixedNow().AddDate(0, 0, 7), "Dr. Emma Davis", "Checkup"); err != nil {
		t.Fatal(err)
	}

	res, err := h.Commit(ctx, 1, models.Fields{"action": actionCancel, "appointment_id": "1"})
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if res.Kind != OutcomeDone {
		t.Fatalf("Kind = %q, want done", res.Kind)
	}
	if recs.appointments[0].Status != models.AppointmentCancelled {
		t.Error("appointment should be cancelled")
	}
}

func TestSchedulingCommit_CancelNotOwned(t *testing.T) {
	recs := newFakeRecords()
	h := newTestScheduling(recs, &fakeExtractor{})
	ctx := context.Background()

	if _, err := recs.Create(ctx, 1, fixedNow().AddDate(0, 0, 7), "Dr. Emma Davis", "Checkup"); err != nil {
		t.Fatal(err)
	}

	res, err := h.Commit(ctx, 2, models.Fields{"action": actionCancel, "appointment_id": "1"})
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if res.Kind != OutcomeFailed || res.FailReason != FailRecordNotFound {
		t.Fatalf("got %q/%q, want failed/record_not_found", res.Kind, res.FailReason)
	}
	if _, ok := res.Delta["appointment_id"]; !ok || res.Delta["appointment_id"] != "" {
		t.Errorf("Delta = %v, want the bad id cleared", res.Delta)
	}
}

func TestSchedulingCommit_Reschedule(t *testing.T) {
	recs := newFakeRecords()
	h := newTestScheduling(recs, &fakeExtractor{})
	ctx := context.Background()

	if _, err := recs.Create(ctx, 1, fixedNow().AddDate(0, 0, 7), "Dr. Emma Davis", "Checkup"); err != nil {
		t.Fatal(err)
	}

	fields := models.Fields{
		"action": actionReschedule, "appointment_id": "1",
		"date": "2026-09-15", "time": "10:00",
	}
	res, err := h.Commit(ctx, 1, fields)
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if res.Kind != OutcomeDone {
		t.Fatalf("Kind = %q, want done", res.Kind)
	}

	want, _ := parseSlot("2026-09-15", "10:00")
	if !recs.appointments[0].Slot.Equal(want) {
		t.Errorf("slot = %v, want %v", recs.appointments[0].Slot, want)
	}
}

func TestSchedulingCommit_UpstreamDown(t *testing.T) {
	recs := newFakeRecords()
	recs.failAll = true
	h := newTestScheduling(recs, &fakeExtractor{})

	fields := models.Fields{"action": actionCreate, "date": "2026-09-08", "time": "15:00", "doctor": "Dr. Emma Davis"}
	res, err := h.Commit(context.Background(), 1, fields)
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if res.Kind != OutcomeFailed || res.FailReason != FailUpstreamTimeout {
		t.Errorf("got %q/%q, want failed/upstream_timeout", res.Kind, res.FailReason)
	}
}

func TestActionFor(t *testing.T) {
	tests := []struct {
		intent    models.Intent
		utterance string
		want      string
	}{
		{models.IntentCancel, "anything", actionCancel},
		{models.IntentReschedule, "anything", actionReschedule},
		{models.IntentSchedule, "book me in", actionCreate},
		{models.IntentSchedule, "I want to cancel my appointment", actionCancel},
		{models.IntentSchedule, "can I reschedule?", actionReschedule},
	}

	for _, tt := range tests {
		if got := actionFor(tt.intent, tt.utterance); got != tt.want {
			t.Errorf("actionFor(%q, %q) = %q, want %q", tt.intent, tt.utterance, got, tt.want)
		}
	}
}
