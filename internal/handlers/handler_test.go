// ABOUTME: Shared test doubles and registry dispatch tests
// ABOUTME: Fakes for the record service, retriever, composer, and date extraction
package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/welldesk/careline/internal/models"
	"github.com/welldesk/careline/internal/records"
)

// fakeRecords is an in-memory records.Service
type fakeRecords struct {
	appointments []models.AppointmentRecord
	history      []models.HistoryEntry
	doctors      []string
	nextID       int64
	failAll      bool
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{
		doctors: []string{"Dr. Emma Davis", "Dr. Robert Miller"},
		nextID:  1,
	}
}

var errUpstreamDown = errors.New("records service unavailable")

func (f *fakeRecords) ListAppointments(_ context.Context, patientID int64, rng *records.DateRange) ([]models.AppointmentRecord, error) {
	if f.failAll {
		return nil, errUpstreamDown
	}
	var out []models.AppointmentRecord
	for _, a := range f.appointments {
		if a.PatientID != patientID {
			continue
		}
		if rng != nil && !rng.Contains(a.Slot) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeRecords) ListHistory(_ context.Context, patientID int64, rng *records.DateRange) ([]models.HistoryEntry, error) {
	if f.failAll {
		return nil, errUpstreamDown
	}
	var out []models.HistoryEntry
	for _, e := range f.history {
		if rng != nil && !rng.Contains(e.Date) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeRecords) Create(_ context.Context, patientID int64, slot time.Time, doctor, purpose string) (int64, error) {
	if f.failAll {
		return 0, errUpstreamDown
	}
	for _, a := range f.appointments {
		if a.Doctor == doctor && a.Slot.Equal(slot) && a.Status != models.AppointmentCancelled {
			return 0, records.ErrSlotTaken
		}
	}
	id := f.nextID
	f.nextID++
	f.appointments = append(f.appointments, models.AppointmentRecord{
		ID: id, PatientID: patientID, Slot: slot, Doctor: doctor,
		Purpose: purpose, Status: models.AppointmentConfirmed,
	})
	return id, nil
}

func (f *fakeRecords) Cancel(_ context.Context, patientID, appointmentID int64) error {
	if f.failAll {
		return errUpstreamDown
	}
	for i, a := range f.appointments {
		if a.ID != appointmentID {
			continue
		}
		if a.PatientID != patientID {
			return records.ErrNotOwned
		}
		if a.Status == models.AppointmentCancelled {
			return records.ErrNotActive
		}
		f.appointments[i].Status = models.AppointmentCancelled
		return nil
	}
	return records.ErrNotFound
}

func (f *fakeRecords) Reschedule(_ context.Context, patientID, appointmentID int64, newSlot time.Time) error {
	if f.failAll {
		return errUpstreamDown
	}
	for i, a := range f.appointments {
		if a.ID != appointmentID {
			continue
		}
		if a.PatientID != patientID {
			return records.ErrNotOwned
		}
		for _, other := range f.appointments {
			if other.ID != appointmentID && other.Doctor == a.Doctor &&
				other.Slot.Equal(newSlot) && other.Status != models.AppointmentCancelled {
				return records.ErrSlotTaken
			}
		}
		f.appointments[i].Slot = newSlot
		return nil
	}
	return records.ErrNotFound
}

func (f *fakeRecords) AvailableDoctors(_ context.Context) ([]string, error) {
	if f.failAll {
		return nil, errUpstreamDown
	}
	return f.doctors, nil
}

// fakeExtractor resolves date/time deterministically from marker words
type fakeExtractor struct {
	date  string
	clock string
	err   error
}

func (f *fakeExtractor) ExtractDateTime(_ context.Context, _ string, _ time.Time) (string, string, error) {
	return f.date, f.clock, f.err
}

// fakeRetriever returns canned chunks
type fakeRetriever struct {
	chunks models.RetrievalResult
	err    error
	calls  int
}

func (f *fakeRetriever) Search(_ context.Context, _ string, maxResults int) (models.RetrievalResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.chunks) > maxResults {
		return f.chunks[:maxResults], nil
	}
	return f.chunks, nil
}

// fakeComposer returns a canned answer
type fakeComposer struct {
	answer string
	err    error
}

func (f *fakeComposer) ComposeTriageAnswer(_ context.Context, _, _, _, _ string) (string, error) {
	return f.answer, f.err
}

func (f *fakeComposer) ComposeHomeCareAdvice(_ context.Context, _, _ string) (string, error) {
	return f.answer, f.err
}

func retrievalOf(texts ...string) models.RetrievalResult {
	out := make(models.RetrievalResult, len(texts))
	for i, text := range texts {
		out[i] = models.ScoredChunk{Chunk: models.KnowledgeChunk{Text: text}, Score: 0.9}
	}
	return out
}

func TestRegistryDispatch(t *testing.T) {
	scheduling := NewScheduling(newFakeRecords(), &fakeExtractor{})
	lookup := NewRecordLookup(newFakeRecords())
	triage := NewTriage(&fakeRetriever{}, &fakeComposer{}, 4)
	homeCare := NewHomeCare(&fakeRetriever{}, &fakeComposer{}, nil, 4)

	registry := NewRegistry(scheduling, lookup, triage, homeCare)

	tests := []struct {
		intent models.Intent
		want   models.TaskType
	}{
		{models.IntentSchedule, models.TaskScheduling},
		{models.IntentCancel, models.TaskScheduling},
		{models.IntentReschedule, models.TaskScheduling},
		{models.IntentLookupRecords, models.TaskRecordLookup},
		{models.IntentTriage, models.TaskTriage},
		{models.IntentHomeCare, models.TaskHomeCare},
	}
	for _, tt := range tests {
		h, ok := registry.ForIntent(tt.intent)
		if !ok {
			t.Fatalf("ForIntent(%q) not found", tt.intent)
		}
		if h.Task() != tt.want {
			t.Errorf("ForIntent(%q).Task() = %q, want %q", tt.intent, h.Task(), tt.want)
		}
	}

	if _, ok := registry.ForIntent(models.IntentClarify); ok {
		t.Error("clarify must not dispatch to a handler")
	}
	if _, ok := registry.ForIntent(models.IntentEndSession); ok {
		t.Error("end must not dispatch to a handler")
	}

	h, ok := registry.ForTask(models.TaskTriage)
	if !ok || h.Task() != models.TaskTriage {
		t.Error("ForTask(triage) should return the triage handler")
	}
}
