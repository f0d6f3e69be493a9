// ABOUTME: Scheduling handler: collects action, date/time, and appointment id, then books on confirmation
// ABOUTME: Slot availability is the record service's call; conflicts surface as slot_unavailable
package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/welldesk/careline/internal/models"
	"github.com/welldesk/careline/internal/records"
)

// Scheduling actions stored in the scratchpad
const (
	actionCreate     = "create"
	actionCancel     = "cancel"
	actionReschedule = "reschedule"
)

// Scheduling handles appointment create, cancel, and reschedule requests
type Scheduling struct {
	records   records.Service
	extractor DateTimeExtractor
	now       func() time.Time
}

// NewScheduling creates the scheduling handler
func NewScheduling(svc records.Service, extractor DateTimeExtractor) *Scheduling {
	return &Scheduling{records: svc, extractor: extractor, now: time.Now}
}

// Task implements TaskHandler
func (h *Scheduling) Task() models.TaskType {
	return models.TaskScheduling
}

// Attempt collects and validates fields until everything needed for the
// requested action is present, then reports ReadyToConfirm.
func (h *Scheduling) Attempt(ctx context.Context, patientID int64, in models.Intent, fields models.Fields, utterance string) (Result, error) {
	delta := models.Fields{}
	view := fields.Clone()
	set := func(key, value string) {
		if value != "" && view[key] == "" {
			view[key] = value
			delta[key] = value
		}
	}

	set("action", actionFor(in, utterance))
	set("doctor", extractDoctor(utterance))
	set("purpose", extractPurpose(utterance))

	action := view["action"]

	if action == actionCancel || action == actionReschedule {
		if view["appointment_id"] == "" {
			if id, ok := extractAppointmentID(utterance); ok {
				set("appointment_id", strconv.FormatInt(id, 10))
			} else {
				return Result{
					Kind:     OutcomeNeedsMoreInput,
					Missing:  []string{"appointment_id"},
					Delta:    delta,
					Response: "Which appointment would you like to change? Please give me its ID (you can ask to see your appointments first).",
				}, nil
			}
		}
	}

	if action == actionCreate || action == actionReschedule {
		if view["date"] == "" || view["time"] == "" {
			date, clock, err := h.extractor.ExtractDateTime(ctx, utterance, h.now())
			if err != nil {
				return upstreamFailure(), nil
			}
			set("date", date)
			set("time", clock)
		}

		if view["date"] == "" {
			return Result{
				Kind:     OutcomeNeedsMoreInput,
				Missing:  []string{"date"},
				Delta:    delta,
				Response: "What date would you like? You can say things like \"next Tuesday\" or give a date.",
			}, nil
		}
		if view["time"] == "" {
			return Result{
				Kind:     OutcomeNeedsMoreInput,
				Missing:  []string{"time"},
				Delta:    delta,
				Response: fmt.Sprintf("What time on %s works for you?", view["date"]),
			}, nil
		}

		slot, err := parseSlot(view["date"], view["time"])
		if err != nil {
			// Syntactically invalid field: re-prompt, never surface the raw error
			delta["date"] = ""
			delta["time"] = ""
			return Result{
				Kind:     OutcomeNeedsMoreInput,
				Missing:  []string{"date", "time"},
				Delta:    delta,
				Response: "I couldn't make sense of that date and time. Could you give them again, like \"2025-03-10 at 14:30\"?",
			}, nil
		}
		if !slot.After(h.now()) {
			delta["date"] = ""
			delta["time"] = ""
			return Result{
				Kind:     OutcomeNeedsMoreInput,
				Missing:  []string{"date", "time"},
				Delta:    delta,
				Response: "That time is already in the past. When would you like to come in instead?",
			}, nil
		}
	}

	summary := h.summarize(view)
	return Result{
		Kind:     OutcomeReadyToConfirm,
		Summary:  summary,
		Delta:    delta,
		Response: fmt.Sprintf("Please confirm: %s. Shall I go ahead? (yes/no)", summary),
	}, nil
}

// Commit performs the confirmed action against the record service
func (h *Scheduling) Commit(ctx context.Context, patientID int64, fields models.Fields) (Result, error) {
	switch fields["action"] {
	case actionCancel:
		return h.commitCancel(ctx, patientID, fields)
	case actionReschedule:
		return h.commitReschedule(ctx, patientID, fields)
	default:
		return h.commitCreate(ctx, patientID, fields)
	}
}

func (h *Scheduling) commitCreate(ctx context.Context, patientID int64, fields models.Fields) (Result, error) {
	slot, err := parseSlot(fields["date"], fields["time"])
	if err != nil {
		return Result{}, fmt.Errorf("confirmed booking has invalid slot: %w", err)
	}

	doctor := fields["doctor"]
	if doctor == "" {
		doctors, err := h.records.AvailableDoctors(ctx)
		if err != nil || len(doctors) == 0 {
			return upstreamFailure(), nil
		}
		doctor = doctors[0]
	}

	purpose := fields["purpose"]
	if purpose == "" {
		purpose = "General consultation"
	}

	id, err := h.records.Create(ctx, patientID, slot, doctor, purpose)
	if errors.Is(err, records.ErrSlotTaken) {
		return slotConflict(), nil
	}
	if err != nil {
		return upstreamFailure(), nil
	}

	return Result{
		Kind: OutcomeDone,
		Response: fmt.Sprintf("Appointment booked! ID: %d with %s on %s at %s.",
			id, doctor, fields["date"], fields["time"]),
	}, nil
}

func (h *Scheduling) commitCancel(ctx context.Context, patientID int64, fields models.Fields) (Result, error) {
	id, err := strconv.ParseInt(fields["appointment_id"], 10, 64)
	if err != nil {
		return Result{}, fmt.Errorf("confirmed cancellation has invalid id: %w", err)
	}

	err = h.records.Cancel(ctx, patientID, id)
	switch {
	case errors.Is(err, records.ErrNotFound),
		errors.Is(err, records.ErrNotOwned),
		errors.Is(err, records.ErrNotActive):
		return Result{
			Kind:       OutcomeFailed,
			FailReason: FailRecordNotFound,
			Delta:      models.Fields{"appointment_id": ""},
			Response:   fmt.Sprintf("I couldn't find an active appointment with ID %d on your account. Could you check the ID?", id),
		}, nil
	case err != nil:
		return upstreamFailure(), nil
	}

	return Result{
		Kind:     OutcomeDone,
		Response: fmt.Sprintf("Appointment %d has been cancelled.", id),
	}, nil
}

func (h *Scheduling) commitReschedule(ctx context.Context, patientID int64, fields models.Fields) (Result, error) {
	id, err := strconv.ParseInt(fields["appointment_id"], 10, 64)
	if err != nil {
		return Result{}, fmt.Errorf("confirmed reschedule has invalid id: %w", err)
	}
	slot, err := parseSlot(fields["date"], fields["time"])
	if err != nil {
		return Result{}, fmt.Errorf("confirmed reschedule has invalid slot: %w", err)
	}

	err = h.records.Reschedule(ctx, patientID, id, slot)
	switch {
	case errors.Is(err, records.ErrSlotTaken):
		return slotConflict(), nil
	case errors.Is(err, records.ErrNotFound),
		errors.Is(err, records.ErrNotOwned),
		errors.Is(err, records.ErrNotActive):
		return Result{
			Kind:       OutcomeFailed,
			FailReason: FailRecordNotFound,
			Delta:      models.Fields{"appointment_id": ""},
			Response:   fmt.Sprintf("I couldn't find an active appointment with ID %d on your account. Could you check the ID?", id),
		}, nil
	case err != nil:
		return upstreamFailure(), nil
	}

	return Result{
		Kind:     OutcomeDone,
		Response: fmt.Sprintf("Appointment %d has been moved to %s at %s.", id, fields["date"], fields["time"]),
	}, nil
}

func (h *Scheduling) summarize(view models.Fields) string {
	switch view["action"] {
	case actionCancel:
		return fmt.Sprintf("cancel appointment %s", view["appointment_id"])
	case actionReschedule:
		return fmt.Sprintf("move appointment %s to %s at %s",
			view["appointment_id"], view["date"], view["time"])
	default:
		doctor := view["doctor"]
		if doctor == "" {
			doctor = "the first available doctor"
		}
		summary := fmt.Sprintf("book an appointment with %s on %s at %s",
			doctor, view["date"], view["time"])
		if view["purpose"] != "" {
			summary += fmt.Sprintf(" for %s", view["purpose"])
		}
		return summary
	}
}

// actionFor derives the scheduling action from the intent, falling back
// to utterance keywords for sticky continuation turns
func actionFor(in models.Intent, utterance string) string {
	switch in {
	case models.IntentCancel:
		return actionCancel
	case models.IntentReschedule:
		return actionReschedule
	case models.IntentSchedule:
		lower := strings.ToLower(utterance)
		if strings.Contains(lower, "cancel") {
			return actionCancel
		}
		if strings.Contains(lower, "reschedul") || strings.Contains(lower, "move my appointment") {
			return actionReschedule
		}
		return actionCreate
	default:
		return ""
	}
}

// parseSlot combines a scratchpad date and time into a local timestamp
func parseSlot(date, clock string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", date+" "+clock, time.Local)
}

func slotConflict() Result {
	return Result{
		Kind:       OutcomeFailed,
		FailReason: FailSlotUnavailable,
		Delta:      models.Fields{"date": "", "time": ""},
		Response:   "That slot is already taken. Could you pick a different date or time?",
	}
}

func upstreamFailure() Result {
	return Result{
		Kind:       OutcomeFailed,
		FailReason: FailUpstreamTimeout,
		Response:   "Sorry, I'm having trouble reaching the scheduling system right now. Please try that again in a moment.",
	}
}
