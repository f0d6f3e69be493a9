// ABOUTME: Deterministic field extraction helpers shared by the task handlers
// ABOUTME: Doctor names, visit purposes, appointment ids, and triage follow-up fields
package handlers

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	doctorPattern  = regexp.MustCompile(`\b[Dd][Rr]\.?\s+([A-Za-z]+(?:\s+[A-Z][a-z]+)?)`)
	purposePattern = regexp.MustCompile(`(?i)\b(?:for|about|regarding)\s+([A-Za-z0-9 ]+)`)
	idPattern      = regexp.MustCompile(`(?i)(?:\b(?:appointment|booking|id|number|no)\.?\s*#?\s*|#\s*)(\d+)`)
)

// extractDoctor finds a "Dr. Name" mention, normalized to "Dr. Name"
func extractDoctor(text string) string {
	m := doctorPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return "Dr. " + strings.TrimSpace(m[1])
}

var dateishWords = []string{
	"today", "tomorrow", "next", "monday", "tuesday", "wednesday",
	"thursday", "friday", "saturday", "sunday", "am", "pm", "o'clock",
}

// extractPurpose finds a visit purpose following "for", "about", or "regarding".
// Matches that look like date or time phrases are discarded.
func extractPurpose(text string) string {
	m := purposePattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	purpose := strings.TrimSpace(m[1])
	lower := " " + strings.ToLower(purpose) + " "
	for _, word := range dateishWords {
		if strings.Contains(lower, " "+word+" ") || strings.HasSuffix(strings.ToLower(purpose), word) {
			return ""
		}
	}
	if strings.ContainsAny(purpose, "0123456789") {
		return ""
	}
	return purpose
}

// extractAppointmentID finds an integer anchored to id wording such as
// "appointment 12", "number 7", or "#3". Bare integers are ignored: in
// "tomorrow at 3 pm" the 3 is part of a time, not an appointment id.
func extractAppointmentID(text string) (int64, bool) {
	m := idPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

var durationMarkers = []string{
	"hour", "minute", "day", "week", "month", "year",
	"yesterday", "ago", "since", "last night", "this morning",
}

var severityWords = []string{
	"unbearable", "severe", "worst", "intense", "moderate", "mild", "slight",
}

// extractDuration returns the utterance when it carries duration wording
func extractDuration(text string) string {
	lower := strings.ToLower(text)
	for _, marker := range durationMarkers {
		if strings.Contains(lower, marker) {
			return strings.TrimSpace(text)
		}
	}
	return ""
}

// extractSeverity returns the first severity self-report word found
func extractSeverity(text string) string {
	lower := strings.ToLower(text)
	for _, word := range severityWords {
		if strings.Contains(lower, word) {
			return word
		}
	}
	return ""
}
