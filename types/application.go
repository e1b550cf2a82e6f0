package types

import (
	"fmt"
	"strings"
	"time"
)

// Status is the position of an application in its lifecycle.
type Status string

// Supported status values. Any status may move to any other; rejected is
// reachable from every state.
const (
	StatusSaved     Status = "saved"
	StatusApplied   Status = "applied"
	StatusInterview Status = "interview"
	StatusOffer     Status = "offer"
	StatusRejected  Status = "rejected"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusSaved, StatusApplied, StatusInterview, StatusOffer, StatusRejected}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseStatuses parses a comma separated status list, ignoring blanks.
func ParseStatuses(raw string) ([]Status, error) {
	var statuses []Status
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" {
			continue
		}
		status := Status(part)
		if !status.Valid() {
			return nil, fmt.Errorf("invalid status %q", part)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// Application records an account's interest in a single job.
// An account holds at most one application per job.
type Application struct {
	// ID is the unique identifier of the application.
	ID string `json:"application_id" db:"application_id"`

	// UserID identifies the owning account.
	UserID string `json:"user_id" db:"user_id"`

	// JobID identifies the job being tracked.
	JobID string `json:"job_id" db:"job_id"`

	// Status is the current lifecycle state.
	Status Status `json:"status" db:"status"`

	// AppliedDate is set when the application reaches the applied state.
	AppliedDate *time.Time `json:"applied_date" db:"applied_date"`

	// PersonalNotes is free text kept by the owner, at most 1000 characters.
	PersonalNotes string `json:"personal_notes" db:"personal_notes"`

	// CoverLetter holds the most recently generated cover letter.
	CoverLetter string `json:"cover_letter" db:"cover_letter"`

	// ColdMessage holds the most recently generated cold message.
	ColdMessage string `json:"cold_message" db:"cold_message"`

	// Attachments are the files uploaded for this application, metadata only.
	Attachments AttachmentSet `json:"attachments" db:"-"`

	// Job is the joined catalog record. It is populated by list and read
	// operations and omitted on writes.
	Job *Job `json:"job,omitempty" db:"-"`

	// CreatedAt is the timestamp when the application was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the application.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ApplicationFilter narrows ledger listings.
type ApplicationFilter struct {
	Statuses []Status
}
