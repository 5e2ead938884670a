// Package appointments provides client appointment scheduling.
package appointments

import "time"

// Status represents the lifecycle of an appointment.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

// IsValid checks if the status is valid.
func (s Status) IsValid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	default:
		return false
	}
}

// CanReschedule checks if the appointment can still be moved.
func (s Status) CanReschedule() bool {
	return s == StatusScheduled || s == StatusConfirmed
}

// CanCancel checks if the appointment can be cancelled.
func (s Status) CanCancel() bool {
	return s == StatusScheduled || s == StatusConfirmed
}

// terminal statuses cannot transition anywhere else.
func (s Status) terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// Kind classifies what the meeting is for.
type Kind string

const (
	KindConsultation Kind = "consultation"
	KindDocumentDrop Kind = "document_drop"
	KindReview       Kind = "review"
	KindSigning      Kind = "signing"
)

// IsValid checks if the kind is valid.
func (k Kind) IsValid() bool {
	switch k {
	case KindConsultation, KindDocumentDrop, KindReview, KindSigning:
		return true
	default:
		return false
	}
}

// Appointment is a scheduled meeting between a preparer and a contact.
// PreparerID drives row-level visibility the same way contact assignment
// does: preparers only ever see their own calendar.
type Appointment struct {
	ID              int64
	ContactID       int64
	PreparerID      int64
	Kind            Kind
	Status          Status
	ScheduledAt     time.Time
	DurationMinutes int
	Location        *string
	Notes           *string
	CreatedBy       int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
