package contacts

import "time"

// Status tracks where a contact sits in the intake funnel.
type Status string

const (
	StatusLead     Status = "lead"
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Contact is a CRM record. AssignedPreparerID drives row-level visibility:
// tax preparers only ever see contacts assigned to them.
type Contact struct {
	ID                 int64
	FirstName          string
	LastName           string
	Email              *string
	Phone              *string
	Status             Status
	AssignedPreparerID *int64
	Notes              *string
	CreatedBy          int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
