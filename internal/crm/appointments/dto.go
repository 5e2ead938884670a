package appointments

import "time"

type CreateAppointmentRequest struct {
	ContactID       int64     `json:"contact_id" validate:"required,gt=0"`
	PreparerID      *int64    `json:"preparer_id,omitempty" validate:"omitempty,gt=0"`
	Kind            Kind      `json:"kind" validate:"required"`
	ScheduledAt     time.Time `json:"scheduled_at" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"required,gte=15,lte=480"`
	Location        *string   `json:"location,omitempty" validate:"omitempty,max=200"`
	Notes           *string   `json:"notes,omitempty"`
}

type RescheduleRequest struct {
	ScheduledAt     time.Time `json:"scheduled_at" validate:"required"`
	DurationMinutes *int      `json:"duration_minutes,omitempty" validate:"omitempty,gte=15,lte=480"`
}

type UpdateStatusRequest struct {
	Status Status  `json:"status" validate:"required"`
	Notes  *string `json:"notes,omitempty"`
}

type ListAppointmentsRequest struct {
	ContactID *int64
	Status    *Status
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}
