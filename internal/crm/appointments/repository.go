package appointments

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates the appointment does not exist or is outside the
// caller's visibility scope.
var ErrNotFound = errors.New("appointments: not found")

// ErrConflict indicates the preparer already has an appointment overlapping
// the requested slot.
var ErrConflict = errors.New("appointments: slot conflict")

// ErrStatusLocked indicates the appointment is in a terminal status and can
// no longer change.
var ErrStatusLocked = errors.New("appointments: status locked")

// ErrInvalidInput indicates a request value outside the accepted vocabulary.
var ErrInvalidInput = errors.New("appointments: invalid input")

// Filter restricts which rows a query returns. PreparerID is the row-level
// visibility predicate; nil means unrestricted.
type Filter struct {
	ContactID  *int64
	Status     *Status
	PreparerID *int64
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// Repository defines data access for appointments.
type Repository interface {
	Create(ctx context.Context, appt Appointment) (int64, error)
	Get(ctx context.Context, id int64) (*Appointment, error)
	List(ctx context.Context, filter Filter) ([]Appointment, int, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	Delete(ctx context.Context, id int64) error
	CountOverlapping(ctx context.Context, preparerID int64, start, end time.Time, excludeID int64) (int, error)
}
