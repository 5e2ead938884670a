package appointments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/permissions"
)

type mockRepository struct {
	appts  map[int64]*Appointment
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{appts: make(map[int64]*Appointment), nextID: 1}
}

func (m *mockRepository) Create(ctx context.Context, appt Appointment) (int64, error) {
	id := m.nextID
	m.nextID++
	appt.ID = id
	m.appts[id] = &appt
	return id, nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*Appointment, error) {
	appt, ok := m.appts[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *appt
	return &clone, nil
}

func (m *mockRepository) List(ctx context.Context, filter Filter) ([]Appointment, int, error) {
	var out []Appointment
	for _, appt := range m.appts {
		if filter.PreparerID != nil && appt.PreparerID != *filter.PreparerID {
			continue
		}
		if filter.Status != nil && appt.Status != *filter.Status {
			continue
		}
		out = append(out, *appt)
	}
	return out, len(out), nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, updates map[string]any) error {
	appt, ok := m.appts[id]
	if !ok {
		return ErrNotFound
	}
	if v, ok := updates["status"]; ok {
		appt.Status = Status(v.(string))
	}
	if v, ok := updates["scheduled_at"]; ok {
		appt.ScheduledAt = v.(time.Time)
	}
	if v, ok := updates["duration_minutes"]; ok {
		appt.DurationMinutes = v.(int)
	}
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.appts[id]; !ok {
		return ErrNotFound
	}
	delete(m.appts, id)
	return nil
}

func (m *mockRepository) CountOverlapping(ctx context.Context, preparerID int64, start, end time.Time, excludeID int64) (int, error) {
	count := 0
	for _, appt := range m.appts {
		if appt.PreparerID != preparerID || appt.ID == excludeID {
			continue
		}
		if appt.Status != StatusScheduled && appt.Status != StatusConfirmed {
			continue
		}
		apptEnd := appt.ScheduledAt.Add(time.Duration(appt.DurationMinutes) * time.Minute)
		if appt.ScheduledAt.Before(end) && apptEnd.After(start) {
			count++
		}
	}
	return count, nil
}

var slot = time.Date(2026, time.February, 10, 15, 0, 0, 0, time.UTC)

func TestCreateBooksOwnCalendar(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo)

	preparer := Viewer{UserID: 100, Role: permissions.RoleTaxPreparer}
	other := int64(200)
	appt, err := service.Create(context.Background(), preparer, CreateAppointmentRequest{
		ContactID:       1,
		PreparerID:      &other, // ignored for preparers
		Kind:            KindConsultation,
		ScheduledAt:     slot,
		DurationMinutes: 60,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100), appt.PreparerID)
	assert.Equal(t, StatusScheduled, appt.Status)
}

func TestCreateRejectsOverlap(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo)

	preparer := Viewer{UserID: 100, Role: permissions.RoleTaxPreparer}
	_, err := service.Create(context.Background(), preparer, CreateAppointmentRequest{
		ContactID: 1, Kind: KindConsultation, ScheduledAt: slot, DurationMinutes: 60,
	})
	require.NoError(t, err)

	_, err = service.Create(context.Background(), preparer, CreateAppointmentRequest{
		ContactID: 2, Kind: KindReview, ScheduledAt: slot.Add(30 * time.Minute), DurationMinutes: 60,
	})
	assert.ErrorIs(t, err, ErrConflict)

	// Adjacent slot is fine.
	_, err = service.Create(context.Background(), preparer, CreateAppointmentRequest{
		ContactID: 2, Kind: KindReview, ScheduledAt: slot.Add(60 * time.Minute), DurationMinutes: 30,
	})
	assert.NoError(t, err)

	// A different preparer can hold the same slot.
	colleague := Viewer{UserID: 300, Role: permissions.RoleTaxPreparer}
	_, err = service.Create(context.Background(), colleague, CreateAppointmentRequest{
		ContactID: 3, Kind: KindSigning, ScheduledAt: slot, DurationMinutes: 60,
	})
	assert.NoError(t, err)
}

func TestRescheduleLockedAfterTerminalStatus(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo)

	preparer := Viewer{UserID: 100, Role: permissions.RoleTaxPreparer}
	appt, err := service.Create(context.Background(), preparer, CreateAppointmentRequest{
		ContactID: 1, Kind: KindConsultation, ScheduledAt: slot, DurationMinutes: 60,
	})
	require.NoError(t, err)

	_, err = service.UpdateStatus(context.Background(), preparer, appt.ID, UpdateStatusRequest{Status: StatusCompleted})
	require.NoError(t, err)

	_, err = service.Reschedule(context.Background(), preparer, appt.ID, RescheduleRequest{ScheduledAt: slot.Add(24 * time.Hour)})
	assert.ErrorIs(t, err, ErrStatusLocked)

	_, err = service.UpdateStatus(context.Background(), preparer, appt.ID, UpdateStatusRequest{Status: StatusScheduled})
	assert.ErrorIs(t, err, ErrStatusLocked)
}

func TestScopeHidesOtherCalendars(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo)

	alice := Viewer{UserID: 100, Role: permissions.RoleTaxPreparer}
	bob := Viewer{UserID: 200, Role: permissions.RoleTaxPreparer}
	appt, err := service.Create(context.Background(), alice, CreateAppointmentRequest{
		ContactID: 1, Kind: KindConsultation, ScheduledAt: slot, DurationMinutes: 60,
	})
	require.NoError(t, err)

	_, err = service.Get(context.Background(), bob, appt.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	list, total, err := service.List(context.Background(), bob, ListAppointmentsRequest{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)

	admin := Viewer{UserID: 1, Role: permissions.RoleAdmin}
	_, total, err = service.List(context.Background(), admin, ListAppointmentsRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestCreateRejectsUnknownKind(t *testing.T) {
	service := NewService(newMockRepository())
	preparer := Viewer{UserID: 100, Role: permissions.RoleTaxPreparer}
	_, err := service.Create(context.Background(), preparer, CreateAppointmentRequest{
		ContactID: 1, Kind: Kind("tea_party"), ScheduledAt: slot, DurationMinutes: 60,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
