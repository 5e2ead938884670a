package appointments

import (
	"context"
	"fmt"
	"time"

	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/crm/contacts"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/permissions"
)

// Viewer identifies who is asking. Row-level scoping mirrors the contacts
// service: preparers only operate on their own calendar.
type Viewer = contacts.Viewer

// Service handles appointment business logic.
type Service struct {
	repo Repository
}

// NewService builds Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func adminRole(role permissions.Role) bool {
	return role == permissions.RoleSuperAdmin || role == permissions.RoleAdmin
}

func (s *Service) scope(viewer Viewer, filter Filter) Filter {
	if adminRole(viewer.Role) {
		return filter
	}
	filter.PreparerID = &viewer.UserID
	return filter
}

func (s *Service) visible(viewer Viewer, appt *Appointment) bool {
	return adminRole(viewer.Role) || appt.PreparerID == viewer.UserID
}

// List returns appointments within the viewer's scope.
func (s *Service) List(ctx context.Context, viewer Viewer, req ListAppointmentsRequest) ([]Appointment, int, error) {
	filter := Filter{
		ContactID: req.ContactID,
		Status:    req.Status,
		From:      req.From,
		To:        req.To,
		Limit:     req.Limit,
		Offset:    req.Offset,
	}
	return s.repo.List(ctx, s.scope(viewer, filter))
}

// Get fetches a single appointment, enforcing the viewer's scope.
func (s *Service) Get(ctx context.Context, viewer Viewer, id int64) (*Appointment, error) {
	appt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.visible(viewer, appt) {
		return nil, ErrNotFound
	}
	return appt, nil
}

// Create books an appointment. Preparers book onto their own calendar;
// admins may book on behalf of any preparer.
func (s *Service) Create(ctx context.Context, viewer Viewer, req CreateAppointmentRequest) (*Appointment, error) {
	preparerID := viewer.UserID
	if req.PreparerID != nil && adminRole(viewer.Role) {
		preparerID = *req.PreparerID
	}

	appt := Appointment{
		ContactID:       req.ContactID,
		PreparerID:      preparerID,
		Kind:            req.Kind,
		Status:          StatusScheduled,
		ScheduledAt:     req.ScheduledAt.UTC(),
		DurationMinutes: req.DurationMinutes,
		Location:        req.Location,
		Notes:           req.Notes,
		CreatedBy:       viewer.UserID,
	}
	if !appt.Kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidInput, appt.Kind)
	}

	if err := s.ensureSlotFree(ctx, preparerID, appt.ScheduledAt, appt.DurationMinutes, 0); err != nil {
		return nil, err
	}

	id, err := s.repo.Create(ctx, appt)
	if err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	appt.ID = id
	return &appt, nil
}

// Reschedule moves an appointment to a new slot within the viewer's scope.
func (s *Service) Reschedule(ctx context.Context, viewer Viewer, id int64, req RescheduleRequest) (*Appointment, error) {
	appt, err := s.Get(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	if !appt.Status.CanReschedule() {
		return nil, ErrStatusLocked
	}

	duration := appt.DurationMinutes
	if req.DurationMinutes != nil {
		duration = *req.DurationMinutes
	}
	start := req.ScheduledAt.UTC()
	if err := s.ensureSlotFree(ctx, appt.PreparerID, start, duration, id); err != nil {
		return nil, err
	}

	updates := map[string]any{
		"scheduled_at":     start,
		"duration_minutes": duration,
		"status":           string(StatusScheduled),
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("reschedule appointment: %w", err)
	}
	return s.Get(ctx, viewer, id)
}

// UpdateStatus transitions an appointment. Terminal statuses are final.
func (s *Service) UpdateStatus(ctx context.Context, viewer Viewer, id int64, req UpdateStatusRequest) (*Appointment, error) {
	if !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, req.Status)
	}
	appt, err := s.Get(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	if appt.Status.terminal() {
		return nil, ErrStatusLocked
	}

	updates := map[string]any{"status": string(req.Status)}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("update appointment status: %w", err)
	}
	return s.Get(ctx, viewer, id)
}

// Delete removes an appointment within the viewer's scope.
func (s *Service) Delete(ctx context.Context, viewer Viewer, id int64) error {
	if _, err := s.Get(ctx, viewer, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) ensureSlotFree(ctx context.Context, preparerID int64, start time.Time, durationMinutes int, excludeID int64) error {
	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	overlapping, err := s.repo.CountOverlapping(ctx, preparerID, start, end, excludeID)
	if err != nil {
		return fmt.Errorf("check slot: %w", err)
	}
	if overlapping > 0 {
		return ErrConflict
	}
	return nil
}
