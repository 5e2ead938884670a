package appointments

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/permissions"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/platform/httpx"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/shared"
)

// RoleSource resolves the stored role for a user id.
type RoleSource interface {
	RoleAndOverrides(ctx context.Context, userID int64) (permissions.Role, permissions.Set, error)
}

// Handler exposes appointment endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	roles     RoleSource
	guard     permissions.Middleware
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, roles RoleSource, guard permissions.Middleware) *Handler {
	return &Handler{logger: logger, service: service, roles: roles, guard: guard, validator: validator.New()}
}

// MountRoutes registers appointment routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(permissions.PermAppointments))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Post("/", h.create)
		r.Put("/{id}/reschedule", h.reschedule)
		r.Put("/{id}/status", h.updateStatus)
		r.Delete("/{id}", h.delete)
	})
}

type appointmentResponse struct {
	ID              int64     `json:"id"`
	ContactID       int64     `json:"contact_id"`
	PreparerID      int64     `json:"preparer_id"`
	Kind            Kind      `json:"kind"`
	Status          Status    `json:"status"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Location        *string   `json:"location,omitempty"`
	Notes           *string   `json:"notes,omitempty"`
}

type listResponse struct {
	Appointments []appointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

func toResponse(a Appointment) appointmentResponse {
	return appointmentResponse{
		ID:              a.ID,
		ContactID:       a.ContactID,
		PreparerID:      a.PreparerID,
		Kind:            a.Kind,
		Status:          a.Status,
		ScheduledAt:     a.ScheduledAt,
		DurationMinutes: a.DurationMinutes,
		Location:        a.Location,
		Notes:           a.Notes,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}

	req := ListAppointmentsRequest{Limit: 50}
	q := r.URL.Query()
	if raw := q.Get("contact_id"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			req.ContactID = &parsed
		}
	}
	if raw := q.Get("status"); raw != "" {
		status := Status(raw)
		req.Status = &status
	}
	if raw := q.Get("from"); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			req.From = &parsed
		}
	}
	if raw := q.Get("to"); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			req.To = &parsed
		}
	}
	if raw := q.Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
			req.Limit = parsed
		}
	}
	if raw := q.Get("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			req.Offset = parsed
		}
	}

	list, total, err := h.service.List(r.Context(), viewer, req)
	if err != nil {
		h.logger.Error("list appointments", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	out := make([]appointmentResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toResponse(a))
	}
	httpx.JSON(w, http.StatusOK, listResponse{Appointments: out, Total: total})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	appt, err := h.service.Get(r.Context(), viewer, id)
	if err != nil {
		h.respondErr(w, "get appointment", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(*appt))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	var req CreateAppointmentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	appt, err := h.service.Create(r.Context(), viewer, req)
	if err != nil {
		h.respondErr(w, "create appointment", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(*appt))
}

func (h *Handler) reschedule(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req RescheduleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	appt, err := h.service.Reschedule(r.Context(), viewer, id, req)
	if err != nil {
		h.respondErr(w, "reschedule appointment", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(*appt))
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	appt, err := h.service.UpdateStatus(r.Context(), viewer, id, req)
	if err != nil {
		h.respondErr(w, "update appointment status", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(*appt))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), viewer, id); err != nil {
		h.respondErr(w, "delete appointment", err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) viewer(w http.ResponseWriter, r *http.Request) (Viewer, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || strings.TrimSpace(sess.User()) == "" {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
		return Viewer{}, false
	}
	userID, err := strconv.ParseInt(strings.TrimSpace(sess.User()), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
		return Viewer{}, false
	}
	role, _, err := h.roles.RoleAndOverrides(r.Context(), userID)
	if err != nil {
		h.logger.Error("resolve viewer role", slog.Int64("user_id", userID), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return Viewer{}, false
	}
	return Viewer{UserID: userID, Role: role}, true
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "appointment not found")
	case errors.Is(err, ErrConflict):
		httpx.Problem(w, http.StatusConflict, "Slot Conflict", "the preparer already has an appointment in this slot")
	case errors.Is(err, ErrStatusLocked):
		httpx.Problem(w, http.StatusConflict, "Status Locked", "the appointment can no longer change")
	case errors.Is(err, ErrInvalidInput):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid appointment id")
		return 0, false
	}
	return id, true
}
