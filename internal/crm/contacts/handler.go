package contacts

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

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

// Handler exposes contact CRUD endpoints.
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

// MountRoutes registers contact routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(permissions.PermClients, permissions.PermAddressBook))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAll(permissions.PermClients))
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

type contactResponse struct {
	ID                 int64   `json:"id"`
	FirstName          string  `json:"first_name"`
	LastName           string  `json:"last_name"`
	Email              *string `json:"email,omitempty"`
	Phone              *string `json:"phone,omitempty"`
	Status             Status  `json:"status"`
	AssignedPreparerID *int64  `json:"assigned_preparer_id,omitempty"`
	Notes              *string `json:"notes,omitempty"`
}

type listResponse struct {
	Contacts []contactResponse `json:"contacts"`
	Total    int               `json:"total"`
}

func toResponse(c Contact) contactResponse {
	return contactResponse{
		ID:                 c.ID,
		FirstName:          c.FirstName,
		LastName:           c.LastName,
		Email:              c.Email,
		Phone:              c.Phone,
		Status:             c.Status,
		AssignedPreparerID: c.AssignedPreparerID,
		Notes:              c.Notes,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}

	req := ListContactsRequest{Limit: 50}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := Status(raw)
		req.Status = &status
	}
	if raw := r.URL.Query().Get("search"); raw != "" {
		req.Search = &raw
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
			req.Limit = parsed
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			req.Offset = parsed
		}
	}

	list, total, err := h.service.List(r.Context(), viewer, req)
	if err != nil {
		h.logger.Error("list contacts", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	out := make([]contactResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toResponse(c))
	}
	httpx.JSON(w, http.StatusOK, listResponse{Contacts: out, Total: total})
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
	contact, err := h.service.Get(r.Context(), viewer, id)
	if err != nil {
		h.respondErr(w, "get contact", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(*contact))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	var req CreateContactRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	contact, err := h.service.Create(r.Context(), viewer, req)
	if err != nil {
		h.respondErr(w, "create contact", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(*contact))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req UpdateContactRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	contact, err := h.service.Update(r.Context(), viewer, id, req)
	if err != nil {
		h.respondErr(w, "update contact", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(*contact))
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
		h.respondErr(w, "delete contact", err)
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
		httpx.Problem(w, http.StatusNotFound, "Not Found", "contact not found")
	case errors.Is(err, ErrDuplicateEmail):
		httpx.Problem(w, http.StatusConflict, "Duplicate", "a contact with this email already exists")
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid contact id")
		return 0, false
	}
	return id, true
}
