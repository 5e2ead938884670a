package returns

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

// Handler exposes tax-return pipeline endpoints.
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

// MountRoutes registers tax-return routes. Clients reach the read side
// through their documents grant; the pipeline itself needs the tax-returns
// grant.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(permissions.PermTaxReturns, permissions.PermDocuments))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAll(permissions.PermTaxReturns))
		r.Post("/", h.open)
		r.Put("/{id}/status", h.transition)
	})
}

type openRequest struct {
	ClientID   int64   `json:"client_id" validate:"required,gt=0"`
	PreparerID int64   `json:"preparer_id,omitempty" validate:"omitempty,gt=0"`
	TaxYear    int     `json:"tax_year" validate:"required,gte=2000,lte=2100"`
	Notes      *string `json:"notes,omitempty"`
}

type transitionRequest struct {
	Status Status  `json:"status" validate:"required"`
	Notes  *string `json:"notes,omitempty"`
}

type returnResponse struct {
	ID         int64      `json:"id"`
	ClientID   int64      `json:"client_id"`
	PreparerID int64      `json:"preparer_id"`
	TaxYear    int        `json:"tax_year"`
	Status     Status     `json:"status"`
	FiledAt    *time.Time `json:"filed_at,omitempty"`
	Notes      *string    `json:"notes,omitempty"`
}

func toResponse(ret TaxReturn) returnResponse {
	return returnResponse{
		ID:         ret.ID,
		ClientID:   ret.ClientID,
		PreparerID: ret.PreparerID,
		TaxYear:    ret.TaxYear,
		Status:     ret.Status,
		FiledAt:    ret.FiledAt,
		Notes:      ret.Notes,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}

	filter := Filter{Limit: 50}
	q := r.URL.Query()
	if raw := q.Get("client_id"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			filter.ClientID = &parsed
		}
	}
	if raw := q.Get("status"); raw != "" {
		status := Status(raw)
		filter.Status = &status
	}
	if raw := q.Get("tax_year"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			filter.TaxYear = &parsed
		}
	}
	if raw := q.Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
			filter.Limit = parsed
		}
	}
	if raw := q.Get("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			filter.Offset = parsed
		}
	}

	list, total, err := h.service.List(r.Context(), viewer, filter)
	if err != nil {
		h.logger.Error("list returns", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	out := make([]returnResponse, 0, len(list))
	for _, ret := range list {
		out = append(out, toResponse(ret))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"returns": out, "total": total})
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
	ret, err := h.service.Get(r.Context(), viewer, id)
	if err != nil {
		h.respondErr(w, "get return", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(*ret))
}

func (h *Handler) open(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	var req openRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	ret, err := h.service.Open(r.Context(), viewer, req.ClientID, req.PreparerID, req.TaxYear, req.Notes)
	if err != nil {
		h.respondErr(w, "open return", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(*ret))
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req transitionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	ret, err := h.service.Transition(r.Context(), viewer, id, req.Status, req.Notes)
	if err != nil {
		h.respondErr(w, "transition return", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(*ret))
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
		httpx.Problem(w, http.StatusNotFound, "Not Found", "return not found")
	case errors.Is(err, ErrDuplicateYear):
		httpx.Problem(w, http.StatusConflict, "Duplicate", "a return for this client and year is already open")
	case errors.Is(err, ErrBadTransition):
		httpx.Problem(w, http.StatusConflict, "Illegal Transition", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid return id")
		return 0, false
	}
	return id, true
}
