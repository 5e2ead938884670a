package users

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/permissions"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/platform/httpx"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/shared"
)

// Handler exposes the admin user-management endpoints, including the
// permission editor surface.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   permissions.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard permissions.Middleware) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

// MountRoutes registers user management routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(permissions.PermAdminManagement))
		r.Get("/", h.listUsers)
		r.Get("/{id}", h.getUser)
		r.Get("/{id}/permissions", h.getPermissions)
		r.Put("/{id}/permissions", h.updatePermissions)
		r.Delete("/{id}/permissions", h.clearPermissions)
		r.Post("/{id}/promote", h.promote)
	})
}

type userResponse struct {
	ID                 int64            `json:"id"`
	Email              string           `json:"email"`
	Name               string           `json:"name"`
	Role               permissions.Role `json:"role"`
	AssignedPreparerID *int64           `json:"assignedPreparerId,omitempty"`
	IsActive           bool             `json:"isActive"`
}

func toUserResponse(u User) userResponse {
	return userResponse{
		ID:                 u.ID,
		Email:              u.Email,
		Name:               u.Name,
		Role:               u.Role,
		AssignedPreparerID: u.AssignedPreparerID,
		IsActive:           u.IsActive,
	}
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	out := make([]userResponse, 0, len(list))
	for _, u := range list {
		out = append(out, toUserResponse(u))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		h.respondErr(w, "get user", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toUserResponse(user))
}

// permissionsResponse is the permission-editor payload: the stored
// overrides, the resolved effective set, and which toggles the editor may
// show for this user's role.
type permissionsResponse struct {
	Role      permissions.Role         `json:"role"`
	Overrides permissions.Set          `json:"overrides"`
	Effective permissions.Set          `json:"effective"`
	Editable  []permissions.Permission `json:"editable"`
}

func (h *Handler) getPermissions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		h.respondErr(w, "get user permissions", err)
		return
	}
	effective, err := h.service.PermissionsFor(r.Context(), id)
	if err != nil {
		h.respondErr(w, "resolve user permissions", err)
		return
	}
	httpx.JSON(w, http.StatusOK, permissionsResponse{
		Role:      user.Role,
		Overrides: user.CustomPermissions,
		Effective: effective,
		Editable:  permissions.Editable(user.Role),
	})
}

type updatePermissionsRequest struct {
	Overrides map[string]any `json:"overrides"`
}

func (h *Handler) updatePermissions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req updatePermissionsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if len(req.Overrides) == 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "overrides must not be empty")
		return
	}

	patch := permissions.Set{}
	for key, value := range req.Overrides {
		perm := permissions.Permission(key)
		if !perm.Valid() {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown permission: "+key)
			return
		}
		granted, isBool := value.(bool)
		if !isBool {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "permission values must be boolean: "+key)
			return
		}
		patch[perm] = granted
	}

	merged, err := h.service.UpdateOverrides(r.Context(), actorID(r), id, patch)
	if err != nil {
		if errors.Is(err, ErrNotEditable) {
			httpx.Problem(w, http.StatusForbidden, "Forbidden", err.Error())
			return
		}
		h.respondErr(w, "update overrides", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]permissions.Set{"overrides": merged})
}

func (h *Handler) clearPermissions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.ClearOverrides(r.Context(), actorID(r), id); err != nil {
		h.respondErr(w, "clear overrides", err)
		return
	}
	httpx.NoContent(w)
}

type promoteRequest struct {
	Role string `json:"role"`
}

func (h *Handler) promote(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req promoteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	role, valid := permissions.ParseRole(strings.TrimSpace(req.Role))
	if !valid {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown role")
		return
	}
	if err := h.service.PromoteLead(r.Context(), actorID(r), id, role); err != nil {
		if errors.Is(err, ErrInvalidPromotion) {
			httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
			return
		}
		h.respondErr(w, "promote lead", err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, shared.ErrNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "user not found")
		return
	}
	h.logger.Error(op, slog.Any("error", err))
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid user id")
		return 0, false
	}
	return id, true
}

func actorID(r *http.Request) int64 {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0
	}
	id, _ := strconv.ParseInt(strings.TrimSpace(sess.User()), 10, 64)
	return id
}
