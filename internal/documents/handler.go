package documents

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

// Handler exposes document metadata endpoints.
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

// MountRoutes registers document routes. Reads accept either the personal
// documents grant or the staff file-center grant; uploads require the
// dedicated upload grant.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(permissions.PermDocuments, permissions.PermClientFileCenter))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.rename)
		r.Delete("/{id}", h.delete)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAll(permissions.PermUploadDocuments))
		r.Post("/", h.upload)
	})
}

type documentResponse struct {
	ID          int64  `json:"id"`
	OwnerUserID int64  `json:"owner_user_id"`
	Name        string `json:"name"`
	Kind        Kind   `json:"kind"`
	TaxYear     int    `json:"tax_year"`
	SizeBytes   int64  `json:"size_bytes"`
	UploadedBy  int64  `json:"uploaded_by"`
}

type listResponse struct {
	Documents []documentResponse `json:"documents"`
	Total     int                `json:"total"`
}

func toResponse(d Document) documentResponse {
	return documentResponse{
		ID:          d.ID,
		OwnerUserID: d.OwnerUserID,
		Name:        d.Name,
		Kind:        d.Kind,
		TaxYear:     d.TaxYear,
		SizeBytes:   d.SizeBytes,
		UploadedBy:  d.UploadedBy,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}

	req := ListDocumentsRequest{Limit: 50}
	q := r.URL.Query()
	if raw := q.Get("owner_id"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			req.OwnerID = &parsed
		}
	}
	if raw := q.Get("kind"); raw != "" {
		kind := Kind(raw)
		req.Kind = &kind
	}
	if raw := q.Get("tax_year"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			req.TaxYear = &parsed
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
		h.logger.Error("list documents", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	out := make([]documentResponse, 0, len(list))
	for _, d := range list {
		out = append(out, toResponse(d))
	}
	httpx.JSON(w, http.StatusOK, listResponse{Documents: out, Total: total})
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
	doc, err := h.service.Get(r.Context(), viewer, id)
	if err != nil {
		h.respondErr(w, "get document", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(*doc))
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	var req UploadDocumentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	doc, err := h.service.Upload(r.Context(), viewer, req)
	if err != nil {
		h.respondErr(w, "upload document", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(*doc))
}

func (h *Handler) rename(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req RenameDocumentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	doc, err := h.service.Rename(r.Context(), viewer, id, req.Name)
	if err != nil {
		h.respondErr(w, "rename document", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(*doc))
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
		h.respondErr(w, "delete document", err)
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
		httpx.Problem(w, http.StatusNotFound, "Not Found", "document not found")
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
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid document id")
		return 0, false
	}
	return id, true
}
