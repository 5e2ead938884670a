package referrals

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

// Handler exposes referral endpoints.
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

// MountRoutes registers the authenticated referral surface.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(permissions.PermTrackingCode))
		r.Get("/links", h.listLinks)
		r.Post("/links", h.createLink)
		r.Delete("/links/{id}", h.deactivateLink)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(permissions.PermReferrals, permissions.PermCommissions))
		r.Get("/summary", h.summary)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(permissions.PermCommissions))
		r.Get("/commissions", h.listCommissions)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAll(permissions.PermAdminManagement))
		r.Post("/commissions", h.recordCommission)
		r.Put("/commissions/{id}/status", h.transitionCommission)
	})
}

// MountPublic registers the unauthenticated click redirect.
func (h *Handler) MountPublic(r chi.Router) {
	r.Get("/r/{code}", h.track)
}

type createLinkRequest struct {
	Campaign  *string `json:"campaign,omitempty" validate:"omitempty,max=100"`
	TargetURL string  `json:"target_url,omitempty" validate:"omitempty,url,max=500"`
}

type linkResponse struct {
	ID       int64   `json:"id"`
	Code     string  `json:"code"`
	URL      string  `json:"url"`
	Campaign *string `json:"campaign,omitempty"`
	IsActive bool    `json:"is_active"`
	Clicks   int64   `json:"clicks"`
}

type commissionResponse struct {
	ID          int64            `json:"id"`
	OwnerID     int64            `json:"owner_id"`
	LinkID      *int64           `json:"link_id,omitempty"`
	ContactID   *int64           `json:"contact_id,omitempty"`
	AmountCents int64            `json:"amount_cents"`
	Status      CommissionStatus `json:"status"`
	Memo        *string          `json:"memo,omitempty"`
}

type recordCommissionRequest struct {
	OwnerID     int64   `json:"owner_id" validate:"required,gt=0"`
	LinkID      *int64  `json:"link_id,omitempty" validate:"omitempty,gt=0"`
	ContactID   *int64  `json:"contact_id,omitempty" validate:"omitempty,gt=0"`
	AmountCents int64   `json:"amount_cents" validate:"required,gt=0"`
	Memo        *string `json:"memo,omitempty"`
}

type transitionRequest struct {
	Status CommissionStatus `json:"status" validate:"required"`
}

func toCommissionResponse(c Commission) commissionResponse {
	return commissionResponse{
		ID:          c.ID,
		OwnerID:     c.OwnerID,
		LinkID:      c.LinkID,
		ContactID:   c.ContactID,
		AmountCents: c.AmountCents,
		Status:      c.Status,
		Memo:        c.Memo,
	}
}

func (h *Handler) listLinks(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	stats, err := h.service.ListLinks(r.Context(), viewer)
	if err != nil {
		h.logger.Error("list referral links", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	out := make([]linkResponse, 0, len(stats))
	for _, st := range stats {
		out = append(out, linkResponse{
			ID:       st.ID,
			Code:     st.Code,
			URL:      h.service.URL(st.Link),
			Campaign: st.Campaign,
			IsActive: st.IsActive,
			Clicks:   st.Clicks,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"links": out})
}

func (h *Handler) createLink(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	var req createLinkRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	link, err := h.service.CreateLink(r.Context(), viewer, req.Campaign, req.TargetURL)
	if err != nil {
		h.logger.Error("create referral link", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusCreated, linkResponse{
		ID:       link.ID,
		Code:     link.Code,
		URL:      h.service.URL(*link),
		Campaign: link.Campaign,
		IsActive: link.IsActive,
	})
}

func (h *Handler) deactivateLink(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid link id")
		return
	}
	if err := h.service.DeactivateLink(r.Context(), viewer, id); err != nil {
		h.respondErr(w, "deactivate referral link", err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	ownerID := viewer.UserID
	if raw := r.URL.Query().Get("owner_id"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			ownerID = parsed
		}
	}
	summary, err := h.service.Summarize(r.Context(), viewer, ownerID)
	if err != nil {
		h.respondErr(w, "summarize referrals", err)
		return
	}

	links := make([]linkResponse, 0, len(summary.Links))
	for _, st := range summary.Links {
		links = append(links, linkResponse{
			ID:       st.ID,
			Code:     st.Code,
			URL:      h.service.URL(st.Link),
			Campaign: st.Campaign,
			IsActive: st.IsActive,
			Clicks:   st.Clicks,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"owner_id":         summary.OwnerID,
		"total_clicks":     summary.TotalClicks,
		"links":            links,
		"pending_cents":    summary.PendingCents,
		"approved_cents":   summary.ApprovedCents,
		"paid_cents":       summary.PaidCents,
		"commission_count": summary.CommissionCount,
	})
}

func (h *Handler) listCommissions(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	filter := CommissionFilter{Limit: 50}
	q := r.URL.Query()
	if raw := q.Get("owner_id"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			filter.OwnerID = &parsed
		}
	}
	if raw := q.Get("status"); raw != "" {
		status := CommissionStatus(raw)
		filter.Status = &status
	}
	list, total, err := h.service.ListCommissions(r.Context(), viewer, filter)
	if err != nil {
		h.logger.Error("list commissions", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	out := make([]commissionResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toCommissionResponse(c))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"commissions": out, "total": total})
}

func (h *Handler) recordCommission(w http.ResponseWriter, r *http.Request) {
	var req recordCommissionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	c, err := h.service.RecordCommission(r.Context(), req.OwnerID, req.LinkID, req.ContactID, req.AmountCents, req.Memo)
	if err != nil {
		h.logger.Error("record commission", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusCreated, toCommissionResponse(*c))
}

func (h *Handler) transitionCommission(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid commission id")
		return
	}
	var req transitionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if !req.Status.IsValid() {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown commission status")
		return
	}
	c, err := h.service.TransitionCommission(r.Context(), id, req.Status)
	if err != nil {
		h.respondErr(w, "transition commission", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toCommissionResponse(*c))
}

func (h *Handler) track(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(chi.URLParam(r, "code"))
	if code == "" {
		http.NotFound(w, r)
		return
	}
	target, err := h.service.Track(r.Context(), code)
	if err != nil {
		// Dead or unknown codes land on the portal home page rather
		// than an error, so a stale flyer still reaches the site.
		http.Redirect(w, r, h.service.Home(), http.StatusFound)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
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
		httpx.Problem(w, http.StatusNotFound, "Not Found", "referral record not found")
	case errors.Is(err, ErrStatusLocked):
		httpx.Problem(w, http.StatusConflict, "Status Locked", "the commission can no longer change")
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
