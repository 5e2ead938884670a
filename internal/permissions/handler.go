package permissions

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/platform/httpx"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/shared"
)

// ProfileSource supplies the stored role and custom overrides for a user.
type ProfileSource interface {
	RoleAndOverrides(ctx context.Context, userID int64) (Role, Set, error)
}

// Handler serves the navigation menu and effective-permission endpoints the
// portal frontends consume.
type Handler struct {
	logger   *slog.Logger
	resolver *Resolver
	profiles ProfileSource
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, resolver *Resolver, profiles ProfileSource) *Handler {
	return &Handler{logger: logger, resolver: resolver, profiles: profiles}
}

// MountRoutes registers the permission endpoints. These sit behind the
// session middleware but ahead of the dashboard gate: a pending lead still
// needs to learn that it is pending.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/navigation", h.navigation)
	r.Get("/permissions/effective", h.effective)
	r.Get("/permissions/sections", h.sections)
}

type navigationResponse struct {
	Role            Role          `json:"role"`
	PendingApproval bool          `json:"pendingApproval"`
	Menu            []MenuSection `json:"menu,omitempty"`
}

func (h *Handler) navigation(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(r)
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
		return
	}
	role, overrides, err := h.profiles.RoleAndOverrides(r.Context(), userID)
	if err != nil {
		h.logger.Error("load profile for navigation", slog.Int64("user_id", userID), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	set := h.resolver.Resolve(role, overrides)
	if !Has(set, PermDashboard) {
		httpx.JSON(w, http.StatusOK, navigationResponse{Role: role, PendingApproval: true})
		return
	}
	httpx.JSON(w, http.StatusOK, navigationResponse{Role: role, Menu: BuildMenu(role, set)})
}

type effectiveResponse struct {
	Role                 Role `json:"role"`
	ActualRole           Role `json:"actualRole"`
	IsViewingAsOtherRole bool `json:"isViewingAsOtherRole"`
	Permissions          Set  `json:"permissions"`
}

// effective returns the caller's resolved permission map. With ?view_as it
// previews another role instead; only admins may preview, and the previewed
// set is for display only; write endpoints keep checking the caller's real
// permissions regardless of any active preview.
func (h *Handler) effective(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(r)
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
		return
	}
	actualRole, overrides, err := h.profiles.RoleAndOverrides(r.Context(), userID)
	if err != nil {
		h.logger.Error("load profile for effective permissions", slog.Int64("user_id", userID), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	effectiveRole := actualRole
	if viewAs := strings.TrimSpace(r.URL.Query().Get("view_as")); viewAs != "" {
		requested, valid := ParseRole(viewAs)
		if !valid {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown role")
			return
		}
		if actualRole != RoleSuperAdmin && actualRole != RoleAdmin {
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "role preview is restricted to administrators")
			return
		}
		effectiveRole = requested
	}

	// A role preview has no viewed user, so the caller's own stored
	// overrides must not bleed into the previewed set.
	if effectiveRole != actualRole {
		overrides = nil
	}

	view := h.resolver.ViewAs(actualRole, effectiveRole, overrides)
	httpx.JSON(w, http.StatusOK, effectiveResponse{
		Role:                 effectiveRole,
		ActualRole:           view.ActualRole,
		IsViewingAsOtherRole: view.IsViewingAsOtherRole,
		Permissions:          view.Permissions,
	})
}

type sectionResponse struct {
	Section     Section      `json:"section"`
	Label       string       `json:"label"`
	Permissions []Permission `json:"permissions"`
}

func (h *Handler) sections(w http.ResponseWriter, r *http.Request) {
	out := make([]sectionResponse, 0, len(Sections()))
	for _, section := range Sections() {
		out = append(out, sectionResponse{
			Section:     section,
			Label:       SectionLabel(section),
			Permissions: SectionPermissions(section),
		})
	}
	httpx.JSON(w, http.StatusOK, out)
}

func sessionUserID(r *http.Request) (int64, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0, false
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
