package permissions

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"log/slog"

	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/platform/httpx"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/shared"
)

// Source supplies the effective permission set for an authenticated user.
// Implemented by the users service, which reads role plus stored overrides
// and resolves them.
type Source interface {
	PermissionsFor(ctx context.Context, userID int64) (Set, error)
}

// Middleware wires permission checks into chi routes. Every guard first
// applies the pending-approval gate: a user whose effective set lacks
// dashboard is still waiting for approval and is short-circuited before any
// other permission is consulted.
type Middleware struct {
	Source Source
	Logger *slog.Logger
}

// Require allows the request through when the user holds at least one of
// the given permissions.
func (m Middleware) Require(perms ...Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			set, ok := m.resolve(w, r)
			if !ok {
				return
			}
			for _, perm := range perms {
				if Has(set, perm) {
					next.ServeHTTP(w, r)
					return
				}
			}
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "missing required permission")
		})
	}
}

// RequireAll allows the request through only when the user holds every one
// of the given permissions.
func (m Middleware) RequireAll(perms ...Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			set, ok := m.resolve(w, r)
			if !ok {
				return
			}
			for _, perm := range perms {
				if !Has(set, perm) {
					httpx.Problem(w, http.StatusForbidden, "Forbidden", "missing required permission")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// resolve loads the caller's effective set and applies the pending gate.
// It writes the response itself on failure and reports ok=false.
func (m Middleware) resolve(w http.ResponseWriter, r *http.Request) (Set, bool) {
	userID, ok := m.currentUserID(r)
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
		return nil, false
	}
	set, err := m.Source.PermissionsFor(r.Context(), userID)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("resolve permissions", slog.Int64("user_id", userID), slog.Any("error", err))
		}
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return nil, false
	}
	if !Has(set, PermDashboard) {
		httpx.Problem(w, http.StatusForbidden, "Pending Approval", "account is awaiting approval")
		return nil, false
	}
	return set, true
}

func (m Middleware) currentUserID(r *http.Request) (int64, bool) {
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
		if m.Logger != nil {
			m.Logger.Error("parse session user id", slog.String("value", raw))
		}
		return 0, false
	}
	return id, true
}
