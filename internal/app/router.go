package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/auth"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/crm/appointments"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/crm/contacts"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/documents"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/observability"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/permissions"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/referrals"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/returns"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/shared"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/users"
	"github.com/iradwatkins/taxgeniusprov1-sub000/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger              *slog.Logger
	Config              *Config
	SessionManager      *shared.SessionManager
	CSRFManager         *shared.CSRFManager
	AuthHandler         *auth.Handler
	PermissionsHandler  *permissions.Handler
	UsersHandler        *users.Handler
	ContactsHandler     *contacts.Handler
	AppointmentsHandler *appointments.Handler
	DocumentsHandler    *documents.Handler
	ReferralsHandler    *referrals.Handler
	ReturnsHandler      *returns.Handler
	JobHandler          *jobs.Handler
	Metrics             *observability.Metrics
}

// NewRouter constructs the chi.Router with portal defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Public referral redirect, shared with marketing links.
	if params.ReferralsHandler != nil {
		params.ReferralsHandler.MountPublic(r)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)
		if params.PermissionsHandler != nil {
			params.PermissionsHandler.MountRoutes(r)
		}
		if params.UsersHandler != nil {
			r.Route("/users", params.UsersHandler.MountRoutes)
		}
		if params.ContactsHandler != nil {
			r.Route("/contacts", params.ContactsHandler.MountRoutes)
		}
		if params.AppointmentsHandler != nil {
			r.Route("/appointments", params.AppointmentsHandler.MountRoutes)
		}
		if params.DocumentsHandler != nil {
			r.Route("/documents", params.DocumentsHandler.MountRoutes)
		}
		if params.ReferralsHandler != nil {
			r.Route("/referrals", params.ReferralsHandler.MountRoutes)
		}
		if params.ReturnsHandler != nil {
			r.Route("/returns", params.ReturnsHandler.MountRoutes)
		}
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
