package permissions_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/permissions"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/shared"
	_ "github.com/iradwatkins/taxgeniusprov1-sub000/testing"
)

type stubSource struct {
	sets map[int64]permissions.Set
	err  error
}

func (s *stubSource) PermissionsFor(_ context.Context, userID int64) (permissions.Set, error) {
	if s.err != nil {
		return nil, s.err
	}
	set, ok := s.sets[userID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return set, nil
}

func requestWithUser(t *testing.T, target, userID string) *http.Request {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	manager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	sess, err := manager.Load(context.Background(), req)
	require.NoError(t, err)
	if userID != "" {
		sess.SetUser(userID)
	}
	return req.WithContext(shared.ContextWithSession(req.Context(), sess))
}

func guardedRouter(guard permissions.Middleware) chi.Router {
	ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }
	r := chi.NewRouter()
	r.With(guard.Require(permissions.PermClients, permissions.PermAddressBook)).Get("/clients", ok)
	r.With(guard.RequireAll(permissions.PermTaxReturns, permissions.PermDocuments)).Get("/returns", ok)
	return r
}

func TestGuardRejectsAnonymous(t *testing.T) {
	guard := permissions.Middleware{Source: &stubSource{}}
	router := guardedRouter(guard)

	req := requestWithUser(t, "/clients", "")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGuardBlocksPendingAccounts(t *testing.T) {
	// No dashboard grant means the account is still awaiting approval.
	source := &stubSource{sets: map[int64]permissions.Set{
		7: {permissions.PermReferrals: true},
	}}
	router := guardedRouter(permissions.Middleware{Source: source})

	req := requestWithUser(t, "/clients", "7")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "awaiting approval")
}

func TestRequirePassesOnAnyGrant(t *testing.T) {
	source := &stubSource{sets: map[int64]permissions.Set{
		7: {permissions.PermDashboard: true, permissions.PermAddressBook: true},
	}}
	router := guardedRouter(permissions.Middleware{Source: source})

	req := requestWithUser(t, "/clients", "7")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireAllNeedsEveryGrant(t *testing.T) {
	source := &stubSource{sets: map[int64]permissions.Set{
		7: {permissions.PermDashboard: true, permissions.PermTaxReturns: true},
	}}
	router := guardedRouter(permissions.Middleware{Source: source})

	req := requestWithUser(t, "/returns", "7")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	source.sets[7][permissions.PermDocuments] = true
	req = requestWithUser(t, "/returns", "7")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGuardSurfacesSourceFailure(t *testing.T) {
	source := &stubSource{err: errors.New("connection refused")}
	router := guardedRouter(permissions.Middleware{Source: source})

	req := requestWithUser(t, "/clients", "7")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
