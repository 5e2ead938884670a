package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/auth"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/permissions"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/shared"
	_ "github.com/iradwatkins/taxgeniusprov1-sub000/testing"
)

type stubRepo struct {
	user     *auth.User
	sessions map[string]int64
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil || !strings.EqualFold(s.user.Email, email) {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	if s.sessions == nil {
		s.sessions = make(map[string]int64)
	}
	s.sessions[id] = userID
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

func newHandler(t *testing.T, repo auth.Repository) (*auth.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	return auth.NewHandler(nil, auth.NewService(repo), sessionManager, csrfManager), sessionManager
}

func preparerUser(t *testing.T) *auth.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("correcthorse"), bcrypt.DefaultCost)
	require.NoError(t, err)
	return &auth.User{
		ID:           42,
		Email:        "preparer@test.local",
		PasswordHash: string(hashed),
		Role:         permissions.RoleTaxPreparer,
		IsActive:     true,
	}
}

func doLogin(t *testing.T, handler *auth.Handler, sessionManager *shared.SessionManager, body string) (*httptest.ResponseRecorder, *shared.Session) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	sess, err := sessionManager.Load(context.Background(), req)
	require.NoError(t, err)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	router := chi.NewRouter()
	router.Route("/auth", handler.MountRoutes)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res, sess
}

func TestLoginSuccess(t *testing.T) {
	repo := &stubRepo{user: preparerUser(t)}
	handler, sessionManager := newHandler(t, repo)

	res, sess := doLogin(t, handler, sessionManager, `{"email":"preparer@test.local","password":"correcthorse"}`)

	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	assert.Contains(t, res.Body.String(), `"tax_preparer"`)
	assert.Equal(t, "42", sess.User())
	assert.Contains(t, repo.sessions, sess.ID)
}

func TestLoginInvalidCredentials(t *testing.T) {
	repo := &stubRepo{user: preparerUser(t)}
	handler, sessionManager := newHandler(t, repo)

	res, sess := doLogin(t, handler, sessionManager, `{"email":"preparer@test.local","password":"wrongwrong"}`)

	require.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Empty(t, sess.User())
	assert.Empty(t, repo.sessions)
}

func TestLoginValidation(t *testing.T) {
	handler, sessionManager := newHandler(t, &stubRepo{})

	res, _ := doLogin(t, handler, sessionManager, `{"email":"not-an-email","password":"short"}`)
	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestLoginUnknownUser(t *testing.T) {
	handler, sessionManager := newHandler(t, &stubRepo{})

	res, _ := doLogin(t, handler, sessionManager, `{"email":"ghost@test.local","password":"correcthorse"}`)
	// Unknown account and bad password are indistinguishable to the caller.
	require.Equal(t, http.StatusUnauthorized, res.Code)
}
