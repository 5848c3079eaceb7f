package auth_test

import (
	"context"
	"encoding/json"
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

	"github.com/farmledger/farmledger/internal/auth"
	"github.com/farmledger/farmledger/internal/shared"
	_ "github.com/farmledger/farmledger/testing"
)

type stubRepo struct {
	users map[string]auth.User
}

func (s *stubRepo) CreateUser(ctx context.Context, user auth.User) error {
	for _, u := range s.users {
		if u.Email == user.Email || u.Phone == user.Phone {
			return shared.ErrDuplicate
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *stubRepo) FindByLogin(ctx context.Context, email, phone string) (*auth.User, error) {
	for _, u := range s.users {
		if (email != "" && u.Email == email) || (phone != "" && u.Phone == phone) {
			user := u
			return &user, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *stubRepo) FindByID(ctx context.Context, id string) (*auth.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &u, nil
}

func newTestRouter(t *testing.T, repo *stubRepo) http.Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	service := auth.NewService(repo, shared.NewSessionStore(client, time.Hour), nil)
	service.WithHashCost(bcrypt.MinCost)
	handler := auth.NewHandler(nil, service)

	r := chi.NewRouter()
	handler.MountRoutes(r)
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(service, nil))
		handler.MountProtectedRoutes(r)
		r.Get("/whoami", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(shared.OwnerFromContext(r.Context())))
		})
	})
	return r
}

func seededRepo(t *testing.T) *stubRepo {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.MinCost)
	require.NoError(t, err)
	return &stubRepo{users: map[string]auth.User{
		"u1": {ID: "u1", Email: "farmer@test.local", Phone: "9000000001", PasswordHash: string(hashed)},
	}}
}

func post(router http.Handler, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func login(t *testing.T, router http.Handler, body string) string {
	t.Helper()
	rr := post(router, "/auth/login", body, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp struct {
		Data auth.LoginResult `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

func TestRegisterHashesPassword(t *testing.T) {
	repo := &stubRepo{users: map[string]auth.User{}}
	router := newTestRouter(t, repo)

	rr := post(router, "/auth/register", `{"email":"New@Test.local","phone":"9000000002","password":"longenough"}`, "")
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.NotContains(t, rr.Body.String(), "longenough")
	require.Len(t, repo.users, 1)
	for _, u := range repo.users {
		assert.Equal(t, "new@test.local", u.Email)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("longenough")))
	}
}

func TestRegisterDuplicate(t *testing.T) {
	router := newTestRouter(t, seededRepo(t))
	rr := post(router, "/auth/register", `{"email":"farmer@test.local","phone":"9000000009","password":"longenough"}`, "")
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestRegisterShortPassword(t *testing.T) {
	router := newTestRouter(t, &stubRepo{users: map[string]auth.User{}})
	rr := post(router, "/auth/register", `{"email":"a@test.local","phone":"9000000003","password":"short"}`, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLoginInvalidCredentials(t *testing.T) {
	router := newTestRouter(t, seededRepo(t))

	rr := post(router, "/auth/login", `{"email":"farmer@test.local","password":"wrongpass"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = post(router, "/auth/login", `{"email":"nobody@test.local","password":"correctpass"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLoginByPhoneThenAccessProtectedRoute(t *testing.T) {
	router := newTestRouter(t, seededRepo(t))
	token := login(t, router, `{"phone":"9000000001","password":"correctpass"}`)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "u1", rr.Body.String())
}

func TestProtectedRouteWithoutToken(t *testing.T) {
	router := newTestRouter(t, seededRepo(t))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer forged")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	router := newTestRouter(t, seededRepo(t))
	token := login(t, router, `{"email":"farmer@test.local","password":"correctpass"}`)

	rr := post(router, "/auth/logout", "", token)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = post(router, "/auth/logout", "", token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLoginRequiresEmailOrPhone(t *testing.T) {
	router := newTestRouter(t, seededRepo(t))
	rr := post(router, "/auth/login", `{"password":"correctpass"}`, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
