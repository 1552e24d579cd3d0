package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventreg/regclient/internal/backend"
	"github.com/eventreg/regclient/internal/config"
	"github.com/eventreg/regclient/internal/db"
	"github.com/eventreg/regclient/internal/domain"
	"github.com/eventreg/regclient/internal/logger"
	"github.com/eventreg/regclient/internal/repository"
	"github.com/eventreg/regclient/internal/repository/dao"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	require.NoError(t, logger.Init("test"))

	conf := &config.AppConfig{
		API: &config.APIConfig{
			Environment:     "test",
			JWTSigningKey:   "test-signing-key",
			AccessTokenTTL:  time.Minute,
			RefreshTokenTTL: time.Hour,
		},
		Gin:    &config.GinConfig{Mode: gin.TestMode},
		Client: &config.ClientConfig{},
	}

	sqliteDB, err := db.OpenSQLite(&config.SQLiteConfig{Path: ":memory:"})
	require.NoError(t, err)
	users := backend.NewUserService(repository.NewUserRepository(dao.NewUserDAO(sqliteDB)))
	events := backend.NewEventService(
		repository.NewEventRepository(dao.NewEventDAO(sqliteDB)),
		repository.NewRegistrationRepository(dao.NewRegistrationDAO(sqliteDB)),
	)
	require.NoError(t, backend.Seed(context.Background(), users, events, time.Now()))

	return NewServer(conf, sqliteDB)
}

type reply struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
	Data    json.RawMessage   `json:"data"`
}

func do(t *testing.T, s *Server, method, path string, body any, mutate ...func(*http.Request)) (*httptest.ResponseRecorder, reply) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, BasePath+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, m := range mutate {
		m(req)
	}

	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)

	var out reply
	_ = json.Unmarshal(rec.Body.Bytes(), &out)

	return rec, out
}

func bearer(token string) func(*http.Request) {
	return func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	}
}

func withCookie(c *http.Cookie) func(*http.Request) {
	return func(r *http.Request) {
		r.AddCookie(c)
	}
}

func refreshCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, c := range rec.Result().Cookies() {
		if c.Name == "refreshToken" {
			return c
		}
	}
	require.FailNow(t, "no refresh cookie set")

	return nil
}

func login(t *testing.T, s *Server, email, password string) (domain.AuthData, *http.Cookie) {
	t.Helper()

	rec, out := do(t, s, http.MethodPost, "/auth/login", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var data domain.AuthData
	require.NoError(t, json.Unmarshal(out.Data, &data))

	return data, refreshCookie(t, rec)
}

func TestHealthcheck(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginSetsHTTPOnlyRefreshCookie(t *testing.T) {
	s := newTestServer(t)

	data, cookie := login(t, s, backend.DemoUserEmail, backend.DemoUserPassword)

	assert.NotEmpty(t, data.AccessToken)
	assert.Equal(t, backend.DemoUserEmail, data.User.Email)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/api/auth", cookie.Path)
}

func TestLoginWrongPassword(t *testing.T) {
	s := newTestServer(t)

	rec, out := do(t, s, http.MethodPost, "/auth/login", map[string]string{"email": backend.DemoUserEmail, "password": "nope1234"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, out.Success)
	assert.Equal(t, "wrong email or password", out.Message)
}

func TestRefreshRotatesCookie(t *testing.T) {
	s := newTestServer(t)
	_, first := login(t, s, backend.DemoUserEmail, backend.DemoUserPassword)

	rec, out := do(t, s, http.MethodPost, "/auth/refresh-token", nil, withCookie(first))
	require.Equal(t, http.StatusOK, rec.Code)

	var token struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &token))
	assert.NotEmpty(t, token.AccessToken)

	second := refreshCookie(t, rec)
	assert.NotEqual(t, first.Value, second.Value)

	rec, _ = do(t, s, http.MethodPost, "/auth/refresh-token", nil, withCookie(first))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshWithoutCookie(t *testing.T) {
	s := newTestServer(t)

	rec, out := do(t, s, http.MethodPost, "/auth/refresh-token", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid refresh token", out.Message)
}

func TestSignupValidation(t *testing.T) {
	s := newTestServer(t)

	rec, out := do(t, s, http.MethodPost, "/auth/register", map[string]string{
		"email":     "not-an-email",
		"password":  "short",
		"firstName": "Ada",
		"lastName":  "Lovelace",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, out.Errors, "email")
	assert.Contains(t, out.Errors, "password")
}

func TestSignupDuplicateEmail(t *testing.T) {
	s := newTestServer(t)

	rec, _ := do(t, s, http.MethodPost, "/auth/register", map[string]string{
		"email":     backend.DemoUserEmail,
		"password":  "secret123",
		"firstName": "Ada",
		"lastName":  "Lovelace",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAdminRoutesNeedAdminRole(t *testing.T) {
	s := newTestServer(t)
	user, _ := login(t, s, backend.DemoUserEmail, backend.DemoUserPassword)
	admin, _ := login(t, s, backend.DemoAdminEmail, backend.DemoAdminPassword)

	rec, _ := do(t, s, http.MethodGet, "/users", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = do(t, s, http.MethodGet, "/users", nil, bearer(user.AccessToken))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, out := do(t, s, http.MethodGet, "/users", nil, bearer(admin.AccessToken))
	require.Equal(t, http.StatusOK, rec.Code)

	var page domain.Page[domain.User]
	require.NoError(t, json.Unmarshal(out.Data, &page))
	assert.Equal(t, 2, page.Pagination.TotalItems)
}

func TestGetUserIsLimitedToSelf(t *testing.T) {
	s := newTestServer(t)
	user, _ := login(t, s, backend.DemoUserEmail, backend.DemoUserPassword)
	admin, _ := login(t, s, backend.DemoAdminEmail, backend.DemoAdminPassword)

	rec, _ := do(t, s, http.MethodGet, "/users/"+itoa(user.User.ID), nil, bearer(user.AccessToken))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, s, http.MethodGet, "/users/"+itoa(admin.User.ID), nil, bearer(user.AccessToken))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = do(t, s, http.MethodGet, "/users/abc", nil, bearer(user.AccessToken))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvalidBearerOnPublicRouteIsRejected(t *testing.T) {
	s := newTestServer(t)

	rec, _ := do(t, s, http.MethodGet, "/events", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, s, http.MethodGet, "/events", nil, bearer("garbage"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegistrationRequiresMatchingTickets(t *testing.T) {
	s := newTestServer(t)

	_, out := do(t, s, http.MethodGet, "/events?publicView=true", nil)
	var page domain.Page[domain.Event]
	require.NoError(t, json.Unmarshal(out.Data, &page))

	var gala domain.Event
	for _, e := range page.Items {
		if !e.IsFree {
			gala = e
		}
	}
	require.NotZero(t, gala.ID)

	_, out = do(t, s, http.MethodGet, "/events/"+itoa(gala.ID), nil)
	require.NoError(t, json.Unmarshal(out.Data, &gala))

	rec, out := do(t, s, http.MethodPost, "/registrations", domain.RegistrationRequest{
		EventID: gala.ID,
		Tickets: []domain.TicketQuantity{{TicketID: gala.Tickets[0].ID, Quantity: 2}},
		Participants: []domain.ParticipantRequest{{
			Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace",
			Responses: []domain.ResponseRequest{{EventQuestionID: gala.EventQuestions[0].ID, ResponseText: "Fish"}},
		}},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, out.Success)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
