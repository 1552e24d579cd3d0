package client

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eventreg/regclient/internal/api"
	"github.com/eventreg/regclient/internal/backend"
	"github.com/eventreg/regclient/internal/config"
	"github.com/eventreg/regclient/internal/db"
	"github.com/eventreg/regclient/internal/credential"
	"github.com/eventreg/regclient/internal/domain"
	"github.com/eventreg/regclient/internal/gateway"
	"github.com/eventreg/regclient/internal/logger"
	"github.com/eventreg/regclient/internal/registration"
	"github.com/eventreg/regclient/internal/repository"
	"github.com/eventreg/regclient/internal/repository/dao"
	"github.com/eventreg/regclient/internal/service"
)

func startServer(t *testing.T) *config.ClientConfig {
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

	ts := httptest.NewServer(api.NewServer(conf, sqliteDB).Router)
	t.Cleanup(ts.Close)

	return &config.ClientConfig{
		BaseURL: ts.URL + api.BasePath,
		Timeout: 5 * time.Second,
	}
}

func findEvent(t *testing.T, c *Client, name string) domain.Event {
	t.Helper()

	page, err := c.Events.List(context.Background(), service.ListOptions{Public: true})
	require.NoError(t, err)
	for _, e := range page.Items {
		if e.Name == name {
			return e
		}
	}
	require.FailNow(t, "event not listed", name)

	return domain.Event{}
}

func fill(sess *registration.Session, i int, email string) {
	sess.SetParticipantField(i, registration.ParticipantFields{
		Email:     registration.Text(email),
		FirstName: registration.Text("Grace"),
		LastName:  registration.Text("Hopper"),
	})
}

func TestPaidRegistrationEndToEnd(t *testing.T) {
	ctx := context.Background()
	c, err := New(startServer(t), credential.NewMemoryStore(), nil)
	require.NoError(t, err)

	user, err := c.Auth.Login(ctx, backend.DemoUserEmail, backend.DemoUserPassword)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.True(t, c.Auth.IsAuthenticated(ctx))

	gala := findEvent(t, c, "Spring Charity Gala")

	sess := c.NewSession()
	require.NoError(t, c.Registrations.LoadEvent(ctx, sess, gala.ID))
	event, ok := sess.Event()
	require.True(t, ok)
	require.Len(t, event.Tickets, 2)
	require.Len(t, event.EventQuestions, 2)

	general := event.Tickets[0]
	meal := event.EventQuestions[0]
	require.Equal(t, "Meal preference", meal.Question.QuestionText)

	sess.SetTicketQuantity(general.ID, 2)
	require.Equal(t, 2, sess.ParticipantCount())
	assert.Equal(t, "90", sess.TotalAmount().String())

	for i := 0; i < 2; i++ {
		fill(sess, i, "guest"+string(rune('a'+i))+"@example.com")
		sess.SetParticipantResponse(i, meal.ID, "Fish")
	}

	result, err := c.Registrations.Submit(ctx, sess)
	require.NoError(t, err)
	assert.NotEmpty(t, result.RegistrationID)
	assert.NotEmpty(t, result.PaymentToken)
	assert.Equal(t, string(domain.RegistrationStatusPendingPayment), result.Status)

	recorded, ok := sess.Result()
	require.True(t, ok)
	assert.Equal(t, result.PaymentToken, recorded.PaymentToken)

	availability, err := c.Tickets.Availability(ctx, gala.ID, general.ID, 1)
	require.NoError(t, err)
	assert.True(t, availability.Available)
	assert.Equal(t, 98, availability.AvailableQuantity)
}

func TestFreeRegistrationWithoutSignIn(t *testing.T) {
	ctx := context.Background()
	c, err := New(startServer(t), credential.NewMemoryStore(), nil)
	require.NoError(t, err)

	cleanup := findEvent(t, c, "Riverside Park Cleanup")

	sess := c.NewSession()
	require.NoError(t, c.Registrations.LoadEvent(ctx, sess, cleanup.ID))
	require.Equal(t, 1, sess.ParticipantCount())

	fill(sess, 0, "volunteer@example.com")
	phone := sess.Participants()[0].Responses[0].EventQuestionID

	sess.SetParticipantResponse(0, phone, "not a phone")
	_, err = c.Registrations.Submit(ctx, sess)
	var verr *registration.ValidationError
	require.ErrorAs(t, err, &verr)

	sess.SetParticipantResponse(0, phone, "+1 555 0100")
	result, err := c.Registrations.Submit(ctx, sess)
	require.NoError(t, err)
	assert.Empty(t, result.PaymentToken)
	assert.Equal(t, string(domain.RegistrationStatusConfirmed), result.Status)
}

func TestExpiredAccessTokenIsRefreshed(t *testing.T) {
	ctx := context.Background()
	store := credential.NewMemoryStore()
	c, err := New(startServer(t), store, nil)
	require.NoError(t, err)

	_, err = c.Auth.Login(ctx, backend.DemoUserEmail, backend.DemoUserPassword)
	require.NoError(t, err)
	require.NoError(t, store.SetAccessToken(ctx, "stale-token"))

	profile, err := c.Users.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, backend.DemoUserEmail, profile.Email)

	h, err := store.Get(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, "stale-token", h.AccessToken)
	_, err = credential.TokenExpiry(h.AccessToken)
	assert.NoError(t, err)
}

func TestSessionExpiresWithoutRefreshCookie(t *testing.T) {
	ctx := context.Background()
	store := credential.NewMemoryStore()
	require.NoError(t, store.Set(ctx, credential.Holder{
		AccessToken: "left-over-token",
		User:        &domain.User{ID: 2, Email: backend.DemoUserEmail},
	}))

	var signIns atomic.Int32
	nav := gateway.NavigatorFunc(func(context.Context) { signIns.Add(1) })
	c, err := New(startServer(t), store, nav)
	require.NoError(t, err)

	_, err = c.Users.Profile(ctx)
	require.ErrorIs(t, err, gateway.ErrSessionExpired)
	assert.Equal(t, int32(1), signIns.Load())
	assert.False(t, c.Auth.IsAuthenticated(ctx))
}

func TestExpiredSessionRedirectsToSignInPath(t *testing.T) {
	ctx := context.Background()
	store := credential.NewMemoryStore()
	require.NoError(t, store.SetAccessToken(ctx, "left-over-token"))

	conf := startServer(t)
	conf.SignInPath = "/account/sign-in"
	c, err := New(conf, store, nil)
	require.NoError(t, err)

	redirects, ok := c.Navigator.(*RedirectNavigator)
	require.True(t, ok)
	_, pending := redirects.Redirect()
	assert.False(t, pending)

	_, err = c.Users.Profile(ctx)
	require.ErrorIs(t, err, gateway.ErrSessionExpired)

	path, pending := redirects.Redirect()
	assert.True(t, pending)
	assert.Equal(t, "/account/sign-in", path)
	_, pending = redirects.Redirect()
	assert.False(t, pending)
}

func TestRedirectNavigatorDefaultsPath(t *testing.T) {
	nav := NewRedirectNavigator("", zap.NewNop())
	nav.SignIn(context.Background())

	path, ok := nav.Redirect()
	assert.True(t, ok)
	assert.Equal(t, "/signIn", path)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	ctx := context.Background()
	store := credential.NewMemoryStore()
	c, err := New(startServer(t), store, nil)
	require.NoError(t, err)

	_, err = c.Auth.Login(ctx, backend.DemoAdminEmail, backend.DemoAdminPassword)
	require.NoError(t, err)
	require.NoError(t, c.Auth.Logout(ctx))
	assert.False(t, c.Auth.IsAuthenticated(ctx))

	require.NoError(t, store.SetAccessToken(ctx, "stale-token"))
	_, err = c.Users.Profile(ctx)
	assert.ErrorIs(t, err, gateway.ErrSessionExpired)
}

func TestAdminManagesEvents(t *testing.T) {
	ctx := context.Background()
	c, err := New(startServer(t), credential.NewMemoryStore(), nil)
	require.NoError(t, err)

	_, err = c.Auth.Login(ctx, backend.DemoAdminEmail, backend.DemoAdminPassword)
	require.NoError(t, err)

	start := time.Now().Add(48 * time.Hour)
	draft, err := c.Events.Create(ctx, service.EventInput{
		Name:          "Board meeting",
		EventType:     domain.EventTypeConference,
		IsFree:        true,
		StartDateTime: start,
		EndDateTime:   start.Add(2 * time.Hour),
		Status:        domain.EventStatusDraft,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.EventStatusDraft, draft.Status)

	all, err := c.Events.List(ctx, service.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, all.Pagination.TotalItems)

	public, err := c.Events.List(ctx, service.ListOptions{Public: true})
	require.NoError(t, err)
	assert.Equal(t, 2, public.Pagination.TotalItems)

	_, err = c.Events.Get(ctx, draft.ID)
	var remote *gateway.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, 404, remote.StatusCode)

	require.NoError(t, c.Events.Delete(ctx, draft.ID))
}

func TestOpenStore(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		conf    config.CredentialStoreConfig
		want    any
		wantErr bool
	}{
		{name: "memory", conf: config.CredentialStoreConfig{Driver: "memory"}, want: &credential.MemoryStore{}},
		{name: "file", conf: config.CredentialStoreConfig{Driver: "file", Path: filepath.Join(dir, "creds.json")}, want: &credential.FileStore{}},
		{name: "sqlite", conf: config.CredentialStoreConfig{Driver: "sqlite", Path: filepath.Join(dir, "creds.db")}, want: &credential.SQLiteStore{}},
		{name: "unknown", conf: config.CredentialStoreConfig{Driver: "redis"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := OpenStore(tt.conf)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, store)

			c := &Client{Store: store}
			assert.NoError(t, c.Close())
		})
	}
}

func TestWatchCredentialsNeedsFileStore(t *testing.T) {
	c := &Client{Store: credential.NewMemoryStore()}

	err := c.WatchCredentials(context.Background(), func(credential.Holder) {})
	assert.ErrorIs(t, err, ErrWatchUnsupported)
}
