package credential

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventreg/regclient/internal/domain"
)

func newStores(t *testing.T) map[string]Store {
	t.Helper()

	dir := t.TempDir()

	fileStore, err := NewFileStore(filepath.Join(dir, "nested", "credentials.json"))
	require.NoError(t, err)

	sqliteStore, err := OpenSQLiteStore(filepath.Join(dir, "credentials.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqliteStore.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fileStore,
		"sqlite": sqliteStore,
	}
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()
	user := &domain.User{ID: 7, Email: "ada@example.com", Role: domain.RoleAdmin}

	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			h, err := store.Get(ctx)
			require.NoError(t, err)
			assert.False(t, h.IsAuthenticated())
			assert.Nil(t, h.User)

			require.NoError(t, store.Set(ctx, Holder{AccessToken: "first", User: user}))

			h, err = store.Get(ctx)
			require.NoError(t, err)
			assert.Equal(t, "first", h.AccessToken)
			require.NotNil(t, h.User)
			assert.Equal(t, int64(7), h.User.ID)
			assert.Equal(t, domain.RoleAdmin, h.Role())

			require.NoError(t, store.SetAccessToken(ctx, "second"))

			h, err = store.Get(ctx)
			require.NoError(t, err)
			assert.Equal(t, "second", h.AccessToken)
			require.NotNil(t, h.User, "setting the token keeps the user")
			assert.Equal(t, "ada@example.com", h.User.Email)

			require.NoError(t, store.Clear(ctx))

			h, err = store.Get(ctx)
			require.NoError(t, err)
			assert.Equal(t, Holder{}, h)
		})
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, Holder{AccessToken: "t", User: &domain.User{Email: "a@b.c"}}))

	h, err := store.Get(ctx)
	require.NoError(t, err)
	h.User.Email = "changed@b.c"

	h, err = store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", h.User.Email)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.db")

	store, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, Holder{AccessToken: "persisted", User: &domain.User{ID: 3}}))
	require.NoError(t, store.Close())

	store, err = OpenSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()

	h, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "persisted", h.AccessToken)
	assert.Equal(t, int64(3), h.User.ID)
}

func TestOpenSQLiteStoreRequiresPath(t *testing.T) {
	_, err := OpenSQLiteStore("  ")
	assert.Error(t, err)
}

func TestFileStoreWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan Holder, 8)
	done := make(chan error, 1)
	go func() {
		done <- store.Watch(ctx, func(h Holder) {
			select {
			case changes <- h:
			default:
			}
		})
	}()

	other, err := NewFileStore(path)
	require.NoError(t, err)

	// Keep writing until the watcher is registered and reports the change.
	require.Eventually(t, func() bool {
		_ = other.Set(context.Background(), Holder{AccessToken: "from-other-process"})
		select {
		case h := <-changes:
			return h.AccessToken == "from-other-process"
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestFileStoreCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store, err := NewFileStore(path)
	require.NoError(t, err)

	_, err = store.Get(context.Background())
	assert.Error(t, err)
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "7",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("client-never-sees-this"))
	require.NoError(t, err)

	got, err := Holder{AccessToken: token}.ExpiresAt()
	require.NoError(t, err)
	assert.True(t, exp.Equal(got))

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "7"}).SignedString([]byte("k"))
	require.NoError(t, err)
	_, err = TokenExpiry(noExp)
	assert.ErrorIs(t, err, ErrNoExpiry)

	_, err = TokenExpiry("garbage")
	assert.Error(t, err)
}

func TestSQLiteStoreWrapsDriverErrors(t *testing.T) {
	_, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "missing", "credentials.db"))
	assert.ErrorContains(t, err, "db.Ping -> ")

	store, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "credentials.db"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = store.Get(context.Background())
	assert.ErrorContains(t, err, "s.db.QueryRowContext -> ")
	assert.ErrorContains(t, store.Clear(context.Background()), "s.db.ExecContext -> ")
}
