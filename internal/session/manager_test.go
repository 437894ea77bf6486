package session

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boscov/client/internal/domain/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "7",
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestManagerRestore(t *testing.T) {
	carlos := models.User{ID: 7, Name: "Carlos Comum", Email: "carlos@boscov.dev", Role: models.RoleCommon, Status: models.StatusActive}

	t.Run("valid record", func(t *testing.T) {
		store := NewMemoryStore()
		token := signedToken(t, time.Now().Add(time.Hour))
		require.NoError(t, store.Save(&models.Session{Token: token, User: carlos}))

		m := NewManager(discardLogger(), store, nil)
		assert.True(t, m.Loading(), "loading until restore completes")
		m.Restore()

		assert.False(t, m.Loading())
		assert.True(t, m.Authenticated())
		assert.Equal(t, token, m.Token())
		require.NotNil(t, m.User())
		assert.Equal(t, 7, m.User().ID)
	})

	t.Run("expired token discarded", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Save(&models.Session{
			Token: signedToken(t, time.Now().Add(-time.Hour)),
			User:  carlos,
		}))

		m := NewManager(discardLogger(), store, nil)
		m.Restore()

		assert.False(t, m.Authenticated())
		sess, err := store.Load()
		require.NoError(t, err)
		assert.Nil(t, sess, "expired record must be cleared from storage")
	})

	t.Run("opaque token passes through", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Save(&models.Session{Token: "not-a-jwt", User: carlos}))

		m := NewManager(discardLogger(), store, nil)
		m.Restore()

		assert.True(t, m.Authenticated())
	})

	t.Run("absent record", func(t *testing.T) {
		m := NewManager(discardLogger(), NewMemoryStore(), nil)
		m.Restore()
		assert.False(t, m.Loading())
		assert.False(t, m.Authenticated())
		assert.Nil(t, m.User())
	})
}

func TestManagerUserReturnsCopy(t *testing.T) {
	m := NewManager(discardLogger(), NewMemoryStore(), nil)
	require.NoError(t, m.Login(models.User{ID: 1, Name: "Alice"}, "tok"))

	u := m.User()
	u.Name = "mutated"
	assert.Equal(t, "Alice", m.User().Name)
}

func TestManagerSetUser(t *testing.T) {
	store := NewMemoryStore()
	m := NewManager(discardLogger(), store, nil)

	t.Run("noop when signed out", func(t *testing.T) {
		require.NoError(t, m.SetUser(models.User{ID: 9}))
		assert.Nil(t, m.User())
	})

	t.Run("keeps token and persists", func(t *testing.T) {
		require.NoError(t, m.Login(models.User{ID: 7, Name: "Carlos"}, "tok"))
		require.NoError(t, m.SetUser(models.User{ID: 7, Name: "Carlos Renamed"}))

		assert.Equal(t, "tok", m.Token())
		assert.Equal(t, "Carlos Renamed", m.User().Name)

		sess, err := store.Load()
		require.NoError(t, err)
		require.NotNil(t, sess)
		assert.Equal(t, "Carlos Renamed", sess.User.Name)
	})
}

func TestManagerInvalidate(t *testing.T) {
	t.Run("fires handler once per held session", func(t *testing.T) {
		store := NewMemoryStore()
		var fired int
		m := NewManager(discardLogger(), store, func() { fired++ })
		require.NoError(t, m.Login(models.User{ID: 7}, "tok"))

		m.Invalidate()
		m.Invalidate()

		assert.Equal(t, 1, fired, "parallel 401s must not loop the redirect")
		assert.False(t, m.Authenticated())
		sess, err := store.Load()
		require.NoError(t, err)
		assert.Nil(t, sess)
	})

	t.Run("without session does nothing", func(t *testing.T) {
		var fired int
		m := NewManager(discardLogger(), NewMemoryStore(), func() { fired++ })
		m.Invalidate()
		assert.Zero(t, fired)
	})
}

func TestManagerLogout(t *testing.T) {
	store := NewMemoryStore()
	m := NewManager(discardLogger(), store, nil)
	require.NoError(t, m.Login(models.User{ID: 1}, "tok"))

	m.Logout()

	assert.False(t, m.Authenticated())
	assert.Nil(t, m.User())
	sess, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, sess)
}
