// Package session holds the current authenticated identity and bearer
// credential. It is an explicitly constructed service object injected into
// the gateway and screens, not an ambient singleton.
package session

import (
	"log/slog"
	"sync"
	"time"

	"boscov/client/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

type Manager struct {
	log   *slog.Logger
	store Store

	// Invoked at most once per authenticated session when the API reports
	// unauthorized; the shell routes to the unauthenticated screen here.
	onUnauthenticated func()

	mu      sync.Mutex
	user    *models.User
	token   string
	loading bool
}

func NewManager(log *slog.Logger, store Store, onUnauthenticated func()) *Manager {
	if store == nil {
		panic("session: store must not be nil")
	}
	return &Manager{
		log:               log,
		store:             store,
		onUnauthenticated: onUnauthenticated,
		loading:           true,
	}
}

// Restore loads the persisted session record. A malformed or expired record
// is discarded, never surfaced as an error. Loading reports false once this
// has completed.
func (m *Manager) Restore() {
	const op = "session.Manager.Restore"
	log := m.log.With("op", op)
	defer func() {
		m.mu.Lock()
		m.loading = false
		m.mu.Unlock()
	}()
	sess, err := m.store.Load()
	if err != nil {
		log.Warn("discarding unreadable session record", "error", err.Error())
		_ = m.store.Clear()
		return
	}
	if sess == nil {
		return
	}
	if tokenExpired(sess.Token) {
		log.Info("stored token expired, discarding session")
		_ = m.store.Clear()
		return
	}
	m.mu.Lock()
	user := sess.User
	m.user = &user
	m.token = sess.Token
	m.mu.Unlock()
	log.Debug("session restored", "user_id", user.ID)
}

// tokenExpired inspects the token's exp claim without verifying the
// signature; verification is the server's job. Opaque tokens pass through.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

func (m *Manager) Authenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token != ""
}

// User returns a copy of the signed-in user, or nil.
func (m *Manager) User() *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	cp := *m.user
	return &cp
}

func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// Login sets the identity in memory and in durable storage.
func (m *Manager) Login(user models.User, token string) error {
	m.mu.Lock()
	m.user = &user
	m.token = token
	m.mu.Unlock()
	return m.store.Save(&models.Session{Token: token, User: user})
}

// SetUser replaces the stored user record, keeping the token. Used after a
// successful profile edit.
func (m *Manager) SetUser(user models.User) error {
	m.mu.Lock()
	if m.token == "" {
		m.mu.Unlock()
		return nil
	}
	m.user = &user
	token := m.token
	m.mu.Unlock()
	return m.store.Save(&models.Session{Token: token, User: user})
}

func (m *Manager) Logout() {
	m.mu.Lock()
	m.user = nil
	m.token = ""
	m.mu.Unlock()
	_ = m.store.Clear()
}

// Invalidate is the unauthorized path: any 401 observed anywhere in the app
// lands here. It clears the session and fires the unauthenticated handler,
// but only when a session was actually held, so parallel in-flight failures
// cannot loop the redirect.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	hadSession := m.token != ""
	m.user = nil
	m.token = ""
	m.mu.Unlock()
	_ = m.store.Clear()
	if hadSession {
		m.log.Info("session invalidated by unauthorized response")
		if m.onUnauthenticated != nil {
			m.onUnauthenticated()
		}
	}
}
