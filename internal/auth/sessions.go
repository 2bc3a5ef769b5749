package auth

import (
	"context"
	"database/sql"
	"encoding/gob"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/mrlokans/wordbook/internal/config"
)

// Session data keys
const (
	SessionKeyAuthenticated = "authenticated"
	SessionKeyLoginAt       = "login_at"
)

func init() {
	gob.Register(time.Time{})
}

// SessionManager wraps scs.SessionManager with application-specific methods.
type SessionManager struct {
	*scs.SessionManager
}

// NewSessionManager creates a session manager stored in sqlDB.
// The sqlDB parameter should be the underlying *sql.DB from GORM.
func NewSessionManager(sqlDB *sql.DB, cfg config.Auth) (*SessionManager, error) {
	_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		return nil, err
	}

	lifetime := cfg.SessionLifetime
	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}

	sm := scs.New()
	sm.Store = sqlite3store.New(sqlDB)
	sm.Lifetime = lifetime
	sm.IdleTimeout = lifetime / 2

	sm.Cookie.Name = "wordbook_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteLaxMode // Lax so the login redirect keeps the cookie
	sm.Cookie.Path = "/"

	return &SessionManager{SessionManager: sm}, nil
}

// Login marks the session as authenticated. The token is renewed to prevent
// session fixation.
func (sm *SessionManager) Login(ctx context.Context) error {
	if err := sm.RenewToken(ctx); err != nil {
		return err
	}
	sm.Put(ctx, SessionKeyAuthenticated, true)
	sm.Put(ctx, SessionKeyLoginAt, time.Now())
	return nil
}

func (sm *SessionManager) Logout(ctx context.Context) error {
	return sm.Destroy(ctx)
}

func (sm *SessionManager) IsAuthenticated(r *http.Request) bool {
	return sm.GetBool(r.Context(), SessionKeyAuthenticated)
}

// LoginAt returns when the session logged in, zero when it did not.
func (sm *SessionManager) LoginAt(r *http.Request) time.Time {
	t, _ := sm.Get(r.Context(), SessionKeyLoginAt).(time.Time)
	return t
}
