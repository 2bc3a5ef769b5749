package auth

import (
	"context"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mrlokans/wordbook/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testPassword = "correct horse"

type loginCall struct {
	ip      string
	success bool
	reason  string
}

type recorderStub struct {
	mu    sync.Mutex
	calls []loginCall
}

func (r *recorderStub) RecordLogin(_ context.Context, ip string, success bool, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, loginCall{ip: ip, success: success, reason: reason})
}

func setupSessions(t *testing.T) *SessionManager {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	sm, err := NewSessionManager(sqlDB, config.Auth{SessionLifetime: time.Hour})
	require.NoError(t, err)
	return sm
}

func setupRouter(t *testing.T, mode config.AuthMode) (*gin.Engine, *recorderStub) {
	t.Helper()
	sm := setupSessions(t)

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	rec := &recorderStub{}
	cfg := config.Auth{Mode: mode, PasswordHash: string(hash)}

	router := gin.New()
	router.SetHTMLTemplate(template.Must(template.New("login.html").Parse(`login {{.Error}} next={{.Next}}`)))
	router.Use(sm.SessionLoadSave())
	router.Use(NewGate(sm, mode).Handler())
	NewController(sm, cfg, rec, nil).RegisterRoutes(router)
	router.GET("/", func(c *gin.Context) {
		if !IsAuthenticated(c) {
			c.String(http.StatusForbidden, "not flagged")
			return
		}
		c.String(http.StatusOK, "grid")
	})
	router.GET("/api/activity", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{}) })
	router.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return router, rec
}

func postLogin(router *gin.Engine, password, next string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	form := url.Values{"password": {password}, "next": {next}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = "10.0.0.1:1234"
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGate_NoneModeLetsEverythingThrough(t *testing.T) {
	router, _ := setupRouter(t, config.AuthModeNone)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "grid", w.Body.String())
}

func TestGate_LocalModeRedirectsPages(t *testing.T) {
	router, _ := setupRouter(t, config.AuthModeLocal)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?page=2", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?next="+url.QueryEscape("/?page=2"), w.Header().Get("Location"))
}

func TestGate_LocalModeRejectsAPI(t *testing.T) {
	router, _ := setupRouter(t, config.AuthModeLocal)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/activity", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
}

func TestGate_PublicPaths(t *testing.T) {
	router, _ := setupRouter(t, config.AuthModeLocal)

	for _, path := range []string{"/health", "/login"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	router, rec := setupRouter(t, config.AuthModeLocal)

	w := postLogin(router, "nope nope", "/")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid password")
	require.Len(t, rec.calls, 1)
	assert.False(t, rec.calls[0].success)
	assert.Equal(t, "10.0.0.1", rec.calls[0].ip)
}

func TestLogin_SuccessOpensSession(t *testing.T) {
	router, rec := setupRouter(t, config.AuthModeLocal)

	w := postLogin(router, testPassword, "/notebooks/3")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/notebooks/3", w.Header().Get("Location"))
	require.Len(t, rec.calls, 1)
	assert.True(t, rec.calls[0].success)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "grid", w.Body.String())
}

func TestLogin_RejectsOffsiteRedirect(t *testing.T) {
	router, _ := setupRouter(t, config.AuthModeLocal)

	w := postLogin(router, testPassword, "//evil.example")

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestLogin_RateLimited(t *testing.T) {
	router, _ := setupRouter(t, config.AuthModeLocal)

	for i := 0; i < 5; i++ {
		postLogin(router, "wrong password", "/")
	}
	w := postLogin(router, testPassword, "/")

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestLogout_DestroysSession(t *testing.T) {
	router, _ := setupRouter(t, config.AuthModeLocal)
	cookies := postLogin(router, testPassword, "/").Result().Cookies()

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestIsLocalPath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/", true},
		{"/notebooks/1?page=2", true},
		{"", false},
		{"notebooks", false},
		{"//evil.com", false},
		{"/redirect?to=https://evil.com", false},
		{"/\\evil.com", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isLocalPath(tt.path), tt.path)
	}
}
