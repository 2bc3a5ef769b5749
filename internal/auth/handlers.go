package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/wordbook/internal/config"
)

// LoginRecorder is notified of every login attempt.
type LoginRecorder interface {
	RecordLogin(ctx context.Context, ip string, success bool, reason string)
}

// isLocalPath validates that a redirect path is local to prevent open redirect attacks.
func isLocalPath(path string) bool {
	if path == "" || !strings.HasPrefix(path, "/") {
		return false
	}
	// Protocol-relative URLs (//evil.com)
	if strings.HasPrefix(path, "//") {
		return false
	}
	if strings.Contains(path, "://") || strings.Contains(path, "\\") {
		return false
	}
	return true
}

// SanitizeRedirectPath returns a safe redirect path, defaulting to "/" if invalid.
func SanitizeRedirectPath(path string) string {
	if isLocalPath(path) {
		return path
	}
	return "/"
}

// Controller serves the login and logout endpoints.
type Controller struct {
	sessions     *SessionManager
	passwordHash string
	limiter      *LoginLimiter
	recorder     LoginRecorder
	logger       *zap.Logger
}

func NewController(sessions *SessionManager, cfg config.Auth, recorder LoginRecorder, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		sessions:     sessions,
		passwordHash: cfg.PasswordHash,
		limiter:      NewLoginLimiter(5, 0, 0),
		recorder:     recorder,
		logger:       logger,
	}
}

func (ac *Controller) RegisterRoutes(router gin.IRoutes) {
	router.GET("/login", ac.LoginPage)
	router.POST("/login", ac.Login)
	router.POST("/logout", ac.Logout)
}

// LoginPage renders the login form.
func (ac *Controller) LoginPage(c *gin.Context) {
	if ac.sessions != nil && ac.sessions.IsAuthenticated(c.Request) {
		c.Redirect(http.StatusFound, "/")
		return
	}
	ac.render(c, http.StatusOK, SanitizeRedirectPath(c.Query("next")), "")
}

// Login checks the submitted password against the configured hash.
func (ac *Controller) Login(c *gin.Context) {
	password := c.PostForm("password")
	next := SanitizeRedirectPath(c.PostForm("next"))
	ip := c.ClientIP()

	if allowed, retryAfter := ac.limiter.Allow(ip); !allowed {
		c.Header("Retry-After", retryAfter.Round(time.Second).String())
		ac.record(c, ip, false, "rate limited")
		ac.render(c, http.StatusTooManyRequests, next, "Too many login attempts. Please try again later.")
		return
	}

	if err := CheckPassword(password, ac.passwordHash); err != nil {
		ac.limiter.RecordFailure(ip)
		ac.record(c, ip, false, err.Error())
		if !errors.Is(err, ErrInvalidPassword) {
			ac.logger.Error("Password check failed", zap.Error(err))
		}
		ac.render(c, http.StatusUnauthorized, next, "Invalid password")
		return
	}
	ac.limiter.RecordSuccess(ip)

	if err := ac.sessions.Login(c.Request.Context()); err != nil {
		ac.logger.Error("Failed to create session", zap.Error(err))
		ac.render(c, http.StatusInternalServerError, next, "Failed to create session")
		return
	}
	ac.record(c, ip, true, "")

	c.Redirect(http.StatusFound, next)
}

// Logout destroys the session and redirects to login.
func (ac *Controller) Logout(c *gin.Context) {
	if ac.sessions != nil {
		if err := ac.sessions.Logout(c.Request.Context()); err != nil {
			ac.logger.Warn("Failed to destroy session", zap.Error(err))
		}
	}
	c.Redirect(http.StatusFound, "/login")
}

func (ac *Controller) record(c *gin.Context, ip string, success bool, reason string) {
	if ac.recorder != nil {
		ac.recorder.RecordLogin(c.Request.Context(), ip, success, reason)
	}
}

func (ac *Controller) render(c *gin.Context, status int, next, errMsg string) {
	c.HTML(status, "login.html", gin.H{
		"Title":     "Login",
		"Next":      next,
		"CSRFToken": GetCSRFToken(c),
		"Error":     errMsg,
	})
}
