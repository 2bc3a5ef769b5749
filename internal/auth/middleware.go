package auth

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/wordbook/internal/config"
)

const authenticatedContextKey = "authenticated"

// Gate lets requests through according to the configured auth mode.
type Gate struct {
	sessions    *SessionManager
	mode        config.AuthMode
	publicPaths []string
}

func NewGate(sessions *SessionManager, mode config.AuthMode) *Gate {
	return &Gate{
		sessions: sessions,
		mode:     mode,
		publicPaths: []string{
			"/health",
			"/ping",
			"/login",
			"/static/",
		},
	}
}

// Handler returns the gin middleware.
func (g *Gate) Handler() gin.HandlerFunc {
	if g.mode != config.AuthModeLocal {
		return func(c *gin.Context) {
			c.Set(authenticatedContextKey, true)
			c.Next()
		}
	}

	return func(c *gin.Context) {
		if g.sessions != nil && g.sessions.IsAuthenticated(c.Request) {
			c.Set(authenticatedContextKey, true)
			c.Next()
			return
		}

		if g.isPublicPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		if isAPIRequest(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
				"code":  "UNAUTHORIZED",
			})
			return
		}

		next := c.Request.URL.RequestURI()
		c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(next))
		c.Abort()
	}
}

func (g *Gate) isPublicPath(path string) bool {
	for _, p := range g.publicPaths {
		if strings.HasSuffix(p, "/") {
			if strings.HasPrefix(path, p) {
				return true
			}
		} else if path == p {
			return true
		}
	}
	return false
}

// isAPIRequest reports whether the caller expects JSON or an event stream
// rather than a page.
func isAPIRequest(c *gin.Context) bool {
	path := c.Request.URL.Path
	if strings.HasPrefix(path, "/api/") || path == "/events" {
		return true
	}
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

// IsAuthenticated reports whether the gate let this request through as a
// logged-in user. Always true when auth is disabled.
func IsAuthenticated(c *gin.Context) bool {
	return c.GetBool(authenticatedContextKey)
}
