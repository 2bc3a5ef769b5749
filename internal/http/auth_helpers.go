package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/wordbook/internal/auth"
	"github.com/mrlokans/wordbook/internal/config"
)

// AuthTemplateData holds authentication info for templates.
type AuthTemplateData struct {
	Enabled   bool   // password gate is on
	LoggedIn  bool
	CSRFToken string // empty when CSRF protection is off
}

const authTemplateDataKey = "auth_template_data"

// AuthContextMiddleware injects authentication data into the Gin context for templates.
func AuthContextMiddleware(authMode config.AuthMode) gin.HandlerFunc {
	enabled := authMode == config.AuthModeLocal

	return func(c *gin.Context) {
		c.Set(authTemplateDataKey, AuthTemplateData{
			Enabled:   enabled,
			LoggedIn:  enabled && auth.IsAuthenticated(c),
			CSRFToken: auth.GetCSRFToken(c),
		})
		c.Next()
	}
}

// GetAuthTemplateData retrieves auth data from context for use in templates.
func GetAuthTemplateData(c *gin.Context) AuthTemplateData {
	if data, ok := c.Get(authTemplateDataKey); ok {
		if authData, ok := data.(AuthTemplateData); ok {
			return authData
		}
	}
	return AuthTemplateData{}
}
