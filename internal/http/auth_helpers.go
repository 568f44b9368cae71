package http

import (
	"html/template"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore/internal/auth"
)

// AuthTemplateData holds authentication info for templates.
type AuthTemplateData struct {
	LoggedIn  bool          // Whether a session is active
	Username  string        // Current user's username (empty if not logged in)
	CSRFField template.HTML // Hidden CSRF input for forms (empty when CSRF is off)
}

// AuthContextMiddleware injects authentication data into Gin context for templates.
// Templates can access auth data via .Auth in the template data.
func AuthContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		username := auth.GetUsername(c)
		c.Set("auth_template_data", AuthTemplateData{
			LoggedIn:  username != "",
			Username:  username,
			CSRFField: auth.CSRFTokenField(c),
		})
		c.Next()
	}
}

// GetAuthTemplateData retrieves auth data from context for use in templates.
func GetAuthTemplateData(c *gin.Context) AuthTemplateData {
	if data, exists := c.Get("auth_template_data"); exists {
		if authData, ok := data.(AuthTemplateData); ok {
			return authData
		}
	}
	return AuthTemplateData{CSRFField: auth.CSRFTokenField(c)}
}

// actor names the user behind a write for the audit trail.
func actor(c *gin.Context) string {
	if name := auth.GetUsername(c); name != "" {
		return name
	}
	return "anonymous"
}
