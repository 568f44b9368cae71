package demo

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextKeyDemoMode marks requests served in read-only demo mode.
const ContextKeyDemoMode = "demo_mode"

// BlockedMessage is shown when a write is rejected.
const BlockedMessage = "The bookstore is read-only in demo mode"

// Middleware rejects every write to the bookstore while demo mode is on.
type Middleware struct {
	enabled bool
}

func NewMiddleware(enabled bool) *Middleware {
	return &Middleware{enabled: enabled}
}

func (m *Middleware) IsEnabled() bool {
	return m.enabled
}

// Handler lets safe methods and the login flow through and answers 403 otherwise.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyDemoMode, m.enabled)

		if !m.enabled || isSafeMethod(c.Request.Method) || isAuthPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		m.respondBlocked(c)
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func isAuthPath(path string) bool {
	return path == "/login" || path == "/logout"
}

func (m *Middleware) respondBlocked(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") ||
		strings.Contains(c.GetHeader("Accept"), "application/json") {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":     BlockedMessage,
			"demo_mode": true,
		})
		return
	}

	c.String(http.StatusForbidden, BlockedMessage)
	c.Abort()
}

// IsDemo reports whether the request went through an enabled demo middleware.
func IsDemo(c *gin.Context) bool {
	return c.GetBool(ContextKeyDemoMode)
}
