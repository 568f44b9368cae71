package auth

import (
	"errors"
	"html/template"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/bookstore/internal/config"
)

const (
	msgInvalidCredentials = "Invalid Credentials"
	msgMissingCredentials = "Please enter both username and password."
	msgTooManyAttempts    = "Too many login attempts. Please try again later."
	msgLoginFailed        = "Login failed. Please try again."
	msgDatabaseError      = "Database error: "
)

// Auditor receives login and logout events.
type Auditor interface {
	LogAuth(actor, action, ipAddr, userAgent string, success bool)
}

// isLocalPath validates that a redirect path is local to prevent open redirect attacks.
func isLocalPath(path string) bool {
	if path == "" || !strings.HasPrefix(path, "/") {
		return false
	}
	// Protocol-relative URLs (//evil.com) and backslash tricks
	if strings.HasPrefix(path, "//") || strings.Contains(path, "\\") {
		return false
	}
	return !strings.Contains(path, "://")
}

// sanitizeRedirectPath returns a safe redirect path, defaulting to "/" if invalid.
func sanitizeRedirectPath(path string) string {
	if isLocalPath(path) {
		return path
	}
	return "/"
}

// AuthController serves the login gate.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	auditor        Auditor
	templates      *template.Template
	rateLimiter    *RateLimiter
}

// NewAuthController creates a new authentication controller.
// Without templates under templatesPath/auth the pages answer as JSON.
func NewAuthController(service *Service, sessionManager *SessionManager, auditor Auditor, templatesPath string, cfg config.Auth) *AuthController {
	var tmpl *template.Template
	if templatesPath != "" {
		parsed, err := template.ParseGlob(filepath.Join(templatesPath, "auth", "*.html"))
		if err != nil {
			log.Warn().Err(err).Str("path", templatesPath).Msg("auth templates not loaded, falling back to JSON")
		} else {
			tmpl = parsed
		}
	}

	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		auditor:        auditor,
		templates:      tmpl,
		rateLimiter: NewRateLimiter(RateLimitConfig{
			MaxAttempts:     cfg.MaxLoginAttempts,
			WindowDuration:  cfg.RateLimitWindow,
			LockoutDuration: cfg.LockoutDuration,
		}),
	}
}

// RegisterRoutes registers authentication routes on the router.
func (ac *AuthController) RegisterRoutes(router gin.IRouter) {
	router.GET("/login", ac.LoginPage)
	router.POST("/login", ac.Login)
	router.POST("/logout", ac.Logout)
}

// Stop cleans up resources (rate limiter background goroutine).
func (ac *AuthController) Stop() {
	ac.rateLimiter.Stop()
}

// LoginPage renders the login form.
func (ac *AuthController) LoginPage(c *gin.Context) {
	if ac.sessionManager.IsAuthenticated(c.Request) {
		c.Redirect(http.StatusFound, "/")
		return
	}

	ac.renderLogin(c, http.StatusOK, gin.H{
		"Next":     sanitizeRedirectPath(c.Query("next")),
		"Error":    c.Query("error"),
		"Username": "",
	})
}

// Login handles the login form submission.
func (ac *AuthController) Login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	next := sanitizeRedirectPath(c.PostForm("next"))
	clientIP := c.ClientIP()

	data := gin.H{"Next": next, "Username": username}

	if allowed, retryAfter := ac.rateLimiter.Allow(clientIP, username); !allowed {
		c.Header("Retry-After", retryAfter.String())
		data["Error"] = msgTooManyAttempts
		data["RetryAfter"] = retryAfter.String()
		ac.renderLogin(c, http.StatusTooManyRequests, data)
		return
	}

	err := ac.service.Authenticate(c.Request.Context(), username, password)
	switch {
	case err == nil:
	case errors.Is(err, ErrCredentialsRequired):
		data["Error"] = msgMissingCredentials
		ac.renderLogin(c, http.StatusBadRequest, data)
		return
	case errors.Is(err, ErrInvalidCredentials):
		ac.rateLimiter.RecordFailure(clientIP, username)
		ac.audit(c, username, "login_failed", false)
		data["Error"] = msgInvalidCredentials
		ac.renderLogin(c, http.StatusUnauthorized, data)
		return
	default:
		log.Error().Err(err).Str("username", username).Msg("login lookup failed")
		data["Error"] = msgDatabaseError + err.Error()
		ac.renderLogin(c, http.StatusInternalServerError, data)
		return
	}

	ac.rateLimiter.RecordSuccess(clientIP, username)

	if err := ac.sessionManager.CreateSession(c.Request, username); err != nil {
		log.Error().Err(err).Msg("failed to create session")
		data["Error"] = msgLoginFailed
		ac.renderLogin(c, http.StatusInternalServerError, data)
		return
	}

	ac.audit(c, username, "login", true)
	log.Info().Str("username", username).Str("ip", clientIP).Msg("user logged in")
	c.Redirect(http.StatusFound, next)
}

// Logout destroys the session and redirects to login.
func (ac *AuthController) Logout(c *gin.Context) {
	username := ac.sessionManager.GetUsername(c.Request)
	if err := ac.sessionManager.DestroySession(c.Request); err != nil {
		log.Error().Err(err).Msg("failed to destroy session")
	}
	if username != "" {
		ac.audit(c, username, "logout", true)
	}
	c.Redirect(http.StatusFound, "/login")
}

func (ac *AuthController) audit(c *gin.Context, username, action string, success bool) {
	if ac.auditor == nil {
		return
	}
	ac.auditor.LogAuth(username, action, c.ClientIP(), c.Request.UserAgent(), success)
}

func (ac *AuthController) renderLogin(c *gin.Context, status int, data gin.H) {
	data["Title"] = "Login"
	data["Hint"] = ac.service.LoginHint()
	data["CSRFField"] = CSRFTokenField(c)
	ac.renderTemplate(c, status, "login.html", data)
}

// renderTemplate renders an auth template or falls back to JSON.
func (ac *AuthController) renderTemplate(c *gin.Context, status int, name string, data gin.H) {
	if ac.templates == nil {
		delete(data, "CSRFField")
		c.JSON(status, data)
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := ac.templates.ExecuteTemplate(c.Writer, name, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("failed to render template")
	}
}
