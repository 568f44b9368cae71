package http

import (
	"github.com/mrlokans/bookstore/internal/audit"
	"github.com/mrlokans/bookstore/internal/auth"
	"github.com/mrlokans/bookstore/internal/demo"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Bookstore tables
	Store RecordStore

	// Audit trail (optional)
	AuditLog AuditLog
	Archiver *audit.Archiver

	// Health probes, keyed by check name
	HealthChecks map[string]Pinger

	// Task queue (optional)
	TaskRunner         TaskRunner
	AuditRetentionDays int

	// Authentication (optional, all or nothing)
	AuthController *auth.AuthController
	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware
	CSRFSecret     []byte
	SecureCookies  bool

	// Demo mode
	DemoMiddleware *demo.Middleware

	// UI paths
	TemplatesPath string
	StaticPath    string

	// Application info
	Version string
}
