package http

import (
	"html/template"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iancoleman/strcase"

	"github.com/mrlokans/bookstore/internal/auth"
)

// templateFuncs are available to every page template.
var templateFuncs = template.FuncMap{
	"add": func(a, b int) int {
		return a + b
	},
	"subtract": func(a, b int) int {
		return a - b
	},
	"snake": strcase.ToSnake,
	"formatTime": func(t time.Time) string {
		return t.Local().Format("2006-01-02 15:04:05")
	},
}

// LoadTemplates parses the page templates in dir. Templates in
// subdirectories (auth/) are loaded by their own controllers.
func LoadTemplates(dir string) (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseGlob(filepath.Join(dir, "*.html"))
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	// Session runs after CSRF so session context isn't overwritten by CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	}

	// Inject auth data for templates
	router.Use(AuthContextMiddleware())

	if cfg.DemoMiddleware != nil && cfg.DemoMiddleware.IsEnabled() {
		router.Use(cfg.DemoMiddleware.Handler())
	}

	if cfg.TemplatesPath != "" {
		router.SetHTMLTemplate(template.Must(LoadTemplates(cfg.TemplatesPath)))
	}
	if cfg.StaticPath != "" {
		router.Static("/static", cfg.StaticPath)
	}

	if cfg.AuthController != nil {
		cfg.AuthController.RegisterRoutes(router)
	}

	health := NewHealthController(cfg.HealthChecks, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	ops := &recordOps{
		store:    cfg.Store,
		auditLog: cfg.AuditLog,
		archiver: cfg.Archiver,
	}

	// UI routes
	ui := NewUIController(ops)
	router.GET("/", ui.Dashboard)
	router.GET("/tables/:table", ui.TablePage)
	router.GET("/tables/:table/new", ui.NewRecordPage)
	router.POST("/tables/:table", ui.CreateRecord)
	router.GET("/tables/:table/edit", ui.EditRecordPage)
	router.POST("/tables/:table/rows/:id", ui.UpdateRecord)
	router.GET("/tables/:table/delete", ui.DeleteRecordPage)
	router.POST("/tables/:table/rows/:id/delete", ui.DeleteRecord)

	// Records API
	records := NewRecordsAPIController(ops)
	router.GET("/api/tables", records.ListTables)
	router.GET("/api/tables/:table/columns", records.GetColumns)
	router.GET("/api/tables/:table/rows", records.ListRows)
	router.GET("/api/tables/:table/rows/:id", records.GetRow)
	router.POST("/api/tables/:table/rows", records.CreateRow)
	router.PUT("/api/tables/:table/rows/:id", records.UpdateRow)
	router.DELETE("/api/tables/:table/rows/:id", records.DeleteRow)
	router.GET("/api/tables/:table/options/:column", records.GetOptions)

	if cfg.AuditLog != nil {
		auditController := NewAuditController(cfg.AuditLog)
		router.GET("/audit", auditController.AuditLogPage)
		router.GET("/audit/:table/:id", auditController.RecordHistoryPage)
		router.GET("/api/audit", auditController.GetAuditEvents)
		router.GET("/api/audit/:table/:id", auditController.GetRecordHistory)
	}

	if cfg.TaskRunner != nil {
		tasksController := NewTasksController(cfg.TaskRunner, cfg.AuditRetentionDays)
		router.GET("/api/tasks/types", tasksController.ListTaskTypes)
		router.GET("/api/tasks/:id", tasksController.GetTaskStatus)
		router.POST("/api/tasks/:type/run", tasksController.RunTask)
	}

	// Demo mode status endpoint (always available)
	demoController := NewDemoController(cfg.DemoMiddleware)
	router.GET("/api/demo/status", demoController.GetStatus)

	return router
}
