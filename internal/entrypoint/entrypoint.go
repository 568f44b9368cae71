package entrypoint

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore/internal/audit"
	"github.com/mrlokans/bookstore/internal/auth"
	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/database"
	auditdb "github.com/mrlokans/bookstore/internal/database/audit"
	"github.com/mrlokans/bookstore/internal/demo"
	http_controllers "github.com/mrlokans/bookstore/internal/http"
	"github.com/mrlokans/bookstore/internal/logging"
	"github.com/mrlokans/bookstore/internal/scheduler"
	"github.com/mrlokans/bookstore/internal/store"
	"github.com/mrlokans/bookstore/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	logger := logging.Component("server")
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	// SIGKILL cannot be caught, so only INT and TERM are handled
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Dur("timeout", timeout).Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server shutdown")
	}

	// Background workers stop after the last request has finished
	if onShutdown != nil {
		onShutdown(ctx)
	}

	logger.Info().Msg("server exiting")
}

// csrfKey turns the configured session secret into a 32 byte key.
// Hex secrets of the right length are used as is.
func csrfKey(secret string) []byte {
	if key, err := hex.DecodeString(secret); err == nil && len(key) == 32 {
		return key
	}
	sum := sha256.Sum256([]byte(secret))
	return sum[:]
}

func Run(cfg *config.Config, version string) {
	logging.Setup(cfg.Logging)
	logger := logging.Component("entrypoint")
	logger.Info().Str("version", version).Msg("starting bookstore console")

	db, err := store.Open(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("failed to open bookstore database")
	}

	if cfg.Demo.Enabled && cfg.Database.Driver == config.DriverSQLite {
		if err := demo.Seed(context.Background(), db); err != nil {
			logger.Fatal().Err(err).Msg("failed to seed demo database")
		}
	}

	records, err := store.New(db, cfg.Database.QueryTimeout)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize record store")
	}
	defer func() {
		if err := records.Close(); err != nil {
			logger.Error().Err(err).Msg("error closing bookstore database")
		}
	}()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := records.Ping(pingCtx); err != nil {
		logger.Warn().Err(err).Msg("bookstore database is not reachable yet")
	}
	cancelPing()

	stateDB, err := database.NewDatabase(cfg.State.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize state database")
	}
	defer func() {
		if err := stateDB.Close(); err != nil {
			logger.Error().Err(err).Msg("error closing state database")
		}
	}()

	auditService := audit.NewService(auditdb.NewRepository(stateDB.DB))
	archiver := audit.NewArchiver(cfg.Audit.ArchiveDir)
	if archiver.Enabled() {
		logger.Info().Str("dir", cfg.Audit.ArchiveDir).Msg("deleted rows will be archived")
	}

	sqlDB, err := stateDB.SQLDB()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to get SQL DB for sessions")
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize session manager")
	}

	secret := cfg.Auth.SessionSecret
	if secret == "" {
		secret, err = auth.GenerateSessionSecret()
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to generate session secret")
		}
		logger.Warn().Msg("generated session secret, set AUTH_SESSION_SECRET to keep forms valid across restarts")
	}

	authService := auth.NewService(records, cfg.Auth)
	authController := auth.NewAuthController(authService, sessionManager, auditService, cfg.UI.TemplatesPath, cfg.Auth)
	authMiddleware := auth.NewMiddleware(sessionManager)

	var demoMiddleware *demo.Middleware
	if cfg.Demo.Enabled {
		logger.Info().Msg("demo mode enabled, write operations will be blocked")
		demoMiddleware = demo.NewMiddleware(true)
	}

	healthChecks := map[string]http_controllers.Pinger{
		"bookstore": records,
		"state":     stateDB,
	}

	routerCfg := http_controllers.RouterConfig{
		Store:              records,
		AuditLog:           auditService,
		Archiver:           archiver,
		HealthChecks:       healthChecks,
		AuditRetentionDays: cfg.Audit.RetentionDays,
		AuthController:     authController,
		SessionManager:     sessionManager,
		AuthMiddleware:     authMiddleware,
		CSRFSecret:         csrfKey(secret),
		SecureCookies:      cfg.Auth.SecureCookies,
		DemoMiddleware:     demoMiddleware,
		TemplatesPath:      cfg.UI.TemplatesPath,
		StaticPath:         cfg.UI.StaticPath,
		Version:            version,
	}

	var taskClient *tasks.Client
	var cleanupScheduler *scheduler.AuditCleanupScheduler
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.State.Path, tasks.FromConfig(cfg.Tasks))
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize task queue")
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				logger.Error().Err(err).Msg("error closing task client")
			}
		}()

		taskClient.Register(tasks.NewCleanupAuditEventsQueue(auditService, auditService))

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		cleanupScheduler = scheduler.NewAuditCleanupScheduler(taskClient, cfg.Audit.CleanupSchedule, cfg.Audit.RetentionDays)
		if err := cleanupScheduler.Start(taskCtx); err != nil {
			logger.Error().Err(err).Str("schedule", cfg.Audit.CleanupSchedule).Msg("audit cleanup schedule disabled")
			cleanupScheduler = nil
		}

		routerCfg.TaskRunner = taskClient
		healthChecks["tasks"] = taskClient
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if cleanupScheduler != nil {
			cleanupScheduler.Stop()
		}
		if taskClient != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
		authController.Stop()
		auditService.Wait()
	}

	Serve(router, cfg, onShutdown)
}
