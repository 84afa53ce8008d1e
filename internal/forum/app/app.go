package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/shelfside/bookforum/internal/forum/http"
	"github.com/shelfside/bookforum/internal/forum/service"
	"github.com/shelfside/bookforum/internal/forum/store"
	"github.com/shelfside/bookforum/internal/forum/store/drivers/sqlite"
	"github.com/shelfside/bookforum/pkg/cryptox"
	"github.com/shelfside/bookforum/pkg/jwtx"
	"github.com/shelfside/bookforum/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application encapsulates the forum service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db   store.Store
	keys *jwtx.Keys

	credentialService   *service.CredentialService
	registerService     *service.RegisterService
	loginService        *service.LoginService
	inviteService       *service.InviteService
	postService         *service.PostService
	communityService    *service.CommunityService
	followService       *service.FollowService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "bookforum",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	// Session keys are in-memory only; a restart invalidates sessions.
	keys, err := jwtx.NewKeys()
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize session keys: %w", err)
	}
	app.keys = keys

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("forum service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down forum service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("forum service stopped")
	return nil
}

func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initServices() {
	app.credentialService = &service.CredentialService{
		Issuer: app.cfg.Issuer,
	}
	app.registerService = &service.RegisterService{
		Store:       app.db,
		Credentials: app.credentialService,
	}
	app.loginService = &service.LoginService{
		Store:        app.db,
		Credentials:  app.credentialService,
		Keys:         app.keys,
		Issuer:       app.cfg.Issuer,
		ChallengeTTL: app.cfg.ChallengeTTL,
		SessionTTL:   app.cfg.SessionTTL,
	}
	app.inviteService = &service.InviteService{Store: app.db}
	app.postService = &service.PostService{Store: app.db}
	app.communityService = &service.CommunityService{Store: app.db}
	app.followService = &service.FollowService{Store: app.db}

	app.housekeepingService = &service.HousekeepingService{
		Store:    app.db,
		Interval: app.cfg.HousekeepingInterval,
		Logger:   app.logger,
	}
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.keys, BuildVersion, app.db, app.logger)

	router.RegisterService = app.registerService
	router.LoginService = app.loginService
	router.InviteService = app.inviteService
	router.PostService = app.postService
	router.CommunityService = app.communityService
	router.FollowService = app.followService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
