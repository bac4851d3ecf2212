// Package server wires configuration, storage, mail delivery and the HTTP API
// into a runnable application and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/konasal/konasal-backend/internal/logging"
	"github.com/konasal/konasal-backend/internal/server/config"
	"github.com/konasal/konasal-backend/internal/server/httpapi"
	"github.com/konasal/konasal-backend/internal/server/mailer"
	"github.com/konasal/konasal-backend/internal/server/repositories/repomanager"
	"github.com/konasal/konasal-backend/internal/server/services"
	"github.com/sethvargo/go-retry"
)

const mailQueueSize = 64

// Seams for tests.
var (
	openDB               = sql.Open
	newRepositoryManager = repomanager.NewPostgresRepositoryManager
	newMailer            = mailer.New
	pingBackoff          = func() retry.Backoff {
		return retry.WithMaxRetries(5, retry.NewFibonacci(time.Second))
	}
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	mailer      mailer.Mailer
	notifier    *mailer.Notifier
	userService *services.UserService
	httpServer  *httpapi.HTTPServer
}

// NewApp connects to the database, applies migrations and builds every
// service. The returned App owns the connection until Close or Run returns.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	db, err := openDB("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := waitForDB(ctx, db, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := newRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	m, err := newMailer(c, logger.With("module", "mailer"))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("mailer init error: %w", err)
	}
	n := mailer.NewNotifier(m, logger.With("module", "notifier"), mailQueueSize)

	us := services.NewUserService(db, rm, c, m, n, logger.With("module", "users"))
	ls := services.NewLeadService(db, rm, c, logger.With("module", "leads"))
	fs := services.NewFormService(db, rm)

	gin.SetMode(gin.ReleaseMode)
	hs := httpapi.NewHTTPServer(c.EndpointAddrHTTP, logger, us, ls, fs, c.AllowedOrigins)

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		mailer:      m,
		notifier:    n,
		userService: us,
		httpServer:  hs,
	}, nil
}

// waitForDB pings until the database answers, so the server can start
// alongside its database container.
func waitForDB(ctx context.Context, db *sql.DB, logger logging.Logger) error {
	return retry.Do(ctx, pingBackoff(), func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			logger.Warn(ctx, "database not ready", "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
}

// Users exposes the user service for tooling such as admin seeding.
func (app *App) Users() *services.UserService {
	return app.userService
}

// Close releases the mailer and the database connection.
func (app *App) Close() error {
	return errors.Join(app.mailer.Close(), app.db.Close())
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// Run serves HTTP and delivers queued mail until ctx is cancelled or a
// termination signal arrives, then closes the App.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup
	var serveErr error

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.notifier.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.httpServer.Run(ctx); err != nil {
			app.logger.Error(ctx, "http server failed", "error", err)
			serveErr = err
			cancelFunc()
		}
	}()

	wg.Wait()

	app.logger.Info(context.Background(), "App stopped")

	return errors.Join(serveErr, app.Close())
}
