// Package server wires configuration, storage, services and transports
// together and runs the HTTP API and the gRPC health endpoint until the
// process is signalled.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sayedsafi2000/pixelsbee/internal/logging"
	"github.com/sayedsafi2000/pixelsbee/internal/server/config"
	"github.com/sayedsafi2000/pixelsbee/internal/server/httpapi"
	"github.com/sayedsafi2000/pixelsbee/internal/server/metrics"
	"github.com/sayedsafi2000/pixelsbee/internal/server/repositories/repomanager"
	"github.com/sayedsafi2000/pixelsbee/internal/server/services"

	gs "github.com/sayedsafi2000/pixelsbee/internal/server/grpc"
)

const (
	migrationTimeout = time.Minute
	shutdownTimeout  = 10 * time.Second
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	api      *httpapi.API
}

// OpenDB opens the pgx-backed pool bounded by DBMaxOpenConns and verifies
// the connection.
func OpenDB(ctx context.Context, c *config.Config) (*sql.DB, error) {
	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	db.SetMaxOpenConns(c.DBMaxOpenConns)
	db.SetMaxIdleConns(c.DBMaxOpenConns)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return db, nil
}

// Migrate applies the embedded schema migrations.
func Migrate(ctx context.Context, db *sql.DB, m repomanager.RepositoryManager) error {
	ctx, cancel := context.WithTimeout(ctx, migrationTimeout)
	defer cancel()
	if err := m.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("db migration error: %w", err)
	}
	return nil
}

func NewApp(c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)
	ctx := context.Background()

	db, err := OpenDB(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := Migrate(ctx, db, rm); err != nil {
		db.Close()
		return nil, err
	}

	api := httpapi.NewAPI(logger, metrics.New(), httpapi.Options{
		RequestTimeout: c.RequestTimeout,
		AuthRateLimit:  c.AuthRateLimit,
		AuthRateBurst:  c.AuthRateBurst,
	},
		services.NewAccountService(db, rm, c),
		services.NewCatalogService(db, rm),
		services.NewEntitlementService(db, rm),
		services.NewOrderService(db, rm),
		services.NewStatsService(db, rm),
		services.NewImageService(c),
	)

	return &App{config: c, logger: logger, db: db, api: api}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.db, 0)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	srv := &http.Server{
		Addr:              app.config.EndpointAddrHTTP,
		Handler:           app.api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(context.Background(), "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "http shutdown error", "error", err)
		}
	}()

	app.api.StartCleanup(ctx)

	app.logger.Info(ctx, "Starting HTTP server", "address", app.config.EndpointAddrHTTP)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "db close error", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
