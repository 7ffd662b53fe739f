// Package server initializes and runs the authentication daemon. It wires
// the credential repository, the cache, the verification service and the
// administrative request API, and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/minauth/internal/cryptox"
	"github.com/dmitrijs2005/minauth/internal/logging"
	"github.com/dmitrijs2005/minauth/internal/server/auth"
	"github.com/dmitrijs2005/minauth/internal/server/cache"
	"github.com/dmitrijs2005/minauth/internal/server/config"
	"github.com/dmitrijs2005/minauth/internal/server/httpapi"
	"github.com/dmitrijs2005/minauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/minauth/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	api    *httpapi.Server
}

func NewApp(c *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := m.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	digest, err := cryptox.NewDigest(c.DigestAlgorithm)
	if err != nil {
		return nil, err
	}

	var credCache cache.Cache
	if c.RedisAddr != "" {
		credCache = cache.NewRedisCache(c.RedisAddr)
	} else {
		credCache = cache.NewMemoryCache()
	}

	authenticator := auth.NewAuthenticator(m.Credentials(db), credCache, digest,
		c.PasswordSecret, c.CacheTTL, logger)
	requestService := services.NewRequestService(db)

	api := httpapi.NewServer(authenticator, requestService,
		[]byte(c.SecretKey), c.TokenValidityDuration, logger)

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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	srv := &http.Server{
		Addr:    app.config.EndpointAddrHTTP,
		Handler: app.api.Routes(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "listening", "addr", app.config.EndpointAddrHTTP)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
