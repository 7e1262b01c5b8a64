// Package server initializes and runs the reference-data backend. It selects
// the storage backend from configuration, wires the domain service, and
// serves the HTTP API with graceful shutdown on OS signals.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mgallardo/freightdeck/internal/logging"
	"github.com/mgallardo/freightdeck/internal/server/config"
	"github.com/mgallardo/freightdeck/internal/server/httpapi"
	"github.com/mgallardo/freightdeck/internal/server/repositories/entities"
	"github.com/mgallardo/freightdeck/internal/server/service"
	"github.com/mgallardo/freightdeck/internal/server/storage"
)

type App struct {
	config *config.Config
	logger logging.Logger
	repo   entities.Repository
	svc    *service.Service
}

func NewApp(c *config.Config) (*App, error) {

	logger := logging.NewZap(logging.Config{Level: c.LogLevel, Format: c.LogFormat})

	ctx := context.Background()

	var repo entities.Repository
	if c.DatabaseDSN == "" {
		logger.Info(ctx, "no database configured, using in-memory store")
		repo = entities.NewMemory()
	} else {
		db, err := storage.Open(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		repo = entities.NewPostgresRepository(db)
	}

	if c.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	return &App{config: c, logger: logger, repo: repo, svc: service.New(repo, logger)}, nil
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

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	router := httpapi.New(app.svc, []byte(app.config.AuthSecret), app.logger)
	srv := &http.Server{Addr: app.config.Addr, Handler: router}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info(ctx, "listening", "addr", app.config.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
	}

	app.repo.Close()
}
