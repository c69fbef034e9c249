// Package server wires the authoritative store together: configuration,
// database and migrations, the domain services, and the HTTP API with
// graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/owncent-admin/internal/logging"
	"github.com/dmitrijs2005/owncent-admin/internal/server/config"
	"github.com/dmitrijs2005/owncent-admin/internal/server/httpapi"
	"github.com/dmitrijs2005/owncent-admin/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/owncent-admin/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *http.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	// The pgx database/sql driver is registered by the repomanager import.
	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	sessions := services.NewSessionService(db, rm, cfg, logger)
	stepup := services.NewStepUpService(db, rm, cfg)
	audit := services.NewAuditRecorder(db, rm, logger)
	impersonation := services.NewImpersonationService(db, rm, cfg, stepup, audit)
	admin := services.NewAdminService(db, rm, cfg, stepup, audit, logger)
	backups := services.NewBackupService(db, rm, cfg, stepup, audit, logger)
	monitoring := services.NewMonitoringService(db, rm, logger)

	api := httpapi.NewServer(cfg, db, httpapi.Services{
		Sessions:      sessions,
		StepUp:        stepup,
		Impersonation: impersonation,
		Admin:         admin,
		Backups:       backups,
		Monitoring:    monitoring,
		Audit:         audit,
	}, logger)

	srv := &http.Server{
		Addr:         cfg.EndpointAddr,
		Handler:      api.Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &App{config: cfg, logger: logger, db: db, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
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

	app.logger.Info(ctx, "starting authoritative store", "addr", app.server.Addr)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.logger.Error(ctx, "http server failed", "error", err)
			cancelFunc()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := app.server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(ctx, "shutdown failed", "error", err)
	}
	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close failed", "error", err)
	}
	app.logger.Info(ctx, "server stopped")
}
