// Package cli is the interactive admin console: a small REPL over the
// console services. All rendering happens here; business rules live in the
// services layer and, ultimately, in the authoritative store.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"io"
	"os"

	"github.com/dmitrijs2005/owncent-admin/internal/console/client"
	"github.com/dmitrijs2005/owncent-admin/internal/console/config"
	"github.com/dmitrijs2005/owncent-admin/internal/console/localstore"
	"github.com/dmitrijs2005/owncent-admin/internal/console/services"
	"github.com/dmitrijs2005/owncent-admin/internal/console/state"
	"github.com/dmitrijs2005/owncent-admin/internal/console/tokens"
	"github.com/dmitrijs2005/owncent-admin/internal/logging"
)

type App struct {
	config  *config.Config
	console *services.Console
	db      *sql.DB
	log     logging.Logger
	reader  *bufio.Reader
	out     io.Writer
}

func NewApp(cfg *config.Config, log logging.Logger) (*App, error) {
	ctx := context.Background()

	db, err := localstore.InitDatabase(ctx, cfg.LocalDBPath)
	if err != nil {
		log.Error(ctx, "initializing local database failed", "path", cfg.LocalDBPath, "error", err)
		return nil, err
	}

	ts := tokens.NewStore(localstore.NewSQLiteRepository(db))
	apiClient := client.NewHTTPClient(cfg.EndpointURL, cfg.TenantID, ts, log)
	console := services.New(apiClient, ts, state.New(), log)

	return &App{
		config:  cfg,
		console: console,
		db:      db,
		log:     log,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}, nil
}

func (a *App) Close() error {
	return a.db.Close()
}

func (a *App) isLoggedIn() bool {
	_, ok := a.console.State().Identity()
	return ok
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()

	// Pick up a surviving session from the persisted refresh credential.
	if err := a.console.LoadSession(ctx); err != nil {
		a.log.Debug(ctx, "no session restored", "error", err)
	}

	a.Root(ctx)
}
