// Package cli implements the interactive subkeeper shell: a small REPL for
// inspecting and exercising the entitlement engine from a terminal.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/subkeeper/internal/cache"
	"github.com/dmitrijs2005/subkeeper/internal/config"
	"github.com/dmitrijs2005/subkeeper/internal/engine"
	"github.com/dmitrijs2005/subkeeper/internal/logging"
	"github.com/dmitrijs2005/subkeeper/internal/mode"
	"github.com/dmitrijs2005/subkeeper/internal/purchases"

	_ "modernc.org/sqlite"
)

type App struct {
	config *config.Config
	engine *engine.Engine
	store  *purchases.InMemoryClient
	db     *sql.DB
	log    logging.Logger
}

// NewApp wires config, snapshot cache, store client and engine together and
// configures the engine according to cfg.Mode.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	db, err := cache.InitDatabase(ctx, cfg.CacheDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache database: %w", err)
	}

	store := purchases.NewInMemoryClient()
	eng := engine.New(cache.NewSQLiteRepository(db, log), store, log,
		engine.WithRequestTimeout(cfg.RequestTimeout),
		engine.WithRefreshInterval(cfg.RefreshInterval),
	)

	var m mode.OperatingMode
	switch cfg.Mode {
	case "remote":
		m = mode.Remote(cfg.Endpoint, cfg.APIKey, cfg.AppUserID, cfg.CatalogID)
	default:
		m = mode.Local(cfg.AppUserID)
	}
	if err := eng.Configure(ctx, m); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{config: cfg, engine: eng, store: store, db: db, log: log}, nil
}

// Run starts the REPL and blocks until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.closeAll()
	a.repl(ctx)
}

func (a *App) closeAll() {
	_ = a.engine.Close()
	_ = a.db.Close()
}
