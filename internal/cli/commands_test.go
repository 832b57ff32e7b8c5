package cli

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/subkeeper/internal/cache"
	"github.com/dmitrijs2005/subkeeper/internal/config"
	"github.com/dmitrijs2005/subkeeper/internal/engine"
	"github.com/dmitrijs2005/subkeeper/internal/logging"
	"github.com/dmitrijs2005/subkeeper/internal/mode"
	"github.com/dmitrijs2005/subkeeper/internal/purchases"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupApp(t *testing.T) (*App, *[]string) {
	t.Helper()
	ctx := context.Background()

	db, err := cache.InitDatabase(ctx, ":memory:")
	require.NoError(t, err)

	log := logging.NewNopLogger()
	store := purchases.NewInMemoryClient()
	eng := engine.New(cache.NewSQLiteRepository(db, log), store, log)
	require.NoError(t, eng.Configure(ctx, mode.Local("u1")))

	app := &App{config: &config.Config{Mode: "local"}, engine: eng, store: store, db: db, log: log}
	t.Cleanup(app.closeAll)

	var lines []string
	old := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, fmt.Sprintln(a...))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = old })

	return app, &lines
}

func output(lines *[]string) string { return strings.Join(*lines, "") }

func TestCommands_PurchaseAndEntitled(t *testing.T) {
	app, lines := setupApp(t)
	ctx := context.Background()

	app.purchase(ctx, []string{"pro.monthly"})
	assert.Contains(t, output(lines), "Purchased: pro.monthly")

	app.entitled([]string{"pro.monthly"})
	assert.Contains(t, output(lines), "true")
}

func TestCommands_RevokeFlowsThroughUpdateStream(t *testing.T) {
	app, _ := setupApp(t)
	ctx := context.Background()

	app.purchase(ctx, []string{"pro.monthly"})
	require.True(t, app.engine.IsEntitled("pro.monthly"))

	require.Eventually(t, func() bool {
		app.revoke([]string{"pro.monthly"})
		return !app.engine.IsEntitled("pro.monthly")
	}, time.Second, 5*time.Millisecond)
}

func TestCommands_InfoPrintsIdentity(t *testing.T) {
	app, lines := setupApp(t)

	app.info(context.Background())
	assert.Contains(t, output(lines), "App user id: u1")
}

func TestCommands_UsageErrors(t *testing.T) {
	app, lines := setupApp(t)
	ctx := context.Background()

	app.purchase(ctx, nil)
	app.entitled(nil)
	app.revoke([]string{"a", "b"})

	out := output(lines)
	assert.Contains(t, out, "Usage: purchase <product>")
	assert.Contains(t, out, "Usage: entitled <id>")
	assert.Contains(t, out, "Usage: revoke <product>")
}
