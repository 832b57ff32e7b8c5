package cache

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/subkeeper/internal/cache/migrations"
	"github.com/pressly/goose/v3"
)

// RunMigrations applies the embedded snapshot-cache schema to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens the sqlite database at dsn and brings its schema up to
// date. The caller owns the returned handle and is responsible for closing
// it.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
