package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/betterimg/betterimg/internal/client/migrations"
	"github.com/pressly/goose/v3"
)

// InitDatabase opens the client's local sqlite database and brings the
// schema up to date. The database backs the local credential store and, in
// every mode, the persisted session marker.
//
// The sqlite driver must be registered by the importing binary
// (import _ "modernc.org/sqlite").
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "sql"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}
