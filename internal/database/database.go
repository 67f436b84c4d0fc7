package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/alexivanou/communes-api/internal/config"
	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver for database/sql
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

// SQLiteDriver is the sqlite3 driver with the functions the repositories rely on
const SQLiteDriver = "sqlite3_communes"

func init() {
	sql.Register(SQLiteDriver, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			// Built-in LOWER only folds ASCII, which misses É, Î and the like.
			return conn.RegisterFunc("unicode_lower", unicodeLower, true)
		},
	})
}

func unicodeLower(v any) any {
	switch s := v.(type) {
	case string:
		return strings.ToLower(s)
	case []byte:
		return strings.ToLower(string(s))
	default:
		return v
	}
}

// Connect creates a database connection based on configuration using sqlx
func Connect(ctx context.Context, cfg config.DBConfig) (*sqlx.DB, error) {
	driverName := "pgx"
	dsn := cfg.DSN()
	if cfg.IsMemory() {
		driverName = SQLiteDriver
		// Foreign keys are a per-connection setting in SQLite; cascades depend on them.
		dsn += "&_foreign_keys=on"
	}

	db, err := sqlx.ConnectContext(ctx, driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.IsMemory() {
		return db, nil
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}
