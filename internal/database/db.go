package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// DB wraps the database connection
type DB struct {
	conn *sql.DB
	path string
}

// New creates a new database connection.
// Use ":memory:" as the path for an in-memory database (tests).
func New(dbPath string) (*DB, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// WAL mode for better concurrency between the HTTP handlers and the
	// background sync job
	conn, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)

	return &DB{
		conn: conn,
		path: dbPath,
	}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying sql.DB connection
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Begin starts a new transaction
func (db *DB) Begin() (*sql.Tx, error) {
	return db.conn.Begin()
}

// Migrate creates the schema if it does not exist yet. Statements are
// idempotent so the call is safe on every startup.
func (db *DB) Migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS assets (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			ticker      TEXT NOT NULL UNIQUE,
			short_name  TEXT NOT NULL,
			long_name   TEXT,
			kind        TEXT NOT NULL,
			sector      TEXT,
			subsector   TEXT,
			currency    TEXT NOT NULL DEFAULT 'BRL',
			logo_url    TEXT,
			active      INTEGER NOT NULL DEFAULT 1,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_assets_active ON assets(active)`,
		`CREATE TABLE IF NOT EXISTS quotes (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			asset_id   INTEGER NOT NULL REFERENCES assets(id),
			ts         INTEGER NOT NULL,
			open       REAL,
			high       REAL,
			low        REAL,
			close      REAL NOT NULL,
			volume     INTEGER,
			created_at TEXT NOT NULL,
			UNIQUE(asset_id, ts)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_quotes_asset_ts ON quotes(asset_id, ts)`,
		`CREATE TABLE IF NOT EXISTS dividends (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			asset_id     INTEGER NOT NULL REFERENCES assets(id),
			kind         TEXT NOT NULL,
			amount       REAL NOT NULL,
			record_date  INTEGER,
			ex_date      INTEGER NOT NULL,
			payment_date INTEGER,
			created_at   TEXT NOT NULL,
			UNIQUE(asset_id, ex_date, kind)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_dividends_asset_ex ON dividends(asset_id, ex_date)`,
		`CREATE TABLE IF NOT EXISTS wallets (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			name        TEXT NOT NULL,
			description TEXT,
			total_value REAL NOT NULL DEFAULT 0,
			active      INTEGER NOT NULL DEFAULT 1,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS wallet_assets (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			wallet_id      INTEGER NOT NULL REFERENCES wallets(id),
			asset_id       INTEGER NOT NULL REFERENCES assets(id),
			quantity       REAL NOT NULL,
			avg_price      REAL NOT NULL,
			invested_value REAL NOT NULL,
			current_value  REAL NOT NULL DEFAULT 0,
			weight_pct     REAL NOT NULL DEFAULT 0,
			added_at       TEXT NOT NULL,
			updated_at     TEXT NOT NULL,
			UNIQUE(wallet_id, asset_id)
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			wallet_id   INTEGER NOT NULL REFERENCES wallets(id),
			asset_id    INTEGER NOT NULL REFERENCES assets(id),
			kind        TEXT NOT NULL,
			quantity    REAL NOT NULL,
			price       REAL NOT NULL,
			total_value REAL NOT NULL,
			fee         REAL NOT NULL DEFAULT 0,
			executed_at INTEGER NOT NULL,
			notes       TEXT,
			created_at  TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_wallet ON transactions(wallet_id, executed_at)`,
		`CREATE TABLE IF NOT EXISTS client_cache (
			provider   TEXT NOT NULL,
			cache_key  TEXT NOT NULL,
			payload    BLOB NOT NULL,
			expires_at INTEGER NOT NULL,
			PRIMARY KEY(provider, cache_key)
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}
