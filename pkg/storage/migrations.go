package storage

import (
	"database/sql"
	"fmt"
)

var migrations = []string{
	// Migration 1: Initial schema
	`CREATE TABLE IF NOT EXISTS categories (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		name        TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS items (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		name         TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		model_number TEXT NOT NULL DEFAULT '',
		category_id  INTEGER REFERENCES categories(id) ON DELETE SET NULL,
		quantity     INTEGER NOT NULL DEFAULT 0 CHECK(quantity >= 0),
		created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_items_model_number ON items(model_number);
	CREATE INDEX IF NOT EXISTS idx_items_quantity ON items(quantity);

	CREATE TABLE IF NOT EXISTS users (
		id                   INTEGER PRIMARY KEY AUTOINCREMENT,
		email                TEXT NOT NULL UNIQUE,
		notification_enabled INTEGER NOT NULL DEFAULT 1,
		notification_email   TEXT NOT NULL DEFAULT '',
		phone_number         TEXT NOT NULL DEFAULT '',
		alert_threshold      INTEGER NOT NULL DEFAULT 5 CHECK(alert_threshold >= 0),
		created_at           DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS low_stock_alerts (
		id                INTEGER PRIMARY KEY AUTOINCREMENT,
		item_id           INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
		user_id           INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		quantity_at_alert INTEGER NOT NULL,
		channel           TEXT NOT NULL CHECK(channel IN ('EMAIL', 'WHATSAPP', 'BOTH')),
		is_resolved       INTEGER NOT NULL DEFAULT 0,
		created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		last_sent_at      DATETIME,
		next_alert_at     DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_alerts_item_user ON low_stock_alerts(item_id, user_id);
	CREATE INDEX IF NOT EXISTS idx_alerts_user ON low_stock_alerts(user_id);
	CREATE INDEX IF NOT EXISTS idx_alerts_resolved ON low_stock_alerts(is_resolved);

	CREATE TABLE IF NOT EXISTS bills (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		number     TEXT NOT NULL UNIQUE,
		type       TEXT NOT NULL CHECK(type IN ('buy', 'sell')),
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS inventory_transactions (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		bill_id       INTEGER NOT NULL REFERENCES bills(id) ON DELETE CASCADE,
		item_id       INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
		type          TEXT NOT NULL CHECK(type IN ('buy', 'sell')),
		quantity      INTEGER NOT NULL CHECK(quantity > 0),
		buying_price  REAL NOT NULL DEFAULT 0.0,
		selling_price REAL NOT NULL DEFAULT 0.0,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_item ON inventory_transactions(item_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_bill ON inventory_transactions(bill_id);

	CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`,
}

// runMigrations applies pending schema migrations.
func runMigrations(db *sql.DB) error {
	// Ensure migration tracking table exists
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("create migration table: %w", err)
	}

	var currentVersion int
	row := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("check migration version: %w", err)
	}

	for i := currentVersion; i < len(migrations); i++ {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", i+1, err)
		}

		if _, err := tx.Exec(migrations[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("run migration %d: %w", i+1, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", i+1); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", i+1, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", i+1, err)
		}
	}

	return nil
}
