package database

import (
	"fmt"
	"log"
)

type migration struct {
	name string
	sql  string
}

// Ordered schema migrations. Append only; applied migrations are tracked in
// the _migrations table by name.
var migrations = []migration{
	{
		name: "001_accounts",
		sql: `
			CREATE TABLE IF NOT EXISTS accounts (
				id            TEXT PRIMARY KEY,
				google_id     TEXT NOT NULL UNIQUE,
				email         TEXT NOT NULL,
				name          TEXT NOT NULL DEFAULT '',
				picture       TEXT NOT NULL DEFAULT '',
				access_token  TEXT NOT NULL DEFAULT '',
				refresh_token TEXT NOT NULL DEFAULT '',
				token_expiry  TIMESTAMP,
				created_at    TIMESTAMP NOT NULL,
				last_login    TIMESTAMP NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_accounts_email ON accounts(email);
		`,
	},
	{
		name: "002_prospects",
		sql: `
			CREATE TABLE IF NOT EXISTS prospects (
				id              TEXT PRIMARY KEY,
				name            TEXT NOT NULL DEFAULT '',
				email           TEXT NOT NULL DEFAULT '',
				company         TEXT NOT NULL DEFAULT '',
				phone           TEXT NOT NULL DEFAULT '',
				notes           TEXT NOT NULL DEFAULT '',
				created_at      TIMESTAMP NOT NULL,
				last_message_at TIMESTAMP NOT NULL
			);
		`,
	},
}

// RunMigrations executes all pending migrations in order.
func RunMigrations(db *DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS _migrations (
			name       TEXT PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	applied := make(map[string]bool)
	rows, err := db.Query(`SELECT name FROM _migrations`)
	if err != nil {
		return fmt.Errorf("reading applied migrations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("scanning migration row: %w", err)
		}
		applied[name] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reading applied migrations: %w", err)
	}

	for _, m := range migrations {
		if applied[m.name] {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %s: %w", m.name, err)
		}
		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %s: %w", m.name, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations (name) VALUES (?)`, m.name); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", m.name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", m.name, err)
		}
		log.Printf("[database] applied migration %s", m.name)
	}

	return nil
}
