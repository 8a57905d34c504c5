package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// SchemaVersion is written to the meta table after a successful migration.
const SchemaVersion = 2

func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS player (
			key TEXT PRIMARY KEY,
			score INTEGER NOT NULL DEFAULT 0,
			streak INTEGER NOT NULL DEFAULT 0,
			currency INTEGER NOT NULL DEFAULT 0,
			updated_at TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS activities (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			tier TEXT NOT NULL,
			task_name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			base_score INTEGER NOT NULL,
			final_score INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			streak INTEGER NOT NULL DEFAULT 0,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS templates (
			tier TEXT NOT NULL,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			base_score INTEGER NOT NULL,
			duration TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			builtin INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS hidden_templates (
			tier TEXT NOT NULL,
			name TEXT NOT NULL,
			PRIMARY KEY (tier, name)
		);`,
		`CREATE TABLE IF NOT EXISTS template_order (
			tier TEXT NOT NULL,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			PRIMARY KEY (tier, position)
		);`,
		`CREATE TABLE IF NOT EXISTS achievements (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS modifiers (
			kind TEXT PRIMARY KEY,
			owned INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_activities_position ON activities(position);`,
		`CREATE INDEX IF NOT EXISTS idx_templates_tier_position ON templates(tier, builtin, position);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	// Columns added after the first schema; existing databases get them here.
	alterStmts := []string{
		`ALTER TABLE templates ADD COLUMN duration TEXT NOT NULL DEFAULT '';`,
		`ALTER TABLE player ADD COLUMN updated_at TEXT;`,
	}
	for _, stmt := range alterStmts {
		_, err := db.ExecContext(ctx, stmt)
		if err != nil && !strings.Contains(err.Error(), "duplicate column") {
			return fmt.Errorf("migrate alter: %w", err)
		}
	}

	if _, err := db.ExecContext(ctx, `
		INSERT INTO meta (key, value) VALUES ('schema_version', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, fmt.Sprint(SchemaVersion)); err != nil {
		return fmt.Errorf("migrate meta: %w", err)
	}
	return nil
}
