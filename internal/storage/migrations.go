package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS transactions (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					account_id TEXT,
					timestamp DATETIME NOT NULL,
					description TEXT NOT NULL,
					merchant_name TEXT,
					category TEXT,
					mcc INTEGER DEFAULT 0,
					amount INTEGER NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_transactions_user_time ON transactions(user_id, timestamp)`,

				`CREATE TABLE IF NOT EXISTS user_preferences (
					user_id TEXT PRIMARY KEY,
					timezone TEXT,
					daily_budget INTEGER DEFAULT 0,
					tone TEXT,
					quiet_start TEXT,
					quiet_end TEXT,
					max_notifications_per_day INTEGER DEFAULT 1,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS goals (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					tag TEXT NOT NULL,
					focus TEXT,
					active INTEGER DEFAULT 1,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_goals_user ON goals(user_id, active)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Breakthrough registry with exclusive-insert key",
		Up: func(tx *sql.Tx) error {
			// The UNIQUE constraint is what makes EnsureBreakthrough an
			// atomic insert-if-absent.
			queries := []string{
				`CREATE TABLE IF NOT EXISTS user_breakthroughs (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					user_id TEXT NOT NULL,
					breakthrough_key TEXT NOT NULL,
					occurred_at DATETIME NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					UNIQUE(user_id, breakthrough_key)
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Notification history and accepted targets",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS notifications (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					insight_id TEXT NOT NULL,
					dedupe_key TEXT NOT NULL,
					evidence_signature TEXT,
					status TEXT NOT NULL,
					sent_at DATETIME NOT NULL,
					payload TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_notifications_user_sent ON notifications(user_id, sent_at)`,
				`CREATE INDEX idx_notifications_dedupe ON notifications(user_id, insight_id, dedupe_key)`,

				`CREATE TABLE IF NOT EXISTS targets (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					focus TEXT NOT NULL,
					period TEXT NOT NULL,
					amount INTEGER NOT NULL,
					accepted_at DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_targets_user ON targets(user_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
}

// Migrate applies any pending migrations to bring the schema up to date.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion); err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	if currentVersion >= ExpectedSchemaVersion {
		slog.Debug("Database schema up to date", "version", currentVersion)
		return nil
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		slog.Info("Applying migration",
			"version", migration.Version,
			"description", migration.Description)

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration transaction: %w", err)
		}

		if err := migration.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to set schema version %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	slog.Info("Database migrations complete", "version", ExpectedSchemaVersion)
	return nil
}
