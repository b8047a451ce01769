package storage

import (
	"context"
	"database/sql"
	"fmt"
)

func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			level INTEGER NOT NULL DEFAULT 1,
			xp INTEGER NOT NULL DEFAULT 0,
			avatar TEXT NOT NULL DEFAULT 'starter-warrior',
			tasks_completed INTEGER NOT NULL DEFAULT 0,
			streak INTEGER NOT NULL DEFAULT 0,
			active_realms INTEGER NOT NULL DEFAULT 0,
			last_active_date DATETIME,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS realms (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL,
			theme TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			total_tasks INTEGER NOT NULL DEFAULT 0,
			completed_tasks INTEGER NOT NULL DEFAULT 0,
			total_xp_earned INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,

			FOREIGN KEY(user_id) REFERENCES users(id)
		);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			realm_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			xp_reward INTEGER NOT NULL,
			due_date DATETIME,
			completed_at DATETIME,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,

			FOREIGN KEY(realm_id) REFERENCES realms(id),
			FOREIGN KEY(user_id) REFERENCES users(id)
		);`,
		// Append-only XP ledger; rows are inserted on grants and deleted on
		// reversal, never updated.
		`CREATE TABLE IF NOT EXISTS xp_history (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			task_id TEXT,
			xp_gained INTEGER NOT NULL,
			source TEXT NOT NULL,
			description TEXT NOT NULL,
			created_at DATETIME NOT NULL,

			FOREIGN KEY(user_id) REFERENCES users(id)
		);`,
		`CREATE TABLE IF NOT EXISTS badges (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			badge_type TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL,
			rarity TEXT NOT NULL DEFAULT 'common',
			progress INTEGER NOT NULL DEFAULT 0,
			target INTEGER NOT NULL,
			completed INTEGER NOT NULL DEFAULT 0,
			earned_at DATETIME,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,

			UNIQUE(user_id, badge_type),
			FOREIGN KEY(user_id) REFERENCES users(id)
		);`,
		`CREATE TABLE IF NOT EXISTS daily_quests (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			quest_type TEXT NOT NULL,
			target INTEGER NOT NULL,
			progress INTEGER NOT NULL DEFAULT 0,
			xp_reward INTEGER NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			is_custom INTEGER NOT NULL DEFAULT 0,
			expires_at DATETIME NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,

			FOREIGN KEY(user_id) REFERENCES users(id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_realms_user_id ON realms(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_realm_id ON tasks(realm_id);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_user_status_completed ON tasks(user_id, status, completed_at);`,
		`CREATE INDEX IF NOT EXISTS idx_xp_history_user_created ON xp_history(user_id, created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_xp_history_task_source ON xp_history(task_id, source, created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_badges_user_id ON badges(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_daily_quests_user_expires ON daily_quests(user_id, expires_at);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
