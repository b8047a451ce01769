package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// LedgerRepo persists the append-only XP ledger. There is no update method
// on purpose: entries are inserted on grants and deleted on reversal.
type LedgerRepo struct {
	q DBTX
}

func NewLedgerRepo(q DBTX) *LedgerRepo {
	return &LedgerRepo{q: q}
}

const ledgerColumns = `id, user_id, task_id, xp_gained, source, description, created_at`

func (r *LedgerRepo) Insert(ctx context.Context, e XPEntry) (string, error) {
	id := uuid.NewString()
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO xp_history (id, user_id, task_id, xp_gained, source, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, e.UserID, e.TaskID, e.XPGained, e.Source, e.Description, e.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("ledger insert: %w", err)
	}
	return id, nil
}

// LatestForTask returns the most recent entry for the task with the given
// source, or nil if none exists. Reversal relies on "most recent" to pick
// the right entry if duplicates ever slipped in.
func (r *LedgerRepo) LatestForTask(ctx context.Context, taskID, userID, source string) (*XPEntry, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+ledgerColumns+` FROM xp_history
		WHERE task_id = ? AND user_id = ? AND source = ?
		ORDER BY created_at DESC
		LIMIT 1
	`, taskID, userID, source)

	var e XPEntry
	if err := row.Scan(&e.ID, &e.UserID, &e.TaskID, &e.XPGained, &e.Source, &e.Description, &e.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("ledger latest: %w", err)
	}
	return &e, nil
}

func (r *LedgerRepo) ListByUser(ctx context.Context, userID string, limit int) ([]XPEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+ledgerColumns+` FROM xp_history
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("ledger list: %w", err)
	}
	defer rows.Close()

	var out []XPEntry
	for rows.Next() {
		var e XPEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.TaskID, &e.XPGained, &e.Source, &e.Description, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("ledger scan: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger rows: %w", err)
	}
	return out, nil
}

func (r *LedgerRepo) CountForTask(ctx context.Context, taskID, source string) (int, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM xp_history WHERE task_id = ? AND source = ?
	`, taskID, source)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("ledger count: %w", err)
	}
	return n, nil
}

func (r *LedgerRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM xp_history WHERE id = ?`, id); err != nil {
		return fmt.Errorf("ledger delete: %w", err)
	}
	return nil
}
