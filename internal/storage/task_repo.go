package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type TaskRepo struct {
	q DBTX
}

func NewTaskRepo(q DBTX) *TaskRepo {
	return &TaskRepo{q: q}
}

const taskColumns = `id, realm_id, user_id, title, description, difficulty, status, xp_reward, due_date, completed_at, created_at`

type TaskInsert struct {
	RealmID     string
	UserID      string
	Title       string
	Description string
	Difficulty  string
	XPReward    int
	DueDate     *time.Time
}

func (r *TaskRepo) Insert(ctx context.Context, in TaskInsert) (string, error) {
	id := uuid.NewString()
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO tasks (id, realm_id, user_id, title, description, difficulty, status, xp_reward, due_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 'pending', ?, ?, ?)
	`, id, in.RealmID, in.UserID, in.Title, in.Description, in.Difficulty, in.XPReward, in.DueDate, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("task insert: %w", err)
	}
	return id, nil
}

// GetOwned returns the task only if it lives in realmID and belongs to userID.
func (r *TaskRepo) GetOwned(ctx context.Context, id, realmID, userID string) (*Task, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE id = ? AND realm_id = ? AND user_id = ?
	`, id, realmID, userID)
	return scanTaskRow(row)
}

func (r *TaskRepo) Get(ctx context.Context, id string) (*Task, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	return scanTaskRow(row)
}

func (r *TaskRepo) ListByRealm(ctx context.Context, realmID string) ([]Task, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE realm_id = ? ORDER BY created_at DESC
	`, realmID)
	if err != nil {
		return nil, fmt.Errorf("task list: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

func (r *TaskRepo) ListByUser(ctx context.Context, userID string) ([]Task, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE user_id = ? ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("task list by user: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// MarkCompleted flips a pending task to completed. The status guard makes
// concurrent completions of the same task mutually exclusive: only one
// caller sees an affected row.
func (r *TaskRepo) MarkCompleted(ctx context.Context, id string, completedAt time.Time) (bool, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE tasks SET status = 'completed', completed_at = ?
		WHERE id = ? AND status = 'pending'
	`, completedAt, id)
	if err != nil {
		return false, fmt.Errorf("task mark completed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("task mark completed rows: %w", err)
	}
	return n > 0, nil
}

// MarkPending is the reversal counterpart of MarkCompleted.
func (r *TaskRepo) MarkPending(ctx context.Context, id string) (bool, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE tasks SET status = 'pending', completed_at = NULL
		WHERE id = ? AND status = 'completed'
	`, id)
	if err != nil {
		return false, fmt.Errorf("task mark pending: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("task mark pending rows: %w", err)
	}
	return n > 0, nil
}

// CountCompletedBetween counts the user's completed tasks with completedAt in
// [from, to). The streak tracker and the daily-quest updater both derive
// calendar-day activity from this single query.
func (r *TaskRepo) CountCompletedBetween(ctx context.Context, userID string, from, to time.Time) (int, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM tasks
		WHERE user_id = ? AND status = 'completed' AND completed_at >= ? AND completed_at < ?
	`, userID, from, to)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("task count completed: %w", err)
	}
	return n, nil
}

func (r *TaskRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("task delete: %w", err)
	}
	return nil
}

func scanTaskRow(row *sql.Row) (*Task, error) {
	var t Task
	if err := row.Scan(&t.ID, &t.RealmID, &t.UserID, &t.Title, &t.Description, &t.Difficulty, &t.Status, &t.XPReward, &t.DueDate, &t.CompletedAt, &t.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("task get: %w", err)
	}
	return &t, nil
}

func collectTasks(rows *sql.Rows) ([]Task, error) {
	var out []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.RealmID, &t.UserID, &t.Title, &t.Description, &t.Difficulty, &t.Status, &t.XPReward, &t.DueDate, &t.CompletedAt, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("task scan: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("task rows: %w", err)
	}
	return out, nil
}
