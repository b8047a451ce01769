package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type RealmRepo struct {
	q DBTX
}

func NewRealmRepo(q DBTX) *RealmRepo {
	return &RealmRepo{q: q}
}

const realmColumns = `id, user_id, name, description, theme, difficulty, total_tasks, completed_tasks, total_xp_earned, created_at`

type RealmInsert struct {
	UserID      string
	Name        string
	Description string
	Theme       string
	Difficulty  string
}

func (r *RealmRepo) Insert(ctx context.Context, in RealmInsert) (string, error) {
	id := uuid.NewString()
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO realms (id, user_id, name, description, theme, difficulty, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, in.UserID, in.Name, in.Description, in.Theme, in.Difficulty, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("realm insert: %w", err)
	}
	return id, nil
}

// GetOwned returns the realm only if it belongs to userID.
func (r *RealmRepo) GetOwned(ctx context.Context, id, userID string) (*Realm, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+realmColumns+` FROM realms WHERE id = ? AND user_id = ?`, id, userID)
	return scanRealmRow(row)
}

func (r *RealmRepo) ListByUser(ctx context.Context, userID string) ([]Realm, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+realmColumns+` FROM realms WHERE user_id = ? ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("realm list: %w", err)
	}
	defer rows.Close()

	var out []Realm
	for rows.Next() {
		var rm Realm
		if err := rows.Scan(&rm.ID, &rm.UserID, &rm.Name, &rm.Description, &rm.Theme, &rm.Difficulty, &rm.TotalTasks, &rm.CompletedTasks, &rm.TotalXPEarned, &rm.CreatedAt); err != nil {
			return nil, fmt.Errorf("realm scan: %w", err)
		}
		out = append(out, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("realm rows: %w", err)
	}
	return out, nil
}

// ApplyCompletion adjusts the aggregate counters kept on the realm. Values
// are clamped at zero so a reversal can never drive an aggregate negative.
func (r *RealmRepo) ApplyCompletion(ctx context.Context, id string, taskDelta, xpDelta int) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE realms
		SET completed_tasks = MAX(0, completed_tasks + ?),
			total_xp_earned = MAX(0, total_xp_earned + ?)
		WHERE id = ?
	`, taskDelta, xpDelta, id)
	if err != nil {
		return fmt.Errorf("realm apply completion: %w", err)
	}
	return nil
}

func (r *RealmRepo) AdjustTotalTasks(ctx context.Context, id string, delta int) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE realms SET total_tasks = MAX(0, total_tasks + ?) WHERE id = ?
	`, delta, id)
	if err != nil {
		return fmt.Errorf("realm adjust total tasks: %w", err)
	}
	return nil
}

func (r *RealmRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM tasks WHERE realm_id = ?`, id); err != nil {
		return fmt.Errorf("realm delete tasks: %w", err)
	}
	if _, err := r.q.ExecContext(ctx, `DELETE FROM realms WHERE id = ?`, id); err != nil {
		return fmt.Errorf("realm delete: %w", err)
	}
	return nil
}

func scanRealmRow(row *sql.Row) (*Realm, error) {
	var rm Realm
	if err := row.Scan(&rm.ID, &rm.UserID, &rm.Name, &rm.Description, &rm.Theme, &rm.Difficulty, &rm.TotalTasks, &rm.CompletedTasks, &rm.TotalXPEarned, &rm.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("realm get: %w", err)
	}
	return &rm, nil
}
