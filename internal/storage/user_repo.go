package storage

import (
	"context"
	"database/sql"
	"fmt"
)

type UserRepo struct {
	q DBTX
}

func NewUserRepo(q DBTX) *UserRepo {
	return &UserRepo{q: q}
}

const userColumns = `id, username, level, xp, avatar, tasks_completed, streak, active_realms, last_active_date, created_at`

func (r *UserRepo) Get(ctx context.Context, id string) (*User, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.Level, &u.XP, &u.Avatar, &u.TasksCompleted, &u.Streak, &u.ActiveRealms, &u.LastActiveDate, &u.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("user get: %w", err)
	}
	return &u, nil
}

// GetOrCreate provisions the user row on first sight. Identity is issued by
// the excluded auth collaborator; we only mirror it.
func (r *UserRepo) GetOrCreate(ctx context.Context, id string) (*User, error) {
	u, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if u != nil {
		return u, nil
	}

	if _, err := r.q.ExecContext(ctx, `INSERT INTO users (id, username) VALUES (?, ?)`, id, id); err != nil {
		return nil, fmt.Errorf("user insert: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *UserRepo) Update(ctx context.Context, u *User) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE users
		SET level = ?, xp = ?, avatar = ?, tasks_completed = ?, streak = ?, active_realms = ?, last_active_date = ?
		WHERE id = ?
	`, u.Level, u.XP, u.Avatar, u.TasksCompleted, u.Streak, u.ActiveRealms, u.LastActiveDate, u.ID)
	if err != nil {
		return fmt.Errorf("user update: %w", err)
	}
	return nil
}

func (r *UserRepo) AdjustActiveRealms(ctx context.Context, id string, delta int) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE users SET active_realms = MAX(0, active_realms + ?) WHERE id = ?
	`, delta, id)
	if err != nil {
		return fmt.Errorf("user adjust active realms: %w", err)
	}
	return nil
}
