package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type BadgeRepo struct {
	q DBTX
}

func NewBadgeRepo(q DBTX) *BadgeRepo {
	return &BadgeRepo{q: q}
}

const badgeColumns = `id, user_id, badge_type, name, description, rarity, progress, target, completed, earned_at, created_at`

// CompletedTypes returns the set of badge types the user has already earned.
func (r *BadgeRepo) CompletedTypes(ctx context.Context, userID string) (map[string]bool, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT badge_type FROM badges WHERE user_id = ? AND completed = 1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("badge completed types: %w", err)
	}
	defer rows.Close()

	out := map[string]bool{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("badge type scan: %w", err)
		}
		out[t] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("badge type rows: %w", err)
	}
	return out, nil
}

// Award upserts the per-(user, type) row as completed. Once completed the row
// is never touched again: the upsert only fires when completed = 0.
func (r *BadgeRepo) Award(ctx context.Context, b Badge) (*Badge, error) {
	earnedAt := b.EarnedAt
	if earnedAt == nil {
		now := time.Now().UTC()
		earnedAt = &now
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO badges (id, user_id, badge_type, name, description, rarity, progress, target, completed, earned_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT(user_id, badge_type) DO UPDATE SET
			progress = excluded.progress,
			completed = 1,
			earned_at = excluded.earned_at
		WHERE badges.completed = 0
	`, uuid.NewString(), b.UserID, b.BadgeType, b.Name, b.Description, b.Rarity, b.Progress, b.Target, earnedAt, *earnedAt)
	if err != nil {
		return nil, fmt.Errorf("badge award: %w", err)
	}
	return r.Get(ctx, b.UserID, b.BadgeType)
}

func (r *BadgeRepo) Get(ctx context.Context, userID, badgeType string) (*Badge, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+badgeColumns+` FROM badges WHERE user_id = ? AND badge_type = ?
	`, userID, badgeType)

	var b Badge
	if err := row.Scan(&b.ID, &b.UserID, &b.BadgeType, &b.Name, &b.Description, &b.Rarity, &b.Progress, &b.Target, &b.Completed, &b.EarnedAt, &b.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("badge get: %w", err)
	}
	return &b, nil
}

func (r *BadgeRepo) ListByUser(ctx context.Context, userID string) ([]Badge, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+badgeColumns+` FROM badges WHERE user_id = ? ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("badge list: %w", err)
	}
	defer rows.Close()

	var out []Badge
	for rows.Next() {
		var b Badge
		if err := rows.Scan(&b.ID, &b.UserID, &b.BadgeType, &b.Name, &b.Description, &b.Rarity, &b.Progress, &b.Target, &b.Completed, &b.EarnedAt, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("badge scan: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("badge rows: %w", err)
	}
	return out, nil
}
