package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type QuestRepo struct {
	q DBTX
}

func NewQuestRepo(q DBTX) *QuestRepo {
	return &QuestRepo{q: q}
}

const questColumns = `id, user_id, title, description, quest_type, target, progress, xp_reward, status, is_custom, expires_at, created_at`

type QuestInsert struct {
	UserID      string
	Title       string
	Description string
	QuestType   string
	Target      int
	XPReward    int
	IsCustom    bool
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

func (r *QuestRepo) Insert(ctx context.Context, in QuestInsert) (string, error) {
	id := uuid.NewString()
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO daily_quests (id, user_id, title, description, quest_type, target, progress, xp_reward, status, is_custom, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, 'active', ?, ?, ?)
	`, id, in.UserID, in.Title, in.Description, in.QuestType, in.Target, in.XPReward, boolToInt(in.IsCustom), in.ExpiresAt, in.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("quest insert: %w", err)
	}
	return id, nil
}

func (r *QuestRepo) GetOwned(ctx context.Context, id, userID string) (*DailyQuest, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+questColumns+` FROM daily_quests WHERE id = ? AND user_id = ?
	`, id, userID)
	return scanQuestRow(row)
}

func (r *QuestRepo) ListByUser(ctx context.Context, userID string) ([]DailyQuest, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+questColumns+` FROM daily_quests WHERE user_id = ? ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("quest list: %w", err)
	}
	defer rows.Close()
	return collectQuests(rows)
}

// ListActive returns the user's quests still in the active state.
func (r *QuestRepo) ListActive(ctx context.Context, userID string) ([]DailyQuest, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+questColumns+` FROM daily_quests
		WHERE user_id = ? AND status = 'active'
		ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("quest list active: %w", err)
	}
	defer rows.Close()
	return collectQuests(rows)
}

// CountGeneratedSince counts non-custom quests created at or after t. Used to
// avoid generating a second daily batch.
func (r *QuestRepo) CountGeneratedSince(ctx context.Context, userID string, t time.Time) (int, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM daily_quests
		WHERE user_id = ? AND is_custom = 0 AND created_at >= ?
	`, userID, t)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("quest count generated: %w", err)
	}
	return n, nil
}

func (r *QuestRepo) UpdateProgress(ctx context.Context, id string, progress int, status string) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE daily_quests SET progress = ?, status = ? WHERE id = ?
	`, progress, status, id)
	if err != nil {
		return fmt.Errorf("quest update progress: %w", err)
	}
	return nil
}

// MarkClaimed flips a completed quest to claimed. The status guard makes the
// claim exactly-once: a second claimer sees zero affected rows.
func (r *QuestRepo) MarkClaimed(ctx context.Context, id string) (bool, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE daily_quests SET status = 'claimed' WHERE id = ? AND status = 'completed'
	`, id)
	if err != nil {
		return false, fmt.Errorf("quest mark claimed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("quest mark claimed rows: %w", err)
	}
	return n > 0, nil
}

func scanQuestRow(row *sql.Row) (*DailyQuest, error) {
	var q DailyQuest
	if err := row.Scan(&q.ID, &q.UserID, &q.Title, &q.Description, &q.QuestType, &q.Target, &q.Progress, &q.XPReward, &q.Status, &q.IsCustom, &q.ExpiresAt, &q.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("quest get: %w", err)
	}
	return &q, nil
}

func collectQuests(rows *sql.Rows) ([]DailyQuest, error) {
	var out []DailyQuest
	for rows.Next() {
		var q DailyQuest
		if err := rows.Scan(&q.ID, &q.UserID, &q.Title, &q.Description, &q.QuestType, &q.Target, &q.Progress, &q.XPReward, &q.Status, &q.IsCustom, &q.ExpiresAt, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("quest scan: %w", err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("quest rows: %w", err)
	}
	return out, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
