package engine

import (
	"context"
	"database/sql"
	"time"

	"realmquest/internal/storage"
)

// LevelUp describes a level transition caused by the main completion reward.
type LevelUp struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type EarnedBadge struct {
	ID          string `json:"id"`
	Type        string `json:"badgeType"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Rarity      string `json:"rarity"`
}

type CompletionResult struct {
	Task             storage.Task  `json:"task"`
	XPGained         int           `json:"xpGained"`
	BaseXP           int           `json:"baseXP"`
	StreakMultiplier float64       `json:"streakMultiplier"`
	CurrentStreak    int           `json:"currentStreak"`
	LevelUp          *LevelUp      `json:"levelUp,omitempty"`
	NewBadges        []EarnedBadge `json:"newBadges"`
	UserStats        UserStats     `json:"userStats"`
}

// CompleteTask marks a pending task completed and reconciles every dependent
// record: the task row, the owning realm's counters, the user's xp/level/
// streak, the XP ledger, badge awards, and daily quest progress.
//
// All writes happen in one transaction, so a mid-sequence failure leaves no
// partial state. The per-user lock serializes xp read-modify-write across
// concurrent completions of different tasks; the guarded status flip makes
// two concurrent completions of the same task resolve to one success and one
// Conflict.
func (s *Service) CompleteTask(ctx context.Context, userID, realmID, taskID string) (*CompletionResult, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	realm, err := s.realms.GetOwned(ctx, realmID, userID)
	if err != nil {
		return nil, err
	}
	if realm == nil {
		return nil, NotFoundf("realm %s not found", realmID)
	}
	task, err := s.tasks.GetOwned(ctx, taskID, realmID, userID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, NotFoundf("task %s not found", taskID)
	}
	if task.Status == TaskCompleted {
		return nil, Conflictf("task %s is already completed", taskID)
	}

	now := s.now()
	var res *CompletionResult

	err = storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		tasks := storage.NewTaskRepo(tx)
		users := storage.NewUserRepo(tx)
		realms := storage.NewRealmRepo(tx)
		ledger := storage.NewLedgerRepo(tx)
		badges := storage.NewBadgeRepo(tx)
		quests := storage.NewQuestRepo(tx)

		todayStart, tomorrowStart := dayBounds(now, s.loc)
		yesterdayStart := todayStart.AddDate(0, 0, -1)

		completedToday, err := tasks.CountCompletedBetween(ctx, userID, todayStart, tomorrowStart)
		if err != nil {
			return err
		}
		completedYesterday, err := tasks.CountCompletedBetween(ctx, userID, yesterdayStart, todayStart)
		if err != nil {
			return err
		}

		streak := nextStreak(user.Streak, completedToday, completedYesterday)
		streakAdvanced := completedToday == 0
		multiplier := StreakMultiplier(streak)
		finalXP := FinalXP(task.XPReward, streak)

		ok, err := tasks.MarkCompleted(ctx, taskID, now)
		if err != nil {
			return err
		}
		if !ok {
			return Conflictf("task %s is already completed", taskID)
		}
		task.Status = TaskCompleted
		task.CompletedAt = &now

		levelBefore := user.Level
		user.XP += finalXP
		user.Level = LevelForXP(user.XP)
		user.TasksCompleted++
		user.Streak = streak
		user.LastActiveDate = &now
		if err := users.Update(ctx, user); err != nil {
			return err
		}
		var levelUp *LevelUp
		if user.Level > levelBefore {
			levelUp = &LevelUp{From: levelBefore, To: user.Level}
		}

		if err := realms.ApplyCompletion(ctx, realmID, 1, finalXP); err != nil {
			return err
		}

		tid := taskID
		if _, err := ledger.Insert(ctx, storage.XPEntry{
			UserID:      userID,
			TaskID:      &tid,
			XPGained:    finalXP,
			Source:      SourceTaskCompletion,
			Description: "Completed task: " + task.Title,
			CreatedAt:   now,
		}); err != nil {
			return err
		}

		newBadges, err := s.awardBadges(ctx, users, ledger, badges, user, now)
		if err != nil {
			return err
		}

		if _, err := advanceQuests(ctx, quests, userID, eventTaskCompleted, 1, now); err != nil {
			return err
		}
		if _, err := advanceQuests(ctx, quests, userID, eventXPEarned, finalXP, now); err != nil {
			return err
		}
		if streakAdvanced && streak > 0 {
			if _, err := advanceQuests(ctx, quests, userID, eventStreakMaintained, 1, now); err != nil {
				return err
			}
		}

		res = &CompletionResult{
			Task:             *task,
			XPGained:         finalXP,
			BaseXP:           task.XPReward,
			StreakMultiplier: multiplier,
			CurrentStreak:    streak,
			LevelUp:          levelUp,
			NewBadges:        newBadges,
			UserStats:        statsOf(user),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// awardBadges runs the pure evaluator against the fresh stats snapshot and
// persists any newly earned badges, applying bonus-XP side effects through
// the same ledger-append primitive as the main reward.
func (s *Service) awardBadges(ctx context.Context, users *storage.UserRepo, ledger *storage.LedgerRepo, badges *storage.BadgeRepo, user *storage.User, now time.Time) ([]EarnedBadge, error) {
	earned, err := badges.CompletedTypes(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	snapshot := StatsSnapshot{
		TasksCompleted: user.TasksCompleted,
		Streak:         user.Streak,
		XP:             user.XP,
		Level:          user.Level,
	}

	var out []EarnedBadge
	for _, aw := range EvaluateBadges(snapshot, earned) {
		row, err := badges.Award(ctx, storage.Badge{
			UserID:      user.ID,
			BadgeType:   string(aw.Def.Type),
			Name:        aw.Def.Name,
			Description: aw.Def.Description,
			Rarity:      string(aw.Def.Rarity),
			Progress:    aw.Progress,
			Target:      aw.Def.Target,
			EarnedAt:    &now,
		})
		if err != nil {
			return nil, err
		}
		if row == nil {
			continue
		}
		out = append(out, EarnedBadge{
			ID:          row.ID,
			Type:        row.BadgeType,
			Name:        row.Name,
			Description: row.Description,
			Rarity:      row.Rarity,
		})

		if aw.BonusXP > 0 {
			user.XP += aw.BonusXP
			user.Level = LevelForXP(user.XP)
			if err := users.Update(ctx, user); err != nil {
				return nil, err
			}
			if _, err := ledger.Insert(ctx, storage.XPEntry{
				UserID:      user.ID,
				XPGained:    aw.BonusXP,
				Source:      SourceFirstClearBonus,
				Description: aw.Def.Name + " badge bonus",
				CreatedAt:   now,
			}); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}
