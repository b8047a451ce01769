package engine

import (
	"context"
	"database/sql"
	"math"
	"strings"
	"time"

	"realmquest/internal/storage"
)

// questEvent is something that happened in the progression engine which daily
// quests can react to.
type questEvent string

const (
	eventTaskCompleted    questEvent = "task_completed"
	eventXPEarned         questEvent = "xp_earned"
	eventStreakMaintained questEvent = "streak_maintained"
	eventRealmVisited     questEvent = "realm_visited"
)

// matchesEvent reports whether a quest of the given type advances on the
// event. Enemy-defeat quests ride on task completions; custom quests only
// move through explicit progress updates.
func matchesEvent(questType string, ev questEvent) bool {
	switch QuestType(questType) {
	case QuestCompleteTasks, QuestDefeatEnemies:
		return ev == eventTaskCompleted
	case QuestEarnXP:
		return ev == eventXPEarned
	case QuestMaintainStreak:
		return ev == eventStreakMaintained
	case QuestVisitRealms:
		return ev == eventRealmVisited
	default:
		return false
	}
}

// advanceQuests applies an event to every matching active quest of the user.
// Expired quests are frozen: they never advance, and their stale active
// status is repaired in passing. Progress clamps to target; reaching the
// target completes the quest.
func advanceQuests(ctx context.Context, quests *storage.QuestRepo, userID string, ev questEvent, amount int, now time.Time) ([]storage.DailyQuest, error) {
	if amount <= 0 {
		return nil, nil
	}
	active, err := quests.ListActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	var updated []storage.DailyQuest
	for i := range active {
		q := active[i]
		if now.After(q.ExpiresAt) {
			if err := quests.UpdateProgress(ctx, q.ID, q.Progress, QuestExpired); err != nil {
				return nil, err
			}
			continue
		}
		if !matchesEvent(q.QuestType, ev) {
			continue
		}

		q.Progress += amount
		if q.Progress > q.Target {
			q.Progress = q.Target
		}
		status := QuestActive
		if q.Progress >= q.Target {
			status = QuestCompleted
		}
		if err := quests.UpdateProgress(ctx, q.ID, q.Progress, status); err != nil {
			return nil, err
		}
		q.Status = status
		updated = append(updated, q)
	}
	return updated, nil
}

type questTemplate struct {
	Title       string
	Description string
	QuestType   QuestType
	Target      int
	XPReward    int
}

var dailyQuestTemplates = []questTemplate{
	{Title: "Task Warrior", Description: "Complete 3 tasks today", QuestType: QuestCompleteTasks, Target: 3, XPReward: 30},
	{Title: "Realm Explorer", Description: "Visit 2 different realms", QuestType: QuestVisitRealms, Target: 2, XPReward: 20},
	{Title: "XP Hunter", Description: "Earn 50 XP today", QuestType: QuestEarnXP, Target: 50, XPReward: 25},
	{Title: "Enemy Slayer", Description: "Defeat 5 enemies (complete tasks)", QuestType: QuestDefeatEnemies, Target: 5, XPReward: 40},
	{Title: "Streak Keeper", Description: "Maintain your daily streak", QuestType: QuestMaintainStreak, Target: 1, XPReward: 35},
}

const dailyQuestBatchSize = 3

// pickTemplates draws n distinct template indexes. The shared rand source is
// not safe for concurrent use, so draws are serialized.
func (s *Service) pickTemplates(n int) []int {
	s.randMu.Lock()
	defer s.randMu.Unlock()
	return s.rand.Perm(len(dailyQuestTemplates))[:n]
}

// GenerateDailyQuests draws today's quest batch for the user: three of the
// five templates, once per calendar day, expiring at the next midnight.
// Calling it again the same day is a no-op.
func (s *Service) GenerateDailyQuests(ctx context.Context, userID string) ([]storage.DailyQuest, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	if _, err := s.getUser(ctx, userID); err != nil {
		return nil, err
	}

	now := s.now()
	todayStart, _ := dayBounds(now, s.loc)
	// The count check and the batch insert share one transaction under the
	// user lock so concurrent callers cannot each draw a batch.
	err := storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		quests := storage.NewQuestRepo(tx)
		existing, err := quests.CountGeneratedSince(ctx, userID, todayStart)
		if err != nil {
			return err
		}
		if existing > 0 {
			return nil
		}

		expires := nextMidnight(now, s.loc)
		for _, i := range s.pickTemplates(dailyQuestBatchSize) {
			tpl := dailyQuestTemplates[i]
			if _, err := quests.Insert(ctx, storage.QuestInsert{
				UserID:      userID,
				Title:       tpl.Title,
				Description: tpl.Description,
				QuestType:   string(tpl.QuestType),
				Target:      tpl.Target,
				XPReward:    tpl.XPReward,
				IsCustom:    false,
				ExpiresAt:   expires,
				CreatedAt:   now,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.ListQuests(ctx, userID, false)
}

// CreateCustomQuest adds a user-authored quest expiring at the next midnight.
func (s *Service) CreateCustomQuest(ctx context.Context, userID, title, description string, target, xpReward int) (*storage.DailyQuest, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" || description == "" {
		return nil, InvalidInputf("title and description are required")
	}
	if target < 1 || target > 100 {
		return nil, InvalidInputf("target must be between 1 and 100")
	}
	if xpReward < 1 || xpReward > 200 {
		return nil, InvalidInputf("xp reward must be between 1 and 200")
	}
	if _, err := s.getUser(ctx, userID); err != nil {
		return nil, err
	}

	now := s.now()
	id, err := s.quests.Insert(ctx, storage.QuestInsert{
		UserID:      userID,
		Title:       title,
		Description: description,
		QuestType:   string(QuestCustom),
		Target:      target,
		XPReward:    xpReward,
		IsCustom:    true,
		ExpiresAt:   nextMidnight(now, s.loc),
		CreatedAt:   now,
	})
	if err != nil {
		return nil, err
	}
	return s.quests.GetOwned(ctx, id, userID)
}

// ListQuests returns the user's quests, newest first, lazily flipping stale
// active quests to expired. Claimed quests are excluded from listings;
// expired ones only appear when asked for.
func (s *Service) ListQuests(ctx context.Context, userID string, includeExpired bool) ([]storage.DailyQuest, error) {
	all, err := s.quests.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var out []storage.DailyQuest
	for i := range all {
		q := all[i]
		if q.Status == QuestActive && now.After(q.ExpiresAt) {
			if err := s.quests.UpdateProgress(ctx, q.ID, q.Progress, QuestExpired); err != nil {
				return nil, err
			}
			q.Status = QuestExpired
		}
		if q.Status == QuestClaimed {
			continue
		}
		if q.Status == QuestExpired && !includeExpired {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

// AdvanceQuestProgress applies an explicit progress increment to one quest.
// This is the path for custom quests, which no engine event drives.
func (s *Service) AdvanceQuestProgress(ctx context.Context, userID, questID string, increment int) (*storage.DailyQuest, error) {
	if increment < 1 {
		return nil, InvalidInputf("increment must be positive")
	}
	q, err := s.quests.GetOwned(ctx, questID, userID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, NotFoundf("daily quest %s not found", questID)
	}
	now := s.now()
	if q.Status == QuestExpired || now.After(q.ExpiresAt) {
		return nil, Conflictf("quest %s has expired", questID)
	}
	if q.Status != QuestActive {
		return nil, Conflictf("quest %s is already %s", questID, q.Status)
	}

	q.Progress += increment
	if q.Progress > q.Target {
		q.Progress = q.Target
	}
	status := QuestActive
	if q.Progress >= q.Target {
		status = QuestCompleted
	}
	if err := s.quests.UpdateProgress(ctx, q.ID, q.Progress, status); err != nil {
		return nil, err
	}
	q.Status = status
	return q, nil
}

type ClaimResult struct {
	Quest     storage.DailyQuest `json:"quest"`
	XPGained  int                `json:"xpGained"`
	LevelUp   *LevelUp           `json:"levelUp,omitempty"`
	UserStats UserStats          `json:"userStats"`
}

// ClaimQuest grants a completed quest's reward exactly once. The claim flips
// the quest into a terminal state; a second attempt conflicts.
func (s *Service) ClaimQuest(ctx context.Context, userID, questID string) (*ClaimResult, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	q, err := s.quests.GetOwned(ctx, questID, userID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, NotFoundf("daily quest %s not found", questID)
	}
	now := s.now()
	if q.Status == QuestClaimed {
		return nil, Conflictf("quest %s reward already claimed", questID)
	}
	if q.Status == QuestExpired || now.After(q.ExpiresAt) {
		return nil, Conflictf("quest %s has expired", questID)
	}
	if q.Status != QuestCompleted {
		return nil, Conflictf("quest %s is not completed yet", questID)
	}

	var res *ClaimResult
	err = storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		users := storage.NewUserRepo(tx)
		ledger := storage.NewLedgerRepo(tx)
		quests := storage.NewQuestRepo(tx)

		ok, err := quests.MarkClaimed(ctx, q.ID)
		if err != nil {
			return err
		}
		if !ok {
			return Conflictf("quest %s reward already claimed", questID)
		}
		q.Status = QuestClaimed

		levelBefore := user.Level
		user.XP += q.XPReward
		user.Level = LevelForXP(user.XP)
		if err := users.Update(ctx, user); err != nil {
			return err
		}
		var levelUp *LevelUp
		if user.Level > levelBefore {
			levelUp = &LevelUp{From: levelBefore, To: user.Level}
		}

		if _, err := ledger.Insert(ctx, storage.XPEntry{
			UserID:      userID,
			XPGained:    q.XPReward,
			Source:      SourceDailyQuest,
			Description: "Completed daily quest: " + q.Title,
			CreatedAt:   now,
		}); err != nil {
			return err
		}

		res = &ClaimResult{
			Quest:     *q,
			XPGained:  q.XPReward,
			LevelUp:   levelUp,
			UserStats: statsOf(user),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// RecordRealmVisit advances visit_realms quests. Realm visits come from the
// UI layer; the engine only checks ownership and forwards the event.
func (s *Service) RecordRealmVisit(ctx context.Context, userID, realmID string) ([]storage.DailyQuest, error) {
	if _, err := s.getUser(ctx, userID); err != nil {
		return nil, err
	}
	realm, err := s.realms.GetOwned(ctx, realmID, userID)
	if err != nil {
		return nil, err
	}
	if realm == nil {
		return nil, NotFoundf("realm %s not found", realmID)
	}
	return advanceQuests(ctx, s.quests, userID, eventRealmVisited, 1, s.now())
}

// QuestDifficulty buckets a quest by how demanding its target is for its type.
func QuestDifficulty(questType string, target int) string {
	type bounds struct{ easy, medium int }
	var b bounds
	switch QuestType(questType) {
	case QuestCompleteTasks:
		b = bounds{3, 5}
	case QuestVisitRealms:
		b = bounds{2, 3}
	case QuestEarnXP:
		b = bounds{50, 100}
	case QuestDefeatEnemies:
		b = bounds{5, 8}
	case QuestMaintainStreak:
		b = bounds{1, 3}
	default:
		b = bounds{5, 10}
	}
	switch {
	case target <= b.easy:
		return "easy"
	case target <= b.medium:
		return "medium"
	default:
		return "hard"
	}
}

// QuestXPReward derives a reward from the target: 5 XP per unit, scaled by
// the difficulty bucket.
func QuestXPReward(questType string, target int) int {
	base := float64(target * 5)
	switch QuestDifficulty(questType, target) {
	case "medium":
		base *= 1.5
	case "hard":
		base *= 2.0
	}
	return int(math.Round(base))
}
