package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"realmquest/internal/storage"
)

func insertQuest(t *testing.T, svc *Service, userID string, questType QuestType, target, xpReward int, expires time.Time) string {
	t.Helper()
	ctx := context.Background()
	if _, err := svc.UserRepo().GetOrCreate(ctx, userID); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	id, err := svc.QuestRepo().Insert(ctx, storage.QuestInsert{
		UserID:      userID,
		Title:       "Test quest",
		Description: "A quest planted by the test",
		QuestType:   string(questType),
		Target:      target,
		XPReward:    xpReward,
		ExpiresAt:   expires,
		CreatedAt:   svc.now(),
	})
	if err != nil {
		t.Fatalf("insert quest: %v", err)
	}
	return id
}

func getQuest(t *testing.T, svc *Service, userID, id string) *storage.DailyQuest {
	t.Helper()
	q, err := svc.QuestRepo().GetOwned(context.Background(), id, userID)
	if err != nil {
		t.Fatalf("get quest: %v", err)
	}
	if q == nil {
		t.Fatalf("quest %s not found", id)
	}
	return q
}

func TestGenerateDailyQuests(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	freezeNow(svc, testNoon)

	const userID = "hero"
	quests, err := svc.GenerateDailyQuests(ctx, userID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(quests) != 3 {
		t.Fatalf("quests=%d, want 3", len(quests))
	}
	wantExpiry := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)
	seen := map[string]bool{}
	for _, q := range quests {
		if q.Status != QuestActive {
			t.Errorf("quest %s status=%s, want active", q.Title, q.Status)
		}
		if q.IsCustom {
			t.Errorf("quest %s marked custom", q.Title)
		}
		if !q.ExpiresAt.Equal(wantExpiry) {
			t.Errorf("quest %s expires=%v, want %v", q.Title, q.ExpiresAt, wantExpiry)
		}
		if seen[q.QuestType] {
			t.Errorf("duplicate quest type %s in one batch", q.QuestType)
		}
		seen[q.QuestType] = true
	}

	// Same-day regeneration is a no-op.
	again, err := svc.GenerateDailyQuests(ctx, userID)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if len(again) != 3 {
		t.Fatalf("after regenerate quests=%d, want 3", len(again))
	}
}

func TestConcurrentGenerateDailyQuests(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	freezeNow(svc, testNoon)

	const userID = "hero"
	const callers = 8
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.GenerateDailyQuests(ctx, userID)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("generate %d: %v", i, err)
		}
	}
	quests, err := svc.ListQuests(ctx, userID, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(quests) != 3 {
		t.Fatalf("quests=%d after concurrent generate, want 3", len(quests))
	}
}

func TestQuestsAdvanceOnTaskCompletion(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	freezeNow(svc, testNoon)

	const userID = "hero"
	preAwardFirstClear(t, svc, userID)
	expires := nextMidnight(testNoon, time.UTC)
	tasksQuest := insertQuest(t, svc, userID, QuestCompleteTasks, 3, 30, expires)
	xpQuest := insertQuest(t, svc, userID, QuestEarnXP, 50, 25, expires)
	streakQuest := insertQuest(t, svc, userID, QuestMaintainStreak, 1, 35, expires)
	customQuest := insertQuest(t, svc, userID, QuestCustom, 5, 50, expires)

	realm := mustRealm(t, svc, userID)
	task := mustTask(t, svc, userID, realm.ID, DifficultyEasy)
	if _, err := svc.CompleteTask(ctx, userID, realm.ID, task.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if q := getQuest(t, svc, userID, tasksQuest); q.Progress != 1 || q.Status != QuestActive {
		t.Fatalf("complete_tasks quest=%d/%s, want 1/active", q.Progress, q.Status)
	}
	if q := getQuest(t, svc, userID, xpQuest); q.Progress != 10 {
		t.Fatalf("earn_xp quest progress=%d, want 10", q.Progress)
	}
	if q := getQuest(t, svc, userID, streakQuest); q.Progress != 1 || q.Status != QuestCompleted {
		t.Fatalf("maintain_streak quest=%d/%s, want 1/completed", q.Progress, q.Status)
	}
	if q := getQuest(t, svc, userID, customQuest); q.Progress != 0 {
		t.Fatalf("custom quest progress=%d, want 0 (engine events never drive it)", q.Progress)
	}

	// The streak quest only moves on the first completion of the day.
	second := mustTask(t, svc, userID, realm.ID, DifficultyEasy)
	if _, err := svc.CompleteTask(ctx, userID, realm.ID, second.ID); err != nil {
		t.Fatalf("second complete: %v", err)
	}
	if q := getQuest(t, svc, userID, tasksQuest); q.Progress != 2 {
		t.Fatalf("complete_tasks quest progress=%d, want 2", q.Progress)
	}
	if q := getQuest(t, svc, userID, xpQuest); q.Progress != 20 {
		t.Fatalf("earn_xp quest progress=%d, want 20", q.Progress)
	}
}

func TestQuestProgressClampsAtTarget(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	freezeNow(svc, testNoon)

	const userID = "hero"
	preAwardFirstClear(t, svc, userID)
	expires := nextMidnight(testNoon, time.UTC)
	xpQuest := insertQuest(t, svc, userID, QuestEarnXP, 30, 25, expires)

	realm := mustRealm(t, svc, userID)
	task := mustTask(t, svc, userID, realm.ID, DifficultyHard)
	if _, err := svc.CompleteTask(ctx, userID, realm.ID, task.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	q := getQuest(t, svc, userID, xpQuest)
	if q.Progress != 30 || q.Status != QuestCompleted {
		t.Fatalf("quest=%d/%s, want clamped 30/completed", q.Progress, q.Status)
	}
}

func TestExpiredQuestIsFrozen(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	freezeNow(svc, testNoon)

	const userID = "hero"
	preAwardFirstClear(t, svc, userID)
	stale := insertQuest(t, svc, userID, QuestCompleteTasks, 3, 30, testNoon.Add(-time.Hour))

	realm := mustRealm(t, svc, userID)
	task := mustTask(t, svc, userID, realm.ID, DifficultyEasy)
	if _, err := svc.CompleteTask(ctx, userID, realm.ID, task.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	q := getQuest(t, svc, userID, stale)
	if q.Progress != 0 || q.Status != QuestExpired {
		t.Fatalf("quest=%d/%s, want frozen 0/expired", q.Progress, q.Status)
	}

	if _, err := svc.AdvanceQuestProgress(ctx, userID, stale, 1); KindOf(err) != KindConflict {
		t.Fatalf("advance expired err=%v, want Conflict", err)
	}
	if _, err := svc.ClaimQuest(ctx, userID, stale); KindOf(err) != KindConflict {
		t.Fatalf("claim expired err=%v, want Conflict", err)
	}
}

func TestClaimQuestGrantsRewardOnce(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	freezeNow(svc, testNoon)

	const userID = "hero"
	preAwardFirstClear(t, svc, userID)
	expires := nextMidnight(testNoon, time.UTC)
	questID := insertQuest(t, svc, userID, QuestCompleteTasks, 1, 30, expires)

	realm := mustRealm(t, svc, userID)
	task := mustTask(t, svc, userID, realm.ID, DifficultyEasy)
	if _, err := svc.CompleteTask(ctx, userID, realm.ID, task.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if q := getQuest(t, svc, userID, questID); q.Status != QuestCompleted {
		t.Fatalf("quest status=%s, want completed", q.Status)
	}

	res, err := svc.ClaimQuest(ctx, userID, questID)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if res.XPGained != 30 {
		t.Fatalf("xpGained=%d, want 30", res.XPGained)
	}
	// 10 from the task plus the 30 reward.
	if res.UserStats.XP != 40 {
		t.Fatalf("xp=%d, want 40", res.UserStats.XP)
	}
	if res.Quest.Status != QuestClaimed {
		t.Fatalf("quest status=%s, want claimed", res.Quest.Status)
	}

	entries, err := svc.XPHistory(ctx, userID, 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var questEntries int
	for _, e := range entries {
		if e.Source == SourceDailyQuest {
			questEntries++
		}
	}
	if questEntries != 1 {
		t.Fatalf("daily_quest ledger entries=%d, want 1", questEntries)
	}

	if _, err := svc.ClaimQuest(ctx, userID, questID); KindOf(err) != KindConflict {
		t.Fatalf("second claim err=%v, want Conflict", err)
	}
}

func TestClaimUnfinishedQuestConflicts(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	freezeNow(svc, testNoon)

	const userID = "hero"
	questID := insertQuest(t, svc, userID, QuestCompleteTasks, 3, 30, nextMidnight(testNoon, time.UTC))
	if _, err := svc.ClaimQuest(ctx, userID, questID); KindOf(err) != KindConflict {
		t.Fatalf("err=%v, want Conflict", err)
	}
}

func TestCustomQuestLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	freezeNow(svc, testNoon)

	const userID = "hero"
	q, err := svc.CreateCustomQuest(ctx, userID, "Read a chapter", "Read one chapter of the Go book", 2, 40)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if q.QuestType != string(QuestCustom) || !q.IsCustom || q.Status != QuestActive {
		t.Fatalf("quest=%+v, want active custom", q)
	}

	q, err = svc.AdvanceQuestProgress(ctx, userID, q.ID, 1)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if q.Progress != 1 || q.Status != QuestActive {
		t.Fatalf("quest=%d/%s, want 1/active", q.Progress, q.Status)
	}

	q, err = svc.AdvanceQuestProgress(ctx, userID, q.ID, 5)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if q.Progress != 2 || q.Status != QuestCompleted {
		t.Fatalf("quest=%d/%s, want clamped 2/completed", q.Progress, q.Status)
	}

	if _, err := svc.AdvanceQuestProgress(ctx, userID, q.ID, 1); KindOf(err) != KindConflict {
		t.Fatalf("advance completed err=%v, want Conflict", err)
	}

	res, err := svc.ClaimQuest(ctx, userID, q.ID)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if res.XPGained != 40 {
		t.Fatalf("xpGained=%d, want 40", res.XPGained)
	}
}

func TestCustomQuestValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	const userID = "hero"
	cases := []struct {
		name     string
		title    string
		desc     string
		target   int
		xpReward int
	}{
		{"empty title", "", "Some description here", 5, 50},
		{"empty description", "Quest", "", 5, 50},
		{"target too low", "Quest", "Some description here", 0, 50},
		{"target too high", "Quest", "Some description here", 101, 50},
		{"reward too low", "Quest", "Some description here", 5, 0},
		{"reward too high", "Quest", "Some description here", 5, 201},
	}
	for _, c := range cases {
		if _, err := svc.CreateCustomQuest(ctx, userID, c.title, c.desc, c.target, c.xpReward); KindOf(err) != KindInvalidInput {
			t.Errorf("%s: err=%v, want InvalidInput", c.name, err)
		}
	}
}

func TestListQuestsFiltersTerminalStates(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	freezeNow(svc, testNoon)

	const userID = "hero"
	expires := nextMidnight(testNoon, time.UTC)
	activeID := insertQuest(t, svc, userID, QuestCompleteTasks, 3, 30, expires)
	staleID := insertQuest(t, svc, userID, QuestEarnXP, 50, 25, testNoon.Add(-time.Hour))
	claimedID := insertQuest(t, svc, userID, QuestMaintainStreak, 1, 35, expires)
	if err := svc.QuestRepo().UpdateProgress(ctx, claimedID, 1, QuestCompleted); err != nil {
		t.Fatalf("seed completed: %v", err)
	}
	if _, err := svc.ClaimQuest(ctx, userID, claimedID); err != nil {
		t.Fatalf("claim: %v", err)
	}

	quests, err := svc.ListQuests(ctx, userID, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(quests) != 1 || quests[0].ID != activeID {
		t.Fatalf("quests=%+v, want only the active one", quests)
	}

	withExpired, err := svc.ListQuests(ctx, userID, true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(withExpired) != 2 {
		t.Fatalf("quests=%d, want 2 (active + expired)", len(withExpired))
	}
	var foundExpired bool
	for _, q := range withExpired {
		if q.ID == staleID {
			foundExpired = true
			if q.Status != QuestExpired {
				t.Fatalf("stale quest status=%s, want expired after lazy flip", q.Status)
			}
		}
		if q.ID == claimedID {
			t.Fatalf("claimed quest still listed")
		}
	}
	if !foundExpired {
		t.Fatalf("expired quest missing from includeExpired listing")
	}
}

func TestRecordRealmVisit(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	freezeNow(svc, testNoon)

	const userID = "hero"
	questID := insertQuest(t, svc, userID, QuestVisitRealms, 2, 20, nextMidnight(testNoon, time.UTC))
	realm := mustRealm(t, svc, userID)

	if _, err := svc.RecordRealmVisit(ctx, userID, realm.ID); err != nil {
		t.Fatalf("visit: %v", err)
	}
	if q := getQuest(t, svc, userID, questID); q.Progress != 1 {
		t.Fatalf("progress=%d, want 1", q.Progress)
	}
	if _, err := svc.RecordRealmVisit(ctx, userID, realm.ID); err != nil {
		t.Fatalf("visit: %v", err)
	}
	if q := getQuest(t, svc, userID, questID); q.Progress != 2 || q.Status != QuestCompleted {
		t.Fatalf("quest=%d/%s, want 2/completed", q.Progress, q.Status)
	}

	if _, err := svc.RecordRealmVisit(ctx, userID, "no-such-realm"); KindOf(err) != KindNotFound {
		t.Fatalf("err=%v, want NotFound", err)
	}
}

func TestQuestXPRewardFormula(t *testing.T) {
	cases := []struct {
		questType QuestType
		target    int
		want      int
	}{
		{QuestCompleteTasks, 3, 15},   // easy, target*5
		{QuestCompleteTasks, 5, 38},   // medium, *1.5 rounded
		{QuestCompleteTasks, 10, 100}, // hard, *2
		{QuestVisitRealms, 2, 10},
		{QuestEarnXP, 50, 250},
	}
	for _, c := range cases {
		if got := QuestXPReward(string(c.questType), c.target); got != c.want {
			t.Errorf("QuestXPReward(%s,%d)=%d, want %d", c.questType, c.target, got, c.want)
		}
	}
}
