package engine

import (
	"context"
	"strings"
	"testing"
)

func TestCreateRealmValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	cases := []struct {
		name string
		in   CreateRealmInput
	}{
		{"short name", CreateRealmInput{Name: "ab", Description: "A perfectly fine description", Theme: ThemeFire}},
		{"long name", CreateRealmInput{Name: strings.Repeat("x", 51), Description: "A perfectly fine description", Theme: ThemeFire}},
		{"short description", CreateRealmInput{Name: "Ember Keep", Description: "too short", Theme: ThemeFire}},
		{"long description", CreateRealmInput{Name: "Ember Keep", Description: strings.Repeat("x", 201), Theme: ThemeFire}},
		{"bad theme", CreateRealmInput{Name: "Ember Keep", Description: "A perfectly fine description", Theme: "lava"}},
		{"bad difficulty", CreateRealmInput{Name: "Ember Keep", Description: "A perfectly fine description", Theme: ThemeFire, Difficulty: "impossible"}},
	}
	for _, c := range cases {
		if _, err := svc.CreateRealm(ctx, "hero", c.in); KindOf(err) != KindInvalidInput {
			t.Errorf("%s: err=%v, want InvalidInput", c.name, err)
		}
	}
}

func TestCreateRealmTracksActiveCount(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	const userID = "hero"
	realm := mustRealm(t, svc, userID)

	stats, err := svc.Stats(ctx, userID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.ActiveRealms != 1 {
		t.Fatalf("activeRealms=%d, want 1", stats.ActiveRealms)
	}

	if err := svc.DeleteRealm(ctx, userID, realm.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	stats, err = svc.Stats(ctx, userID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.ActiveRealms != 0 {
		t.Fatalf("activeRealms=%d, want 0", stats.ActiveRealms)
	}
}

func TestCreateTaskValidationAndReward(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	const userID = "hero"
	realm := mustRealm(t, svc, userID)

	cases := []struct {
		name string
		in   CreateTaskInput
	}{
		{"short title", CreateTaskInput{Title: "ab", Description: "A long enough description", Difficulty: DifficultyEasy}},
		{"short description", CreateTaskInput{Title: "Slay dust", Description: "short", Difficulty: DifficultyEasy}},
		{"bad difficulty", CreateTaskInput{Title: "Slay dust", Description: "A long enough description", Difficulty: "nightmare"}},
	}
	for _, c := range cases {
		if _, err := svc.CreateTask(ctx, userID, realm.ID, c.in); KindOf(err) != KindInvalidInput {
			t.Errorf("%s: err=%v, want InvalidInput", c.name, err)
		}
	}

	task := mustTask(t, svc, userID, realm.ID, DifficultyMedium)
	if task.XPReward != 25 {
		t.Fatalf("xpReward=%d, want 25 frozen at creation", task.XPReward)
	}
	if task.Status != TaskPending {
		t.Fatalf("status=%s, want pending", task.Status)
	}

	got, err := svc.GetRealm(ctx, userID, realm.ID)
	if err != nil {
		t.Fatalf("get realm: %v", err)
	}
	if got.TotalTasks != 1 {
		t.Fatalf("totalTasks=%d, want 1", got.TotalTasks)
	}
}

func TestDeleteCompletedTaskShrinksCounters(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	const userID = "hero"
	preAwardFirstClear(t, svc, userID)
	realm := mustRealm(t, svc, userID)
	task := mustTask(t, svc, userID, realm.ID, DifficultyEasy)

	if _, err := svc.CompleteTask(ctx, userID, realm.ID, task.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := svc.DeleteTask(ctx, userID, realm.ID, task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	got, err := svc.GetRealm(ctx, userID, realm.ID)
	if err != nil {
		t.Fatalf("get realm: %v", err)
	}
	if got.TotalTasks != 0 || got.CompletedTasks != 0 {
		t.Fatalf("realm total=%d completed=%d, want 0/0", got.TotalTasks, got.CompletedTasks)
	}
	// Earned XP stays with the user and the realm history.
	if got.TotalXPEarned != 10 {
		t.Fatalf("totalXPEarned=%d, want 10 kept", got.TotalXPEarned)
	}

	stats, err := svc.Stats(ctx, userID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.XP != 10 {
		t.Fatalf("xp=%d, want 10 kept after delete", stats.XP)
	}
}

func TestBadgesCatalogView(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	const userID = "hero"
	realm := mustRealm(t, svc, userID)
	task := mustTask(t, svc, userID, realm.ID, DifficultyEasy)
	if _, err := svc.CompleteTask(ctx, userID, realm.ID, task.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	views, err := svc.Badges(ctx, userID)
	if err != nil {
		t.Fatalf("badges: %v", err)
	}
	if len(views) != len(BadgeCatalog()) {
		t.Fatalf("views=%d, want full catalog %d", len(views), len(BadgeCatalog()))
	}
	var earned int
	for _, v := range views {
		if v.Earned {
			earned++
			if v.Def.Type != BadgeFirstClear {
				t.Errorf("unexpected earned badge %s", v.Def.Type)
			}
		}
	}
	if earned != 1 {
		t.Fatalf("earned=%d, want 1", earned)
	}
}
