package engine

import (
	"context"
	"strings"

	"realmquest/internal/storage"
)

type CreateRealmInput struct {
	Name        string
	Description string
	Theme       RealmTheme
	Difficulty  RealmDifficulty
}

// CreateRealm validates and persists a new realm and keeps the user's
// activeRealms counter in step.
func (s *Service) CreateRealm(ctx context.Context, userID string, in CreateRealmInput) (*storage.Realm, error) {
	name := strings.TrimSpace(in.Name)
	desc := strings.TrimSpace(in.Description)
	if len(name) < 3 || len(name) > 50 {
		return nil, InvalidInputf("realm name must be 3-50 characters")
	}
	if len(desc) < 10 || len(desc) > 200 {
		return nil, InvalidInputf("realm description must be 10-200 characters")
	}
	if !in.Theme.IsValid() {
		return nil, InvalidInputf("invalid realm theme: %q", in.Theme)
	}
	difficulty := in.Difficulty
	if difficulty == "" {
		difficulty = RealmEasy
	}
	if !difficulty.IsValid() {
		return nil, InvalidInputf("invalid realm difficulty: %q", difficulty)
	}

	if _, err := s.getUser(ctx, userID); err != nil {
		return nil, err
	}

	id, err := s.realms.Insert(ctx, storage.RealmInsert{
		UserID:      userID,
		Name:        name,
		Description: desc,
		Theme:       string(in.Theme),
		Difficulty:  string(difficulty),
	})
	if err != nil {
		return nil, err
	}
	if err := s.users.AdjustActiveRealms(ctx, userID, 1); err != nil {
		return nil, err
	}
	return s.realms.GetOwned(ctx, id, userID)
}

func (s *Service) ListRealms(ctx context.Context, userID string) ([]storage.Realm, error) {
	if _, err := s.getUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.realms.ListByUser(ctx, userID)
}

func (s *Service) GetRealm(ctx context.Context, userID, realmID string) (*storage.Realm, error) {
	realm, err := s.realms.GetOwned(ctx, realmID, userID)
	if err != nil {
		return nil, err
	}
	if realm == nil {
		return nil, NotFoundf("realm %s not found", realmID)
	}
	return realm, nil
}

// DeleteRealm removes the realm and its tasks. Ledger entries survive: the
// ledger is the audit log and is never rewritten by CRUD.
func (s *Service) DeleteRealm(ctx context.Context, userID, realmID string) error {
	realm, err := s.realms.GetOwned(ctx, realmID, userID)
	if err != nil {
		return err
	}
	if realm == nil {
		return NotFoundf("realm %s not found", realmID)
	}
	if err := s.realms.Delete(ctx, realmID); err != nil {
		return err
	}
	return s.users.AdjustActiveRealms(ctx, userID, -1)
}

type CreateTaskInput struct {
	Title       string
	Description string
	Difficulty  Difficulty
}

// CreateTask persists a new pending task. The XP reward is frozen from the
// difficulty here and never recalculated afterwards.
func (s *Service) CreateTask(ctx context.Context, userID, realmID string, in CreateTaskInput) (*storage.Task, error) {
	title := strings.TrimSpace(in.Title)
	desc := strings.TrimSpace(in.Description)
	if len(title) < 3 || len(title) > 100 {
		return nil, InvalidInputf("task title must be 3-100 characters")
	}
	if len(desc) < 10 || len(desc) > 500 {
		return nil, InvalidInputf("task description must be 10-500 characters")
	}
	if !in.Difficulty.IsValid() {
		return nil, InvalidInputf("invalid difficulty: %q", in.Difficulty)
	}

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

	id, err := s.tasks.Insert(ctx, storage.TaskInsert{
		RealmID:     realmID,
		UserID:      userID,
		Title:       title,
		Description: desc,
		Difficulty:  string(in.Difficulty),
		XPReward:    XPRewardForDifficulty(in.Difficulty),
	})
	if err != nil {
		return nil, err
	}
	if err := s.realms.AdjustTotalTasks(ctx, realmID, 1); err != nil {
		return nil, err
	}
	return s.tasks.Get(ctx, id)
}

func (s *Service) ListTasks(ctx context.Context, userID, realmID string) ([]storage.Task, error) {
	realm, err := s.realms.GetOwned(ctx, realmID, userID)
	if err != nil {
		return nil, err
	}
	if realm == nil {
		return nil, NotFoundf("realm %s not found", realmID)
	}
	return s.tasks.ListByRealm(ctx, realmID)
}

// DeleteTask removes a task and rolls its presence out of the realm
// counters. A completed task keeps its earned XP; only the task count
// aggregates shrink.
func (s *Service) DeleteTask(ctx context.Context, userID, realmID, taskID string) error {
	task, err := s.tasks.GetOwned(ctx, taskID, realmID, userID)
	if err != nil {
		return err
	}
	if task == nil {
		return NotFoundf("task %s not found", taskID)
	}
	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return err
	}
	if err := s.realms.AdjustTotalTasks(ctx, realmID, -1); err != nil {
		return err
	}
	if task.Status == TaskCompleted {
		return s.realms.ApplyCompletion(ctx, realmID, -1, 0)
	}
	return nil
}

type BadgeView struct {
	Badge  *storage.Badge `json:"badge,omitempty"`
	Def    BadgeDef       `json:"def"`
	Earned bool           `json:"earned"`
}

// Badges returns the full catalog annotated with the user's earned rows.
func (s *Service) Badges(ctx context.Context, userID string) ([]BadgeView, error) {
	if _, err := s.getUser(ctx, userID); err != nil {
		return nil, err
	}
	rows, err := s.badges.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	byType := map[string]*storage.Badge{}
	for i := range rows {
		byType[rows[i].BadgeType] = &rows[i]
	}

	var out []BadgeView
	for _, def := range BadgeCatalog() {
		v := BadgeView{Def: def}
		if b, ok := byType[string(def.Type)]; ok {
			v.Badge = b
			v.Earned = b.Completed
		}
		out = append(out, v)
	}
	return out, nil
}
