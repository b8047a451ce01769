package engine

import (
	"context"
	"database/sql"

	"realmquest/internal/storage"
)

type ReversalResult struct {
	Task      storage.Task `json:"task"`
	XPLost    int          `json:"xpLost"`
	UserStats UserStats    `json:"userStats"`
}

// UncompleteTask is the inverse of CompleteTask: it locates the exact ledger
// entry the completion created (the most recent task_completion entry for
// the task), reverses its amount from the user and realm aggregates, and
// deletes the entry. Badges earned from the original completion stay earned.
func (s *Service) UncompleteTask(ctx context.Context, userID, realmID, taskID string) (*ReversalResult, error) {
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
	if task.Status != TaskCompleted {
		return nil, Conflictf("task %s is not completed", taskID)
	}

	var res *ReversalResult
	err = storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		tasks := storage.NewTaskRepo(tx)
		users := storage.NewUserRepo(tx)
		realms := storage.NewRealmRepo(tx)
		ledger := storage.NewLedgerRepo(tx)

		entry, err := ledger.LatestForTask(ctx, taskID, userID, SourceTaskCompletion)
		if err != nil {
			return err
		}
		if entry == nil {
			// A completed task must hold exactly one completion entry; if it
			// does not, something corrupted the ledger earlier.
			return Inconsistentf("no completion ledger entry for task %s", taskID)
		}

		ok, err := tasks.MarkPending(ctx, taskID)
		if err != nil {
			return err
		}
		if !ok {
			return Conflictf("task %s is not completed", taskID)
		}
		task.Status = TaskPending
		task.CompletedAt = nil

		user.XP -= entry.XPGained
		if user.XP < 0 {
			user.XP = 0
		}
		if user.TasksCompleted > 0 {
			user.TasksCompleted--
		}
		user.Level = LevelForXP(user.XP)
		if err := users.Update(ctx, user); err != nil {
			return err
		}

		if err := realms.ApplyCompletion(ctx, realmID, -1, -entry.XPGained); err != nil {
			return err
		}

		if err := ledger.Delete(ctx, entry.ID); err != nil {
			return err
		}

		res = &ReversalResult{
			Task:      *task,
			XPLost:    entry.XPGained,
			UserStats: statsOf(user),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
