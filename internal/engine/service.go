package engine

import (
	"context"
	"database/sql"
	"math/rand"
	"sync"
	"time"

	"realmquest/internal/storage"
)

// DefaultUserID is the identity used by the local CLI when no --user flag is
// given. The HTTP API supplies real opaque ids from the auth layer instead.
const DefaultUserID = "local"

type Service struct {
	db      *sql.DB
	users   *storage.UserRepo
	realms  *storage.RealmRepo
	tasks   *storage.TaskRepo
	ledger  *storage.LedgerRepo
	badges  *storage.BadgeRepo
	quests  *storage.QuestRepo

	loc *time.Location
	now func() time.Time

	// Guards rand, which is not safe for concurrent use.
	randMu sync.Mutex
	rand   *rand.Rand

	// Serializes the read-modify-write of a user's xp/level/streak across
	// concurrent completions of different tasks.
	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
}

func NewService(db *sql.DB) *Service {
	return &Service{
		db:        db,
		users:     storage.NewUserRepo(db),
		realms:    storage.NewRealmRepo(db),
		tasks:     storage.NewTaskRepo(db),
		ledger:    storage.NewLedgerRepo(db),
		badges:    storage.NewBadgeRepo(db),
		quests:    storage.NewQuestRepo(db),
		// All calendar math runs in one canonical timezone so the streak
		// tracker and quest expiry can never disagree on day boundaries.
		loc:       time.UTC,
		now:       func() time.Time { return time.Now().UTC() },
		rand:      rand.New(rand.NewSource(time.Now().UnixNano())),
		userLocks: map[string]*sync.Mutex{},
	}
}

func (s *Service) UserRepo() *storage.UserRepo     { return s.users }
func (s *Service) RealmRepo() *storage.RealmRepo   { return s.realms }
func (s *Service) TaskRepo() *storage.TaskRepo     { return s.tasks }
func (s *Service) LedgerRepo() *storage.LedgerRepo { return s.ledger }
func (s *Service) BadgeRepo() *storage.BadgeRepo   { return s.badges }
func (s *Service) QuestRepo() *storage.QuestRepo   { return s.quests }

// lockUser takes the per-user serialization lock and returns the unlock func.
func (s *Service) lockUser(userID string) func() {
	s.mu.Lock()
	l, ok := s.userLocks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.userLocks[userID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (s *Service) getUser(ctx context.Context, userID string) (*storage.User, error) {
	u, err := s.users.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	// The cached level must always match the pure function of xp; repair on
	// read if an older write drifted.
	if computed := LevelForXP(u.XP); u.Level != computed {
		u.Level = computed
		if err := s.users.Update(ctx, u); err != nil {
			return nil, err
		}
	}
	return u, nil
}

// UserStats is the aggregate view exposed to collaborators. TotalXP is a
// derived alias of XP: the engine keeps a single source of truth internally.
type UserStats struct {
	UserID         string     `json:"userId"`
	Username       string     `json:"username"`
	Level          int        `json:"level"`
	XP             int        `json:"xp"`
	TotalXP        int        `json:"totalXP"`
	XPToNextLevel  int        `json:"xpToNextLevel"`
	TasksCompleted int        `json:"tasksCompleted"`
	Streak         int        `json:"streak"`
	ActiveRealms   int        `json:"activeRealms"`
	LastActiveDate *time.Time `json:"lastActiveDate,omitempty"`
}

func statsOf(u *storage.User) UserStats {
	return UserStats{
		UserID:         u.ID,
		Username:       u.Username,
		Level:          u.Level,
		XP:             u.XP,
		TotalXP:        u.XP,
		XPToNextLevel:  XPToNextLevel(u.XP),
		TasksCompleted: u.TasksCompleted,
		Streak:         u.Streak,
		ActiveRealms:   u.ActiveRealms,
		LastActiveDate: u.LastActiveDate,
	}
}

// Stats returns the user's aggregate progress view.
func (s *Service) Stats(ctx context.Context, userID string) (*UserStats, error) {
	u, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	st := statsOf(u)
	return &st, nil
}

// XPHistory lists the user's most recent ledger entries, newest first.
func (s *Service) XPHistory(ctx context.Context, userID string, limit int) ([]storage.XPEntry, error) {
	if _, err := s.getUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.ledger.ListByUser(ctx, userID, limit)
}
