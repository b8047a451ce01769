package storage

import "time"

type User struct {
	ID             string
	Username       string
	Level          int
	XP             int
	Avatar         string
	TasksCompleted int
	Streak         int
	ActiveRealms   int
	LastActiveDate *time.Time
	CreatedAt      time.Time
}

type Realm struct {
	ID             string
	UserID         string
	Name           string
	Description    string
	Theme          string
	Difficulty     string
	TotalTasks     int
	CompletedTasks int
	TotalXPEarned  int
	CreatedAt      time.Time
}

type Task struct {
	ID          string
	RealmID     string
	UserID      string
	Title       string
	Description string
	Difficulty  string
	Status      string
	XPReward    int
	DueDate     *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
}

// XPEntry is one row of the append-only XP ledger. Entries are only ever
// inserted or deleted; deleting the entry is how a grant is reversed.
type XPEntry struct {
	ID          string
	UserID      string
	TaskID      *string
	XPGained    int
	Source      string
	Description string
	CreatedAt   time.Time
}

type Badge struct {
	ID          string
	UserID      string
	BadgeType   string
	Name        string
	Description string
	Rarity      string
	Progress    int
	Target      int
	Completed   bool
	EarnedAt    *time.Time
	CreatedAt   time.Time
}

type DailyQuest struct {
	ID          string
	UserID      string
	Title       string
	Description string
	QuestType   string
	Target      int
	Progress    int
	XPReward    int
	Status      string
	IsCustom    bool
	ExpiresAt   time.Time
	CreatedAt   time.Time
}
