package engine

import "strings"

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

// ParseDifficulty parses user input to a Difficulty.
func ParseDifficulty(input string) (Difficulty, bool) {
	d := Difficulty(strings.TrimSpace(strings.ToLower(input)))
	return d, d.IsValid()
}

type RealmTheme string

const (
	ThemeFire     RealmTheme = "fire"
	ThemeIce      RealmTheme = "ice"
	ThemeNature   RealmTheme = "nature"
	ThemeElectric RealmTheme = "electric"
	ThemeShadow   RealmTheme = "shadow"
)

func (t RealmTheme) IsValid() bool {
	switch t {
	case ThemeFire, ThemeIce, ThemeNature, ThemeElectric, ThemeShadow:
		return true
	default:
		return false
	}
}

// RealmDifficulty is cosmetic realm metadata, wider than task Difficulty.
type RealmDifficulty string

const (
	RealmEasy      RealmDifficulty = "easy"
	RealmMedium    RealmDifficulty = "medium"
	RealmHard      RealmDifficulty = "hard"
	RealmLegendary RealmDifficulty = "legendary"
)

func (d RealmDifficulty) IsValid() bool {
	switch d {
	case RealmEasy, RealmMedium, RealmHard, RealmLegendary:
		return true
	default:
		return false
	}
}

const (
	TaskPending   = "pending"
	TaskCompleted = "completed"
)

// Ledger entry sources.
const (
	SourceTaskCompletion  = "task_completion"
	SourceFirstClearBonus = "first_clear_bonus"
	SourceDailyQuest      = "daily_quest"
)

type QuestType string

const (
	QuestCompleteTasks  QuestType = "complete_tasks"
	QuestVisitRealms    QuestType = "visit_realms"
	QuestEarnXP         QuestType = "earn_xp"
	QuestMaintainStreak QuestType = "maintain_streak"
	QuestDefeatEnemies  QuestType = "defeat_enemies"
	QuestCustom         QuestType = "custom"
)

// Quest lifecycle. Replaces the legacy "progress = -1 means claimed" marker
// with an explicit state.
const (
	QuestActive    = "active"
	QuestCompleted = "completed"
	QuestClaimed   = "claimed"
	QuestExpired   = "expired"
)

type BadgeType string

const (
	BadgeFirstClear    BadgeType = "first_clear"
	BadgeStreakKing    BadgeType = "streak_king"
	BadgeDungeonMaster BadgeType = "dungeon_master"
	BadgeEliteHunter   BadgeType = "elite_hunter"
)

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)
