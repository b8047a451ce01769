package engine

// BadgeDef describes one entry of the static badge catalog. Catalog content
// is external data as far as the engine is concerned; the evaluator only
// reads it.
type BadgeDef struct {
	Type        BadgeType
	Name        string
	Description string
	Rarity      Rarity
	Target      int
	Icon        string
}

// StatsSnapshot is the progress snapshot badges are evaluated against.
type StatsSnapshot struct {
	TasksCompleted int
	Streak         int
	XP             int
	Level          int
}

// BadgeAward is a badge that newly qualifies, with the progress value to
// freeze onto the record and any bonus XP side effect.
type BadgeAward struct {
	Def      BadgeDef
	Progress int
	BonusXP  int
}

// FirstClearBonusXP is granted once, alongside the first_clear badge, as its
// own ledger entry.
const FirstClearBonusXP = 20

var badgeCatalog = []BadgeDef{
	{Type: BadgeFirstClear, Name: "First Clear", Description: "Complete your first task", Rarity: RarityCommon, Target: 1, Icon: "🎯"},
	{Type: BadgeStreakKing, Name: "Streak King", Description: "Maintain a 7-day completion streak", Rarity: RarityEpic, Target: 7, Icon: "🔥"},
	{Type: BadgeDungeonMaster, Name: "Dungeon Master", Description: "Complete 100 tasks", Rarity: RarityLegendary, Target: 100, Icon: "👑"},
	{Type: BadgeEliteHunter, Name: "Elite Hunter", Description: "Reach level 10", Rarity: RarityLegendary, Target: 10, Icon: "⭐"},
}

// displayOnlyBadges are catalog entries shown to players as future goals.
// No evaluator rule exists for them yet.
var displayOnlyBadges = []BadgeDef{
	{Type: "speed_runner", Name: "Speed Runner", Description: "Complete 10 tasks within 1 hour of creation", Rarity: RarityRare, Target: 10, Icon: "⚡"},
	{Type: "perfectionist", Name: "Perfectionist", Description: "Maintain 100% completion rate for 30 days", Rarity: RarityEpic, Target: 30, Icon: "💎"},
	{Type: "night_watch", Name: "Night Watch", Description: "Complete 25 tasks after 9 PM", Rarity: RarityRare, Target: 25, Icon: "🌙"},
}

// BadgeCatalog returns every badge type a player can see, evaluated or not.
func BadgeCatalog() []BadgeDef {
	out := make([]BadgeDef, 0, len(badgeCatalog)+len(displayOnlyBadges))
	out = append(out, badgeCatalog...)
	out = append(out, displayOnlyBadges...)
	return out
}

// EvaluateBadges returns the badges that newly qualify for the given stats
// snapshot. It is pure and idempotent: already-earned types are filtered out,
// so calling it twice with the same snapshot can never duplicate an award,
// and earned badges are never re-evaluated or revoked.
func EvaluateBadges(stats StatsSnapshot, earned map[string]bool) []BadgeAward {
	var awards []BadgeAward
	for _, def := range badgeCatalog {
		if earned[string(def.Type)] {
			continue
		}
		switch def.Type {
		case BadgeFirstClear:
			if stats.TasksCompleted >= 1 {
				awards = append(awards, BadgeAward{Def: def, Progress: def.Target, BonusXP: FirstClearBonusXP})
			}
		case BadgeStreakKing:
			if stats.Streak >= def.Target {
				awards = append(awards, BadgeAward{Def: def, Progress: def.Target})
			}
		case BadgeDungeonMaster:
			if stats.TasksCompleted >= def.Target {
				awards = append(awards, BadgeAward{Def: def, Progress: def.Target})
			}
		case BadgeEliteHunter:
			if stats.Level >= def.Target {
				awards = append(awards, BadgeAward{Def: def, Progress: def.Target})
			}
		}
	}
	return awards
}
