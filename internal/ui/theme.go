package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RealmQuest theme (CLI + TUI).
// Kept intentionally small: reusable styles and a few emojis.

const (
	IconRealm   = "🏰"
	IconSparkle = "✨"
	IconPlus    = "➕"
	IconDone    = "✅"
	IconTrophy  = "🏆"
	IconBolt    = "⚡"
	IconFlame   = "🔥"
	IconInfo    = "ℹ️"
	IconWarn    = "⚠️"
	IconError   = "🧨"
	IconQuest   = "🗺️"
	IconScroll  = "📜"
	IconShield  = "🛡️"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
	cEpic    = lipgloss.Color("135") // purple
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)
	Epic  = lipgloss.NewStyle().Bold(true).Foreground(cEpic)
	Dim   = lipgloss.NewStyle().Foreground(cMuted)

	Panel       = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
	PanelTitle  = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	SelectedRow = lipgloss.NewStyle().Bold(true).Foreground(cGold).Background(cPrimary)

	BadgeLevelUp = lipgloss.NewStyle().Bold(true).Foreground(cGold).Render("LEVEL UP")
)

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

func StatusText(status string) string {
	s := strings.ToLower(strings.TrimSpace(status))
	switch s {
	case "completed":
		return Good.Render("completed")
	case "active":
		return H2.Render("active")
	case "pending":
		return Warn.Render("pending")
	case "claimed":
		return Gold.Render("claimed")
	case "expired":
		return Bad.Render("expired")
	default:
		return Muted.Render(status)
	}
}

func DifficultyText(difficulty string) string {
	switch strings.ToLower(strings.TrimSpace(difficulty)) {
	case "easy":
		return Good.Render("easy")
	case "medium":
		return Warn.Render("medium")
	case "hard":
		return Bad.Render("hard")
	case "legendary":
		return Epic.Render("legendary")
	default:
		return Muted.Render(difficulty)
	}
}

func RarityText(rarity string) string {
	switch strings.ToLower(strings.TrimSpace(rarity)) {
	case "common":
		return Muted.Render("common")
	case "rare":
		return H2.Render("rare")
	case "epic":
		return Epic.Render("epic")
	case "legendary":
		return Gold.Render("legendary")
	default:
		return Muted.Render(rarity)
	}
}

// XPBar renders a fixed-width progress bar toward the next level.
func XPBar(current, needed, width int) string {
	if width < 4 {
		width = 4
	}
	total := current + needed
	filled := 0
	if total > 0 {
		filled = current * width / total
	}
	if filled > width {
		filled = width
	}
	bar := Gold.Render(strings.Repeat("█", filled)) + Dim.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("%s %s", bar, Muted.Render(fmt.Sprintf("%d to next", needed)))
}

// StreakText shows the streak with its active multiplier.
func StreakText(streak int, multiplier float64) string {
	if streak <= 0 {
		return Muted.Render("no streak")
	}
	s := fmt.Sprintf("%s %d day", IconFlame, streak)
	if streak != 1 {
		s += "s"
	}
	if multiplier > 1.0 {
		s += Gold.Render(fmt.Sprintf(" x%.1f", multiplier))
	}
	return s
}
