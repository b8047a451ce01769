package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"realmquest/internal/engine"
	"realmquest/internal/storage"
)

type dashModel struct {
	ctx context.Context
	svc *engine.Service

	userID string

	width  int
	height int

	stats  *engine.UserStats
	realms []storage.Realm
	tasks  map[string][]storage.Task
	quests []storage.DailyQuest

	expanded map[string]bool
	selected int

	lastLog string
	loading bool
	err     error
}

type loadedMsg struct {
	stats  *engine.UserStats
	realms []storage.Realm
	tasks  map[string][]storage.Task
	quests []storage.DailyQuest
	err    error
}

type completedMsg struct {
	res *engine.CompletionResult
	err error
}

type reversedMsg struct {
	res *engine.ReversalResult
	err error
}

func newDashModel(ctx context.Context, svc *engine.Service, userID string) dashModel {
	return dashModel{
		ctx:      ctx,
		svc:      svc,
		userID:   userID,
		expanded: map[string]bool{},
		loading:  true,
		lastLog:  "Loaded.",
	}
}

func (m dashModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m dashModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		stats, err := m.svc.Stats(m.ctx, m.userID)
		if err != nil {
			return loadedMsg{err: err}
		}
		realms, err := m.svc.ListRealms(m.ctx, m.userID)
		if err != nil {
			return loadedMsg{err: err}
		}
		tasks := map[string][]storage.Task{}
		for _, realm := range realms {
			ts, err := m.svc.ListTasks(m.ctx, m.userID, realm.ID)
			if err != nil {
				return loadedMsg{err: err}
			}
			tasks[realm.ID] = ts
		}
		quests, err := m.svc.ListQuests(m.ctx, m.userID, false)
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{stats: stats, realms: realms, tasks: tasks, quests: quests}
	}
}

func (m dashModel) completeCmd(realmID, taskID string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.CompleteTask(m.ctx, m.userID, realmID, taskID)
		return completedMsg{res: res, err: err}
	}
}

func (m dashModel) uncompleteCmd(realmID, taskID string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.UncompleteTask(m.ctx, m.userID, realmID, taskID)
		return reversedMsg{res: res, err: err}
	}
}

func (m dashModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.lastLog = "Load failed: " + msg.err.Error()
			return m, nil
		}
		m.stats = msg.stats
		m.realms = msg.realms
		m.tasks = msg.tasks
		m.quests = msg.quests
		// Default-expand realms that still have pending tasks.
		for _, realm := range m.realms {
			for _, t := range m.tasks[realm.ID] {
				if t.Status == engine.TaskPending {
					m.expanded[realm.ID] = true
					break
				}
			}
		}
		m.lastLog = fmt.Sprintf("Refreshed at %s.", time.Now().Format("15:04:05"))
		return m, nil
	case completedMsg:
		if msg.err != nil {
			m.lastLog = "Complete failed: " + msg.err.Error()
			return m, nil
		}
		log := fmt.Sprintf("+%d XP (streak %d)", msg.res.XPGained, msg.res.CurrentStreak)
		if msg.res.LevelUp != nil {
			log += fmt.Sprintf(", level %d → %d", msg.res.LevelUp.From, msg.res.LevelUp.To)
		}
		for _, b := range msg.res.NewBadges {
			log += ", badge: " + b.Name
		}
		m.lastLog = log
		return m, m.loadCmd()
	case reversedMsg:
		if msg.err != nil {
			m.lastLog = "Undo failed: " + msg.err.Error()
			return m, nil
		}
		m.lastLog = fmt.Sprintf("Reversed: -%d XP", msg.res.XPLost)
		return m, m.loadCmd()
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.loading = true
			m.lastLog = "Refreshing…"
			return m, m.loadCmd()
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down", "j":
			lines := m.boardLines()
			if m.selected < len(lines)-1 {
				m.selected++
			}
			return m, nil
		case "enter":
			lines := m.boardLines()
			if m.selected < 0 || m.selected >= len(lines) {
				return m, nil
			}
			line := lines[m.selected]
			if line.isRealm {
				m.expanded[line.realmID] = !m.expanded[line.realmID]
			}
			return m, nil
		case "c", " ":
			lines := m.boardLines()
			if m.selected < 0 || m.selected >= len(lines) {
				return m, nil
			}
			line := lines[m.selected]
			if line.isRealm {
				m.lastLog = "Select a task to complete."
				return m, nil
			}
			if line.status == engine.TaskCompleted {
				m.lastLog = "Already completed."
				return m, nil
			}
			m.lastLog = "Completing " + line.title + "…"
			return m, m.completeCmd(line.realmID, line.taskID)
		case "u":
			lines := m.boardLines()
			if m.selected < 0 || m.selected >= len(lines) {
				return m, nil
			}
			line := lines[m.selected]
			if line.isRealm || line.status != engine.TaskCompleted {
				m.lastLog = "Select a completed task to undo."
				return m, nil
			}
			m.lastLog = "Reversing " + line.title + "…"
			return m, m.uncompleteCmd(line.realmID, line.taskID)
		}
	}
	return m, nil
}

type boardLine struct {
	realmID  string
	taskID   string
	title    string
	status   string
	xp       int
	isRealm  bool
	expanded bool
}

func (m dashModel) boardLines() []boardLine {
	if len(m.realms) == 0 {
		return nil
	}
	realms := append([]storage.Realm(nil), m.realms...)
	sort.Slice(realms, func(i, j int) bool { return realms[i].CreatedAt.Before(realms[j].CreatedAt) })

	var out []boardLine
	for _, realm := range realms {
		out = append(out, boardLine{
			realmID:  realm.ID,
			title:    realm.Name,
			isRealm:  true,
			expanded: m.expanded[realm.ID],
		})
		if !m.expanded[realm.ID] {
			continue
		}
		for _, t := range m.tasks[realm.ID] {
			out = append(out, boardLine{
				realmID: realm.ID,
				taskID:  t.ID,
				title:   t.Title,
				status:  t.Status,
				xp:      t.XPReward,
			})
		}
	}
	if m.selected >= len(out) {
		m.selected = len(out) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	return out
}

func (m dashModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit.\n"
	}

	header := m.renderHeader()
	sidebar := m.renderSidebar()
	main := m.renderMain()
	footer := m.renderFooter()

	// Simple 2-column layout.
	leftW := 30
	if m.width > 0 {
		maxLeft := m.width / 2
		if maxLeft < leftW {
			leftW = maxLeft
		}
		if leftW < 20 {
			leftW = 20
		}
	}

	linesLeft := strings.Split(sidebar, "\n")
	linesRight := strings.Split(main, "\n")
	max := len(linesLeft)
	if len(linesRight) > max {
		max = len(linesRight)
	}

	var body strings.Builder
	for i := 0; i < max; i++ {
		l := ""
		r := ""
		if i < len(linesLeft) {
			l = linesLeft[i]
		}
		if i < len(linesRight) {
			r = linesRight[i]
		}
		body.WriteString(padRight(l, leftW))
		body.WriteString("  ")
		body.WriteString(r)
		body.WriteString("\n")
	}

	return header + "\n" + body.String() + footer
}

func (m dashModel) renderHeader() string {
	if m.stats == nil {
		return "RealmQuest — loading…"
	}
	levelStart := engine.XPRequiredForLevel(m.stats.Level)
	levelSpan := engine.XPRequiredForLevel(m.stats.Level+1) - levelStart
	bar := progressBar(m.stats.XP-levelStart, levelSpan, 30)
	return fmt.Sprintf("RealmQuest | %s | Level %d | XP %d %s | Streak %d (x%.1f)",
		m.stats.Username, m.stats.Level, m.stats.XP, bar,
		m.stats.Streak, engine.StreakMultiplier(m.stats.Streak))
}

func (m dashModel) renderSidebar() string {
	lines := []string{"Daily Quests"}
	if len(m.quests) == 0 {
		lines = append(lines, "(none today, run `rq quests`)")
	}
	for _, q := range m.quests {
		lines = append(lines, fmt.Sprintf("- %s %d/%d [%s]", q.Title, q.Progress, q.Target, q.Status))
	}
	lines = append(lines, "")
	lines = append(lines, "Keys")
	lines = append(lines, "- ↑/↓ or j/k: move")
	lines = append(lines, "- enter: expand/collapse")
	lines = append(lines, "- c/space: complete")
	lines = append(lines, "- u: undo completion")
	lines = append(lines, "- r: refresh")
	lines = append(lines, "- q: quit")
	return strings.Join(lines, "\n")
}

func (m dashModel) renderMain() string {
	if m.loading {
		return "Loading…"
	}
	var out []string
	out = append(out, "Realms")

	lines := m.boardLines()
	if len(lines) == 0 {
		out = append(out, "(no realms yet, run `rq realm new`)")
		return strings.Join(out, "\n")
	}
	for i, line := range lines {
		cursor := "  "
		if i == m.selected {
			cursor = "> "
		}
		if line.isRealm {
			fold := "▸ "
			if line.expanded {
				fold = "▾ "
			}
			out = append(out, fmt.Sprintf("%s%s%s", cursor, fold, line.title))
			continue
		}
		mark := "[ ]"
		if line.status == engine.TaskCompleted {
			mark = "[x]"
		}
		out = append(out, fmt.Sprintf("%s    %s %s (xp=%d)", cursor, mark, line.title, line.xp))
	}
	return strings.Join(out, "\n")
}

func (m dashModel) renderFooter() string {
	return "\n" + m.lastLog
}

func progressBar(value int, total int, width int) string {
	if total <= 0 {
		total = 1
	}
	if width <= 3 {
		width = 3
	}
	if value < 0 {
		value = 0
	}
	if value > total {
		value = total
	}
	ratio := float64(value) / float64(total)
	filled := int(ratio * float64(width))
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}
