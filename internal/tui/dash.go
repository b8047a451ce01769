package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"realmquest/internal/engine"
)

// RunDashboard starts the interactive progress dashboard.
func RunDashboard(ctx context.Context, svc *engine.Service, userID string, out io.Writer) error {
	m := newDashModel(ctx, svc, userID)
	p := tea.NewProgram(m, tea.WithOutput(out))
	_, err := p.Run()
	return err
}
