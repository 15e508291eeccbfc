package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the picker and returns the chosen tag, or "" when the user quit
// without choosing.
func Run(ctx context.Context, title string, load Loader) (string, error) {
	m := newModel(title, load)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return "", err
	}
	if fm, ok := final.(model); ok {
		return fm.chosen, nil
	}
	return "", nil
}
