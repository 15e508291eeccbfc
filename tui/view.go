package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m model) View() string {
	w := m.width - 4
	if w <= 0 {
		w = 80
	}

	var (
		appPad = lipgloss.NewStyle().Padding(1, 2)

		muted = lipgloss.NewStyle().Faint(true)
		bold  = lipgloss.NewStyle().Bold(true)

		titleBar = lipgloss.NewStyle().
				Bold(true).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder())

		panelBase = lipgloss.NewStyle().
				Padding(0, 1).
				Border(lipgloss.RoundedBorder()).
				MarginTop(1)

		panelFocused = panelBase.Copy().
				Border(lipgloss.DoubleBorder())

		panelTitle = lipgloss.NewStyle().Bold(true)

		statusBox = lipgloss.NewStyle().Padding(0, 1)

		errorBox = lipgloss.NewStyle().
				Padding(0, 1).
				Border(lipgloss.RoundedBorder()).
				Bold(true)

		footer = lipgloss.NewStyle().MarginTop(1)
	)

	innerW := w - 2*2
	if innerW < 40 {
		innerW = 40
	}

	sub := m.title
	if m.loadingTags {
		sub = fmt.Sprintf("%s  •  %s Refreshing tags…", sub, m.spin.View())
	}

	header := titleBar.Width(innerW).Render(
		lipgloss.JoinVertical(
			lipgloss.Left,
			bold.Render("CPython Release Builder"),
			muted.Render(sub),
		),
	)

	filterStyle := panelBase
	if m.focus == focusFilter {
		filterStyle = panelFocused
	}
	filterPanel := filterStyle.Width(innerW).Render(m.filter.View())

	tagsStyle := panelBase
	if m.focus == focusTags {
		tagsStyle = panelFocused
	}

	tagHeader := fmt.Sprintf("Tags (%d)", len(m.tags.Items()))
	if m.selectedTag != "" {
		tagHeader = fmt.Sprintf("%s  selected: %s", tagHeader, m.selectedTag)
	}
	if m.focus == focusTags {
		tagHeader = "▶ " + tagHeader
	}

	tagsPanel := tagsStyle.
		Width(innerW).
		Render(
			lipgloss.JoinVertical(
				lipgloss.Left,
				panelTitle.Render(tagHeader),
				m.tags.View(),
			),
		)

	var body strings.Builder
	if strings.TrimSpace(m.status) != "" {
		fmt.Fprintf(&body, "%s\n", statusBox.Width(innerW).Render(m.status))
	}
	if m.err != nil {
		fmt.Fprintf(&body, "%s\n", errorBox.Width(innerW).Render("Error: "+m.err.Error()))
	}

	return appPad.Render(
		lipgloss.JoinVertical(
			lipgloss.Left,
			header,
			filterPanel,
			tagsPanel,
			body.String(),
			footer.Render(muted.Render(helpText)),
		),
	)
}
