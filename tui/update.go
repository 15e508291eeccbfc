package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"pybuilder/internal/resolve"
)

type tagsLoadedMsg struct {
	tags resolve.TagSet
}

type tagsErrMsg struct {
	err error
}

type tagsCanceledMsg struct{}

// initRefreshMsg triggers the startup load.
type initRefreshMsg struct{}

const focusCount = int(focusTags) + 1

func retryWithBackoff(ctx context.Context, attempts int, baseDelay time.Duration, fn func() error) error {
	delay := baseDelay
	for i := 0; i < attempts; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := fn()
		if err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if i == attempts-1 {
			return err
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
	return ctx.Err()
}

func refreshTagsCmd(ctx context.Context, load Loader) tea.Cmd {
	return func() tea.Msg {
		var tags resolve.TagSet
		err := retryWithBackoff(ctx, 3, 250*time.Millisecond, func() error {
			t, e := load(ctx)
			if e == nil {
				tags = t
			}
			return e
		})
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return tagsCanceledMsg{}
			}
			return tagsErrMsg{err: fmt.Errorf("refresh tags: %w", err)}
		}
		return tagsLoadedMsg{tags: tags}
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spin.Tick,
		func() tea.Msg { return initRefreshMsg{} },
	)
}

func (m *model) startRefresh() tea.Cmd {
	// Starting a refresh cancels the one in flight.
	m.cancelRefresh()

	m.ClearBanner()
	m.loadingTags = true
	m.SetStatus("Refreshing tags…")

	ctx, cancel := context.WithCancel(context.Background())
	m.refreshCancel = cancel
	return refreshTagsCmd(ctx, m.load)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case initRefreshMsg:
		return m, m.startRefresh()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.tags.SetSize(max(msg.Width-8, 40), max(msg.Height-12, 6))
		return m, nil

	case tea.KeyMsg:
		key := msg.String()

		switch key {
		case "ctrl+c":
			m.cancelRefresh()
			return m, tea.Quit

		case "q":
			if m.focus == focusTags {
				m.cancelRefresh()
				return m, tea.Quit
			}

		case "esc":
			m.ClearBanner()
			m.filter.SetValue("")
			m.applyFilter()
			m.SetStatus("Ready")
			return m, nil

		case "ctrl+r":
			return m, m.startRefresh()

		case "tab", "shift+tab":
			// two targets: both keys toggle
			m.focus = focusTarget((int(m.focus) + 1) % focusCount)
			m.applyFocus()
			return m, nil

		case "enter":
			if m.selectedTag == "" {
				m.SetError(errors.New("no tag selected"))
				return m, nil
			}
			m.chosen = m.selectedTag
			m.cancelRefresh()
			return m, tea.Quit
		}

		if m.focus == focusTags {
			var cmd tea.Cmd
			m.tags, cmd = m.tags.Update(msg)
			if it, ok := m.tags.SelectedItem().(tagItem); ok {
				m.selectedTag = it.raw
			}
			return m, cmd
		}

		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		m.applyFilter()
		return m, cmd

	case tagsLoadedMsg:
		m.loadingTags = false
		m.refreshCancel = nil

		if len(msg.tags) == 0 {
			m.SetError(errors.New("no tags found in this repository"))
			m.SetStatus("No tags found.")
			m.setTags(nil)
			return m, nil
		}

		m.setTags(msg.tags)
		m.SetStatus(fmt.Sprintf("%d tags, latest %s", len(m.all), m.latest))
		return m, nil

	case tagsErrMsg:
		m.loadingTags = false
		m.refreshCancel = nil
		m.SetError(msg.err)
		return m, nil

	case tagsCanceledMsg:
		m.loadingTags = false
		m.refreshCancel = nil
		m.SetStatus("Refresh canceled.")
		return m, nil

	default:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
}

func (m *model) applyFocus() {
	m.filter.Blur()
	if m.focus == focusFilter {
		m.filter.Focus()
	}
}
