package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"

	"pybuilder/internal/resolve"
	"pybuilder/internal/version"
)

// Loader returns the tags to choose from.
type Loader func(ctx context.Context) (resolve.TagSet, error)

type focusTarget int

const (
	focusFilter focusTarget = iota
	focusTags
)

const helpText = "enter: build selected   ctrl+r: refresh tags   tab: switch focus   esc: clear   ctrl+c: quit"

type tagItem struct {
	raw      string
	isLatest bool
}

func (t tagItem) Title() string {
	if t.isLatest {
		return t.raw + " (latest)"
	}
	return t.raw
}
func (t tagItem) Description() string { return "" }
func (t tagItem) FilterValue() string { return t.raw }

type model struct {
	title string

	filter textinput.Model
	tags   list.Model

	// all holds every loaded tag, newest first.
	all         []string
	latest      string
	selectedTag string

	// chosen is set when the user confirms a tag.
	chosen string

	focus focusTarget

	load          Loader
	loadingTags   bool
	refreshCancel context.CancelFunc
	spin          spinner.Model

	status string
	err    error

	width  int
	height int
}

func newModel(title string, load Loader) model {
	filter := textinput.New()
	filter.Placeholder = "3.12"
	filter.Prompt = "Filter: "
	filter.CharLimit = 100
	filter.Width = 40

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false

	l := list.New([]list.Item{}, delegate, 40, 12)
	l.Title = "Tags"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	m := model{
		title:  title,
		filter: filter,
		tags:   l,
		focus:  focusFilter,
		load:   load,
		spin:   spinner.New(),
		status: "Ready",
	}

	m.applyFocus()
	return m
}

// setTags replaces the loaded tag list.
func (m *model) setTags(tags resolve.TagSet) {
	m.all = tags.Sorted()
	version.SortDescending(m.all)
	m.latest = version.Latest(m.all)
	m.applyFilter()
}

// applyFilter shows the loaded tags containing the filter text, keeping the
// current selection when it is still visible.
func (m *model) applyFilter() {
	query := strings.TrimSpace(m.filter.Value())

	visible := m.all
	if query != "" {
		near := resolve.NearTags(query, resolve.NewTagSet(m.all...))
		version.SortDescending(near)
		visible = near
	}

	items := make([]list.Item, 0, len(visible))
	selectedIdx := 0
	for i, t := range visible {
		items = append(items, tagItem{raw: t, isLatest: t == m.latest})
		if t == m.selectedTag {
			selectedIdx = i
		}
	}
	m.tags.SetItems(items)

	if len(visible) == 0 {
		m.selectedTag = ""
		return
	}
	m.tags.Select(selectedIdx)
	m.selectedTag = visible[selectedIdx]
}

func (m *model) cancelRefresh() {
	if m.refreshCancel != nil {
		m.refreshCancel()
		m.refreshCancel = nil
	}
}

func (m *model) SetStatus(s string) {
	m.status = s
}

func (m *model) SetError(err error) {
	m.err = err
	if err != nil {
		m.status = "Error"
	}
}

func (m *model) ClearBanner() {
	m.err = nil
}
