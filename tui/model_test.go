package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pybuilder/internal/resolve"
)

func staticLoader(tags ...string) Loader {
	return func(context.Context) (resolve.TagSet, error) {
		return resolve.NewTagSet(tags...), nil
	}
}

func update(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(model)
	require.True(t, ok)
	return nm, cmd
}

func typeText(t *testing.T, m model, s string) model {
	for _, r := range s {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func loaded(t *testing.T, m model, tags ...string) model {
	m, _ = update(t, m, tagsLoadedMsg{tags: resolve.NewTagSet(tags...)})
	return m
}

func visible(m model) []string {
	var out []string
	for _, it := range m.tags.Items() {
		out = append(out, it.(tagItem).raw)
	}
	return out
}

func TestLoadedTagsNewestFirst(t *testing.T) {
	m := newModel("cpython", staticLoader())
	m = loaded(t, m, "v3.11.0", "v3.12.0rc1", "v3.12.0", "v3.11.1")

	assert.Equal(t, []string{"v3.12.0", "v3.12.0rc1", "v3.11.1", "v3.11.0"}, visible(m))
	assert.Equal(t, "v3.12.0", m.selectedTag)
	assert.Equal(t, "v3.12.0 (latest)", m.tags.Items()[0].(tagItem).Title())
	assert.Contains(t, m.status, "4 tags")
}

func TestFilterUsesSubstringMatch(t *testing.T) {
	m := newModel("cpython", staticLoader())
	m = loaded(t, m, "v3.1.0", "v3.11.0", "v3.12.0", "v2.7.18")

	m = typeText(t, m, "3.1")
	assert.Equal(t, "3.1", m.filter.Value())
	assert.Equal(t, []string{"v3.12.0", "v3.11.0", "v3.1.0"}, visible(m))

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Len(t, visible(m), 4)
}

func TestEnterChoosesSelectedTag(t *testing.T) {
	m := newModel("cpython", staticLoader())
	m = loaded(t, m, "v3.11.0", "v3.12.0")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, focusTags, m.focus)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "v3.11.0", m.selectedTag)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "v3.11.0", m.chosen)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestEnterWithoutTags(t *testing.T) {
	m := newModel("cpython", staticLoader())
	m = loaded(t, m)
	assert.Error(t, m.err)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Empty(t, m.chosen)
	assert.EqualError(t, m.err, "no tag selected")
}

func TestRefreshError(t *testing.T) {
	m := newModel("cpython", staticLoader())
	m.loadingTags = true
	m, _ = update(t, m, tagsErrMsg{err: errors.New("boom")})
	assert.False(t, m.loadingTags)
	assert.EqualError(t, m.err, "boom")
	assert.Contains(t, m.View(), "Error: boom")
}

func TestRefreshCmdRetries(t *testing.T) {
	calls := 0
	load := func(context.Context) (resolve.TagSet, error) {
		calls++
		if calls < 2 {
			return nil, errors.New("transient")
		}
		return resolve.NewTagSet("v3.12.0"), nil
	}

	msg := refreshTagsCmd(context.Background(), load)()
	got, ok := msg.(tagsLoadedMsg)
	require.True(t, ok, "%T", msg)
	assert.True(t, got.tags.Has("v3.12.0"))
	assert.Equal(t, 2, calls)
}

func TestRefreshCmdCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	msg := refreshTagsCmd(ctx, staticLoader("v3.12.0"))()
	assert.IsType(t, tagsCanceledMsg{}, msg)
}

func TestRetryWithBackoffGivesUp(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return errors.New("down")
	})
	assert.EqualError(t, err, "down")
	assert.Equal(t, 3, calls)
}
